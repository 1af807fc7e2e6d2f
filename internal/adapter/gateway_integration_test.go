//go:build integration

package adapter

import (
	"context"
	"os"
	"testing"
	"time"

	"bookstore-admin/internal/core/model"
	"bookstore-admin/pkg/http_client"

	"github.com/stretchr/testify/require"
)

type liveToken string

func (s liveToken) Token() (string, bool) { return string(s), s != "" }

func TestAdminAPI_Live(t *testing.T) {
	base := os.Getenv("ADMIN_API_URL")
	token := os.Getenv("ADMIN_API_TOKEN")
	if base == "" || token == "" {
		t.Skip("ADMIN_API_URL and ADMIN_API_TOKEN not set")
	}
	g := NewGateway(base, http_client.CreateHTTPClient(5*time.Second), liveToken(token), nil)
	cats, err := NewResource[model.Category](g, PathCategories).List(context.Background())
	require.NoError(t, err)
	for _, c := range cats {
		require.NotEmpty(t, c.ID)
	}
}
