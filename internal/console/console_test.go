//go:build unit

package console

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"bookstore-admin/internal/adapter"
	"bookstore-admin/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type harness struct {
	app    *App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T, seed bool, opts ...adapter.DevOption) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]adapter.DevOption{
		adapter.WithIDs(adapter.SequentialIDs()),
		adapter.WithLogger(logger),
		adapter.WithBcryptCost(bcrypt.MinCost),
	}, opts...)
	api := adapter.NewDevAPI(opts...)
	if seed {
		require.NoError(t, api.Seed(context.Background()))
	}
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	store := adapter.NewFileTokenStore(filepath.Join(t.TempDir(), "credentials.json"))
	out := &bytes.Buffer{}
	return &harness{
		app: NewApp(AppConfig{
			Admin:    adapter.NewGateway(srv.URL, srv.Client(), store, logger),
			Auth:     adapter.NewGateway(srv.URL, srv.Client(), nil, logger),
			Store:    store,
			Notifier: Notifier{W: out},
			Logger:   logger,
		}),
		stdout: out,
		stderr: &bytes.Buffer{},
	}
}

func (h *harness) run(args ...string) int {
	h.stdout.Reset()
	h.stderr.Reset()
	return Run(context.Background(), h.app, args, h.stdout, h.stderr)
}

func TestRun_EmptyListShowsNoData(t *testing.T) {
	h := newHarness(t, false, adapter.WithoutAuth())
	require.Equal(t, 0, h.run("list", "categories"))
	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Name")
	assert.Equal(t, EmptyState, strings.TrimSpace(lines[1]))
}

func TestRun_CreateThenList(t *testing.T) {
	h := newHarness(t, false, adapter.WithoutAuth())
	require.Equal(t, 0, h.run("create", "category", "-data", `{"name":"Fiction"}`))
	assert.Equal(t, "saved\n", h.stdout.String())

	require.Equal(t, 0, h.run("list", "categories"))
	assert.Contains(t, h.stdout.String(), "c1")
	assert.Contains(t, h.stdout.String(), "Fiction")

	require.Equal(t, 0, h.run("list", "categories", "-q", "Harry"))
	assert.Contains(t, h.stdout.String(), EmptyState)
}

func TestRun_ValidationErrorIsNotified(t *testing.T) {
	h := newHarness(t, false, adapter.WithoutAuth())
	assert.Equal(t, 1, h.run("create", "categories", "-data", `{}`))
	assert.Contains(t, h.stdout.String(), "error: validation failed: name: must be provided")
	assert.Empty(t, h.stderr.String())
}

func TestRun_SortMarkerAndOrder(t *testing.T) {
	h := newHarness(t, true, adapter.WithoutAuth())
	require.Equal(t, 0, h.run("list", "books", "-sort", "price", "-sort", "price"))
	out := h.stdout.String()
	assert.Contains(t, out, "Price ▼")
	assert.Less(t, strings.Index(out, "A Brief History of Time"), strings.Index(out, "Mắt biếc"))

	require.Equal(t, 0, h.run("list", "books", "-sort", "price"))
	out = h.stdout.String()
	assert.Contains(t, out, "Price ▲")
	assert.Less(t, strings.Index(out, "Cho tôi xin"), strings.Index(out, "Mắt biếc"))

	assert.Equal(t, 2, h.run("list", "books", "-sort", "nope"))
	assert.Contains(t, h.stderr.String(), "cannot be sorted")
}

func TestRun_EditBookWithPickers(t *testing.T) {
	h := newHarness(t, true, adapter.WithoutAuth())
	require.Equal(t, 0, h.run("edit", "books", "b3", "-data", `{"quantity":5}`, "-author", "a1"))

	require.Equal(t, 0, h.run("list", "books", "-q", "Brief"))
	out := h.stdout.String()
	assert.Contains(t, out, "Nguyễn Nhật Ánh")
	assert.Contains(t, out, "150000")

	assert.Equal(t, 2, h.run("edit", "books", "b3", "-author", "zzz"))
	assert.Equal(t, 2, h.run("edit", "categories", "c1", "-author", "a1"))
	assert.Equal(t, 2, h.run("edit", "books", "b404", "-data", `{}`))
}

func TestRun_DeleteNeedsConfirmation(t *testing.T) {
	h := newHarness(t, true, adapter.WithoutAuth())
	require.Equal(t, 0, h.run("delete", "authors", "a2"))
	assert.Contains(t, h.stdout.String(), "-yes")

	require.Equal(t, 0, h.run("delete", "authors", "a2", "-yes"))
	assert.Equal(t, "deleted\n", h.stdout.String())

	assert.Equal(t, 1, h.run("delete", "authors", "a2", "-yes"))
	assert.Contains(t, h.stdout.String(), "error: not found")
}

func TestRun_ComposeDryRunAndSubmit(t *testing.T) {
	h := newHarness(t, true, adapter.WithoutAuth())
	require.Equal(t, 0, h.run("compose", "-customer", "cu1", "-promotion", "pr1", "-item", "b2:2", "-item", "b1", "-dry-run"))
	out := h.stdout.String()
	assert.Contains(t, out, "Customer: Trần Bình")
	assert.Contains(t, out, "Subtotal: 280000")
	assert.Contains(t, out, "Total: 252000")

	require.Equal(t, 0, h.run("list", "orders"))
	assert.Contains(t, h.stdout.String(), EmptyState)

	require.Equal(t, 0, h.run("compose", "-customer", "cu1", "-item", "b2:2", "-payment", "bank"))
	assert.Contains(t, h.stdout.String(), "order created")
	require.Equal(t, 0, h.run("list", "orders"))
	assert.Contains(t, h.stdout.String(), "170000")
}

func TestRun_ComposeStrictNeedsCustomer(t *testing.T) {
	h := newHarness(t, true, adapter.WithoutAuth())
	assert.Equal(t, 1, h.run("compose", "-item", "b1"))
	assert.Contains(t, h.stdout.String(), "customerId")
}

func TestRun_Stats(t *testing.T) {
	h := newHarness(t, true, adapter.WithoutAuth())
	require.Equal(t, 0, h.run("compose", "-customer", "cu1", "-item", "b3:1"))
	require.Equal(t, 0, h.run("stats"))
	out := h.stdout.String()
	assert.Contains(t, out, "Orders: 1")
	assert.Contains(t, out, "Revenue: 150000")

	assert.Equal(t, 2, h.run("stats", "-from", "yesterday"))
}

func TestRun_Pick(t *testing.T) {
	h := newHarness(t, true, adapter.WithoutAuth())
	require.Equal(t, 0, h.run("pick", "publisher"))
	assert.Contains(t, h.stdout.String(), "NXB Trẻ")
	assert.Equal(t, 2, h.run("pick", "staff"))
}

func TestRun_LoginLogout(t *testing.T) {
	h := newHarness(t, true)
	assert.Equal(t, 1, h.run("list", "categories"))
	assert.Contains(t, h.stdout.String(), "error: unauthorized")

	assert.Equal(t, 1, h.run("login", "-email", adapter.SeedEmail, "-password", "bad"))
	assert.Equal(t, "error: invalid email or password\n", h.stdout.String())
	assert.False(t, h.app.Authenticated())

	require.Equal(t, 0, h.run("login", "-email", adapter.SeedEmail, "-password", adapter.SeedPassword))
	assert.True(t, h.app.Authenticated())
	require.Equal(t, 0, h.run("list", "categories"))
	assert.Contains(t, h.stdout.String(), "Fiction")

	require.Equal(t, 0, h.run("logout"))
	assert.False(t, h.app.Authenticated())
}

func TestRun_Usage(t *testing.T) {
	h := newHarness(t, false, adapter.WithoutAuth())
	assert.Equal(t, 2, h.run())
	assert.Equal(t, 0, h.run("help"))
	assert.Contains(t, h.stdout.String(), "usage:")
	assert.Equal(t, 2, h.run("frobnicate"))
	assert.Equal(t, 2, h.run("list"))
	assert.Equal(t, 2, h.run("list", "widgets"))
	assert.Contains(t, h.stderr.String(), "unknown entity")
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderTable(&buf, []string{"ID", "Name"}, [][]string{{"c1", "Fiction"}}))
	assert.Equal(t, "ID  Name\nc1  Fiction\n", buf.String())
}

func TestSortMarker(t *testing.T) {
	assert.Equal(t, "", sortMarker(core.SortState{}, "title"))
	assert.Equal(t, " ▲", sortMarker(core.SortState{Key: "title", Direction: core.Asc}, "title"))
	assert.Equal(t, " ▼", sortMarker(core.SortState{Key: "title", Direction: core.Desc}, "title"))
	assert.Equal(t, "", sortMarker(core.SortState{Key: "title", Direction: core.Desc}, "price"))
}

func TestParseItem(t *testing.T) {
	id, qty, err := parseItem("b1:3")
	require.NoError(t, err)
	assert.Equal(t, "b1", id)
	assert.Equal(t, 3, qty)

	_, qty, err = parseItem("b1")
	require.NoError(t, err)
	assert.Equal(t, 1, qty)

	_, _, err = parseItem("b1:x")
	assert.ErrorIs(t, err, errInput)
	_, _, err = parseItem(":2")
	assert.ErrorIs(t, err, errInput)
}
