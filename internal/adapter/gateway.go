package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"bookstore-admin/internal/core/model"

	"github.com/oapi-codegen/runtime"
)

// CredentialProvider supplies the bearer token, if one is stored.
type CredentialProvider interface {
	Token() (string, bool)
}

type noCredentials struct{}

func (noCredentials) Token() (string, bool) { return "", false }

// Gateway is the single HTTP entry point to the admin API. It adds the
// bearer token, maps failures to typed errors and decodes responses into
// checked records. No retries, no caching.
type Gateway struct {
	BaseURL string
	Client  *http.Client
	creds   CredentialProvider
	log     *slog.Logger
}

func NewGateway(baseURL string, httpClient *http.Client, creds CredentialProvider, logger *slog.Logger) *Gateway {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if creds == nil {
		creds = noCredentials{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  httpClient,
		creds:   creds,
		log:     logger,
	}
}

// JSON sends in (if non-nil) as a JSON body and decodes the answer into out
// (if non-nil).
func (g *Gateway) JSON(ctx context.Context, method, path, rawQuery string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return g.Do(ctx, method, path, rawQuery, body, contentType, out)
}

func (g *Gateway) Do(ctx context.Context, method, path, rawQuery string, body io.Reader, contentType string, out any) error {
	url := g.BaseURL + path
	if rawQuery != "" {
		url += "?" + rawQuery
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token, ok := g.creds.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := g.Client.Do(req)
	if err != nil {
		g.log.Debug("request failed", "method", method, "path", path, "err", err)
		return &model.NetworkError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()
	g.log.Debug("request", "method", method, "path", path, "status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &model.HTTPError{Status: resp.StatusCode, Message: serverMessage(b)}
	}
	if out == nil {
		return nil
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return &model.NetworkError{Method: method, URL: url, Err: err}
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if res, ok := out.(*model.WriteResult); ok {
		*res = decodeWriteResult(b)
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return &model.DecodeError{Path: path, Err: err}
	}
	if err := checkDecoded(out); err != nil {
		return &model.DecodeError{Path: path, Err: err}
	}
	return nil
}

// decodeWriteResult never fails on a 2xx write answer: a bare JSON string
// becomes the message and any other shape only loses it.
func decodeWriteResult(b []byte) model.WriteResult {
	var res model.WriteResult
	if err := json.Unmarshal(b, &res); err == nil {
		return res
	}
	var msg string
	if err := json.Unmarshal(b, &msg); err == nil {
		return model.WriteResult{Message: msg}
	}
	return model.WriteResult{Message: serverMessage(b)}
}

// serverMessage extracts {"message": "..."} from an error body.
func serverMessage(b []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b, &body); err != nil {
		return ""
	}
	return body.Message
}

// checkDecoded validates a decoded record or slice of records against
// their wire tags.
func checkDecoded(out any) error {
	rv := reflect.Indirect(reflect.ValueOf(out))
	switch rv.Kind() {
	case reflect.Slice:
		for i := 0; i < rv.Len(); i++ {
			if err := checkOne(rv.Index(i)); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	case reflect.Struct:
		return checkOne(rv)
	}
	return nil
}

func checkOne(v reflect.Value) error {
	if v.Kind() != reflect.Struct {
		return nil
	}
	err := model.CheckWire(v.Interface())
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("%w: %s", model.ErrMalformed, verr.Error())
	}
	return err
}

// queryParam is one form-style query parameter.
type queryParam struct {
	name  string
	value any
}

// encodeQuery styles params the way the admin API expects (form, explode).
// Nil and empty values are skipped.
func encodeQuery(params ...queryParam) (string, error) {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		if p.value == nil {
			continue
		}
		if s, ok := p.value.(string); ok && s == "" {
			continue
		}
		part, err := runtime.StyleParamWithLocation("form", true, p.name, runtime.ParamLocationQuery, p.value)
		if err != nil {
			return "", fmt.Errorf("query param %s: %w", p.name, err)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "&"), nil
}
