package ocr_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityamitter15/invoice-ocr-prototype/internal/ocr"
)

func TestHTTPEngine_Extract(t *testing.T) {
	var gotBody []byte
	var gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotContentType = r.Header.Get("Content-Type")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"INV-001 Widget x3"}`))
	}))
	t.Cleanup(srv.Close)

	engine := ocr.NewHTTPEngine(srv.URL, "trocr-base-handwritten", 5*time.Second)

	out, err := engine.Extract(context.Background(), []byte("image-bytes"), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "INV-001 Widget x3", out.RawText)
	assert.Equal(t, "trocr-base-handwritten", out.Engine)
	assert.Equal(t, "key_fields", out.Scope)

	assert.Equal(t, []byte("image-bytes"), gotBody)
	assert.Equal(t, "image/jpeg", gotContentType)
}

func TestHTTPEngine_Extract_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	engine := ocr.NewHTTPEngine(srv.URL, "trocr", time.Second)

	_, err := engine.Extract(context.Background(), []byte("x"), "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "model loading")
}

func TestHTTPEngine_Extract_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	engine := ocr.NewHTTPEngine(srv.URL, "trocr", time.Second)

	_, err := engine.Extract(context.Background(), []byte("x"), "image/png")
	assert.Error(t, err)
}

func TestNoop_Extract(t *testing.T) {
	out, err := ocr.Noop{}.Extract(context.Background(), []byte("anything"), "image/jpeg")
	require.NoError(t, err)

	assert.Empty(t, out.RawText)
	assert.Equal(t, "none", out.Engine)
}
