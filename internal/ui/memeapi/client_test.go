package memeapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mumugogoing/meme-bot/internal/ui/model"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestTemplatesReturnsCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, templatesPath, r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		_ = json.NewEncoder(w).Encode(model.TemplatesResponse{Templates: []string{"doge", "success-kid"}})
	}))
	defer srv.Close()

	templates, err := New(srv.URL + "/").Templates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"doge", "success-kid"}, templates)
}

func TestTemplatesFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusBadGateway)
		},
		"malformed": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{not json"))
		},
		"missing field": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"names":["doge"]}`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			_, err := New(srv.URL).Templates(context.Background())
			require.Error(t, err)
			var catalogErr *CatalogLoadError
			require.True(t, errors.As(err, &catalogErr))
			assert.Contains(t, catalogErr.UserMessage(), "Failed to load templates: ")
		})
	}
}

func TestTemplatesTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(srv.URL, WithTimeouts(20*time.Millisecond, 0)).Templates(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRenderPostsRequestAndReturnsImage(t *testing.T) {
	var got model.RenderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, memePath, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngHeader)
	}))
	defer srv.Close()

	req := model.RenderRequest{Template: "doge", TopText: "WOW", BottomText: "MUCH"}
	img, err := New(srv.URL).Render(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, req, got)
	assert.Equal(t, pngHeader, img.Data)
	assert.Equal(t, "image/png", img.ContentType)
}

func TestRenderWireFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, map[string]any{
			"template":    "",
			"image_url":   "http://x/y.png",
			"top_text":    "",
			"bottom_text": "hi",
		}, raw)
		_, _ = w.Write(pngHeader)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Render(context.Background(), model.RenderRequest{ImageURL: "http://x/y.png", BottomText: "hi"})
	require.NoError(t, err)
}

func TestRenderErrors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		kind    RenderErrorKind
		message string
	}{
		{
			name: "status with detail",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"template not found"}`))
			},
			kind:    KindStatus,
			message: "Failed to generate meme: template not found",
		},
		{
			name: "status without detail",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("oops"))
			},
			kind:    KindStatus,
			message: "Failed to generate meme: Internal Server Error",
		},
		{
			name: "not an image",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "image/png")
				_, _ = w.Write([]byte("<html>definitely not a png</html>"))
			},
			kind:    KindPayload,
			message: "Failed to process meme image",
		},
		{
			name:    "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			kind:    KindPayload,
			message: "Failed to process meme image",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			_, err := New(srv.URL).Render(context.Background(), model.RenderRequest{Template: "doge"})
			var renderErr *RenderError
			require.True(t, errors.As(err, &renderErr), "got %v", err)
			assert.Equal(t, tc.kind, renderErr.Kind)
			assert.Equal(t, tc.message, renderErr.UserMessage())
		})
	}
}

func TestRenderTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).Render(context.Background(), model.RenderRequest{Template: "doge"})
	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, KindTransport, renderErr.Kind)
	assert.Contains(t, renderErr.UserMessage(), "Network error: ")
}

func TestRenderSniffsMissingContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(pngHeader)
	}))
	defer srv.Close()

	img, err := New(srv.URL).Render(context.Background(), model.RenderRequest{Template: "doge"})
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
}

func TestHealth(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, healthPath, r.URL.Path)
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	assert.NoError(t, c.Health(context.Background()))
	healthy.Store(false)
	assert.Error(t, c.Health(context.Background()))
}
