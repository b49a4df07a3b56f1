package server

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mumugogoing/meme-bot/internal/metrics"
	"github.com/mumugogoing/meme-bot/logging"
)

// apiProxyHandler forwards /api/ requests to the backend so the browser can
// stay same-origin.
func apiProxyHandler(target *url.URL, observer *metrics.Proxy, logger *logging.Logger) http.Handler {
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.Transport = otelhttp.NewTransport(http.DefaultTransport)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.With("proxy").
			WithRequestID(r.Header.Get(logging.RequestIDHeader)).
			WithField("path", r.URL.Path).
			Error("backend request failed", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"backend unavailable"}`))
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		r.Host = target.Host
		recorder := &codeRecorder{ResponseWriter: w, code: http.StatusOK}
		proxy.ServeHTTP(recorder, r)
		observer.Observe(routeLabel(r.URL.Path), recorder.code, time.Since(start))
	})
}

// routeLabel keeps the metrics label set bounded.
func routeLabel(path string) string {
	switch path {
	case "/api/templates", "/api/meme", "/api/health":
		return path
	}
	if strings.HasPrefix(path, "/api/") {
		return "/api/other"
	}
	return "other"
}

type codeRecorder struct {
	http.ResponseWriter
	code        int
	wroteHeader bool
}

func (r *codeRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.code = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *codeRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

func (r *codeRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
