// Package server serves the meme builder shell page, its static assets and a
// same-origin proxy to the rendering backend.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mumugogoing/meme-bot/internal/metrics"
	"github.com/mumugogoing/meme-bot/internal/ui/memeapi"
	"github.com/mumugogoing/meme-bot/internal/ui/state"
	"github.com/mumugogoing/meme-bot/internal/ui/view"
	"github.com/mumugogoing/meme-bot/logging"
)

// Options configures the UI HTTP server.
type Options struct {
	Listen       string
	TemplatesDir string
	AssetsDir    string
	BackendURL   string
	// Backend call deadlines; zero keeps the client defaults. /healthz is
	// bounded by CatalogTimeout.
	CatalogTimeout time.Duration
	RenderTimeout  time.Duration
	// MetricsPath exposes prometheus metrics when non-empty.
	MetricsPath string
	Logger      *logging.Logger
	Registry    *prometheus.Registry
	Templates   map[string]*template.Template
}

type server struct {
	assetsDir   string
	templates   map[string]*template.Template
	backend     *memeapi.Client
	logger      *logging.Logger
	currentYear int
}

type basePageData struct {
	PageTitle      string
	StylesheetPath string
	CurrentYear    int
}

type homePageData struct {
	basePageData
	App template.HTML
}

// NewHandler builds the UI server routes.
func NewHandler(opts Options) (http.Handler, error) {
	opts = applyDefaults(opts)

	backendURL, err := url.Parse(opts.BackendURL)
	if err != nil || backendURL.Scheme == "" || backendURL.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", opts.BackendURL)
	}
	backendURL.Path = strings.TrimSuffix(backendURL.Path, "/")

	tmpl := opts.Templates
	if tmpl == nil {
		templateRoot, err := filepath.Abs(opts.TemplatesDir)
		if err != nil {
			return nil, fmt.Errorf("resolve templates dir: %w", err)
		}
		if tmpl, err = loadTemplates(templateRoot); err != nil {
			return nil, fmt.Errorf("load templates: %w", err)
		}
	}

	assetsPath, err := filepath.Abs(opts.AssetsDir)
	if err != nil {
		return nil, fmt.Errorf("resolve assets dir: %w", err)
	}

	srv := &server{
		assetsDir:   assetsPath,
		templates:   tmpl,
		backend:     memeapi.New(backendURL.String(), memeapi.WithTimeouts(opts.CatalogTimeout, opts.RenderTimeout)),
		logger:      opts.Logger,
		currentYear: time.Now().Year(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.handleHome)
	mux.Handle("/styles.css", srv.assetHandler("styles.css", "text/css"))
	mux.Handle("/wasm_exec.js", srv.assetHandler("wasm_exec.js", "application/javascript"))
	mux.Handle("/main.wasm", srv.assetHandler("main.wasm", "application/wasm"))
	mux.Handle("/api/", apiProxyHandler(backendURL, metrics.NewProxy(opts.Registry), opts.Logger))
	mux.HandleFunc("/healthz", srv.handleHealth)
	if opts.MetricsPath != "" {
		mux.Handle(opts.MetricsPath, promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{Registry: opts.Registry}))
	}
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return otelhttp.NewHandler(logging.NewHTTPLogger(opts.Logger).Middleware(mux), "meme-ui"), nil
}

// Run serves until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	opts = applyDefaults(opts)
	handler, err := NewHandler(opts)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              opts.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	opts.Logger.Info("server", "serving meme builder UI", map[string]any{
		"listen":  "http://" + opts.Listen,
		"backend": opts.BackendURL,
	})

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

func applyDefaults(opts Options) Options {
	if opts.Listen == "" {
		opts.Listen = "127.0.0.1:8000"
	}
	if opts.TemplatesDir == "" {
		opts.TemplatesDir = "ui/templates"
	}
	if opts.AssetsDir == "" {
		opts.AssetsDir = "ui"
	}
	if opts.BackendURL == "" {
		opts.BackendURL = "http://localhost:8080"
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
		opts.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return opts
}

func (s *server) assetHandler(name, contentType string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(s.assetsDir, name)
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		http.ServeFile(w, r, path)
	})
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data := homePageData{
		basePageData: basePageData{
			PageTitle:      "Meme Generator",
			StylesheetPath: "/styles.css",
			CurrentYear:    s.currentYear,
		},
		// Pre-rendered initial state so the page is usable before the wasm
		// bundle takes over #app-root.
		App: template.HTML(view.Render(state.Initial())),
	}
	tmpl, ok := s.templates["home"]
	if !ok {
		http.Error(w, "template missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		s.logger.Error("server", "render home", err, nil)
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.Health(r.Context()); err != nil {
		s.logger.Warn("server", "backend unhealthy", map[string]any{"error": err.Error()})
		http.Error(w, "backend unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
