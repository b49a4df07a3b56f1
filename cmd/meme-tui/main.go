package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mumugogoing/meme-bot/internal/config"
	"github.com/mumugogoing/meme-bot/internal/metrics"
	"github.com/mumugogoing/meme-bot/internal/ui/effects"
	"github.com/mumugogoing/meme-bot/internal/ui/handles"
	"github.com/mumugogoing/meme-bot/internal/ui/memeapi"
	"github.com/mumugogoing/meme-bot/internal/ui/model"
	"github.com/mumugogoing/meme-bot/internal/ui/state"
	"github.com/mumugogoing/meme-bot/internal/ui/tui"
	"github.com/mumugogoing/meme-bot/logging"
)

func main() {
	configPath := flag.String("config", "", "optional config file (yaml, json or toml)")
	apiBase := flag.String("api", "", "base URL for the meme rendering backend")
	saveDir := flag.String("out", ".", "directory generated memes are saved to")
	metricsListen := flag.String("metrics-listen", "", "serve controller metrics on this address")
	flag.Parse()

	if err := run(*configPath, *apiBase, *saveDir, *metricsListen); err != nil {
		fmt.Fprintf(os.Stderr, "meme-tui: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, apiBase, saveDir, metricsListen string) error {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return errors.New("stdout is not a terminal")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if apiBase != "" {
		cfg.Backend.URL = apiBase
	}

	// The terminal belongs to bubbletea, so logs only go to the file.
	fileWriter, err := logging.NewFileWriter(cfg.Log.Dir, "meme-tui.json", cfg.Log.MaxSizeMB, cfg.Log.MaxFiles)
	if err != nil {
		return err
	}
	defer fileWriter.Close()
	logger := logging.New("meme-tui", cfg.Level(), fileWriter)

	opts := []state.Option{state.WithLogger(logger)}
	if metricsListen != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, state.WithObserver(metrics.NewController(reg)))
		go serveMetrics(metricsListen, reg, logger)
	}

	store := handles.NewMemory()
	api := memeapi.New(cfg.Backend.URL, memeapi.WithTimeouts(cfg.Backend.CatalogTimeout, cfg.Backend.RenderTimeout))
	ctrl := state.New(effects.NewRunner(api, store, logger), append(opts, state.WithReleaser(store))...)
	defer ctrl.Close()

	program := tea.NewProgram(tui.New(ctrl, store, saveDir), tea.WithAltScreen())
	unsubscribe := ctrl.Subscribe(func(s model.ViewState) {
		program.Send(tui.SnapshotMsg(s))
	})
	defer unsubscribe()

	logger.Info("app", "meme-tui started", map[string]any{"backend": cfg.Backend.URL})
	_, err = program.Run()
	return err
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics", "metrics listener stopped", err, nil)
	}
}
