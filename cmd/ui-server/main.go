package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mumugogoing/meme-bot/internal/config"
	"github.com/mumugogoing/meme-bot/internal/ui/server"
	"github.com/mumugogoing/meme-bot/logging"
)

func main() {
	configPath := flag.String("config", "", "optional config file (yaml, json or toml)")
	listen := flag.String("listen", "", "address to serve the meme builder UI")
	apiBase := flag.String("api", "", "base URL for the meme rendering backend")
	templatesDir := flag.String("templates", "", "path to the html/template files")
	assetsDir := flag.String("assets", "", "path where styles.css and main.wasm are located")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ui-server: %v\n", err)
		os.Exit(1)
	}
	overrideString(&cfg.Server.Listen, *listen)
	overrideString(&cfg.Backend.URL, *apiBase)
	overrideString(&cfg.Server.Templates, *templatesDir)
	overrideString(&cfg.Server.Assets, *assetsDir)

	writers := []io.Writer{os.Stdout}
	fileWriter, err := logging.NewFileWriter(cfg.Log.Dir, "ui-server.json", cfg.Log.MaxSizeMB, cfg.Log.MaxFiles)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ui-server: log file disabled: %v\n", err)
	} else {
		defer fileWriter.Close()
		writers = append(writers, fileWriter)
	}
	logger := logging.New("ui-server", cfg.Level(), writers...)

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = server.Run(ctx, server.Options{
		Listen:         cfg.Server.Listen,
		TemplatesDir:   cfg.Server.Templates,
		AssetsDir:      cfg.Server.Assets,
		BackendURL:     cfg.Backend.URL,
		CatalogTimeout: cfg.Backend.CatalogTimeout,
		RenderTimeout:  cfg.Backend.RenderTimeout,
		MetricsPath:    metricsPath,
		Logger:         logger,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server", "ui-server stopped", err, nil)
		os.Exit(1)
	}
}

func overrideString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
