package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mumugogoing/meme-bot/internal/config"
	"github.com/mumugogoing/meme-bot/logging"
)

// step is one external command of the dev loop.
type step struct {
	Name string
	Args []string
	Env  []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "meme-bot: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New("dev", cfg.Level(), os.Stderr)

	build := []step{
		{
			Name: "build-ui-wasm",
			Args: []string{"go", "build", "-o", filepath.Join(cfg.Server.Assets, "main.wasm"), "./cmd/ui-wasm"},
			Env:  []string{"GOOS=js", "GOARCH=wasm"},
		},
		{
			Name: "copy-wasm-exec",
			Args: []string{"sh", "-c", `cp "$(go env GOROOT)/lib/wasm/wasm_exec.js" "$1"`, "sh", filepath.Join(cfg.Server.Assets, "wasm_exec.js")},
		},
	}
	serve := step{
		Name: "ui-server",
		Args: []string{"go", "run", "./cmd/ui-server", "-api", cfg.Backend.URL},
	}

	if err := runDev(ctx, logger, build, serve); err != nil {
		logger.Error("dev", "meme-bot exited with error", err, nil)
		os.Exit(1)
	}
}

// runDev runs every build step to completion, in order, and only then
// starts the server. A failed step stops the sequence.
func runDev(ctx context.Context, logger *logging.Logger, build []step, serve step) error {
	for _, s := range build {
		started := time.Now()
		if err := runStep(ctx, s); err != nil {
			return err
		}
		logger.Info("dev", s.Name+" finished", map[string]any{"duration": time.Since(started).String()})
	}
	logger.Info("dev", "starting "+serve.Name, nil)
	err := runStep(ctx, serve)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func runStep(ctx context.Context, s step) error {
	if len(s.Args) == 0 {
		return errors.New(s.Name + ": no command")
	}
	cmd := exec.CommandContext(ctx, s.Args[0], s.Args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.WaitDelay = 2 * time.Second
	if len(s.Env) > 0 {
		cmd.Env = append(os.Environ(), s.Env...)
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", s.Name, err)
	}
	return nil
}
