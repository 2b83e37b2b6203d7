package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/onedesigner/onedesigner/app"
	"github.com/onedesigner/onedesigner/core/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := app.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.WithLogger(log))
	if err != nil {
		log.Error("failed to start", logger.Error(err))
		return err
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		log.Error("stopped with error", logger.Error(err))
		return err
	}
	log.Info("shutdown complete")
	return nil
}
