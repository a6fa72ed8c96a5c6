package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"garthbid/internal/application"
	"garthbid/internal/config"
	"garthbid/pkg/logx"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config.Load", logx.Error(err))
		os.Exit(1)
	}

	log := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cfg.App.LogLevel,
		TimeFormat: time.DateTime,
	}))
	slog.SetDefault(log)

	if err := application.Run(ctx, cfg, log); err != nil {
		log.Error("application failed", logx.Error(err))
		os.Exit(1) //nolint:gocritic
	}

	log.Info("application stopped")
}
