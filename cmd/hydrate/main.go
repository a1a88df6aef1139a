package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/ykvlv/hydrate/internal/app"
	"github.com/ykvlv/hydrate/internal/config"
	"github.com/ykvlv/hydrate/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet; exit immediately.
		_, _ = os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(2)
	}

	// The terminal belongs to the widget in tui mode.
	logPath := ""
	if cfg.RunMode == app.ModeTUI {
		logPath = cfg.LogFile
	}
	log, err := logger.New(cfg.LogLevel, logPath)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger init error: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("app init failed", zap.Error(err))
	}

	if err := application.Run(ctx); err != nil {
		log.Fatal("app run failed", zap.Error(err))
	}
}
