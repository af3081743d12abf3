package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"polyglot/internal/app"
	"polyglot/internal/config"
	"polyglot/internal/logger"
	"polyglot/internal/snowflake"
)

//go:generate swag init --dir ../../ --generalInfo cmd/server/main.go --output ../../docs --outputTypes go

// @title Polyglot API
// @version 1.0
// @description Debounced detect-and-translate service for Japanese, Traditional Chinese, English and Korean.
// @BasePath /api
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger.Init(logger.ParseLevel(cfg.LogLevel))

	if err := snowflake.Init(0); err != nil {
		log.Fatalf("init snowflake: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("init app: %v", err)
	}
	defer a.Close()

	logger.Info("starting", "module", "main", "action", "start", "resource", "app", "result", "ok", "app", config.AppName, "version", config.AppVersion)
	if err := a.Run(ctx); err != nil {
		logger.Error("server stopped", "module", "main", "action", "stop", "resource", "app", "result", "failed", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete", "module", "main", "action", "stop", "resource", "app", "result", "ok")
}
