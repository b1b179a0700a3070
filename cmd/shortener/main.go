package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aseptimu/codepool-shortener/internal/app/config"
	"github.com/aseptimu/codepool-shortener/internal/app/server"
	"go.uber.org/zap"
)

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

func main() {
	cfg, err := config.NewConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app, err := server.NewApp(ctx, cfg, sugar)
	if err != nil {
		sugar.Fatalw("Failed to open stores", "error", err)
	}

	sugar.Infow("Starting server", "address", cfg.ServerAddress, "fastStore", cfg.FastStore)
	if err := app.Run(ctx); err != nil {
		sugar.Fatalw("Server stopped with error", "error", err)
	}
}
