package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/aseptimu/codepool-shortener/internal/app/cli"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return cli.NewRootCommand().ExecuteContext(ctx)
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("shortctl: %v", err)
	}
}
