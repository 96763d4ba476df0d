package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Gunvolt24/statshub/config"
	"github.com/Gunvolt24/statshub/internal/app"
	"github.com/joho/godotenv"
)

func main() {
	// локальные переменные окружения; файла может не быть
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, cleanup, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap: %v\n", err)
		stop()
		os.Exit(1)
	}

	runErr := application.Run(ctx)
	cleanup()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "service failed: %v\n", runErr)
		stop()
		os.Exit(1)
	}
}
