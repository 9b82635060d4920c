package main

import (
	"log/slog"
	"os"

	"videovoyage/internal/app"
	"videovoyage/internal/logger"
)

func main() {
	logger.Setup(os.Stdout, os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

	application, err := app.New()
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}
