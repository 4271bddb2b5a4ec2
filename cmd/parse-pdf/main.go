package main

import (
	"log/slog"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/examdocumentflow/internal/handlers"
)

func init() {
	// Replaced with the configured level on first invocation.
	slog.SetDefault(handlers.NewLogger(slog.LevelInfo))

	functions.HTTP("HandleParsePDF", handlers.HandleParsePDF)
}

// main is required by the Go Functions Framework.
func main() {}
