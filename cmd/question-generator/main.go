package main

import (
	"log/slog"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/examdocumentflow/internal/handlers"
)

func init() {
	slog.SetDefault(handlers.NewLogger(slog.LevelInfo))
	functions.HTTP("HandleGenerateQuestions", handlers.HandleGenerateQuestions)
}

// main is required by the Go Functions Framework.
func main() {}
