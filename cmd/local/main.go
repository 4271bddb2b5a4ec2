// Command local serves every function on one port for development. Set
// FUNCTION_TARGET to serve a single function at the root path, which the
// questions routes expect.
package main

import (
	"log/slog"
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/examdocumentflow/internal/gcp"
	"github.com/Lllllllleong/examdocumentflow/internal/handlers"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	slog.SetDefault(handlers.NewLogger(slog.LevelDebug))

	functions.HTTP("HandleParsePDF", handlers.HandleParsePDF)
	functions.HTTP("HandleGenerateQuestions", handlers.HandleGenerateQuestions)
	functions.HTTP("HandleQuestions", handlers.HandleQuestions)
	functions.CloudEvent("IngestPDF", handlers.IngestPDF)

	port := gcp.GetEnv("PORT", "8080")
	slog.Info("Starting local functions server.", "port", port)
	if err := funcframework.Start(port); err != nil {
		slog.Error("funcframework.Start failed", "error", err)
		os.Exit(1)
	}
}
