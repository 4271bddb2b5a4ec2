package main

import (
	"log/slog"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/examdocumentflow/internal/handlers"
)

func init() {
	slog.SetDefault(handlers.NewLogger(slog.LevelInfo))

	// Fired by google.cloud.storage.object.v1.finalized on the upload bucket.
	functions.CloudEvent("IngestPDF", handlers.IngestPDF)
}

// main is required by the Go Functions Framework.
func main() {}
