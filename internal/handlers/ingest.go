package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Lllllllleong/examdocumentflow/internal/services"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// ObjectProcessor handles one finalized storage object.
type ObjectProcessor interface {
	Process(ctx context.Context, e services.GCSEvent) error
}

// NewIngestHandler decodes the storage event carried by a CloudEvent and
// hands it to p.
func NewIngestHandler(p ObjectProcessor) func(context.Context, cloudevents.Event) error {
	return func(ctx context.Context, e cloudevents.Event) error {
		var gcsEvent services.GCSEvent
		if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
			slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
			return fmt.Errorf("json.Unmarshal: %w", err)
		}
		// Process logs its own failures with document context.
		return p.Process(ctx, gcsEvent)
	}
}

var (
	ingestOnce    sync.Once
	ingestHandler func(context.Context, cloudevents.Event) error
	ingestErr     error
)

// IngestPDF is the CloudEvent function fired when a PDF lands in the upload
// bucket.
func IngestPDF(ctx context.Context, e cloudevents.Event) error {
	ingestOnce.Do(func() {
		ingestHandler, ingestErr = newIngestHandlerFromEnv(context.Background())
	})
	if ingestErr != nil {
		slog.Error("Critical error during function initialization", "function", "IngestPDF", "error", ingestErr)
		return ingestErr
	}
	return ingestHandler(ctx, e)
}

func newIngestHandlerFromEnv(ctx context.Context) (func(context.Context, cloudevents.Event) error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	client, err := sharedCompleter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	extractor, err := services.NewExtractorFromConfig(cfg, client)
	if err != nil {
		return nil, err
	}
	ingest, err := services.NewIngest(ctx, cfg, extractor)
	if err != nil {
		return nil, err
	}
	return NewIngestHandler(ingest), nil
}
