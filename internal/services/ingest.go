package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/examdocumentflow/internal/config"
	"github.com/Lllllllleong/examdocumentflow/internal/gcp"
	"github.com/Lllllllleong/examdocumentflow/internal/models"
	"github.com/Lllllllleong/examdocumentflow/internal/store"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// IngestConfig holds configuration for the GCS-triggered extraction.
type IngestConfig struct {
	ResultsBucket  string
	CollectionName string
	MaxBytes       int64
}

// ObjectStorage reads uploads and writes results.
type ObjectStorage interface {
	Read(ctx context.Context, bucket, object string, maxBytes int64) ([]byte, error)
	WriteIfAbsent(ctx context.Context, bucket, object string, data []byte) error
}

// ExtractionRecords tracks each ingested document by content hash.
type ExtractionRecords interface {
	FindByHash(ctx context.Context, fileHash string) (string, error)
	Create(ctx context.Context, rec models.ExtractionRecord) (string, error)
	Update(ctx context.Context, id string, fields map[string]any) error
}

// DocumentExtractor turns PDF bytes into questions.
type DocumentExtractor interface {
	Extract(ctx context.Context, document []byte) (*models.ExtractionResult, error)
}

// IngestFunction extracts questions from PDFs uploaded to a bucket and tracks
// each document in Firestore.
type IngestFunction struct {
	objects   ObjectStorage
	records   ExtractionRecords
	extractor DocumentExtractor
	config    IngestConfig
}

type GCSEvent struct {
	Bucket      string `json:"bucket"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
}

func NewIngest(ctx context.Context, cfg *config.Config, extractor DocumentExtractor) (*IngestFunction, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	ingestConfig := IngestConfig{
		ResultsBucket:  cfg.Ingest.ResultsBucket,
		CollectionName: cfg.Ingest.ExtractionsCollection,
		MaxBytes:       cfg.MaxUploadBytes(),
	}
	if ingestConfig.ResultsBucket == "" {
		return nil, fmt.Errorf("RESULTS_BUCKET environment variable must be set")
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}

	slog.Info("PDF ingest logic initialized.", "resultsBucket", ingestConfig.ResultsBucket)
	return NewIngestFunction(
		gcp.NewObjects(storageClient),
		store.NewFirestoreExtractionStore(firestoreClient, ingestConfig.CollectionName),
		extractor,
		ingestConfig,
	), nil
}

func NewIngestFunction(objects ObjectStorage, records ExtractionRecords, extractor DocumentExtractor, config IngestConfig) *IngestFunction {
	return &IngestFunction{objects: objects, records: records, extractor: extractor, config: config}
}

// Process extracts the questions of one uploaded object. Non-PDF objects and
// documents already seen (by content hash) are skipped.
func (f *IngestFunction) Process(ctx context.Context, e GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)
	if !isPDFObject(e) {
		logCtx.Info("Object is not a PDF. Skipping.", "contentType", e.ContentType)
		return nil
	}
	logCtx.Info("Processing new GCS object.")

	data, err := f.objects.Read(ctx, e.Bucket, e.Name, f.config.MaxBytes)
	if err != nil {
		logCtx.Error("Failed to download source PDF", "error", err)
		return err
	}

	fileHash := calculateHash(data)
	logCtx = logCtx.With("fileHash", fileHash)

	existingID, err := f.records.FindByHash(ctx, fileHash)
	if err != nil {
		logCtx.Error("Failed to check for duplicate", "error", err)
		return err
	}
	if existingID != "" {
		logCtx.Info("Duplicate file detected. Skipping.", "existingDocId", existingID)
		return nil
	}

	docID, err := f.records.Create(ctx, models.ExtractionRecord{
		FileHash:         fileHash,
		OriginalFilename: e.Name,
		Status:           models.StatusProcessing,
		CreatedAt:        time.Now(),
	})
	if err != nil {
		logCtx.Error("Failed to create extraction record", "error", err)
		return err
	}
	logCtx = logCtx.With("documentId", docID)
	logCtx.Info("Created extraction record in Firestore.")

	pageCount, err := countPages(data)
	if err != nil {
		return f.handleError(ctx, logCtx, docID, "failed to read PDF", err)
	}
	if err := f.records.Update(ctx, docID, map[string]any{"pageCount": pageCount}); err != nil {
		logCtx.Warn("Failed to record page count.", "error", err)
	}

	result, err := f.extractor.Extract(ctx, data)
	if err != nil {
		return f.handleError(ctx, logCtx, docID, "extraction failed", err)
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return f.handleError(ctx, logCtx, docID, "failed to encode extraction result", err)
	}
	objectName := resultObjectName(docID)
	if err := f.objects.WriteIfAbsent(ctx, f.config.ResultsBucket, objectName, encoded); err != nil {
		return f.handleError(ctx, logCtx, docID, "failed to save extraction result", err)
	}

	resultURI := fmt.Sprintf("gs://%s/%s", f.config.ResultsBucket, objectName)
	updates := map[string]any{
		"status":        models.StatusDone,
		"questionCount": len(result.Questions),
		"resultUri":     resultURI,
	}
	if err := f.records.Update(ctx, docID, updates); err != nil {
		return f.handleError(ctx, logCtx, docID, "failed to update status to DONE", err)
	}
	logCtx.Info("Extraction saved.", "resultUri", resultURI, "questionCount", len(result.Questions))
	return nil
}

func (f *IngestFunction) handleError(ctx context.Context, logCtx *slog.Logger, docID string, message string, originalErr error) error {
	fullError := fmt.Sprintf("%s: %v", message, originalErr)
	logCtx.Error(message, "error", originalErr)
	updates := map[string]any{
		"status":       models.StatusFailed,
		"errorDetails": fullError,
	}
	if err := f.records.Update(ctx, docID, updates); err != nil {
		logCtx.Error("CRITICAL: Failed to update Firestore status to FAILED after a processing error.", "updateError", err)
	}
	return fmt.Errorf("%s: %w", message, originalErr)
}

func isPDFObject(e GCSEvent) bool {
	if e.ContentType == "application/pdf" {
		return true
	}
	return strings.EqualFold(path.Ext(e.Name), ".pdf")
}

func calculateHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func resultObjectName(docID string) string {
	return fmt.Sprintf("%s/questions.json", docID)
}

func countPages(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrDocumentDecode, err)
	}
	return n, nil
}
