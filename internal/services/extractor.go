package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Lllllllleong/examdocumentflow/internal/config"
	"github.com/Lllllllleong/examdocumentflow/internal/llm"
	"github.com/Lllllllleong/examdocumentflow/internal/models"
	"github.com/Lllllllleong/examdocumentflow/internal/normalize"
	"github.com/Lllllllleong/examdocumentflow/internal/ocr"
	"github.com/Lllllllleong/examdocumentflow/internal/prompts"
	"github.com/Lllllllleong/examdocumentflow/internal/rasterizer"
	"github.com/google/uuid"
	"github.com/otiai10/gosseract/v2"
	"golang.org/x/sync/errgroup"
)

// PageRenderer turns a document into staged page images.
type PageRenderer interface {
	Render(ctx context.Context, document []byte, stageDir string) ([]models.PageImage, error)
}

// PageRecognizer reads the text of one staged page image.
type PageRecognizer interface {
	Recognize(ctx context.Context, img models.PageImage, languageHint string) (models.PageText, error)
}

// Extraction states, logged on every transition.
const (
	StateRendering   = "RENDERING"
	StateRecognizing = "RECOGNIZING"
	StateAggregating = "AGGREGATING"
	StateRequesting  = "REQUESTING"
	StateNormalizing = "NORMALIZING"
	StateDone        = "DONE"
	StateFailed      = "FAILED"
)

// ExtractorConfig holds the per-deployment settings of the pipeline.
type ExtractorConfig struct {
	StagingDir     string
	Language       string
	OCRConcurrency int
}

// Extractor runs a PDF through rendering, OCR, aggregation, one completion
// and normalisation. It holds no per-request state.
type Extractor struct {
	renderer   PageRenderer
	recognizer PageRecognizer
	completer  llm.Completer
	config     ExtractorConfig
	removeFile func(string) error
}

func NewExtractor(renderer PageRenderer, recognizer PageRecognizer, completer llm.Completer, config ExtractorConfig) *Extractor {
	if config.OCRConcurrency < 1 {
		config.OCRConcurrency = 1
	}
	if config.StagingDir == "" {
		config.StagingDir = os.TempDir()
	}
	return &Extractor{
		renderer:   renderer,
		recognizer: recognizer,
		completer:  completer,
		config:     config,
		removeFile: os.Remove,
	}
}

// NewExtractorFromConfig wires the Tesseract recognizer and MuPDF rasterizer.
func NewExtractorFromConfig(cfg *config.Config, completer llm.Completer) (*Extractor, error) {
	r, err := rasterizer.New(rasterizer.Config{
		Scale:        cfg.Render.Scale,
		MaxDimension: cfg.Render.MaxDimension,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rasterizer: %w", err)
	}
	rec, err := ocr.New(
		ocr.WithLanguage(cfg.OCR.Language),
		ocr.WithWhitelist(cfg.OCR.Whitelist),
		ocr.WithPageSegMode(gosseract.PageSegMode(cfg.OCR.PageSegMode)),
		ocr.WithEngineMode(ocr.EngineMode(cfg.OCR.EngineMode)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create recognizer: %w", err)
	}
	return NewExtractor(r, rec, completer, ExtractorConfig{
		StagingDir:     cfg.Render.StagingDir,
		Language:       cfg.OCR.Language,
		OCRConcurrency: cfg.OCR.Concurrency,
	}), nil
}

// Extract returns the questions found in document. Failures carry one of
// models.ErrDocumentDecode, ErrRecognition, ErrUpstreamUnavailable,
// ErrUpstreamTimeout or ErrMalformedReply. A caller deadline that expires in
// any stage is ErrUpstreamTimeout; a cancelled caller is
// ErrUpstreamUnavailable.
func (e *Extractor) Extract(ctx context.Context, document []byte) (*models.ExtractionResult, error) {
	requestID := uuid.NewString()
	logCtx := slog.With("requestId", requestID)
	state := func(s string) { logCtx.Info("Extraction state changed.", "state", s) }
	fail := func(err error) (*models.ExtractionResult, error) {
		logFailure(logCtx, "Extraction failed.", err, "state", StateFailed)
		return nil, err
	}

	if len(document) == 0 {
		return fail(fmt.Errorf("%w: empty document", models.ErrDocumentDecode))
	}

	stageDir := filepath.Join(e.config.StagingDir, "extract-"+requestID)
	if err := os.MkdirAll(stageDir, 0o700); err != nil {
		return fail(fmt.Errorf("%w: create staging dir: %w", models.ErrRecognition, err))
	}
	defer func() {
		if err := os.RemoveAll(stageDir); err != nil {
			logCtx.Warn("Failed to remove staging dir.", "path", stageDir, "error", err)
		}
	}()

	state(StateRendering)
	images, err := e.renderer.Render(ctx, document, stageDir)
	if err != nil {
		return fail(classify(err))
	}
	logCtx.Info("Pages rendered.", "pageCount", len(images))

	state(StateRecognizing)
	pages, err := e.recognizeAll(ctx, logCtx, images)
	e.cleanup(logCtx, images)
	if err != nil {
		return fail(classify(err))
	}

	state(StateAggregating)
	text := Aggregate(pages)
	if text == "" {
		logCtx.Warn("No text recognised in document.")
	}

	state(StateRequesting)
	req := llm.Request{
		SystemInstruction: prompts.ExtractionSystemPrompt,
		UserMessages:      []string{text},
	}
	raw, err := complete(ctx, logCtx, e.completer, req)
	if err != nil {
		return fail(err)
	}

	state(StateNormalizing)
	result, err := normalize.Decode[models.ExtractionResult](raw)
	if err != nil {
		return fail(err)
	}
	result.ApplyDefaults()

	state(StateDone)
	logCtx.Info("Extraction complete.", "questionCount", len(result.Questions))
	return &result, nil
}

// recognizeAll runs OCR with bounded parallelism. The first failure stops new
// pages from starting; pages already running are awaited before returning.
func (e *Extractor) recognizeAll(ctx context.Context, logCtx *slog.Logger, images []models.PageImage) ([]models.PageText, error) {
	pages := make([]models.PageText, len(images))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.config.OCRConcurrency)

	for i, img := range images {
		if gctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			// A slot can free up after another page already failed.
			if gctx.Err() != nil {
				return nil
			}
			page, err := e.recognizer.Recognize(gctx, img, e.config.Language)
			if err != nil {
				if isContextErr(err) {
					return err
				}
				if !errors.Is(err, models.ErrRecognition) {
					err = fmt.Errorf("%w: page %d: %w", models.ErrRecognition, img.PageIndex, err)
				}
				return err
			}
			logCtx.Debug("Page recognised.", "pageIndex", img.PageIndex, "chars", len(page.Text))
			pages[i] = page
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return pages, nil
}

var extractionKinds = []error{
	models.ErrDocumentDecode,
	models.ErrRecognition,
	models.ErrUpstreamUnavailable,
	models.ErrUpstreamTimeout,
	models.ErrMalformedReply,
}

// classify gives a render or recognition failure its extraction kind. Local
// staging failures (page image writes) count as recognition failures.
func classify(err error) error {
	for _, kind := range extractionKinds {
		if errors.Is(err, kind) {
			return err
		}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", models.ErrUpstreamTimeout, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", models.ErrUpstreamUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", models.ErrRecognition, err)
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// cleanup removes every staged image. Failures are logged and never change
// the extraction result.
func (e *Extractor) cleanup(logCtx *slog.Logger, images []models.PageImage) {
	for _, img := range images {
		if err := e.removeFile(img.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logCtx.Warn("Failed to remove staged page image.", "path", img.Path, "error", err)
		}
	}
}

// Close releases the recognizer's resources when it holds any.
func (e *Extractor) Close() error {
	if c, ok := e.recognizer.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
