package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Lllllllleong/examdocumentflow/internal/models"
	"github.com/Lllllllleong/examdocumentflow/internal/services"
)

// multipartOverhead is allowed on top of the file limit for boundaries and
// part headers.
const multipartOverhead = 64 << 10

// DocumentExtractor turns an uploaded PDF into questions.
type DocumentExtractor interface {
	Extract(ctx context.Context, document []byte) (*models.ExtractionResult, error)
}

// ParsePDFHandler serves POST /parse_pdf with a multipart field "file".
type ParsePDFHandler struct {
	extractor DocumentExtractor
	maxBytes  int64
}

func NewParsePDFHandler(extractor DocumentExtractor, maxBytes int64) *ParsePDFHandler {
	return &ParsePDFHandler{extractor: extractor, maxBytes: maxBytes}
}

func (h *ParsePDFHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeResponse(w, http.StatusMethodNotAllowed, nil, "Method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeResponse(w, http.StatusRequestEntityTooLarge, nil, "File exceeds the upload limit")
			return
		}
		slog.Warn("Could not parse multipart form", "error", err)
		writeResponse(w, http.StatusBadRequest, nil, "No file uploaded")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeResponse(w, http.StatusBadRequest, nil, "No file uploaded")
		return
	}
	defer file.Close()

	logCtx := slog.With("filename", header.Filename, "size", header.Size)
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		logCtx.Warn("Rejected upload with unsupported extension.")
		writeResponse(w, http.StatusBadRequest, nil, "Only PDF files are allowed")
		return
	}
	if header.Size > h.maxBytes {
		writeResponse(w, http.StatusRequestEntityTooLarge, nil, "File exceeds the upload limit")
		return
	}

	document, err := io.ReadAll(file)
	if err != nil {
		logCtx.Error("Failed to read uploaded file", "error", err)
		writeResponse(w, http.StatusBadRequest, nil, "Could not read uploaded file")
		return
	}

	result, err := h.extractor.Extract(r.Context(), document)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, models.ParsePDFResponse{JSONResp: result}, "PDF parsed successfully")
}

var (
	parsePDFOnce    sync.Once
	parsePDFHandler *ParsePDFHandler
	parsePDFErr     error
)

// HandleParsePDF is the parse_pdf HTTP function.
func HandleParsePDF(w http.ResponseWriter, r *http.Request) {
	parsePDFOnce.Do(func() {
		parsePDFHandler, parsePDFErr = newParsePDFHandlerFromEnv(context.Background())
	})
	if parsePDFErr != nil {
		writeInitError(w, "HandleParsePDF", parsePDFErr)
		return
	}
	parsePDFHandler.ServeHTTP(w, r)
}

func newParsePDFHandlerFromEnv(ctx context.Context) (*ParsePDFHandler, error) {
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
	slog.Info("parse_pdf initialized.", "maxUploadBytes", cfg.MaxUploadBytes())
	return NewParsePDFHandler(extractor, cfg.MaxUploadBytes()), nil
}
