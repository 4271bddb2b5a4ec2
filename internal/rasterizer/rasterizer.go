// Package rasterizer renders PDF pages into PNG images staged on local disk.
package rasterizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/Lllllllleong/examdocumentflow/internal/models"
	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/image/draw"
)

// pointsPerInch converts a render scale into the DPI MuPDF expects: scale 1
// renders one pixel per PDF point.
const pointsPerInch = 72.0

// Config controls render quality. Higher scales give OCR more pixels to work
// with at the cost of latency and memory.
type Config struct {
	Scale float64
	// MaxDimension caps the longest side of a rendered page in pixels. Zero
	// disables the cap.
	MaxDimension int
}

// Rasterizer renders documents one page at a time.
type Rasterizer struct {
	config  Config
	pdfConf *model.Configuration
}

var disableConfigDir sync.Once

// New creates a Rasterizer for the given configuration.
func New(config Config) (*Rasterizer, error) {
	if config.Scale <= 0 {
		return nil, fmt.Errorf("render scale must be positive, got %v", config.Scale)
	}
	if config.MaxDimension < 0 {
		return nil, fmt.Errorf("max dimension must not be negative, got %d", config.MaxDimension)
	}
	// pdfcpu otherwise tries to create a config dir under $HOME, which is
	// read-only on Cloud Functions.
	disableConfigDir.Do(api.DisableConfigDir)

	pdfConf := model.NewDefaultConfiguration()
	pdfConf.ValidationMode = model.ValidationRelaxed
	return &Rasterizer{config: config, pdfConf: pdfConf}, nil
}

// Render writes one PNG per page into stageDir, in page order, numbered from 1.
// Invalid documents fail with models.ErrDocumentDecode. On any failure the
// images already written are removed before returning.
func (r *Rasterizer) Render(ctx context.Context, document []byte, stageDir string) ([]models.PageImage, error) {
	pageCount, err := api.PageCount(bytes.NewReader(document), r.pdfConf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDocumentDecode, err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("%w: document has no pages", models.ErrDocumentDecode)
	}

	doc, err := fitz.NewFromMemory(document)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDocumentDecode, err)
	}
	defer doc.Close()

	if n := doc.NumPage(); n != pageCount {
		slog.Warn("Page count mismatch between validator and renderer.", "pdfcpu", pageCount, "mupdf", n)
		pageCount = min(pageCount, n)
	}

	dpi := pointsPerInch * r.config.Scale
	images := make([]models.PageImage, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		if err := ctx.Err(); err != nil {
			discard(images)
			return nil, err
		}
		pageIndex := i + 1
		img, err := doc.ImageDPI(i, dpi)
		if err != nil {
			discard(images)
			return nil, fmt.Errorf("%w: render page %d: %v", models.ErrDocumentDecode, pageIndex, err)
		}
		path := filepath.Join(stageDir, fmt.Sprintf("page_%05d.png", pageIndex))
		if err := writePNG(path, r.fit(img)); err != nil {
			discard(images)
			return nil, fmt.Errorf("stage page %d: %w", pageIndex, err)
		}
		images = append(images, models.PageImage{PageIndex: pageIndex, Path: path})
	}
	return images, nil
}

// fit downscales img so its longest side is at most MaxDimension.
func (r *Rasterizer) fit(img image.Image) image.Image {
	limit := r.config.MaxDimension
	b := img.Bounds()
	longest := max(b.Dx(), b.Dy())
	if limit == 0 || longest <= limit {
		return img
	}
	ratio := float64(limit) / float64(longest)
	w := max(1, int(float64(b.Dx())*ratio))
	h := max(1, int(float64(b.Dy())*ratio))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func discard(images []models.PageImage) {
	for _, img := range images {
		if err := os.Remove(img.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to remove partially rendered page.", "path", img.Path, "error", err)
		}
	}
}
