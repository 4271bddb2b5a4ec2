// Package ocr recognises the text of staged page images with Tesseract.
package ocr

import (
	"context"
	"fmt"
	"os"

	"github.com/Lllllllleong/examdocumentflow/internal/models"
	"github.com/otiai10/gosseract/v2"
)

// Recognizer runs Tesseract on one page image per call. It is safe for
// concurrent use; every call gets its own engine client.
type Recognizer struct {
	settings   settings
	configFile string
	newClient  func() *gosseract.Client
}

// New creates a Recognizer. Close releases the engine config file it writes.
func New(opts ...Option) (*Recognizer, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	f, err := os.CreateTemp("", "tesseract-*.cfg")
	if err != nil {
		return nil, fmt.Errorf("failed to create tesseract config: %w", err)
	}
	if _, err := fmt.Fprintf(f, "tessedit_ocr_engine_mode %d\n", s.engineMode); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("failed to write tesseract config: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("failed to write tesseract config: %w", err)
	}

	return &Recognizer{settings: s, configFile: f.Name(), newClient: gosseract.NewClient}, nil
}

func (r *Recognizer) Close() error {
	return os.Remove(r.configFile)
}

// Recognize returns the text on the page. languageHint overrides the
// configured language when set. A page with no recognisable text yields an
// empty PageText, not an error.
func (r *Recognizer) Recognize(ctx context.Context, img models.PageImage, languageHint string) (models.PageText, error) {
	if err := ctx.Err(); err != nil {
		return models.PageText{}, err
	}
	lang := r.settings.language
	if languageHint != "" {
		lang = languageHint
	}

	c := r.newClient()
	defer c.Close()

	if err := r.configure(c, lang); err != nil {
		return models.PageText{}, fmt.Errorf("%w: page %d: %v", models.ErrRecognition, img.PageIndex, err)
	}
	if err := c.SetImage(img.Path); err != nil {
		return models.PageText{}, fmt.Errorf("%w: page %d: set image: %v", models.ErrRecognition, img.PageIndex, err)
	}
	text, err := c.Text()
	if err != nil {
		return models.PageText{}, fmt.Errorf("%w: page %d: %v", models.ErrRecognition, img.PageIndex, err)
	}
	return models.PageText{PageIndex: img.PageIndex, Text: text}, nil
}

func (r *Recognizer) configure(c *gosseract.Client, lang string) error {
	if err := c.SetConfigFile(r.configFile); err != nil {
		return fmt.Errorf("set config file: %w", err)
	}
	if err := c.SetLanguage(lang); err != nil {
		return fmt.Errorf("set language: %w", err)
	}
	if r.settings.whitelist != "" {
		if err := c.SetWhitelist(r.settings.whitelist); err != nil {
			return fmt.Errorf("set whitelist: %w", err)
		}
	}
	if err := c.SetPageSegMode(r.settings.pageSegMode); err != nil {
		return fmt.Errorf("set page seg mode: %w", err)
	}
	for k, v := range r.settings.variables {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	return nil
}
