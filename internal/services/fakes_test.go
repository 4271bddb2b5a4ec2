package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Lllllllleong/examdocumentflow/internal/llm"
	"github.com/Lllllllleong/examdocumentflow/internal/models"
)

// fakeRenderer stages one empty file per page, like the real rasterizer.
type fakeRenderer struct {
	pages    int
	err      error
	stageDir string
}

func (r *fakeRenderer) Render(_ context.Context, _ []byte, stageDir string) ([]models.PageImage, error) {
	r.stageDir = stageDir
	if r.err != nil {
		return nil, r.err
	}
	images := make([]models.PageImage, 0, r.pages)
	for i := 1; i <= r.pages; i++ {
		p := filepath.Join(stageDir, fmt.Sprintf("page_%05d.png", i))
		if err := os.WriteFile(p, []byte("png"), 0o600); err != nil {
			return nil, err
		}
		images = append(images, models.PageImage{PageIndex: i, Path: p})
	}
	return images, nil
}

// fakeRecognizer returns "page N" for every page except failPage.
type fakeRecognizer struct {
	mu       sync.Mutex
	failPage int
	texts    map[int]string
	seen     []int
}

func (r *fakeRecognizer) Recognize(ctx context.Context, img models.PageImage, _ string) (models.PageText, error) {
	r.mu.Lock()
	r.seen = append(r.seen, img.PageIndex)
	r.mu.Unlock()
	if img.PageIndex == r.failPage {
		return models.PageText{}, fmt.Errorf("%w: engine crashed on page %d", models.ErrRecognition, img.PageIndex)
	}
	if err := ctx.Err(); err != nil {
		return models.PageText{}, err
	}
	text, ok := r.texts[img.PageIndex]
	if !ok {
		text = fmt.Sprintf("page %d", img.PageIndex)
	}
	return models.PageText{PageIndex: img.PageIndex, Text: text}, nil
}

// fakeCompleter answers with a fixed reply or a reply computed from the request.
type fakeCompleter struct {
	mu       sync.Mutex
	reply    string
	err      error
	respond  func(llm.Request) string
	requests []llm.Request
}

func (c *fakeCompleter) Complete(_ context.Context, req llm.Request) (llm.Reply, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()
	if c.err != nil {
		return llm.Reply{}, c.err
	}
	if c.respond != nil {
		return llm.Reply{RawText: c.respond(req)}, nil
	}
	return llm.Reply{RawText: c.reply}, nil
}

// recordingRemover records every removal attempt before delegating.
type recordingRemover struct {
	mu      sync.Mutex
	paths   []string
	failAll bool
}

func (r *recordingRemover) remove(path string) error {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
	if r.failAll {
		return fmt.Errorf("permission denied: %s", path)
	}
	return os.Remove(path)
}

type fakeEvaluator struct {
	verdict models.Verdict
	err     error
	calls   [][3]string
}

func (e *fakeEvaluator) Evaluate(_ context.Context, question, reference, candidate string) (models.Verdict, error) {
	e.calls = append(e.calls, [3]string{question, reference, candidate})
	return e.verdict, e.err
}

// captureLogs routes the default logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func errorLines(buf *bytes.Buffer) []string {
	var out []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, `"level":"ERROR"`) {
			out = append(out, line)
		}
	}
	return out
}
