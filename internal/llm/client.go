// Package llm sends one instruction plus ordered user messages to a hosted
// completion model and returns the raw reply text.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Lllllllleong/examdocumentflow/internal/models"
	"golang.org/x/time/rate"
)

// Request is built fresh for every call.
type Request struct {
	SystemInstruction string
	UserMessages      []string
}

// Reply is the model's text exactly as received.
type Reply struct {
	RawText string
}

// Completer is what the services depend on.
type Completer interface {
	Complete(ctx context.Context, req Request) (Reply, error)
}

// Backend talks to one provider. Errors are returned unclassified; Client
// maps them onto the upstream error kinds.
type Backend interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// ClientConfig holds the provider independent call policy.
type ClientConfig struct {
	Timeout time.Duration
	// RateLimit is completions per second; zero disables the limiter.
	RateLimit float64
}

// Client applies the deadline, rate limit and error mapping around a Backend.
// It never retries.
type Client struct {
	backend Backend
	timeout time.Duration
	limiter *rate.Limiter
}

func NewClient(backend Backend, cfg ClientConfig) *Client {
	c := &Client{backend: backend, timeout: cfg.Timeout}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return c
}

// Complete sends req and returns the reply. A deadline hit maps to
// models.ErrUpstreamTimeout; every other failure, including an empty reply,
// maps to models.ErrUpstreamUnavailable.
func (c *Client) Complete(ctx context.Context, req Request) (Reply, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return Reply{}, fmt.Errorf("%w: %w", models.ErrUpstreamUnavailable, ctx.Err())
			}
			// Wait fails early when the deadline would pass before a token frees up.
			return Reply{}, fmt.Errorf("%w: rate limit wait: %v", models.ErrUpstreamTimeout, err)
		}
	}

	sent := Request{
		SystemInstruction: req.SystemInstruction,
		UserMessages:      slices.Clone(req.UserMessages),
	}
	start := time.Now()
	text, err := c.backend.Generate(ctx, sent)
	if err != nil {
		return Reply{}, classify(ctx, err)
	}
	if strings.TrimSpace(text) == "" {
		return Reply{}, fmt.Errorf("%w: %s returned no text candidates", models.ErrUpstreamUnavailable, c.backend.Name())
	}
	slog.Debug("Completion received.", "provider", c.backend.Name(), "duration", time.Since(start).String(), "replyBytes", len(text))
	return Reply{RawText: text}, nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", models.ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: %w", models.ErrUpstreamUnavailable, err)
}
