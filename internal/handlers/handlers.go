// Package handlers adapts the services to Cloud Functions HTTP and CloudEvent
// entry points. Each entry point initialises its dependencies once, on the
// first invocation.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/Lllllllleong/examdocumentflow/internal/config"
	"github.com/Lllllllleong/examdocumentflow/internal/llm"
	"github.com/Lllllllleong/examdocumentflow/internal/models"
)

// maxJSONBody caps the body of the JSON endpoints.
const maxJSONBody = 1 << 20

var (
	configOnce sync.Once
	appConfig  *config.Config
	configErr  error

	completerOnce sync.Once
	completer     *llm.Client
	completerErr  error
)

// NewLogger returns the JSON logger every entry point installs as default.
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the configuration once and raises the default logger to
// the configured level.
func loadConfig() (*config.Config, error) {
	configOnce.Do(func() {
		appConfig, configErr = config.LoadFromEnv()
		if configErr == nil {
			slog.SetDefault(NewLogger(appConfig.SlogLevel()))
		}
	})
	return appConfig, configErr
}

// sharedCompleter is shared by every function in the process so the rate
// limit applies across them.
func sharedCompleter(ctx context.Context, cfg *config.Config) (*llm.Client, error) {
	completerOnce.Do(func() {
		completer, completerErr = llm.NewFromConfig(ctx, cfg)
	})
	return completer, completerErr
}

func writeResponse(w http.ResponseWriter, statusCode int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(models.NewAPIResponse(statusCode, data, message)); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

// writeError responds with the status of err's kind. Client errors carry the
// full message; server errors only name the failure kind.
func writeError(w http.ResponseWriter, err error) {
	statusCode := models.StatusCode(err)
	message := err.Error()
	if statusCode >= http.StatusInternalServerError {
		message = publicMessage(err)
	}
	writeResponse(w, statusCode, nil, message)
}

func publicMessage(err error) string {
	for _, kind := range []error{
		models.ErrRecognition,
		models.ErrUpstreamUnavailable,
		models.ErrUpstreamTimeout,
		models.ErrMalformedReply,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal server error"
}

func writeInitError(w http.ResponseWriter, name string, err error) {
	slog.Error("Critical error during function initialization", "function", name, "error", err)
	writeResponse(w, http.StatusInternalServerError, nil, "failed to initialize service")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: could not parse JSON: %v", models.ErrInvalidRequest, err)
	}
	return nil
}
