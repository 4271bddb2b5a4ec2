package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/examdocumentflow/internal/llm"
	"github.com/Lllllllleong/examdocumentflow/internal/models"
	"github.com/Lllllllleong/examdocumentflow/internal/normalize"
)

var refusalPhrases = []string{
	"i am unable to",
	"i cannot fulfill",
	"i cannot answer",
	"i cannot provide",
	"as a large language model",
}

// looksLikeRefusal reports whether the reply reads like the model declining
// the task instead of answering it.
func looksLikeRefusal(reply string) bool {
	lower := strings.ToLower(reply)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// complete sends req and returns the raw reply. Refusals are only logged;
// they fail at decode time like any other prose reply. Errors are returned
// unlogged; the caller logs them once through logFailure.
func complete(ctx context.Context, logCtx *slog.Logger, completer llm.Completer, req llm.Request) (string, error) {
	reply, err := completer.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if looksLikeRefusal(reply.RawText) {
		logCtx.Warn("Completion reply looks like a refusal.", "reply", reply.RawText)
	}
	return reply.RawText, nil
}

func completeAndDecode[T any](ctx context.Context, logCtx *slog.Logger, completer llm.Completer, req llm.Request) (T, error) {
	raw, err := complete(ctx, logCtx, completer, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return normalize.Decode[T](raw)
}

// logFailure logs err at error level, adding the cleaned reply when the
// reply could not be decoded.
func logFailure(logCtx *slog.Logger, msg string, err error, args ...any) {
	attrs := append([]any{"error", err}, args...)
	var mre *models.MalformedReplyError
	if errors.As(err, &mre) {
		attrs = append(attrs, "cleaned", mre.Cleaned)
	}
	logCtx.Error(msg, attrs...)
}
