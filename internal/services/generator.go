package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/examdocumentflow/internal/llm"
	"github.com/Lllllllleong/examdocumentflow/internal/models"
	"github.com/Lllllllleong/examdocumentflow/internal/prompts"
	"github.com/google/uuid"
)

// Generator parses questions out of free text and asks the model for related
// practice questions.
type Generator struct {
	completer llm.Completer
}

func NewGenerator(completer llm.Completer) *Generator {
	return &Generator{completer: completer}
}

func (g *Generator) Generate(ctx context.Context, text string) (*models.ExtractionResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: message is required", models.ErrInvalidRequest)
	}
	logCtx := slog.With("requestId", uuid.NewString(), "component", "generator")
	logCtx.Info("Generating questions.", "chars", len(text))

	result, err := completeAndDecode[models.ExtractionResult](ctx, logCtx, g.completer, llm.Request{
		SystemInstruction: prompts.GenerationSystemPrompt,
		UserMessages:      []string{text},
	})
	if err != nil {
		logFailure(logCtx, "Question generation failed.", err)
		return nil, err
	}
	result.ApplyDefaults()

	generated := 0
	for _, group := range result.GeneratedQuestions {
		generated += len(group.Generated)
	}
	logCtx.Info("Questions generated.", "parsed", len(result.Questions), "generated", generated)
	return &result, nil
}
