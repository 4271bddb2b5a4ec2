package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Lllllllleong/examdocumentflow/internal/llm"
	"github.com/Lllllllleong/examdocumentflow/internal/models"
	"github.com/Lllllllleong/examdocumentflow/internal/normalize"
	"github.com/Lllllllleong/examdocumentflow/internal/prompts"
)

// Evaluator asks the completion model whether a free-text answer means the
// same as the reference answer.
type Evaluator struct {
	completer llm.Completer
}

func NewEvaluator(completer llm.Completer) *Evaluator {
	return &Evaluator{completer: completer}
}

// verdictReply keeps isCorrect optional so a reply without it is detected.
type verdictReply struct {
	IsCorrect *bool `json:"isCorrect"`
}

// Evaluate grades candidate against reference for question.
func (e *Evaluator) Evaluate(ctx context.Context, question, reference, candidate string) (models.Verdict, error) {
	logCtx := slog.With("component", "evaluator")
	fail := func(err error) (models.Verdict, error) {
		logFailure(logCtx, "Evaluation failed.", err)
		return models.Verdict{}, err
	}

	req := llm.Request{
		SystemInstruction: prompts.EvaluationSystemPrompt,
		UserMessages: []string{
			"question: " + question,
			"correct_answer: " + reference,
			"student_answer: " + candidate,
		},
	}
	raw, err := complete(ctx, logCtx, e.completer, req)
	if err != nil {
		return fail(err)
	}
	reply, err := normalize.Decode[verdictReply](raw)
	if err != nil {
		return fail(err)
	}
	if reply.IsCorrect == nil {
		return fail(&models.MalformedReplyError{Cleaned: normalize.Clean(raw), Err: errors.New(`reply has no boolean "isCorrect" field`)})
	}
	return models.Verdict{IsCorrect: *reply.IsCorrect}, nil
}
