package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Lllllllleong/examdocumentflow/internal/models"
	"github.com/Lllllllleong/examdocumentflow/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQuestionService(t *testing.T, evaluator AnswerEvaluator) *QuestionService {
	t.Helper()
	s, err := store.OpenBadgerStore(filepath.Join(t.TempDir(), "questions"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return NewQuestionService(s, evaluator)
}

var (
	mcqQuestion = models.Question{
		Question:      "What is the capital of Japan?",
		Type:          models.TypeMCQ,
		Options:       []string{"Tokyo", "Beijing", "Seoul"},
		CorrectAnswer: "Tokyo",
		Marks:         2,
		Hint:          "It's a city in Asia.",
	}
	blankQuestion = models.Question{
		Question:      "The chemical formula for water is ____.",
		Type:          models.TypeFillInTheBlank,
		CorrectAnswer: "H2O",
		Marks:         1,
	}
	descriptiveQuestion = models.Question{
		Question:      "What is the capital of Japan?",
		Type:          models.TypeDescriptive,
		CorrectAnswer: "The capital of Japan is Tokyo.",
		Marks:         3,
	}
)

func TestSaveQuestion(t *testing.T) {
	svc := newTestQuestionService(t, &fakeEvaluator{})
	ctx := context.Background()

	q := blankQuestion
	q.Marks = 0
	rec, err := svc.Save(ctx, q)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, 1, rec.Marks)

	bad := mcqQuestion
	bad.CorrectAnswer = "Osaka"
	_, err = svc.Save(ctx, bad)
	assert.ErrorIs(t, err, models.ErrInvalidQuestion)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestListRedactsAndLimits(t *testing.T) {
	svc := newTestQuestionService(t, &fakeEvaluator{})
	ctx := context.Background()

	for i := 0; i < QuizSize+2; i++ {
		q := mcqQuestion
		q.Question = fmt.Sprintf("Question %d", i)
		_, err := svc.Save(ctx, q)
		require.NoError(t, err)
	}

	quiz, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, quiz, QuizSize)
	for _, r := range quiz {
		assert.Empty(t, r.Hint)
		assert.Empty(t, r.CorrectAnswer)
		assert.Equal(t, mcqQuestion.Options, r.Options)
	}

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, QuizSize+2)
	for _, r := range all {
		assert.Equal(t, "Tokyo", r.CorrectAnswer)
	}
}

func TestListAllEmpty(t *testing.T) {
	svc := newTestQuestionService(t, &fakeEvaluator{})
	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestGrade(t *testing.T) {
	evaluator := &fakeEvaluator{verdict: models.Verdict{IsCorrect: true}}
	svc := newTestQuestionService(t, evaluator)
	ctx := context.Background()

	mcq, err := svc.Save(ctx, mcqQuestion)
	require.NoError(t, err)
	blank, err := svc.Save(ctx, blankQuestion)
	require.NoError(t, err)
	desc, err := svc.Save(ctx, descriptiveQuestion)
	require.NoError(t, err)

	tests := []struct {
		name   string
		id     string
		answer string
		want   models.Grade
	}{
		{"mcq correct", mcq.ID, "Tokyo", models.Grade{IsCorrect: true, Marks: 2}},
		{"mcq wrong", mcq.ID, "Seoul", models.Grade{IsCorrect: false, Marks: 0}},
		{"mcq is exact", mcq.ID, "tokyo", models.Grade{IsCorrect: false, Marks: 0}},
		{"blank correct", blank.ID, "H2O", models.Grade{IsCorrect: true, Marks: 1}},
		{"blank wrong", blank.ID, "CO2", models.Grade{IsCorrect: false, Marks: 0}},
		{"descriptive uses evaluator", desc.ID, "Tokyo.", models.Grade{IsCorrect: true, Marks: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Grade(ctx, tt.id, tt.answer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	require.Len(t, evaluator.calls, 1, "only descriptive questions reach the evaluator")
	assert.Equal(t, [3]string{"What is the capital of Japan?", "The capital of Japan is Tokyo.", "Tokyo."}, evaluator.calls[0])
}

func TestGradeErrors(t *testing.T) {
	cause := fmt.Errorf("%w: deadline", models.ErrUpstreamTimeout)
	svc := newTestQuestionService(t, &fakeEvaluator{err: cause})
	ctx := context.Background()

	_, err := svc.Grade(ctx, "missing", "Tokyo")
	assert.ErrorIs(t, err, models.ErrNotFound)

	desc, err := svc.Save(ctx, descriptiveQuestion)
	require.NoError(t, err)
	_, err = svc.Grade(ctx, desc.ID, "Osaka")
	assert.True(t, errors.Is(err, models.ErrUpstreamTimeout))
}
