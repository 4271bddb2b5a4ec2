package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/examdocumentflow/internal/models"
	"github.com/Lllllllleong/examdocumentflow/internal/store"
)

// QuizSize is how many questions the quiz view returns.
const QuizSize = 10

// AnswerEvaluator judges free-text answers.
type AnswerEvaluator interface {
	Evaluate(ctx context.Context, question, reference, candidate string) (models.Verdict, error)
}

// QuestionService saves questions, serves them for quizzes and grades answers.
type QuestionService struct {
	store     store.QuestionStore
	evaluator AnswerEvaluator
}

func NewQuestionService(s store.QuestionStore, evaluator AnswerEvaluator) *QuestionService {
	return &QuestionService{store: s, evaluator: evaluator}
}

// Save validates q and persists it.
func (s *QuestionService) Save(ctx context.Context, q models.Question) (models.QuestionRecord, error) {
	if q.Marks <= 0 {
		q.Marks = models.DefaultMarks
	}
	if err := q.Validate(); err != nil {
		return models.QuestionRecord{}, err
	}
	rec, err := s.store.Create(ctx, q)
	if err != nil {
		return models.QuestionRecord{}, fmt.Errorf("failed to save question: %w", err)
	}
	slog.Info("Question saved.", "questionId", rec.ID, "type", rec.Type)
	return rec, nil
}

// List returns up to QuizSize questions without hints or answers.
func (s *QuestionService) List(ctx context.Context) ([]models.QuestionRecord, error) {
	records, err := s.store.Find(ctx, store.FindOptions{Limit: QuizSize})
	if err != nil {
		return nil, err
	}
	out := make([]models.QuestionRecord, len(records))
	for i, r := range records {
		out[i] = r.Redacted()
	}
	return out, nil
}

// ListAll returns every stored question in full.
func (s *QuestionService) ListAll(ctx context.Context) ([]models.QuestionRecord, error) {
	records, err := s.store.Find(ctx, store.FindOptions{})
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.QuestionRecord{}
	}
	return records, nil
}

// Grade checks answer against the stored question. Options and blanks are
// compared exactly; descriptive answers go to the evaluator. A correct
// answer earns the question's marks, anything else earns zero.
func (s *QuestionService) Grade(ctx context.Context, id, answer string) (models.Grade, error) {
	rec, err := s.store.FindByID(ctx, id)
	if err != nil {
		return models.Grade{}, err
	}
	v, err := rec.Variant()
	if err != nil {
		return models.Grade{}, err
	}
	outcome := models.Visit[gradeOutcome](v, answerGrader{
		ctx:       ctx,
		question:  rec.Question.Question,
		answer:    answer,
		evaluator: s.evaluator,
	})
	if outcome.err != nil {
		return models.Grade{}, outcome.err
	}

	grade := models.Grade{IsCorrect: outcome.correct}
	if outcome.correct {
		grade.Marks = rec.Marks
	}
	slog.Info("Answer graded.", "questionId", id, "type", rec.Type, "isCorrect", grade.IsCorrect)
	return grade, nil
}

type gradeOutcome struct {
	correct bool
	err     error
}

type answerGrader struct {
	ctx       context.Context
	question  string
	answer    string
	evaluator AnswerEvaluator
}

func (g answerGrader) VisitMCQ(m models.MCQ) gradeOutcome {
	return gradeOutcome{correct: g.answer == m.CorrectAnswer}
}

func (g answerGrader) VisitFillInTheBlank(f models.FillInTheBlank) gradeOutcome {
	return gradeOutcome{correct: g.answer == f.Answer}
}

func (g answerGrader) VisitDescriptive(d models.Descriptive) gradeOutcome {
	verdict, err := g.evaluator.Evaluate(g.ctx, g.question, d.ReferenceAnswer, g.answer)
	if err != nil {
		return gradeOutcome{err: err}
	}
	return gradeOutcome{correct: verdict.IsCorrect}
}
