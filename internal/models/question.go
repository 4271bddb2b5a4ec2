package models

import (
	"fmt"
	"time"
)

// QuestionType is the wire tag that selects a question variant.
type QuestionType string

const (
	TypeMCQ            QuestionType = "mcq"
	TypeDescriptive    QuestionType = "descriptive"
	TypeFillInTheBlank QuestionType = "fill_in_the_blank"
)

// DefaultMarks applies when the model omits marks for a question.
const DefaultMarks = 1

// Question is one exam question as extracted from a document or stored by the
// question service. The JSON names follow the model's output format.
type Question struct {
	Question      string       `json:"question" firestore:"question" validate:"required"`
	Type          QuestionType `json:"type" firestore:"type" validate:"required,oneof=mcq descriptive fill_in_the_blank"`
	Options       []string     `json:"options,omitempty" firestore:"options,omitempty" validate:"omitempty,dive,required"`
	CorrectAnswer string       `json:"correct_answer,omitempty" firestore:"correct_answer" validate:"required"`
	Marks         int          `json:"marks" firestore:"marks" validate:"min=1"`
	Hint          string       `json:"hint,omitempty" firestore:"hint,omitempty"`
	Note          string       `json:"note,omitempty" firestore:"note,omitempty"`
}

// GeneratedGroup holds questions the model derived from one source question.
type GeneratedGroup struct {
	OriginalQuestion string     `json:"original_question"`
	Generated        []Question `json:"generated_questions"`
}

// ExtractionResult is the decoded reply of an extraction or generation call.
type ExtractionResult struct {
	Questions          []Question       `json:"questions"`
	GeneratedQuestions []GeneratedGroup `json:"generated_questions,omitempty"`
}

// ApplyDefaults fills marks the model left out, including on generated questions.
func (r *ExtractionResult) ApplyDefaults() {
	for i := range r.Questions {
		r.Questions[i].applyDefaults()
	}
	for g := range r.GeneratedQuestions {
		for i := range r.GeneratedQuestions[g].Generated {
			r.GeneratedQuestions[g].Generated[i].applyDefaults()
		}
	}
}

func (q *Question) applyDefaults() {
	if q.Marks <= 0 {
		q.Marks = DefaultMarks
	}
}

// Verdict is the decoded reply of an answer evaluation.
type Verdict struct {
	IsCorrect bool `json:"isCorrect"`
}

// Grade is what a student receives for one answered question.
type Grade struct {
	IsCorrect bool `json:"isCorrect"`
	Marks     int  `json:"marks"`
}

// QuestionRecord is a persisted question.
type QuestionRecord struct {
	ID string `json:"_id" firestore:"-" badgerhold:"key"`
	Question
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// Redacted returns a copy without the fields a quiz taker must not see.
func (r QuestionRecord) Redacted() QuestionRecord {
	r.Hint = ""
	r.CorrectAnswer = ""
	return r
}

// Variant returns the tagged variant for q. Unknown tags are an error rather
// than a silent fallback.
func (q Question) Variant() (Variant, error) {
	switch q.Type {
	case TypeMCQ:
		return MCQ{Options: q.Options, CorrectAnswer: q.CorrectAnswer}, nil
	case TypeDescriptive:
		return Descriptive{ReferenceAnswer: q.CorrectAnswer}, nil
	case TypeFillInTheBlank:
		return FillInTheBlank{Answer: q.CorrectAnswer}, nil
	default:
		return nil, fmt.Errorf("%w: unknown question type %q", ErrInvalidQuestion, q.Type)
	}
}
