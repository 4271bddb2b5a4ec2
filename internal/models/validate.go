package models

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func questionValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the structural invariants of a question: required fields by
// struct tag, then the rules that depend on the question variant.
func (q Question) Validate() error {
	if err := questionValidator().Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: field %s failed %q", ErrInvalidQuestion, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
	}
	v, err := q.Variant()
	if err != nil {
		return err
	}
	return Visit[error](v, variantRules{})
}

type variantRules struct{}

func (variantRules) VisitMCQ(m MCQ) error {
	if len(m.Options) == 0 {
		return fmt.Errorf("%w: mcq question has no options", ErrInvalidQuestion)
	}
	if !slices.Contains(m.Options, m.CorrectAnswer) {
		return fmt.Errorf("%w: correct answer %q is not one of the options", ErrInvalidQuestion, m.CorrectAnswer)
	}
	return nil
}

func (variantRules) VisitDescriptive(Descriptive) error { return nil }

func (variantRules) VisitFillInTheBlank(FillInTheBlank) error { return nil }

// ValidateQuestions validates every question and reports the first failure
// with its position.
func ValidateQuestions(questions []Question) error {
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}
