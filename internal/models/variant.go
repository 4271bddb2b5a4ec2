package models

// Variant is the closed set of question kinds. Only this package can add
// implementations.
type Variant interface {
	isVariant()
}

type MCQ struct {
	Options       []string
	CorrectAnswer string
}

type Descriptive struct {
	ReferenceAnswer string
}

type FillInTheBlank struct {
	Answer string
}

func (MCQ) isVariant()            {}
func (Descriptive) isVariant()    {}
func (FillInTheBlank) isVariant() {}

// VariantVisitor has one method per variant. A new variant adds a method here,
// which breaks every visitor until it handles the new case.
type VariantVisitor[T any] interface {
	VisitMCQ(MCQ) T
	VisitDescriptive(Descriptive) T
	VisitFillInTheBlank(FillInTheBlank) T
}

// Visit dispatches v to the matching visitor method.
func Visit[T any](v Variant, visitor VariantVisitor[T]) T {
	switch v := v.(type) {
	case MCQ:
		return visitor.VisitMCQ(v)
	case Descriptive:
		return visitor.VisitDescriptive(v)
	case FillInTheBlank:
		return visitor.VisitFillInTheBlank(v)
	default:
		// unreachable: Variant is sealed
		panic("models: unknown question variant")
	}
}
