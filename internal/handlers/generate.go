package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/Lllllllleong/examdocumentflow/internal/models"
	"github.com/Lllllllleong/examdocumentflow/internal/services"
)

// QuestionGenerator writes new questions from free text.
type QuestionGenerator interface {
	Generate(ctx context.Context, text string) (*models.ExtractionResult, error)
}

// GenerateQuestionsHandler serves POST /generate_questions.
type GenerateQuestionsHandler struct {
	generator QuestionGenerator
}

func NewGenerateQuestionsHandler(generator QuestionGenerator) *GenerateQuestionsHandler {
	return &GenerateQuestionsHandler{generator: generator}
}

func (h *GenerateQuestionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeResponse(w, http.StatusMethodNotAllowed, nil, "Method not allowed")
		return
	}
	var req models.GenerateQuestionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeResponse(w, http.StatusBadRequest, nil, "Message is required")
		return
	}

	result, err := h.generator.Generate(r.Context(), req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, result, "Questions generated successfully")
}

var (
	generateOnce    sync.Once
	generateHandler *GenerateQuestionsHandler
	generateErr     error
)

// HandleGenerateQuestions is the generate_questions HTTP function.
func HandleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	generateOnce.Do(func() {
		cfg, err := loadConfig()
		if err != nil {
			generateErr = err
			return
		}
		client, err := sharedCompleter(context.Background(), cfg)
		if err != nil {
			generateErr = err
			return
		}
		generateHandler = NewGenerateQuestionsHandler(services.NewGenerator(client))
	})
	if generateErr != nil {
		writeInitError(w, "HandleGenerateQuestions", generateErr)
		return
	}
	generateHandler.ServeHTTP(w, r)
}
