package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/Lllllllleong/examdocumentflow/internal/models"
	"github.com/Lllllllleong/examdocumentflow/internal/services"
	"github.com/Lllllllleong/examdocumentflow/internal/store"
)

// QuestionAPI is the question bank behind the questions function.
type QuestionAPI interface {
	Save(ctx context.Context, q models.Question) (models.QuestionRecord, error)
	List(ctx context.Context) ([]models.QuestionRecord, error)
	ListAll(ctx context.Context) ([]models.QuestionRecord, error)
	Grade(ctx context.Context, id, answer string) (models.Grade, error)
}

type questionsHandler struct {
	api QuestionAPI
}

// NewQuestionsHandler routes the question bank endpoints.
func NewQuestionsHandler(api QuestionAPI) http.Handler {
	h := &questionsHandler{api: api}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /save_question", h.save)
	mux.HandleFunc("GET /get_questions", h.list)
	mux.HandleFunc("GET /get_all_questions", h.listAll)
	mux.HandleFunc("POST /evaluate_question", h.evaluate)
	return mux
}

func (h *questionsHandler) save(w http.ResponseWriter, r *http.Request) {
	var req models.SaveQuestionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.QuestionData == nil {
		writeResponse(w, http.StatusBadRequest, nil, "Question is required")
		return
	}
	rec, err := h.api.Save(r.Context(), *req.QuestionData)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, rec, "Question saved successfully")
}

func (h *questionsHandler) list(w http.ResponseWriter, r *http.Request) {
	records, err := h.api.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, records, "Questions fetched successfully")
}

func (h *questionsHandler) listAll(w http.ResponseWriter, r *http.Request) {
	records, err := h.api.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, records, "Questions fetched successfully")
}

func (h *questionsHandler) evaluate(w http.ResponseWriter, r *http.Request) {
	var req models.EvaluateQuestionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.QuestionID == "" || req.Answer == "" {
		writeResponse(w, http.StatusBadRequest, nil, "Question ID and answer are required")
		return
	}
	grade, err := h.api.Grade(r.Context(), req.QuestionID, req.Answer)
	if err != nil {
		if models.StatusCode(err) == http.StatusNotFound {
			writeResponse(w, http.StatusNotFound, nil, "Question not found")
			return
		}
		writeError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, grade, "Question evaluated successfully")
}

var (
	questionsOnce    sync.Once
	questionsRouter  http.Handler
	questionsInitErr error
)

// HandleQuestions is the questions HTTP function.
func HandleQuestions(w http.ResponseWriter, r *http.Request) {
	questionsOnce.Do(func() {
		questionsRouter, questionsInitErr = newQuestionsHandlerFromEnv(context.Background())
	})
	if questionsInitErr != nil {
		writeInitError(w, "HandleQuestions", questionsInitErr)
		return
	}
	questionsRouter.ServeHTTP(w, r)
}

func newQuestionsHandlerFromEnv(ctx context.Context) (http.Handler, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s, err := store.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client, err := sharedCompleter(ctx, cfg)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	svc := services.NewQuestionService(s, services.NewEvaluator(client))
	return NewQuestionsHandler(svc), nil
}
