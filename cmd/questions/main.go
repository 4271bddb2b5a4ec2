package main

import (
	"log/slog"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/examdocumentflow/internal/handlers"
)

func init() {
	slog.SetDefault(handlers.NewLogger(slog.LevelInfo))

	// Routes save_question, get_questions, get_all_questions and evaluate_question.
	functions.HTTP("HandleQuestions", handlers.HandleQuestions)
}

// main is required by the Go Functions Framework.
func main() {}
