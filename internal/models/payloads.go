package models

// These structs define the JSON bodies exchanged with the HTTP functions.

// APIResponse is the envelope every HTTP function responds with.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// NewAPIResponse builds an envelope; success follows the status code.
func NewAPIResponse(statusCode int, data any, message string) APIResponse {
	return APIResponse{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    statusCode < 400,
	}
}

// ParsePDFResponse is the data of a successful parse_pdf call.
type ParsePDFResponse struct {
	JSONResp *ExtractionResult `json:"jsonResp"`
}

// GenerateQuestionsRequest is the input for the question generator.
type GenerateQuestionsRequest struct {
	Message string `json:"message"`
}

// SaveQuestionRequest is the input for save_question.
type SaveQuestionRequest struct {
	QuestionData *Question `json:"questionData"`
}

// EvaluateQuestionRequest is the input for evaluate_question.
type EvaluateQuestionRequest struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}
