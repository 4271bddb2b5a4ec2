package models

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure kinds surfaced by the extraction pipeline. Every stage wraps its
// underlying error with exactly one of these so the boundary layer can pick a
// status code without inspecting messages.
var (
	ErrDocumentDecode      = errors.New("document could not be decoded")
	ErrRecognition         = errors.New("text recognition failed")
	ErrUpstreamUnavailable = errors.New("completion service unavailable")
	ErrUpstreamTimeout     = errors.New("completion service timed out")
	ErrMalformedReply      = errors.New("completion reply is not valid structured data")

	ErrInvalidQuestion = errors.New("invalid question")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrNotFound        = errors.New("not found")
)

// MalformedReplyError carries the post-cleanup reply so it can be logged next
// to the decode failure.
type MalformedReplyError struct {
	Cleaned string
	Err     error
}

func (e *MalformedReplyError) Error() string {
	return fmt.Sprintf("%v: %v", ErrMalformedReply, e.Err)
}

func (e *MalformedReplyError) Unwrap() []error {
	return []error{ErrMalformedReply, e.Err}
}

// StatusCode maps an error kind to the HTTP status the handlers respond with.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrDocumentDecode), errors.Is(err, ErrInvalidQuestion), errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUpstreamTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrUpstreamUnavailable), errors.Is(err, ErrMalformedReply):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
