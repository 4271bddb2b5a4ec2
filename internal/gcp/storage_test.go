package gcp

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("EXAM_FLOW_TEST_VAR", "set")
	assert.Equal(t, "set", GetEnv("EXAM_FLOW_TEST_VAR", "fallback"))
	assert.Equal(t, "fallback", GetEnv("EXAM_FLOW_TEST_VAR_UNSET", "fallback"))

	t.Setenv("EXAM_FLOW_TEST_EMPTY", "")
	assert.Equal(t, "", GetEnv("EXAM_FLOW_TEST_EMPTY", "fallback"))
}

func TestIsPreconditionFailed(t *testing.T) {
	wrapped := fmt.Errorf("close: %w", &googleapi.Error{Code: http.StatusPreconditionFailed})
	assert.True(t, isPreconditionFailed(wrapped))
	assert.False(t, isPreconditionFailed(&googleapi.Error{Code: http.StatusForbidden}))
	assert.False(t, isPreconditionFailed(errors.New("network down")))
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "application/json", contentTypeFor("abc/questions.json"))
	assert.Equal(t, "text/plain; charset=utf-8", contentTypeFor("abc/page.txt"))
}
