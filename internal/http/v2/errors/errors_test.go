package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrMethodNotAllowed.WithHeader("Allow", "POST").WithStep("method"))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST", rec.Header().Get("Allow"))
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "METHOD_NOT_ALLOWED", body["code"])
	assert.Equal(t, "method", body["step"])
	assert.NotContains(t, body, "detail")
}

func TestWriteError_GenericErrorIsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, stderrors.New("db password is hunter2"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestFromError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("controller: %w", ErrConflict.WithDetail("email"))
	got := FromError(wrapped)
	assert.Equal(t, "CONFLICT", got.Code)
	assert.Equal(t, "email", got.Detail)
}

func TestWithCopiesDoNotMutateBase(t *testing.T) {
	_ = ErrBadRequest.WithDetail("x").WithHeader("X-A", "1").WithCode("OTHER")
	assert.Equal(t, "BAD_REQUEST", ErrBadRequest.Code)
	assert.Empty(t, ErrBadRequest.Detail)
	assert.Nil(t, ErrBadRequest.Header)
}
