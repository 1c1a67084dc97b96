package helpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tenantprov/internal/http/v2/errors"
)

type payload struct {
	Email string `json:"email"`
}

func jsonReq(body, ct string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	return req
}

func TestReadJSON(t *testing.T) {
	var p payload
	err := ReadJSON(httptest.NewRecorder(), jsonReq(`{"email":"a@b.co","extra":1}`, "application/json; charset=utf-8"), &p, 0)
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", p.Email)
}

func TestReadJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		req  *http.Request
		max  int64
		code string
	}{
		{"wrong content type", jsonReq(`{}`, "text/plain"), 0, "UNSUPPORTED_MEDIA_TYPE"},
		{"empty body", jsonReq(``, "application/json"), 0, "INVALID_JSON"},
		{"malformed", jsonReq(`{"email":`, "application/json"), 0, "INVALID_JSON"},
		{"too large", jsonReq(`{"email":"`+strings.Repeat("a", 64)+`"}`, "application/json"), 16, "BODY_TOO_LARGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			err := ReadJSON(httptest.NewRecorder(), tt.req, &p, tt.max)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.FromError(err).Code)
		})
	}
}
