package helpers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/dropDatabas3/tenantprov/internal/http/v2/errors"
)

// DefaultMaxBody es el límite de body cuando no se configura otro.
const DefaultMaxBody int64 = 1 << 20

// ReadJSON decodifica JSON de forma tolerante (no falla por campos desconocidos).
// Valida Content-Type y limita el body a maxBytes (<=0 usa DefaultMaxBody).
// Los errores retornados ya son *errors.AppError.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any, maxBytes int64) error {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		return errors.ErrUnsupportedMediaType
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBody
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			return errors.ErrBodyTooLarge
		case stderrors.Is(err, io.EOF):
			return errors.ErrInvalidJSON.WithDetail("empty body")
		default:
			return errors.ErrInvalidJSON.WithCause(err)
		}
	}
	return nil
}

// WriteJSON escribe una respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
