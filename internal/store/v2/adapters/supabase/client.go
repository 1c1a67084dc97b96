package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
)

const maxErrorBody = 64 << 10

type client struct {
	baseURL string
	key     string
	http    *http.Client
}

// do ejecuta un request autenticado con la service key. Si out != nil
// decodifica la respuesta JSON.
func (c *client) do(ctx context.Context, op, method, path string, headers http.Header, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("supabase: %s: encode: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("supabase: %s: %w", op, err)
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("supabase: %s: %w: %w", op, repository.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("supabase: %s: %w", op, decodeError(resp.StatusCode, raw))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("supabase: %s: decode: %w: %w", op, repository.ErrUnavailable, err)
	}
	return nil
}

// apiError cubre los formatos de GoTrue (msg, error_code) y PostgREST
// (message, code, details).
type apiError struct {
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	ErrorCode        string          `json:"error_code"`
	Code             json.RawMessage `json:"code"`
	Details          string          `json:"details"`
}

func decodeError(status int, raw []byte) *repository.BackendError {
	var ae apiError
	_ = json.Unmarshal(raw, &ae)

	be := &repository.BackendError{Status: status}
	be.Detail = firstNonEmpty(ae.Msg, ae.Message, ae.ErrorDescription, ae.Error)
	if be.Detail == "" {
		be.Detail = strings.TrimSpace(string(raw))
	}
	if be.Detail == "" {
		be.Detail = fmt.Sprintf("backend returned status %d", status)
	}

	be.Code = ae.ErrorCode
	if be.Code == "" && len(ae.Code) > 0 {
		var s string
		if json.Unmarshal(ae.Code, &s) == nil {
			be.Code = s
		}
	}

	be.Kind = classify(status, be.Code, be.Detail)
	return be
}

func classify(status int, code, detail string) error {
	switch code {
	case "23505", "email_exists", "user_already_exists", "phone_exists":
		return repository.ErrConflict
	case "23503":
		return repository.ErrNotFound
	case "weak_password", "validation_failed", "email_address_invalid", "23502", "23514":
		return repository.ErrInvalidInput
	}
	if strings.Contains(strings.ToLower(detail), "already been registered") {
		return repository.ErrConflict
	}

	switch {
	case status == http.StatusNotFound:
		return repository.ErrNotFound
	case status == http.StatusConflict:
		return repository.ErrConflict
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return repository.ErrInvalidInput
	case status == http.StatusBadGateway, status == http.StatusServiceUnavailable, status == http.StatusGatewayTimeout:
		return repository.ErrUnavailable
	}
	return repository.ErrBackend
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
