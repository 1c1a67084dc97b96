package middlewares

import (
	"context"
	"strings"
)

type ctxKey string

const (
	ctxClaimsKey    ctxKey = "claims"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithClaims inyecta claims en el contexto
func WithClaims(ctx context.Context, claims map[string]any) context.Context {
	return context.WithValue(ctx, ctxClaimsKey, claims)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetClaims obtiene las claims JWT del contexto.
// Retorna nil si el middleware de auth no se aplicó.
func GetClaims(ctx context.Context) map[string]any {
	if m, ok := ctx.Value(ctxClaimsKey).(map[string]any); ok {
		return m
	}
	return nil
}

// GetRequestID obtiene el request ID del contexto.
func GetRequestID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return s
	}
	return ""
}

// =================================================================================
// CLAIM HELPERS
// =================================================================================

func ClaimString(claims map[string]any, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}

func ClaimBool(claims map[string]any, key string) bool {
	b, _ := claims[key].(bool)
	return b
}

// ClaimStringSlice acepta []string, []any o un string separado por espacios
// (formato de "scope").
func ClaimStringSlice(claims map[string]any, key string) []string {
	switch v := claims[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return strings.Fields(v)
	}
	return nil
}

func ClaimMap(claims map[string]any, key string) map[string]any {
	if m, ok := claims[key].(map[string]any); ok {
		return m
	}
	return nil
}
