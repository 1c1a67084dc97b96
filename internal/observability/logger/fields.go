package logger

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// ---- HTTP ----

func RequestID(v string) zap.Field       { return zap.String("request_id", v) }
func Method(v string) zap.Field          { return zap.String("method", v) }
func Path(v string) zap.Field            { return zap.String("path", v) }
func Status(v int) zap.Field             { return zap.Int("status", v) }
func Bytes(v int) zap.Field              { return zap.Int("bytes", v) }
func DurationMs(v int64) zap.Field       { return zap.Int64("duration_ms", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func ClientIP(v string) zap.Field        { return zap.String("client_ip", v) }

// ---- Negocio ----

// TenantID crea un campo para el ID del tenant.
func TenantID(v string) zap.Field { return zap.String("tenant_id", v) }

// UserID crea un campo para el ID del usuario (identity id).
func UserID(v string) zap.Field { return zap.String("user_id", v) }

// Email crea un campo para el email (usar con cuidado en prod).
func Email(v string) zap.Field { return zap.String("email", v) }

// Step crea un campo para el paso del workflow de provisioning.
func Step(v string) zap.Field { return zap.String("step", v) }

// Kind crea un campo para el tipo de error de provisioning.
func Kind(v string) zap.Field { return zap.String("kind", v) }

// Driver crea un campo para el driver de backend.
func Driver(v string) zap.Field { return zap.String("driver", v) }

// ---- Sistema ----

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Err(err error) zap.Field      { return zap.Error(err) }

// ---- Genéricos ----

func String(key, v string) zap.Field           { return zap.String(key, v) }
func Int(key string, v int) zap.Field          { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field        { return zap.Bool(key, v) }
func Strings(key string, v []string) zap.Field { return zap.Strings(key, v) }
func Any(key string, v any) zap.Field          { return zap.Any(key, v) }

// MaskedEmail loguea el email enmascarado: "a…@e….com".
func MaskedEmail(v string) zap.Field { return zap.String("email", maskEmail(v)) }

func maskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	user, dom, ok := strings.Cut(s, "@")
	if !ok || user == "" {
		if len(s) <= 3 {
			return strings.Repeat("*", min(len(s), 3))
		}
		return s[:1] + "…" + s[len(s)-1:]
	}
	if len(user) > 1 {
		user = user[:1] + "…"
	}
	host, rest, _ := strings.Cut(dom, ".")
	if len(host) > 1 {
		host = host[:1] + "…"
	}
	if rest != "" {
		return user + "@" + host + "." + rest
	}
	return user + "@" + host
}
