package middlewares

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/tenantprov/internal/http/v2/errors"
	"github.com/dropDatabas3/tenantprov/internal/observability/logger"
)

// AdminConfig configura la autenticación de los endpoints admin.
type AdminConfig struct {
	// Enforce en false (solo dev) deja pasar todo sin token.
	Enforce bool
	// Secret HS256 con el que se firman los tokens admin.
	Secret []byte
	// Issuer esperado; vacío no se valida.
	Issuer string
	// Subs son user IDs admin aunque el token no tenga rol.
	Subs []string
}

// RequireAdmin valida el Bearer token y exige privilegios de admin.
// Reglas (en este orden):
//  1. Si Enforce es false: permitir.
//  2. Token ausente o inválido: 401.
//  3. role == "admin", is_admin == true, custom.is_admin o "admin" en
//     custom.roles: permitir.
//  4. sub en Subs: permitir. Si no, 403.
func RequireAdmin(cfg AdminConfig) Middleware {
	adminSubs := make(map[string]struct{}, len(cfg.Subs))
	for _, s := range cfg.Subs {
		if s = strings.TrimSpace(s); s != "" {
			adminSubs[s] = struct{}{}
		}
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	keyFunc := func(*jwt.Token) (any, error) { return cfg.Secret, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enforce {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := bearerToken(r)
			if !ok {
				errors.WriteError(w, errors.ErrUnauthorized.WithHeader("WWW-Authenticate", `Bearer`))
				return
			}

			claims := jwt.MapClaims{}
			if _, err := parser.ParseWithClaims(raw, claims, keyFunc); err != nil {
				logger.From(r.Context()).Debug("admin token rejected", logger.Err(err))
				errors.WriteError(w, errors.ErrTokenInvalid.WithHeader("WWW-Authenticate", `Bearer error="invalid_token"`))
				return
			}

			cl := map[string]any(claims)
			if !isAdmin(cl, adminSubs) {
				errors.WriteError(w, errors.ErrForbidden)
				return
			}

			ctx := WithClaims(r.Context(), cl)
			if sub := ClaimString(cl, "sub"); sub != "" {
				ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.String("admin_sub", sub)))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func isAdmin(cl map[string]any, subs map[string]struct{}) bool {
	if strings.EqualFold(ClaimString(cl, "role"), "admin") || ClaimBool(cl, "is_admin") {
		return true
	}
	if cust := ClaimMap(cl, "custom"); cust != nil {
		if ClaimBool(cust, "is_admin") {
			return true
		}
		for _, role := range ClaimStringSlice(cust, "roles") {
			if strings.EqualFold(role, "admin") {
				return true
			}
		}
	}
	if sub := ClaimString(cl, "sub"); sub != "" {
		_, ok := subs[sub]
		return ok
	}
	return false
}
