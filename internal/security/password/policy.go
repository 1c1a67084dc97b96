// Package password valida el password inicial antes de mandarlo al backend
// de auth. El hash lo hace el backend; acá solo se rechaza lo obvio.
package password

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrWeak se retorna (envuelto) cuando el password no cumple la política.
var ErrWeak = errors.New("password does not meet policy")

// Policy define requisitos mínimos. El zero value no exige nada.
type Policy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

// IsZero indica que la política no exige nada.
func (p Policy) IsZero() bool { return p == Policy{} }

// Validate retorna los motivos de rechazo (vacío si cumple).
func (p Policy) Validate(s string) []string {
	var reasons []string
	if p.MinLength > 0 && len([]rune(s)) < p.MinLength {
		reasons = append(reasons, fmt.Sprintf("at least %d characters", p.MinLength))
	}

	var classes struct{ upper, lower, digit, symbol bool }
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			classes.upper = true
		case unicode.IsLower(r):
			classes.lower = true
		case unicode.IsDigit(r):
			classes.digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			classes.symbol = true
		}
	}
	for _, req := range []struct {
		want, have bool
		reason     string
	}{
		{p.RequireUpper, classes.upper, "an uppercase letter"},
		{p.RequireLower, classes.lower, "a lowercase letter"},
		{p.RequireDigit, classes.digit, "a digit"},
		{p.RequireSymbol, classes.symbol, "a symbol"},
	} {
		if req.want && !req.have {
			reasons = append(reasons, req.reason)
		}
	}
	return reasons
}

// Checker combina política y blacklist.
type Checker struct {
	Policy    Policy
	Blacklist *Blacklist
}

// Check retorna un error que envuelve ErrWeak con los motivos legibles.
func (c Checker) Check(pw string) error {
	reasons := c.Policy.Validate(pw)
	if c.Blacklist.Contains(pw) {
		reasons = append(reasons, "not a commonly used password")
	}
	if len(reasons) == 0 {
		return nil
	}
	return fmt.Errorf("%w: must contain %s", ErrWeak, strings.Join(reasons, ", "))
}
