package repository

import (
	"context"
	"time"
)

// Identity es el registro de autenticación creado por el backend.
// ID es el userId generado por el servicio.
type Identity struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	EmailConfirmed bool           `json:"email_confirmed"`
	Metadata       map[string]any `json:"user_metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// CreateIdentityInput contiene los datos para crear una identidad.
type CreateIdentityInput struct {
	Email    string
	Password string // Texto plano; el backend aplica la política y el hash
	// EmailConfirmed pide que el email quede pre-confirmado.
	EmailConfirmed bool
	Metadata       map[string]any
}

// IdentityRepository es la capacidad administrativa de usuarios del auth backend.
type IdentityRepository interface {
	// Create crea una identidad. Retorna ErrConflict si el email ya existe
	// y ErrInvalidInput si el backend rechaza el password.
	Create(ctx context.Context, input CreateIdentityInput) (*Identity, error)

	// Delete elimina una identidad por ID. Usado solo para compensación.
	// Retorna ErrNotFound si no existe.
	Delete(ctx context.Context, userID string) error
}
