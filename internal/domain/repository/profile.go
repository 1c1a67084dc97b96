package repository

import "context"

// Profile es el registro de aplicación 1:1 con una Identity.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ProfileRepository opera sobre la tabla de perfiles.
type ProfileRepository interface {
	// Insert crea el perfil. Retorna ErrConflict si ya existe.
	Insert(ctx context.Context, p Profile) error

	// Delete elimina el perfil por ID. Usado solo para compensación.
	Delete(ctx context.Context, id string) error
}
