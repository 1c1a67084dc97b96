package repository

import "errors"

var (
	// ErrNotFound indica que el recurso solicitado no existe.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un conflicto (ej: email duplicado, constraint violation).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indica que el backend rechazó los datos (ej: password débil).
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable indica que el backend no respondió (red, timeout, 5xx).
	ErrUnavailable = errors.New("backend unavailable")

	// ErrBackend indica cualquier otro rechazo del backend.
	ErrBackend = errors.New("backend error")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// BackendError conserva el detalle legible que devolvió el backend.
// Detail es lo que termina en el mensaje de error al caller.
type BackendError struct {
	Status int
	Code   string
	Detail string
	Kind   error // uno de los sentinels de este paquete
}

func (e *BackendError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return e.Detail
}

func (e *BackendError) Unwrap() error { return e.Kind }
