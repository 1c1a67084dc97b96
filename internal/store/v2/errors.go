package store

import "errors"

// Errores comunes del store.
var (
	// ErrAdapterNotRegistered indica que el driver no fue importado/registrado.
	ErrAdapterNotRegistered = errors.New("store: adapter not registered")

	// ErrIncompleteAdapter indica que la conexión no expone un repo obligatorio.
	ErrIncompleteAdapter = errors.New("store: adapter is missing a required repository")
)

// IsAdapterNotRegistered helper para verificar si el driver no existe.
func IsAdapterNotRegistered(err error) bool {
	return errors.Is(err, ErrAdapterNotRegistered)
}
