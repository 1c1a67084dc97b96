package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError define la estructura estándar para errores HTTP v2.
type AppError struct {
	Code       string
	Message    string
	Detail     string
	Step       string // paso del provisioning, si aplica
	HTTPStatus int
	Err        error // causa, solo para logs
	Header     http.Header
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// New crea un nuevo AppError.
func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// FromError convierte cualquier error en AppError. Si no hay uno en la
// cadena, retorna un 500 genérico conservando la causa.
func FromError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// WithDetail retorna una COPIA con detalle (no muta los errores base).
func (e *AppError) WithDetail(detail string) *AppError {
	c := *e
	c.Detail = detail
	return &c
}

// WithCode retorna una COPIA con otro código.
func (e *AppError) WithCode(code string) *AppError {
	c := *e
	c.Code = code
	return &c
}

// WithMessage retorna una COPIA con otro mensaje.
func (e *AppError) WithMessage(msg string) *AppError {
	c := *e
	c.Message = msg
	return &c
}

// WithCause retorna una COPIA con la causa.
func (e *AppError) WithCause(err error) *AppError {
	c := *e
	c.Err = err
	return &c
}

// WithStep retorna una COPIA con el paso.
func (e *AppError) WithStep(step string) *AppError {
	c := *e
	c.Step = step
	return &c
}

// WithHeader retorna una COPIA que además setea un header de respuesta.
func (e *AppError) WithHeader(key, value string) *AppError {
	c := *e
	c.Header = e.Header.Clone()
	if c.Header == nil {
		c.Header = http.Header{}
	}
	c.Header.Set(key, value)
	return &c
}

// =================================================================================
// ERRORES PREDEFINIDOS
// =================================================================================

// 4xx

var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "The request is malformed or missing parameters.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "The request body is not valid JSON.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrBodyTooLarge = &AppError{
		Code:       "BODY_TOO_LARGE",
		Message:    "The request body exceeds the maximum allowed size.",
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}

	ErrUnsupportedMediaType = &AppError{
		Code:       "UNSUPPORTED_MEDIA_TYPE",
		Message:    "Content-Type must be application/json.",
		HTTPStatus: http.StatusUnsupportedMediaType,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication required.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenInvalid = &AppError{
		Code:       "TOKEN_INVALID",
		Message:    "The access token is invalid or expired.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "Administrative privileges are required.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "The requested resource does not exist.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Method not allowed.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	ErrConflict = &AppError{
		Code:       "CONFLICT",
		Message:    "The resource already exists.",
		HTTPStatus: http.StatusConflict,
	}

	ErrUnprocessable = &AppError{
		Code:       "UNPROCESSABLE_ENTITY",
		Message:    "The backend rejected the request.",
		HTTPStatus: http.StatusUnprocessableEntity,
	}

	ErrTooManyRequests = &AppError{
		Code:       "RATE_LIMITED",
		Message:    "Too many requests, try again later.",
		HTTPStatus: http.StatusTooManyRequests,
	}
)

// 5xx

var (
	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "Internal server error.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrBadGateway = &AppError{
		Code:       "BAD_GATEWAY",
		Message:    "The backend service failed.",
		HTTPStatus: http.StatusBadGateway,
	}
)
