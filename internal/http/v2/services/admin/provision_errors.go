package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
)

// Kind identifica el tipo de fallo del provisioning.
type Kind string

const (
	KindInvalidMethod            Kind = "INVALID_METHOD"
	KindInvalidRequest           Kind = "INVALID_REQUEST"
	KindTenantNotFound           Kind = "TENANT_NOT_FOUND"
	KindIdentityCreationFailed   Kind = "IDENTITY_CREATION_FAILED"
	KindProfileCreationFailed    Kind = "PROFILE_CREATION_FAILED"
	KindMembershipCreationFailed Kind = "MEMBERSHIP_CREATION_FAILED"
	KindUnexpectedFailure        Kind = "UNEXPECTED_FAILURE"
)

// Step es el paso del workflow donde se originó el fallo.
type Step string

const (
	StepMethod     Step = "method"
	StepValidate   Step = "validate"
	StepTenant     Step = "tenant"
	StepIdentity   Step = "identity"
	StepProfile    Step = "profile"
	StepMembership Step = "membership"
	StepUnknown    Step = "unknown"
)

// Registros que pueden quedar huérfanos tras un fallo parcial.
const (
	OrphanIdentity = "identity"
	OrphanProfile  = "profile"
)

// ProvisionError es el resultado de fallo del provisioning.
//
// Kind es distinguible por máquina; Message es legible y conserva el
// detalle del backend. Orphans lista lo que quedó creado en el backend.
type ProvisionError struct {
	Kind    Kind
	Step    Step
	Message string
	Err     error

	Orphans         []string
	Compensated     bool
	CompensationErr error
}

func (e *ProvisionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return strings.ToLower(strings.ReplaceAll(string(e.Kind), "_", " "))
}

func (e *ProvisionError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrProfileCreationFailed) comparando solo Kind.
func (e *ProvisionError) Is(target error) bool {
	t, ok := target.(*ProvisionError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels para errors.Is.
var (
	ErrInvalidMethod            = &ProvisionError{Kind: KindInvalidMethod}
	ErrInvalidRequest           = &ProvisionError{Kind: KindInvalidRequest}
	ErrTenantNotFound           = &ProvisionError{Kind: KindTenantNotFound}
	ErrIdentityCreationFailed   = &ProvisionError{Kind: KindIdentityCreationFailed}
	ErrProfileCreationFailed    = &ProvisionError{Kind: KindProfileCreationFailed}
	ErrMembershipCreationFailed = &ProvisionError{Kind: KindMembershipCreationFailed}
	ErrUnexpectedFailure        = &ProvisionError{Kind: KindUnexpectedFailure}
)

// AsProvisionError extrae el *ProvisionError de la cadena, o lo clasifica
// como UnexpectedFailure si no hay uno.
func AsProvisionError(err error) *ProvisionError {
	if err == nil {
		return nil
	}
	var pe *ProvisionError
	if errors.As(err, &pe) {
		return pe
	}
	return newUnexpected(StepUnknown, err)
}

// NewInvalidMethod se usa desde el transporte; nunca produce side effects.
func NewInvalidMethod(method string) *ProvisionError {
	return &ProvisionError{
		Kind:    KindInvalidMethod,
		Step:    StepMethod,
		Message: fmt.Sprintf("method %s not allowed, use POST", method),
	}
}

func newInvalidRequest(detail string) *ProvisionError {
	return &ProvisionError{
		Kind:    KindInvalidRequest,
		Step:    StepValidate,
		Message: "invalid request: " + detail,
	}
}

func newTenantNotFound(tenantID string) *ProvisionError {
	return &ProvisionError{
		Kind:    KindTenantNotFound,
		Step:    StepTenant,
		Message: fmt.Sprintf("tenant %q not found", tenantID),
		Err:     repository.ErrNotFound,
	}
}

func newUnexpected(step Step, err error) *ProvisionError {
	return &ProvisionError{
		Kind:    KindUnexpectedFailure,
		Step:    step,
		Message: fmt.Sprintf("unexpected failure during %s: %s", step, detailOf(err)),
		Err:     err,
	}
}

// stepFailure clasifica el error de un paso del backend.
// Los fallos de transporte (ErrUnavailable, contexto cancelado) quedan
// como UnexpectedFailure; los rechazos del backend toman el kind del paso.
func stepFailure(step Step, err error) *ProvisionError {
	if isTransportFault(err) {
		return newUnexpected(step, err)
	}

	var kind Kind
	var what string
	switch step {
	case StepIdentity:
		kind, what = KindIdentityCreationFailed, "failed to create auth identity"
	case StepProfile:
		kind, what = KindProfileCreationFailed, "failed to create profile"
	case StepMembership:
		kind, what = KindMembershipCreationFailed, "failed to create tenant membership"
	default:
		return newUnexpected(step, err)
	}
	return &ProvisionError{
		Kind:    kind,
		Step:    step,
		Message: what + ": " + detailOf(err),
		Err:     err,
	}
}

func isTransportFault(err error) bool {
	return errors.Is(err, repository.ErrUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// detailOf prefiere el detalle legible del backend sobre el error envuelto.
func detailOf(err error) string {
	if err == nil {
		return "unknown error"
	}
	var be *repository.BackendError
	if errors.As(err, &be) && be.Detail != "" {
		return be.Detail
	}
	return err.Error()
}
