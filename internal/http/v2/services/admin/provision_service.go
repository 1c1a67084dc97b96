package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/tenantprov/internal/audit"
	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
	"github.com/dropDatabas3/tenantprov/internal/observability/logger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProvisionRequest es el input del provisioning. Se construye una vez por
// invocación y no se persiste.
type ProvisionRequest struct {
	Email       string `validate:"required,email,max=320"`
	Password    string `validate:"required,max=1024"`
	DisplayName string `validate:"required,max=200"`
	TenantID    string `validate:"required,max=128"`
}

// ProvisionedUser es el resultado exitoso: la identidad tal como la devolvió
// el backend en el paso 1, más el tenant y rol asignados.
type ProvisionedUser struct {
	Identity repository.Identity
	TenantID string
	Role     string
}

// ProvisionService crea identidad, perfil y membresía, en ese orden.
type ProvisionService interface {
	Provision(ctx context.Context, in ProvisionRequest) (*ProvisionedUser, error)
}

// Notifier envía el email de bienvenida tras un provisioning exitoso.
type Notifier interface {
	SendWelcome(ctx context.Context, email, name, tenantID string) error
}

// PasswordChecker valida el password antes de llamar al backend.
type PasswordChecker interface {
	Check(password string) error
}

// Recorder recibe las métricas del workflow.
type Recorder interface {
	ObserveStep(step string, d time.Duration)
	Result(result string)
	Compensation(step, result string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveStep(string, time.Duration) {}
func (noopRecorder) Result(string)                     {}
func (noopRecorder) Compensation(string, string)       {}

const defaultCompensationTimeout = 10 * time.Second

var validate = validator.New(validator.WithRequiredStructEnabled())

type provisionService struct {
	deps    Deps
	metrics Recorder
}

// NewProvisionService crea el service. Identities, Profiles y Memberships son
// obligatorios.
func NewProvisionService(d Deps) ProvisionService {
	if d.Provisioning.CompensationTimeout <= 0 {
		d.Provisioning.CompensationTimeout = defaultCompensationTimeout
	}
	if d.Provisioning.Role == "" {
		d.Provisioning.Role = repository.RoleAdmin
	}
	var rec Recorder = noopRecorder{}
	if d.Metrics != nil {
		rec = d.Metrics
	}
	return &provisionService{deps: d, metrics: rec}
}

func (s *provisionService) Provision(ctx context.Context, in ProvisionRequest) (out *ProvisionedUser, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("admin.provision"),
		logger.Op("Provision"),
	)

	// Progreso remoto: si hay panic después del paso 1 se compensa igual.
	var (
		userID         string
		profileCreated bool
	)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic during provisioning", logger.Any("panic", rec))
			perr := newUnexpected(StepUnknown, fmt.Errorf("panic: %v", rec))
			if userID != "" {
				perr = s.abort(ctx, log, perr, userID, profileCreated)
			}
			out, err = nil, perr
		}
		if err != nil {
			s.metrics.Result(string(AsProvisionError(err).Kind))
		} else {
			s.metrics.Result("success")
		}
	}()

	in = normalize(in)
	log = log.With(logger.TenantID(in.TenantID))

	if perr := s.validate(in); perr != nil {
		log.Debug("provision request rejected", logger.Err(perr))
		return nil, perr
	}
	if perr := s.checkTenant(ctx, in.TenantID); perr != nil {
		log.Debug("tenant precondition failed", logger.Err(perr))
		return nil, perr
	}

	// 1. Identity
	identity, perr := s.createIdentity(ctx, in)
	if perr != nil {
		log.Warn("identity creation failed", logger.Kind(string(perr.Kind)), logger.Err(perr.Err))
		return nil, perr
	}
	userID = identity.ID
	log = log.With(logger.UserID(userID))

	// 2. Profile (depende de userID)
	if perr := s.insertProfile(ctx, userID, in); perr != nil {
		return nil, s.abort(ctx, log, perr, userID, false)
	}
	profileCreated = true

	// 3. Membership (depende de userID y tenantID)
	if perr := s.insertMembership(ctx, in.TenantID, userID); perr != nil {
		return nil, s.abort(ctx, log, perr, userID, true)
	}

	log.Info("user provisioned")
	audit.Log(ctx, audit.EventProvisioned,
		logger.TenantID(in.TenantID),
		logger.UserID(userID),
		logger.MaskedEmail(in.Email),
		logger.String("role", s.deps.Provisioning.Role),
	)

	if s.deps.Notifier != nil {
		if err := s.deps.Notifier.SendWelcome(ctx, identity.Email, in.DisplayName, in.TenantID); err != nil {
			log.Warn("welcome email failed (soft)", logger.Err(err))
		}
	}

	return &ProvisionedUser{
		Identity: *identity,
		TenantID: in.TenantID,
		Role:     s.deps.Provisioning.Role,
	}, nil
}

func normalize(in ProvisionRequest) ProvisionRequest {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.TenantID = strings.TrimSpace(in.TenantID)
	return in
}

func (s *provisionService) validate(in ProvisionRequest) *ProvisionError {
	if err := validate.Struct(in); err != nil {
		return newInvalidRequest(describeValidation(err))
	}
	if s.deps.Provisioning.RequireUUIDTenant {
		if _, err := uuid.Parse(in.TenantID); err != nil {
			return newInvalidRequest("tenantId must be a UUID")
		}
	}
	if s.deps.Passwords != nil {
		if err := s.deps.Passwords.Check(in.Password); err != nil {
			return newInvalidRequest(err.Error())
		}
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fieldName(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "email":
			parts = append(parts, field+" must be a valid email")
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}

// fieldName traduce al nombre del campo en el body HTTP.
func fieldName(f string) string {
	switch f {
	case "Email":
		return "email"
	case "Password":
		return "password"
	case "DisplayName":
		return "name"
	case "TenantID":
		return "tenantId"
	}
	return f
}

func (s *provisionService) checkTenant(ctx context.Context, tenantID string) *ProvisionError {
	if s.deps.Tenants == nil {
		return nil
	}
	if _, err := s.deps.Tenants.GetByID(ctx, tenantID); err != nil {
		if repository.IsNotFound(err) {
			return newTenantNotFound(tenantID)
		}
		return newUnexpected(StepTenant, err)
	}
	return nil
}

func (s *provisionService) createIdentity(ctx context.Context, in ProvisionRequest) (*repository.Identity, *ProvisionError) {
	start := time.Now()
	identity, err := s.deps.Identities.Create(ctx, repository.CreateIdentityInput{
		Email:          in.Email,
		Password:       in.Password,
		EmailConfirmed: true,
		Metadata:       map[string]any{"name": in.DisplayName},
	})
	s.metrics.ObserveStep(string(StepIdentity), time.Since(start))
	if err != nil {
		return nil, stepFailure(StepIdentity, err)
	}
	if identity == nil || identity.ID == "" {
		return nil, newUnexpected(StepIdentity, errors.New("backend returned identity without id"))
	}
	return identity, nil
}

func (s *provisionService) insertProfile(ctx context.Context, userID string, in ProvisionRequest) *ProvisionError {
	if err := ctx.Err(); err != nil {
		return newUnexpected(StepProfile, err)
	}
	start := time.Now()
	err := s.deps.Profiles.Insert(ctx, repository.Profile{
		ID:    userID,
		Email: in.Email,
		Name:  in.DisplayName,
	})
	s.metrics.ObserveStep(string(StepProfile), time.Since(start))
	if err != nil {
		return stepFailure(StepProfile, err)
	}
	return nil
}

func (s *provisionService) insertMembership(ctx context.Context, tenantID, userID string) *ProvisionError {
	if err := ctx.Err(); err != nil {
		return newUnexpected(StepMembership, err)
	}
	start := time.Now()
	err := s.deps.Memberships.Insert(ctx, repository.Membership{
		TenantID: tenantID,
		UserID:   userID,
		Role:     s.deps.Provisioning.Role,
		IsActive: true,
	})
	s.metrics.ObserveStep(string(StepMembership), time.Since(start))
	if err != nil {
		return stepFailure(StepMembership, err)
	}
	return nil
}

// abort registra el estado parcial y, si está habilitado, lo compensa.
// El Kind original nunca se reemplaza por un fallo de compensación.
func (s *provisionService) abort(ctx context.Context, log *zap.Logger, perr *ProvisionError, userID string, profileCreated bool) *ProvisionError {
	perr.Orphans = []string{OrphanIdentity}
	if profileCreated {
		perr.Orphans = append(perr.Orphans, OrphanProfile)
	}

	if !s.deps.Provisioning.Compensate {
		log.Warn("provisioning aborted, partial state left in backend",
			logger.Kind(string(perr.Kind)),
			logger.Step(string(perr.Step)),
			logger.Strings("orphans", perr.Orphans),
			logger.Err(perr.Err),
		)
		auditFailure(ctx, perr, userID)
		return perr
	}

	// Contexto propio: un request cancelado igual debe limpiar.
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.deps.Provisioning.CompensationTimeout)
	defer cancel()

	var errs []error
	remaining := make([]string, 0, len(perr.Orphans))

	if profileCreated {
		if err := s.deps.Profiles.Delete(cctx, userID); err != nil && !repository.IsNotFound(err) {
			errs = append(errs, fmt.Errorf("delete profile: %w", err))
			remaining = append(remaining, OrphanProfile)
			s.metrics.Compensation(string(StepProfile), "failed")
		} else {
			s.metrics.Compensation(string(StepProfile), "ok")
		}
	}
	if err := s.deps.Identities.Delete(cctx, userID); err != nil && !repository.IsNotFound(err) {
		errs = append(errs, fmt.Errorf("delete identity: %w", err))
		remaining = append([]string{OrphanIdentity}, remaining...)
		s.metrics.Compensation(string(StepIdentity), "failed")
	} else {
		s.metrics.Compensation(string(StepIdentity), "ok")
	}

	perr.Orphans = remaining
	if len(errs) > 0 {
		perr.CompensationErr = errors.Join(errs...)
		log.Error("compensation failed, partial state left in backend",
			logger.Kind(string(perr.Kind)),
			logger.Strings("orphans", perr.Orphans),
			logger.Err(perr.CompensationErr),
		)
		auditFailure(ctx, perr, userID)
		return perr
	}

	perr.Compensated = true
	log.Warn("provisioning aborted, partial state compensated",
		logger.Kind(string(perr.Kind)),
		logger.Step(string(perr.Step)),
		logger.Err(perr.Err),
	)
	audit.Log(ctx, audit.EventCompensated,
		logger.UserID(userID),
		logger.Kind(string(perr.Kind)),
		logger.Step(string(perr.Step)),
	)
	return perr
}

// auditFailure deja constancia de lo que quedó huérfano en el backend.
func auditFailure(ctx context.Context, perr *ProvisionError, userID string) {
	audit.Log(ctx, audit.EventProvisionFailed,
		logger.UserID(userID),
		logger.Kind(string(perr.Kind)),
		logger.Step(string(perr.Step)),
		logger.Strings("orphans", perr.Orphans),
	)
}
