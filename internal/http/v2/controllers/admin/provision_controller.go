package admin

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
	dto "github.com/dropDatabas3/tenantprov/internal/http/v2/dto/admin"
	httperrors "github.com/dropDatabas3/tenantprov/internal/http/v2/errors"
	"github.com/dropDatabas3/tenantprov/internal/http/v2/helpers"
	svc "github.com/dropDatabas3/tenantprov/internal/http/v2/services/admin"
	"github.com/dropDatabas3/tenantprov/internal/observability/logger"
)

// ProvisionController expone el provisioning de usuarios admin de tenant.
type ProvisionController struct {
	service svc.ProvisionService
	maxBody int64
}

// NewProvisionController crea el controller. maxBody <= 0 usa 1 MiB.
func NewProvisionController(service svc.ProvisionService, maxBody int64) *ProvisionController {
	return &ProvisionController{service: service, maxBody: maxBody}
}

// Provision maneja /v2/admin/provision. Se monta para cualquier método: los
// que no son POST se rechazan acá sin tocar el backend.
func (c *ProvisionController) Provision(w http.ResponseWriter, r *http.Request) {
	c.handle(w, r, "")
}

// CreateTenantUser maneja POST /v2/admin/tenants/{tenantId}/users.
func (c *ProvisionController) CreateTenantUser(w http.ResponseWriter, r *http.Request) {
	c.handle(w, r, strings.TrimSpace(chi.URLParam(r, "tenantId")))
}

func (c *ProvisionController) handle(w http.ResponseWriter, r *http.Request, pathTenant string) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ProvisionController.Provision"))

	if r.Method != http.MethodPost {
		httperrors.WriteError(w, toAppError(svc.NewInvalidMethod(r.Method)))
		return
	}

	var req dto.ProvisionRequest
	if err := helpers.ReadJSON(w, r, &req, c.maxBody); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if pathTenant != "" {
		req.TenantID = pathTenant
	}

	out, err := c.service.Provision(ctx, svc.ProvisionRequest{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.Name,
		TenantID:    req.TenantID,
	})
	if err != nil {
		appErr := toAppError(svc.AsProvisionError(err))
		log.Debug("provision failed", logger.Kind(appErr.Code), logger.Status(appErr.HTTPStatus))
		httperrors.WriteError(w, appErr)
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, dto.ProvisionResponse{
		Success:  true,
		User:     out.Identity,
		TenantID: out.TenantID,
		Role:     out.Role,
	})
}

// toAppError traduce el kind del provisioning a status HTTP. El código del
// envelope es siempre el kind.
func toAppError(perr *svc.ProvisionError) *httperrors.AppError {
	base := httperrors.ErrInternalServerError
	switch perr.Kind {
	case svc.KindInvalidMethod:
		base = httperrors.ErrMethodNotAllowed.WithHeader("Allow", http.MethodPost)
	case svc.KindInvalidRequest:
		base = httperrors.ErrBadRequest
	case svc.KindTenantNotFound:
		base = httperrors.ErrNotFound
	case svc.KindIdentityCreationFailed:
		base = httperrors.ErrUnprocessable
		if errors.Is(perr.Err, repository.ErrConflict) {
			base = httperrors.ErrConflict
		}
	case svc.KindProfileCreationFailed, svc.KindMembershipCreationFailed:
		base = httperrors.ErrBadGateway
	}

	return base.
		WithCode(string(perr.Kind)).
		WithMessage(perr.Error()).
		WithStep(string(perr.Step)).
		WithCause(perr)
}
