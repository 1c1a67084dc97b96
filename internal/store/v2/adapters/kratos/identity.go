package kratos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	ory "github.com/ory/kratos-client-go"

	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
)

// IdentityRepo implementa repository.IdentityRepository sobre el admin API.
type IdentityRepo struct {
	api      *ory.APIClient
	schemaID string
}

// NewIdentityRepo crea el repo. schemaID vacío usa "default".
func NewIdentityRepo(api *ory.APIClient, schemaID string) *IdentityRepo {
	if schemaID == "" {
		schemaID = "default"
	}
	return &IdentityRepo{api: api, schemaID: schemaID}
}

func (r *IdentityRepo) Create(ctx context.Context, in repository.CreateIdentityInput) (*repository.Identity, error) {
	traits := map[string]interface{}{"email": in.Email}
	if name, ok := in.Metadata["name"]; ok {
		traits["name"] = name
	}

	body := ory.NewCreateIdentityBody(r.schemaID, traits)
	pwd := ory.NewIdentityWithCredentialsPasswordConfig()
	pwd.SetPassword(in.Password)
	body.SetCredentials(ory.IdentityWithCredentials{
		Password: &ory.IdentityWithCredentialsPassword{Config: pwd},
	})
	if len(in.Metadata) > 0 {
		body.SetMetadataPublic(in.Metadata)
	}
	if in.EmailConfirmed {
		body.SetVerifiableAddresses([]ory.VerifiableIdentityAddress{{
			Value:    in.Email,
			Verified: true,
			Via:      "email",
			Status:   "completed",
		}})
	}

	created, resp, err := r.api.IdentityAPI.CreateIdentity(ctx).CreateIdentityBody(*body).Execute()
	if err != nil {
		return nil, mapError("create identity", resp, err)
	}
	return toIdentity(created, in.Email), nil
}

func (r *IdentityRepo) Delete(ctx context.Context, userID string) error {
	resp, err := r.api.IdentityAPI.DeleteIdentity(ctx, userID).Execute()
	if err != nil {
		return mapError("delete identity", resp, err)
	}
	return nil
}

func toIdentity(in *ory.Identity, fallbackEmail string) *repository.Identity {
	out := &repository.Identity{ID: in.Id, Email: fallbackEmail}
	if traits, ok := in.Traits.(map[string]interface{}); ok {
		if email, ok := traits["email"].(string); ok && email != "" {
			out.Email = email
		}
	}
	if md, ok := in.MetadataPublic.(map[string]interface{}); ok {
		out.Metadata = md
	}
	for _, a := range in.VerifiableAddresses {
		if strings.EqualFold(a.Value, out.Email) && a.Verified {
			out.EmailConfirmed = true
		}
	}
	if in.CreatedAt != nil {
		out.CreatedAt = *in.CreatedAt
	}
	return out
}

// kratosError formato {"error": {"code", "status", "reason", "message"}}.
type kratosError struct {
	Error struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Reason  string `json:"reason"`
		Message string `json:"message"`
	} `json:"error"`
}

func mapError(op string, resp *http.Response, err error) error {
	var apiErr *ory.GenericOpenAPIError
	if !errors.As(err, &apiErr) || resp == nil {
		return fmt.Errorf("kratos: %s: %w: %w", op, repository.ErrUnavailable, err)
	}

	be := &repository.BackendError{Status: resp.StatusCode, Kind: repository.ErrBackend}
	var ke kratosError
	if json.Unmarshal(apiErr.Body(), &ke) == nil {
		be.Detail = ke.Error.Reason
		if be.Detail == "" {
			be.Detail = ke.Error.Message
		}
		be.Code = ke.Error.Status
	}
	if be.Detail == "" {
		be.Detail = apiErr.Error()
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		be.Kind = repository.ErrNotFound
	case http.StatusConflict:
		be.Kind = repository.ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		be.Kind = repository.ErrInvalidInput
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		be.Kind = repository.ErrUnavailable
	}
	return fmt.Errorf("kratos: %s: %w", op, be)
}
