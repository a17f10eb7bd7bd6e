package identity

import (
	"errors"

	"roster-pulse/cmd/server/handlers/httperr"
	"roster-pulse/internal/logger"
	"roster-pulse/internal/services/identity"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// IdentityService defines the interface for issuing coach tokens
type IdentityService interface {
	Issue(name string) (token, normalized string, err error)
}

// Handlers contains the identity HTTP handlers
type Handlers struct {
	svc       IdentityService
	validator *validator.Validate
}

// NewHandlers creates new identity handlers
func NewHandlers(svc IdentityService, validator *validator.Validate) *Handlers {
	return &Handlers{svc: svc, validator: validator}
}

// ClaimRequest is the body for claiming a coach identity.
type ClaimRequest struct {
	Name string `json:"name" validate:"required,min=1,max=64"`
}

// ClaimResponse carries the signed token and the normalized name inside it.
type ClaimResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

// Claim issues an identity token for a coach display name. No account, no
// password; the name itself is the identity used for note attribution.
func (h *Handlers) Claim(c *fiber.Ctx) error {
	var req ClaimRequest
	if err := c.BodyParser(&req); err != nil {
		logger.L().Warn("failed to parse claim request body", "handler", "Claim", "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := h.validator.Struct(req); err != nil {
		logger.L().Warn("claim request validation failed", "handler", "Claim", "error", err)
		return httperr.InvalidInput(err)
	}

	token, name, err := h.svc.Issue(req.Name)
	if err != nil {
		if errors.Is(err, identity.ErrNameRequired) || errors.Is(err, identity.ErrNameInvalid) {
			logger.L().Warn("claim rejected", "handler", "Claim", "error", err)
			return httperr.Fail(httperr.E{Status: 400, Message: err.Error()})
		}
		logger.L().Error("claim service failed", "handler", "Claim", "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	return c.Status(201).JSON(ClaimResponse{Token: token, Name: name})
}
