package handlers

import (
	"errors"
	"strconv"

	"pesaflow/internal/models"
	"pesaflow/internal/services/business"
	"pesaflow/internal/utils"
	"pesaflow/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type BusinessHandler struct {
	businessService business.Service
}

func NewBusinessHandler(businessService business.Service) *BusinessHandler {
	return &BusinessHandler{
		businessService: businessService,
	}
}

// CreateBusiness registers a new tenant owned by the caller.
func (h *BusinessHandler) CreateBusiness(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var b models.Business
	if err := c.BodyParser(&b); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Required("legal_name", b.LegalName)
	if !v.Valid() {
		return utils.Respond(c, fiber.StatusBadRequest, fiber.Map{"errors": v.Errors})
	}

	created, err := h.businessService.Create(c.UserContext(), claims.UserID, &b)
	if err != nil {
		return utils.InternalError(c, "Failed to create business")
	}

	return utils.Respond(c, fiber.StatusCreated, fiber.Map{"business": created})
}

// GetBusiness returns one business the caller may see.
func (h *BusinessHandler) GetBusiness(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	businessID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid business ID")
	}

	b, err := h.businessService.Get(c.UserContext(), claims.UserID, businessID)
	if err != nil {
		switch {
		case errors.Is(err, business.ErrBusinessNotFound):
			return utils.NotFound(c, "Business not found")
		case errors.Is(err, business.ErrAccessDenied):
			return utils.Forbidden(c, "You do not have access to this business")
		default:
			return utils.InternalError(c, "Failed to get business")
		}
	}

	return utils.Success(c, fiber.Map{"business": b})
}

// ListBusinesses returns every business the caller can see.
func (h *BusinessHandler) ListBusinesses(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	businesses, err := h.businessService.ListAccessible(c.UserContext(), claims.UserID)
	if err != nil {
		return utils.InternalError(c, "Failed to list businesses")
	}

	return utils.Success(c, fiber.Map{"businesses": businesses})
}

// AddMember invites a user onto the business roster.
func (h *BusinessHandler) AddMember(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	businessID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid business ID")
	}

	var input struct {
		UserID uint   `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	m, err := h.businessService.AddMember(c.UserContext(), claims.UserID, businessID, input.UserID, input.Role)
	if err != nil {
		switch {
		case errors.Is(err, business.ErrNotAdmin):
			return utils.Forbidden(c, "Only a business admin can manage members")
		case errors.Is(err, business.ErrInvalidRole):
			return utils.BadRequest(c, err.Error())
		default:
			return utils.InternalError(c, "Failed to add member")
		}
	}

	return utils.Respond(c, fiber.StatusCreated, fiber.Map{"membership": m})
}

// RemoveMember deactivates a membership.
func (h *BusinessHandler) RemoveMember(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	businessID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid business ID")
	}
	membershipID, err := parseUintParam(c, "membershipId")
	if err != nil {
		return utils.BadRequest(c, "Invalid membership ID")
	}

	if err := h.businessService.RemoveMember(c.UserContext(), claims.UserID, businessID, membershipID); err != nil {
		switch {
		case errors.Is(err, business.ErrNotAdmin):
			return utils.Forbidden(c, "Only a business admin can manage members")
		default:
			return utils.InternalError(c, "Failed to remove member")
		}
	}

	return utils.Success(c, fiber.Map{"message": "Member removed"})
}

// ListMembers returns the roster of a business.
func (h *BusinessHandler) ListMembers(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	businessID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid business ID")
	}

	members, err := h.businessService.ListMembers(c.UserContext(), claims.UserID, businessID)
	if err != nil {
		switch {
		case errors.Is(err, business.ErrAccessDenied):
			return utils.Forbidden(c, "You do not have access to this business")
		default:
			return utils.InternalError(c, "Failed to list members")
		}
	}

	return utils.Success(c, fiber.Map{"members": members})
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
