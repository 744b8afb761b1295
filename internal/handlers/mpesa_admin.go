package handlers

import (
	"context"

	"pesaflow/internal/services/mpesa"
	"pesaflow/internal/utils"
	"pesaflow/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// C2BRegistrar registers confirmation and validation URLs with the
// mobile-money gateway. The gateway client implements it.
type C2BRegistrar interface {
	RegisterC2BURLs(ctx context.Context, confirmationURL, validationURL string) (*mpesa.C2BRegisterResponse, error)
}

type MpesaAdminHandler struct {
	registrar C2BRegistrar
}

func NewMpesaAdminHandler(registrar C2BRegistrar) *MpesaAdminHandler {
	return &MpesaAdminHandler{
		registrar: registrar,
	}
}

// RegisterC2BURLs points the gateway's customer-initiated payment
// notifications at this deployment. Run once per shortcode.
func (h *MpesaAdminHandler) RegisterC2BURLs(c *fiber.Ctx) error {
	var input struct {
		ConfirmationURL string `json:"confirmation_url"`
		ValidationURL   string `json:"validation_url"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Required("confirmation_url", input.ConfirmationURL)
	v.Required("validation_url", input.ValidationURL)
	if !v.Valid() {
		return utils.Respond(c, fiber.StatusBadRequest, fiber.Map{"errors": v.Errors})
	}

	resp, err := h.registrar.RegisterC2BURLs(c.UserContext(), input.ConfirmationURL, input.ValidationURL)
	if err != nil {
		return utils.Respond(c, fiber.StatusBadGateway, fiber.Map{"error": "URL registration failed"})
	}

	return utils.Success(c, fiber.Map{
		"response_code":        resp.ResponseCode,
		"response_description": resp.ResponseDescription,
	})
}
