package handlers

import (
	"errors"

	"pesaflow/internal/models"
	"pesaflow/internal/services/invoice"
	"pesaflow/internal/utils"
	"pesaflow/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type InvoiceHandler struct {
	invoiceService invoice.Service
}

func NewInvoiceHandler(invoiceService invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// CreateInvoice creates a draft invoice.
func (h *InvoiceHandler) CreateInvoice(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var inv models.Invoice
	if err := c.BodyParser(&inv); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Invoice(&inv)
	if !v.Valid() {
		return utils.Respond(c, fiber.StatusBadRequest, fiber.Map{"errors": v.Errors})
	}

	created, err := h.invoiceService.Create(c.UserContext(), claims.UserID, &inv)
	if err != nil {
		switch {
		case errors.Is(err, invoice.ErrAccessDenied):
			return utils.Forbidden(c, "You do not have access to this business")
		case errors.Is(err, invoice.ErrInvalidAmount):
			return utils.BadRequest(c, err.Error())
		default:
			return utils.InternalError(c, "Failed to create invoice")
		}
	}

	return utils.Respond(c, fiber.StatusCreated, fiber.Map{"invoice": created})
}

// GetInvoice returns a single invoice.
func (h *InvoiceHandler) GetInvoice(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	inv, err := h.invoiceService.Get(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, invoice.ErrInvoiceNotFound):
			return utils.NotFound(c, "Invoice not found")
		case errors.Is(err, invoice.ErrAccessDenied):
			return utils.Forbidden(c, "You do not have access to this invoice")
		default:
			return utils.InternalError(c, "Failed to get invoice")
		}
	}

	return utils.Success(c, fiber.Map{"invoice": inv})
}

// ListInvoices returns invoices across visible businesses.
func (h *InvoiceHandler) ListInvoices(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	invoices, total, err := h.invoiceService.List(
		c.UserContext(),
		claims.UserID,
		uint(c.QueryInt("business_id", 0)),
		c.Query("status"),
		c.QueryInt("limit", 20),
		c.QueryInt("offset", 0),
	)
	if err != nil {
		return utils.InternalError(c, "Failed to list invoices")
	}

	return utils.Success(c, fiber.Map{
		"invoices": invoices,
		"total":    total,
	})
}

// SendInvoice moves a draft invoice to sent.
func (h *InvoiceHandler) SendInvoice(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	inv, err := h.invoiceService.MarkSent(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, invoice.ErrInvoiceNotFound):
			return utils.NotFound(c, "Invoice not found")
		case errors.Is(err, invoice.ErrAccessDenied):
			return utils.Forbidden(c, "You do not have access to this invoice")
		default:
			return utils.BadRequest(c, err.Error())
		}
	}

	return utils.Success(c, fiber.Map{"invoice": inv})
}

// MarkInvoicePaid records an out-of-band settlement.
func (h *InvoiceHandler) MarkInvoicePaid(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	inv, err := h.invoiceService.MarkPaid(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, invoice.ErrInvoiceNotFound):
			return utils.NotFound(c, "Invoice not found")
		case errors.Is(err, invoice.ErrAccessDenied):
			return utils.Forbidden(c, "You do not have access to this invoice")
		default:
			return utils.BadRequest(c, err.Error())
		}
	}

	return utils.Success(c, fiber.Map{"invoice": inv})
}

// CancelInvoice cancels an unpaid invoice.
func (h *InvoiceHandler) CancelInvoice(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	inv, err := h.invoiceService.Cancel(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, invoice.ErrInvoiceNotFound):
			return utils.NotFound(c, "Invoice not found")
		case errors.Is(err, invoice.ErrAccessDenied):
			return utils.Forbidden(c, "You do not have access to this invoice")
		default:
			return utils.BadRequest(c, err.Error())
		}
	}

	return utils.Success(c, fiber.Map{"invoice": inv})
}
