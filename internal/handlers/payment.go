package handlers

import (
	"errors"
	"log"

	"pesaflow/internal/models"
	"pesaflow/internal/services/mpesa"
	"pesaflow/internal/services/payment"
	"pesaflow/internal/utils"
	"pesaflow/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	paymentService payment.Service
}

func NewPaymentHandler(paymentService payment.Service) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// InitiateMpesaPayment starts an STK push against the payer's phone.
func (h *PaymentHandler) InitiateMpesaPayment(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var req models.InitiatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.MpesaPayment(&req)
	if !v.Valid() {
		return utils.Respond(c, fiber.StatusBadRequest, fiber.Map{"errors": v.Errors})
	}

	record, err := h.paymentService.InitiatePayment(c.UserContext(), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrAccessDenied):
			return utils.Forbidden(c, "You do not have access to this business")
		case errors.Is(err, payment.ErrInvalidAmount),
			errors.Is(err, payment.ErrInvalidPhoneNumber),
			errors.Is(err, payment.ErrBusinessRequired):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, payment.ErrGatewayUnavailable):
			return utils.Respond(c, fiber.StatusBadGateway, fiber.Map{"error": "Payment gateway request failed"})
		default:
			return utils.InternalError(c, "Failed to initiate payment")
		}
	}

	return utils.Respond(c, fiber.StatusCreated, fiber.Map{
		"payment": record,
		"message": "STK push sent, awaiting confirmation",
	})
}

// GetPayment returns a single payment the caller may see.
func (h *PaymentHandler) GetPayment(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	record, err := h.paymentService.GetPayment(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrPaymentNotFound):
			return utils.NotFound(c, "Payment not found")
		case errors.Is(err, payment.ErrAccessDenied):
			return utils.Forbidden(c, "You do not have access to this payment")
		default:
			return utils.InternalError(c, "Failed to get payment")
		}
	}

	return utils.Success(c, fiber.Map{"payment": record})
}

// ListPayments returns payments across every business the caller can see.
func (h *PaymentHandler) ListPayments(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	filter := payment.ListFilter{
		BusinessID: uint(c.QueryInt("business_id", 0)),
		Status:     c.Query("status"),
		Limit:      c.QueryInt("limit", 20),
		Offset:     c.QueryInt("offset", 0),
	}

	payments, total, err := h.paymentService.ListPayments(c.UserContext(), claims.UserID, filter)
	if err != nil {
		return utils.InternalError(c, "Failed to list payments")
	}

	return utils.Success(c, fiber.Map{
		"payments": payments,
		"total":    total,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

// SendB2CPayment disburses money to a customer wallet. Admin only.
func (h *PaymentHandler) SendB2CPayment(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var req models.B2CPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.B2CPayment(&req)
	if !v.Valid() {
		return utils.Respond(c, fiber.StatusBadRequest, fiber.Map{"errors": v.Errors})
	}

	resp, err := h.paymentService.SendB2CPayment(c.UserContext(), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrAccessDenied):
			return utils.Forbidden(c, "Only a business admin can send disbursements")
		case errors.Is(err, payment.ErrInvalidAmount), errors.Is(err, payment.ErrBusinessRequired):
			return utils.BadRequest(c, err.Error())
		default:
			return utils.Respond(c, fiber.StatusBadGateway, fiber.Map{"error": "Disbursement request failed"})
		}
	}

	return utils.Success(c, fiber.Map{
		"conversation_id": resp.ConversationID,
		"description":     resp.ResponseDescription,
	})
}

// MpesaCallback is the public webhook the gateway posts payment results
// to. It always acknowledges with ResultCode 0, even for callbacks that
// match nothing, so the gateway stops retrying.
func (h *PaymentHandler) MpesaCallback(c *fiber.Ctx) error {
	var envelope mpesa.CallbackEnvelope
	if err := c.BodyParser(&envelope); err != nil {
		log.Printf("Unparseable gateway callback: %v", err)
		return c.JSON(mpesa.CallbackAck{ResultCode: 0, ResultDesc: "Accepted"})
	}

	if err := h.paymentService.HandleCallback(c.UserContext(), &envelope); err != nil {
		if errors.Is(err, payment.ErrUnknownCallback) {
			return utils.NotFound(c, "No payment matches this callback")
		}
		log.Printf("Callback reconciliation failed for %s: %v",
			envelope.Body.StkCallback.CheckoutRequestID, err)
	}

	return c.JSON(mpesa.CallbackAck{ResultCode: 0, ResultDesc: "Accepted"})
}

// MpesaB2CResult receives the outcome of a disbursement.
func (h *PaymentHandler) MpesaB2CResult(c *fiber.Ctx) error {
	log.Printf("B2C result received: %s", c.Body())
	return c.JSON(mpesa.CallbackAck{ResultCode: 0, ResultDesc: "Accepted"})
}

// MpesaB2CTimeout receives queue-timeout notices for disbursements.
func (h *PaymentHandler) MpesaB2CTimeout(c *fiber.Ctx) error {
	log.Printf("B2C timeout received: %s", c.Body())
	return c.JSON(mpesa.CallbackAck{ResultCode: 0, ResultDesc: "Accepted"})
}
