package handlers

import (
	"errors"

	"pesaflow/internal/models"
	"pesaflow/internal/services/transaction"
	"pesaflow/internal/utils"
	"pesaflow/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	transactionService transaction.Service
}

func NewTransactionHandler(transactionService transaction.Service) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// RecordTransaction stores a manual ledger entry.
func (h *TransactionHandler) RecordTransaction(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var tx models.Transaction
	if err := c.BodyParser(&tx); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Transaction(&tx)
	if !v.Valid() {
		return utils.Respond(c, fiber.StatusBadRequest, fiber.Map{"errors": v.Errors})
	}

	created, err := h.transactionService.Record(c.UserContext(), claims.UserID, &tx)
	if err != nil {
		switch {
		case errors.Is(err, transaction.ErrAccessDenied):
			return utils.Forbidden(c, "You do not have access to this business")
		case errors.Is(err, transaction.ErrInvalidAmount), errors.Is(err, transaction.ErrInvalidType):
			return utils.BadRequest(c, err.Error())
		default:
			return utils.InternalError(c, "Failed to record transaction")
		}
	}

	return utils.Respond(c, fiber.StatusCreated, fiber.Map{"transaction": created})
}

// GetTransaction returns a single ledger entry.
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	tx, err := h.transactionService.Get(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, transaction.ErrTransactionNotFound):
			return utils.NotFound(c, "Transaction not found")
		case errors.Is(err, transaction.ErrAccessDenied):
			return utils.Forbidden(c, "You do not have access to this transaction")
		default:
			return utils.InternalError(c, "Failed to get transaction")
		}
	}

	return utils.Success(c, fiber.Map{"transaction": tx})
}

// ListTransactions returns ledger entries across visible businesses.
func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	transactions, total, err := h.transactionService.List(
		c.UserContext(),
		claims.UserID,
		uint(c.QueryInt("business_id", 0)),
		c.Query("type"),
		c.QueryInt("limit", 20),
		c.QueryInt("offset", 0),
	)
	if err != nil {
		return utils.InternalError(c, "Failed to list transactions")
	}

	return utils.Success(c, fiber.Map{
		"transactions": transactions,
		"total":        total,
	})
}
