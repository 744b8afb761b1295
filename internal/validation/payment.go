package validation

import (
	"pesaflow/internal/models"
)

// MpesaPayment validates a push payment request.
func (v *Validator) MpesaPayment(req *models.InitiatePaymentRequest) {
	v.Required("business_id", req.BusinessID)
	v.Required("phone_number", req.PhoneNumber)
	v.Phone("phone_number", req.PhoneNumber)
	v.Required("amount", req.Amount)
	v.Range("amount", req.Amount, MinPaymentAmount, MaxPaymentAmount)
	v.MaxLength("transaction_desc", req.TransactionDesc, MaxDescriptionLength)
}

// B2CPayment validates an outbound disbursement request.
func (v *Validator) B2CPayment(req *models.B2CPaymentRequest) {
	v.Required("business_id", req.BusinessID)
	v.Required("phone_number", req.PhoneNumber)
	v.Phone("phone_number", req.PhoneNumber)
	v.Required("amount", req.Amount)
	v.Range("amount", req.Amount, MinPaymentAmount, MaxPaymentAmount)
	v.MaxLength("remarks", req.Remarks, MaxReferenceLength)
}

// Invoice validates a new invoice.
func (v *Validator) Invoice(invoice *models.Invoice) {
	v.Required("business_id", invoice.BusinessID)
	v.Required("customer_name", invoice.CustomerName)
	v.Required("total_amount", invoice.TotalAmount)
	v.Check(invoice.TotalAmount > 0, "total_amount", "must be greater than zero")
	if invoice.CustomerEmail != "" {
		v.Email("customer_email", invoice.CustomerEmail)
	}
}

// Transaction validates a manual ledger entry.
func (v *Validator) Transaction(tx *models.Transaction) {
	v.Required("business_id", tx.BusinessID)
	v.Required("type", tx.Type)
	v.Check(tx.Type == models.TransactionTypeIncome || tx.Type == models.TransactionTypeExpense,
		"type", "must be either income or expense")
	v.Required("amount", tx.Amount)
	v.Check(tx.Amount > 0, "amount", "must be greater than zero")
	v.MaxLength("description", tx.Description, MaxDescriptionLength)
}
