package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MpesaPayment lifecycle states.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusInitiated = "initiated"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
)

// MpesaPayment tracks a single STK push attempt from creation through a
// terminal state. CheckoutRequestID is set exactly when the record leaves
// pending; terminal fields never change after the record turns terminal.
type MpesaPayment struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	BusinessID uint      `gorm:"not null;index:idx_mpesa_business_created"`
	Business   *Business `gorm:"foreignKey:BusinessID"`
	UserID     uint      `gorm:"not null"`
	User       *User     `gorm:"foreignKey:UserID"`

	PhoneNumber string  `gorm:"not null"`
	Amount      float64 `gorm:"not null"`
	Currency    string  `gorm:"default:'KES'"`
	Status      string  `gorm:"not null;default:'pending';index"`

	CheckoutRequestID  *string `gorm:"index"`
	MerchantRequestID  *string
	MpesaReceiptNumber *string `gorm:"index"`
	TransactionDate    *string // gateway-side timestamp, kept verbatim

	InvoiceID     *string      `gorm:"type:uuid"`
	Invoice       *Invoice     `gorm:"foreignKey:InvoiceID"`
	TransactionID *string      `gorm:"type:uuid"`
	Transaction   *Transaction `gorm:"foreignKey:TransactionID"`

	AccountReference string
	TransactionDesc  string
	CallbackData     JSON `gorm:"type:jsonb"`
	ErrorMessage     string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

func (p *MpesaPayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// IsTerminal reports whether the payment accepts no further transitions.
func (p *MpesaPayment) IsTerminal() bool {
	return PaymentStatusIsTerminal(p.Status)
}

// PaymentStatusIsTerminal reports whether a status is terminal.
func PaymentStatusIsTerminal(status string) bool {
	switch status {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// paymentTransitions holds the allowed state machine edges.
var paymentTransitions = map[string][]string{
	PaymentStatusPending:   {PaymentStatusInitiated, PaymentStatusFailed},
	PaymentStatusInitiated: {PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled},
}

// CanTransition reports whether the state machine allows from -> to.
// Terminal states accept nothing.
func CanTransition(from, to string) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// InitiatePaymentRequest is the body for POST /api/payments/mpesa.
type InitiatePaymentRequest struct {
	BusinessID       uint    `json:"business_id"`
	PhoneNumber      string  `json:"phone_number"`
	Amount           float64 `json:"amount"`
	InvoiceID        *string `json:"invoice_id"`
	AccountReference string  `json:"account_reference"`
	TransactionDesc  string  `json:"transaction_desc"`
}

// B2CPaymentRequest is the body for POST /api/payments/mpesa/b2c.
type B2CPaymentRequest struct {
	BusinessID  uint    `json:"business_id"`
	PhoneNumber string  `json:"phone_number"`
	Amount      float64 `json:"amount"`
	Remarks     string  `json:"remarks"`
	Occasion    string  `json:"occasion"`
}
