package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction types
const (
	TransactionTypeIncome     = "income"
	TransactionTypeExpense    = "expense"
	TransactionTypeTransfer   = "transfer"
	TransactionTypeInvestment = "investment"
	TransactionTypeLoan       = "loan"
	TransactionTypeRefund     = "refund"
)

// Payment methods
const (
	PaymentMethodMpesa        = "mpesa"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCash         = "cash"
	PaymentMethodCard         = "card"
	PaymentMethodCheque       = "cheque"
)

// Transaction statuses
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
	TransactionStatusCancelled = "cancelled"
)

// Transaction is a ledger entry. Immutable once created apart from the
// standard audit columns.
type Transaction struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	BusinessID uint      `gorm:"not null;index:idx_txn_business_date"`
	Business   *Business `gorm:"foreignKey:BusinessID"`
	UserID     uint      `gorm:"not null;index"`
	User       *User     `gorm:"foreignKey:UserID"`

	Amount        float64 `gorm:"not null"`
	Currency      string  `gorm:"default:'KES'"`
	Type          string  `gorm:"not null;index"`
	PaymentMethod string  `gorm:"not null"`
	Status        string  `gorm:"not null;default:'completed'"`

	Description     string
	ReferenceNumber string
	ExternalID      string `gorm:"index"` // M-Pesa receipt, bank transaction id
	Category        string
	Subcategory     string
	Supplier        string
	Customer        string

	InvoiceID *string  `gorm:"type:uuid"`
	Invoice   *Invoice `gorm:"foreignKey:InvoiceID"`

	TransactionDate time.Time `gorm:"not null;index:idx_txn_business_date"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
