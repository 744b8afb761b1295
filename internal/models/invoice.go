package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invoice statuses
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusSent      = "sent"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"
)

type Invoice struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	BusinessID uint      `gorm:"not null;index"`
	Business   *Business `gorm:"foreignKey:BusinessID"`
	UserID     uint      `gorm:"not null"`
	User       *User     `gorm:"foreignKey:UserID"`

	InvoiceNumber string `gorm:"uniqueIndex;not null"`
	CustomerName  string `gorm:"not null"`
	CustomerEmail string
	CustomerPhone string

	Subtotal    float64 `gorm:"not null"`
	TaxAmount   float64 `gorm:"default:0"`
	TotalAmount float64 `gorm:"not null"`
	Currency    string  `gorm:"default:'KES'"`

	Status    string `gorm:"not null;default:'draft';index"`
	IssueDate time.Time
	DueDate   time.Time
	PaidAt    *time.Time

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
