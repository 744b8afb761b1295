package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types
const (
	NotificationTypePaymentReceived = "payment_received"
	NotificationTypeMpesaPayment    = "mpesa_payment"
	NotificationTypeInvoicePaid     = "invoice_paid"
	NotificationTypeInvoiceOverdue  = "invoice_overdue"
	NotificationTypeSystem          = "system"
)

// Notification priorities
const (
	NotificationPriorityLow    = "low"
	NotificationPriorityMedium = "medium"
	NotificationPriorityHigh   = "high"
	NotificationPriorityUrgent = "urgent"
)

// Notification is an in-app message addressed to one user.
type Notification struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	UserID     uint      `gorm:"not null;index"`
	User       *User     `gorm:"foreignKey:UserID"`
	BusinessID *uint     `gorm:"index"`
	Business   *Business `gorm:"foreignKey:BusinessID"`

	Title    string `gorm:"not null"`
	Message  string `gorm:"not null"`
	Type     string `gorm:"not null;default:'system'"`
	Priority string `gorm:"not null;default:'medium'"`

	ActionURL    string
	ResourceType string
	ResourceID   string

	IsRead bool `gorm:"default:false;index"`
	ReadAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
