package repositories

import (
	"errors"
	"fmt"
	"time"

	"pesaflow/internal/models"

	"gorm.io/gorm"
)

var ErrPaymentNotFound = errors.New("payment not found")

// PaymentRepository persists M-Pesa payment records. The conditional
// transition methods return whether the row actually moved so callers
// can tell a real transition apart from a replayed or raced callback.
type PaymentRepository interface {
	Create(payment *models.MpesaPayment) error
	GetByID(id string) (*models.MpesaPayment, error)
	GetByCheckoutRequestID(checkoutRequestID string) (*models.MpesaPayment, error)
	List(businessIDs []uint, status string, limit, offset int) ([]models.MpesaPayment, int64, error)

	MarkInitiated(id, merchantRequestID, checkoutRequestID string) error
	MarkFailed(id, errorMessage string) error
	SaveCallbackData(id string, data models.JSON) error

	// TransitionToCompleted moves an initiated payment to completed and
	// records the receipt fields. Returns false when the payment was not
	// in the initiated state, which is how replays are detected.
	TransitionToCompleted(id, receiptNumber, transactionDate string, completedAt time.Time) (bool, error)
	TransitionToFailed(id, errorMessage string) (bool, error)

	ListStuckInitiated(olderThan time.Time) ([]models.MpesaPayment, error)

	CreateTransaction(tx *models.Transaction) error
	MarkInvoicePaid(invoiceID string, paidAt time.Time) error
	CreateNotification(n *models.Notification) error

	// ExecuteInTransaction runs fn against a repository bound to a single
	// database transaction. Any error rolls everything back.
	ExecuteInTransaction(fn func(repo PaymentRepository) error) error
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(payment *models.MpesaPayment) error {
	if err := r.db.Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetByID(id string) (*models.MpesaPayment, error) {
	var payment models.MpesaPayment
	if err := r.db.Where("id = ?", id).First(&payment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) GetByCheckoutRequestID(checkoutRequestID string) (*models.MpesaPayment, error) {
	var payment models.MpesaPayment
	if err := r.db.Where("checkout_request_id = ?", checkoutRequestID).First(&payment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment by checkout request id: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) List(businessIDs []uint, status string, limit, offset int) ([]models.MpesaPayment, int64, error) {
	var payments []models.MpesaPayment
	var total int64

	if len(businessIDs) == 0 {
		return payments, 0, nil
	}

	query := r.db.Model(&models.MpesaPayment{}).Where("business_id IN ?", businessIDs)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&payments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, total, nil
}

func (r *paymentRepository) MarkInitiated(id, merchantRequestID, checkoutRequestID string) error {
	result := r.db.Model(&models.MpesaPayment{}).
		Where("id = ? AND status = ?", id, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":              models.PaymentStatusInitiated,
			"merchant_request_id": merchantRequestID,
			"checkout_request_id": checkoutRequestID,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark payment initiated: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *paymentRepository) MarkFailed(id, errorMessage string) error {
	result := r.db.Model(&models.MpesaPayment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.PaymentStatusFailed,
			"error_message": errorMessage,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark payment failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *paymentRepository) SaveCallbackData(id string, data models.JSON) error {
	err := r.db.Model(&models.MpesaPayment{}).
		Where("id = ?", id).
		Update("callback_data", data).Error
	if err != nil {
		return fmt.Errorf("failed to save callback data: %w", err)
	}
	return nil
}

func (r *paymentRepository) TransitionToCompleted(id, receiptNumber, transactionDate string, completedAt time.Time) (bool, error) {
	result := r.db.Model(&models.MpesaPayment{}).
		Where("id = ? AND status = ?", id, models.PaymentStatusInitiated).
		Updates(map[string]interface{}{
			"status":               models.PaymentStatusCompleted,
			"mpesa_receipt_number": receiptNumber,
			"transaction_date":     transactionDate,
			"completed_at":         completedAt,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to complete payment: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *paymentRepository) TransitionToFailed(id, errorMessage string) (bool, error) {
	result := r.db.Model(&models.MpesaPayment{}).
		Where("id = ? AND status = ?", id, models.PaymentStatusInitiated).
		Updates(map[string]interface{}{
			"status":        models.PaymentStatusFailed,
			"error_message": errorMessage,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to fail payment: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *paymentRepository) ListStuckInitiated(olderThan time.Time) ([]models.MpesaPayment, error) {
	var payments []models.MpesaPayment
	err := r.db.Where("status = ? AND updated_at < ?", models.PaymentStatusInitiated, olderThan).
		Order("updated_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stuck payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) CreateTransaction(tx *models.Transaction) error {
	if err := r.db.Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *paymentRepository) MarkInvoicePaid(invoiceID string, paidAt time.Time) error {
	err := r.db.Model(&models.Invoice{}).
		Where("id = ?", invoiceID).
		Updates(map[string]interface{}{
			"status":  models.InvoiceStatusPaid,
			"paid_at": paidAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark invoice paid: %w", err)
	}
	return nil
}

func (r *paymentRepository) CreateNotification(n *models.Notification) error {
	if err := r.db.Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *paymentRepository) ExecuteInTransaction(fn func(repo PaymentRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&paymentRepository{db: tx})
	})
}
