package payment

import (
	"context"

	"pesaflow/internal/models"
	"pesaflow/internal/services/mpesa"
)

// Gateway is the slice of the mobile-money client the payment service
// uses. Tests substitute a fake.
type Gateway interface {
	STKPush(ctx context.Context, phone string, amount float64, accountReference, transactionDesc, callbackURL string) (*mpesa.STKPushResponse, error)
	QuerySTKStatus(ctx context.Context, checkoutRequestID string) (*mpesa.STKQueryResponse, error)
	B2CPayment(ctx context.Context, phone string, amount float64, remarks, occasion string) (*mpesa.B2CResponse, error)
}

// AccessChecker is the slice of the access service the payment service
// uses to scope reads and writes to businesses the caller can see.
type AccessChecker interface {
	CanAccessBusiness(ctx context.Context, userID, businessID uint) (bool, error)
	AccessibleBusinessIDs(ctx context.Context, userID, requestedID uint) ([]uint, error)
	IsBusinessAdmin(ctx context.Context, userID, businessID uint) (bool, error)
}

// Service handles the full lifecycle of a mobile-money payment: push
// initiation, callback reconciliation, reads, disbursements, and the
// sweep of requests the gateway never answered.
type Service interface {
	InitiatePayment(ctx context.Context, userID uint, req *models.InitiatePaymentRequest) (*models.MpesaPayment, error)
	HandleCallback(ctx context.Context, envelope *mpesa.CallbackEnvelope) error
	GetPayment(ctx context.Context, userID uint, paymentID string) (*models.MpesaPayment, error)
	ListPayments(ctx context.Context, userID uint, filter ListFilter) ([]models.MpesaPayment, int64, error)
	SendB2CPayment(ctx context.Context, userID uint, req *models.B2CPaymentRequest) (*mpesa.B2CResponse, error)
	SweepStuckPayments(ctx context.Context) (int, error)
}
