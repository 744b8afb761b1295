package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"pesaflow/internal/models"
	"pesaflow/internal/repositories"
	"pesaflow/internal/services/mpesa"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) Create(p *models.MpesaPayment) error {
	args := m.Called(p)
	if p.ID == "" {
		p.ID = "payment-1"
	}
	return args.Error(0)
}

func (m *mockPaymentRepo) GetByID(id string) (*models.MpesaPayment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MpesaPayment), args.Error(1)
}

func (m *mockPaymentRepo) GetByCheckoutRequestID(id string) (*models.MpesaPayment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MpesaPayment), args.Error(1)
}

func (m *mockPaymentRepo) List(businessIDs []uint, status string, limit, offset int) ([]models.MpesaPayment, int64, error) {
	args := m.Called(businessIDs, status, limit, offset)
	return args.Get(0).([]models.MpesaPayment), args.Get(1).(int64), args.Error(2)
}

func (m *mockPaymentRepo) MarkInitiated(id, merchantRequestID, checkoutRequestID string) error {
	args := m.Called(id, merchantRequestID, checkoutRequestID)
	return args.Error(0)
}

func (m *mockPaymentRepo) MarkFailed(id, errorMessage string) error {
	args := m.Called(id, errorMessage)
	return args.Error(0)
}

func (m *mockPaymentRepo) SaveCallbackData(id string, data models.JSON) error {
	args := m.Called(id, data)
	return args.Error(0)
}

func (m *mockPaymentRepo) TransitionToCompleted(id, receiptNumber, transactionDate string, completedAt time.Time) (bool, error) {
	args := m.Called(id, receiptNumber, transactionDate, completedAt)
	return args.Bool(0), args.Error(1)
}

func (m *mockPaymentRepo) TransitionToFailed(id, errorMessage string) (bool, error) {
	args := m.Called(id, errorMessage)
	return args.Bool(0), args.Error(1)
}

func (m *mockPaymentRepo) ListStuckInitiated(olderThan time.Time) ([]models.MpesaPayment, error) {
	args := m.Called(olderThan)
	return args.Get(0).([]models.MpesaPayment), args.Error(1)
}

func (m *mockPaymentRepo) CreateTransaction(tx *models.Transaction) error {
	args := m.Called(tx)
	return args.Error(0)
}

func (m *mockPaymentRepo) MarkInvoicePaid(invoiceID string, paidAt time.Time) error {
	args := m.Called(invoiceID, paidAt)
	return args.Error(0)
}

func (m *mockPaymentRepo) CreateNotification(n *models.Notification) error {
	args := m.Called(n)
	return args.Error(0)
}

func (m *mockPaymentRepo) ExecuteInTransaction(fn func(repo repositories.PaymentRepository) error) error {
	m.Called(fn)
	return fn(m)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) STKPush(ctx context.Context, phone string, amount float64, accountReference, transactionDesc, callbackURL string) (*mpesa.STKPushResponse, error) {
	args := m.Called(ctx, phone, amount, accountReference, transactionDesc, callbackURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mpesa.STKPushResponse), args.Error(1)
}

func (m *mockGateway) QuerySTKStatus(ctx context.Context, checkoutRequestID string) (*mpesa.STKQueryResponse, error) {
	args := m.Called(ctx, checkoutRequestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mpesa.STKQueryResponse), args.Error(1)
}

func (m *mockGateway) B2CPayment(ctx context.Context, phone string, amount float64, remarks, occasion string) (*mpesa.B2CResponse, error) {
	args := m.Called(ctx, phone, amount, remarks, occasion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mpesa.B2CResponse), args.Error(1)
}

type mockAccess struct {
	mock.Mock
}

func (m *mockAccess) CanAccessBusiness(ctx context.Context, userID, businessID uint) (bool, error) {
	args := m.Called(ctx, userID, businessID)
	return args.Bool(0), args.Error(1)
}

func (m *mockAccess) AccessibleBusinessIDs(ctx context.Context, userID, requestedID uint) ([]uint, error) {
	args := m.Called(ctx, userID, requestedID)
	return args.Get(0).([]uint), args.Error(1)
}

func (m *mockAccess) IsBusinessAdmin(ctx context.Context, userID, businessID uint) (bool, error) {
	args := m.Called(ctx, userID, businessID)
	return args.Bool(0), args.Error(1)
}

func newTestService(repo *mockPaymentRepo, gw *mockGateway, access *mockAccess) *service {
	return &service{
		payments: repo,
		gateway:  gw,
		access:   access,
		now:      func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) },
	}
}

func successEnvelope() *mpesa.CallbackEnvelope {
	return &mpesa.CallbackEnvelope{
		Body: mpesa.CallbackBody{
			StkCallback: mpesa.StkCallback{
				MerchantRequestID: "merchant-1",
				CheckoutRequestID: "checkout-1",
				ResultCode:        0,
				ResultDesc:        "The service request is processed successfully.",
				CallbackMetadata: &mpesa.CallbackMetadata{
					Item: []mpesa.CallbackItem{
						{Name: "Amount", Value: 150.0},
						{Name: "MpesaReceiptNumber", Value: "NLJ7RT61SV"},
						{Name: "TransactionDate", Value: "20260314120000"},
					},
				},
			},
		},
	}
}

func initiatedPayment() *models.MpesaPayment {
	checkout := "checkout-1"
	return &models.MpesaPayment{
		ID:                "payment-1",
		BusinessID:        7,
		UserID:            3,
		PhoneNumber:       "254712345678",
		Amount:            150,
		Currency:          "KES",
		Status:            models.PaymentStatusInitiated,
		CheckoutRequestID: &checkout,
		TransactionDesc:   "Order 42",
	}
}

func TestInitiatePaymentHappyPath(t *testing.T) {
	repo := new(mockPaymentRepo)
	gw := new(mockGateway)
	access := new(mockAccess)
	svc := newTestService(repo, gw, access)

	access.On("CanAccessBusiness", mock.Anything, uint(3), uint(7)).Return(true, nil)
	repo.On("Create", mock.AnythingOfType("*models.MpesaPayment")).Return(nil)
	gw.On("STKPush", mock.Anything, "254712345678", 150.0, "ORDER42", "Order 42", "").
		Return(&mpesa.STKPushResponse{
			MerchantRequestID: "merchant-1",
			CheckoutRequestID: "checkout-1",
			ResponseCode:      "0",
		}, nil)
	repo.On("MarkInitiated", "payment-1", "merchant-1", "checkout-1").Return(nil)
	repo.On("GetByID", "payment-1").Return(initiatedPayment(), nil)

	record, err := svc.InitiatePayment(context.Background(), 3, &models.InitiatePaymentRequest{
		BusinessID:       7,
		PhoneNumber:      "0712345678",
		Amount:           150,
		AccountReference: "ORDER42",
		TransactionDesc:  "Order 42",
	})

	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusInitiated, record.Status)
	repo.AssertExpectations(t)
	gw.AssertExpectations(t)
}

func TestInitiatePaymentGatewayFailureMarksRecordFailed(t *testing.T) {
	repo := new(mockPaymentRepo)
	gw := new(mockGateway)
	access := new(mockAccess)
	svc := newTestService(repo, gw, access)

	access.On("CanAccessBusiness", mock.Anything, uint(3), uint(7)).Return(true, nil)
	repo.On("Create", mock.AnythingOfType("*models.MpesaPayment")).Return(nil)
	gw.On("STKPush", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))
	repo.On("MarkFailed", "payment-1", mock.AnythingOfType("string")).Return(nil)

	_, err := svc.InitiatePayment(context.Background(), 3, &models.InitiatePaymentRequest{
		BusinessID:  7,
		PhoneNumber: "0712345678",
		Amount:      150,
	})

	assert.ErrorIs(t, err, ErrGatewayUnavailable)
	repo.AssertCalled(t, "MarkFailed", "payment-1", mock.AnythingOfType("string"))
}

func TestInitiatePaymentDeniedForOutsider(t *testing.T) {
	repo := new(mockPaymentRepo)
	gw := new(mockGateway)
	access := new(mockAccess)
	svc := newTestService(repo, gw, access)

	access.On("CanAccessBusiness", mock.Anything, uint(3), uint(7)).Return(false, nil)

	_, err := svc.InitiatePayment(context.Background(), 3, &models.InitiatePaymentRequest{
		BusinessID:  7,
		PhoneNumber: "0712345678",
		Amount:      150,
	})

	assert.ErrorIs(t, err, ErrAccessDenied)
	repo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestInitiatePaymentRejectsBadAmount(t *testing.T) {
	svc := newTestService(new(mockPaymentRepo), new(mockGateway), new(mockAccess))

	_, err := svc.InitiatePayment(context.Background(), 3, &models.InitiatePaymentRequest{
		BusinessID:  7,
		PhoneNumber: "0712345678",
		Amount:      0,
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestHandleCallbackSuccessAppliesAllSideEffects(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := newTestService(repo, new(mockGateway), new(mockAccess))
	record := initiatedPayment()
	invoiceID := "invoice-1"
	record.InvoiceID = &invoiceID

	repo.On("GetByCheckoutRequestID", "checkout-1").Return(record, nil)
	repo.On("SaveCallbackData", "payment-1", mock.Anything).Return(nil)
	repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
	repo.On("TransitionToCompleted", "payment-1", "NLJ7RT61SV", "20260314120000", mock.Anything).Return(true, nil)
	repo.On("CreateTransaction", mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.BusinessID == 7 &&
			tx.Amount == 150.0 &&
			tx.Type == models.TransactionTypeIncome &&
			tx.PaymentMethod == models.PaymentMethodMpesa &&
			tx.ReferenceNumber == "NLJ7RT61SV"
	})).Return(nil)
	repo.On("MarkInvoicePaid", "invoice-1", mock.Anything).Return(nil)
	repo.On("CreateNotification", mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == 3 && n.Type == models.NotificationTypeMpesaPayment
	})).Return(nil)

	err := svc.HandleCallback(context.Background(), successEnvelope())
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestHandleCallbackWithoutInvoiceSkipsLedgerEntry(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := newTestService(repo, new(mockGateway), new(mockAccess))

	// No invoice linked: the payment completes and notifies, but no
	// ledger Transaction and no invoice mutation happen.
	repo.On("GetByCheckoutRequestID", "checkout-1").Return(initiatedPayment(), nil)
	repo.On("SaveCallbackData", "payment-1", mock.Anything).Return(nil)
	repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
	repo.On("TransitionToCompleted", "payment-1", "NLJ7RT61SV", "20260314120000", mock.Anything).Return(true, nil)
	repo.On("CreateNotification", mock.Anything).Return(nil)

	err := svc.HandleCallback(context.Background(), successEnvelope())
	require.NoError(t, err)
	repo.AssertNotCalled(t, "CreateTransaction", mock.Anything)
	repo.AssertNotCalled(t, "MarkInvoicePaid", mock.Anything, mock.Anything)
	repo.AssertCalled(t, "CreateNotification", mock.Anything)
}

func TestHandleCallbackPersistsFullEnvelope(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := newTestService(repo, new(mockGateway), new(mockAccess))

	repo.On("GetByCheckoutRequestID", "checkout-1").Return(initiatedPayment(), nil)
	repo.On("SaveCallbackData", "payment-1", mock.MatchedBy(func(data models.JSON) bool {
		body, ok := data["Body"].(map[string]interface{})
		if !ok {
			return false
		}
		cb, ok := body["stkCallback"].(map[string]interface{})
		if !ok {
			return false
		}
		return cb["CheckoutRequestID"] == "checkout-1" && cb["CallbackMetadata"] != nil
	})).Return(nil)
	repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
	repo.On("TransitionToCompleted", "payment-1", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	repo.On("CreateNotification", mock.Anything).Return(nil)

	err := svc.HandleCallback(context.Background(), successEnvelope())
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestHandleCallbackReplayOnTerminalRecordIsNoOp(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := newTestService(repo, new(mockGateway), new(mockAccess))
	record := initiatedPayment()
	record.Status = models.PaymentStatusCompleted

	repo.On("GetByCheckoutRequestID", "checkout-1").Return(record, nil)

	err := svc.HandleCallback(context.Background(), successEnvelope())
	require.NoError(t, err)
	repo.AssertNotCalled(t, "TransitionToCompleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "CreateTransaction", mock.Anything)
}

func TestHandleCallbackRaceLoserAppliesNoSideEffects(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := newTestService(repo, new(mockGateway), new(mockAccess))

	repo.On("GetByCheckoutRequestID", "checkout-1").Return(initiatedPayment(), nil)
	repo.On("SaveCallbackData", "payment-1", mock.Anything).Return(nil)
	repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
	// The conditional update reports the row already left initiated.
	repo.On("TransitionToCompleted", "payment-1", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

	err := svc.HandleCallback(context.Background(), successEnvelope())
	require.NoError(t, err)
	repo.AssertNotCalled(t, "CreateTransaction", mock.Anything)
	repo.AssertNotCalled(t, "MarkInvoicePaid", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "CreateNotification", mock.Anything)
}

func TestHandleCallbackFailureRecordsReason(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := newTestService(repo, new(mockGateway), new(mockAccess))

	envelope := successEnvelope()
	envelope.Body.StkCallback.ResultCode = 1032
	envelope.Body.StkCallback.ResultDesc = "Request cancelled by user."
	envelope.Body.StkCallback.CallbackMetadata = nil

	repo.On("GetByCheckoutRequestID", "checkout-1").Return(initiatedPayment(), nil)
	repo.On("SaveCallbackData", "payment-1", mock.Anything).Return(nil)
	repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
	repo.On("TransitionToFailed", "payment-1", "Request cancelled by user.").Return(true, nil)
	repo.On("CreateNotification", mock.Anything).Return(nil)

	err := svc.HandleCallback(context.Background(), envelope)
	require.NoError(t, err)
	repo.AssertNotCalled(t, "CreateTransaction", mock.Anything)
	repo.AssertExpectations(t)
}

func TestHandleCallbackUnknownCorrelationID(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := newTestService(repo, new(mockGateway), new(mockAccess))

	repo.On("GetByCheckoutRequestID", "checkout-1").Return(nil, repositories.ErrPaymentNotFound)

	err := svc.HandleCallback(context.Background(), successEnvelope())
	assert.ErrorIs(t, err, ErrUnknownCallback)
}

func TestListPaymentsEmptyForUserWithNoBusinesses(t *testing.T) {
	repo := new(mockPaymentRepo)
	access := new(mockAccess)
	svc := newTestService(repo, new(mockGateway), access)

	access.On("AccessibleBusinessIDs", mock.Anything, uint(3), uint(0)).Return([]uint{}, nil)

	payments, total, err := svc.ListPayments(context.Background(), 3, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, payments)
	assert.Zero(t, total)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListPaymentsNarrowsToRequestedBusiness(t *testing.T) {
	repo := new(mockPaymentRepo)
	access := new(mockAccess)
	svc := newTestService(repo, new(mockGateway), access)

	access.On("AccessibleBusinessIDs", mock.Anything, uint(3), uint(7)).Return([]uint{7}, nil)
	repo.On("List", []uint{7}, "", 20, 0).Return([]models.MpesaPayment{}, int64(0), nil)

	_, _, err := svc.ListPayments(context.Background(), 3, ListFilter{BusinessID: 7})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestListPaymentsForForeignBusinessIsEmpty(t *testing.T) {
	repo := new(mockPaymentRepo)
	access := new(mockAccess)
	svc := newTestService(repo, new(mockGateway), access)

	access.On("AccessibleBusinessIDs", mock.Anything, uint(3), uint(99)).Return([]uint{}, nil)

	payments, total, err := svc.ListPayments(context.Background(), 3, ListFilter{BusinessID: 99})
	require.NoError(t, err)
	assert.Empty(t, payments)
	assert.Zero(t, total)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentLifecycleEndToEnd(t *testing.T) {
	repo := new(mockPaymentRepo)
	gw := new(mockGateway)
	access := new(mockAccess)
	svc := newTestService(repo, gw, access)

	invoiceID := "invoice-1"
	checkout := "checkout-1"
	record := &models.MpesaPayment{
		ID:                "payment-1",
		BusinessID:        7,
		UserID:            3,
		PhoneNumber:       "254712000111",
		Amount:            500,
		Currency:          "KES",
		Status:            models.PaymentStatusInitiated,
		CheckoutRequestID: &checkout,
		InvoiceID:         &invoiceID,
		TransactionDesc:   "Invoice settlement",
	}

	access.On("CanAccessBusiness", mock.Anything, uint(3), uint(7)).Return(true, nil)
	repo.On("Create", mock.AnythingOfType("*models.MpesaPayment")).Return(nil)
	gw.On("STKPush", mock.Anything, "254712000111", 500.0, mock.Anything, mock.Anything, "").
		Return(&mpesa.STKPushResponse{
			MerchantRequestID: "merchant-1",
			CheckoutRequestID: "checkout-1",
			ResponseCode:      "0",
		}, nil)
	repo.On("MarkInitiated", "payment-1", "merchant-1", "checkout-1").Return(nil)
	repo.On("GetByID", "payment-1").Return(record, nil)

	initiated, err := svc.InitiatePayment(context.Background(), 3, &models.InitiatePaymentRequest{
		BusinessID:      7,
		PhoneNumber:     "0712000111",
		Amount:          500,
		InvoiceID:       &invoiceID,
		TransactionDesc: "Invoice settlement",
	})
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusInitiated, initiated.Status)

	repo.On("GetByCheckoutRequestID", "checkout-1").Return(record, nil)
	repo.On("SaveCallbackData", "payment-1", mock.Anything).Return(nil)
	repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
	repo.On("TransitionToCompleted", "payment-1", "ABC123", "20260314120000", mock.Anything).Return(true, nil)
	repo.On("CreateTransaction", mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.Type == models.TransactionTypeIncome &&
			tx.PaymentMethod == models.PaymentMethodMpesa &&
			tx.Amount == 500.0 &&
			tx.ReferenceNumber == "ABC123" &&
			tx.InvoiceID != nil && *tx.InvoiceID == "invoice-1"
	})).Return(nil)
	repo.On("MarkInvoicePaid", "invoice-1", mock.Anything).Return(nil)
	repo.On("CreateNotification", mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == 3 && n.Priority == models.NotificationPriorityHigh
	})).Return(nil)

	envelope := &mpesa.CallbackEnvelope{
		Body: mpesa.CallbackBody{
			StkCallback: mpesa.StkCallback{
				MerchantRequestID: "merchant-1",
				CheckoutRequestID: "checkout-1",
				ResultCode:        0,
				ResultDesc:        "The service request is processed successfully.",
				CallbackMetadata: &mpesa.CallbackMetadata{
					Item: []mpesa.CallbackItem{
						{Name: "Amount", Value: 500.0},
						{Name: "MpesaReceiptNumber", Value: "ABC123"},
						{Name: "TransactionDate", Value: "20260314120000"},
					},
				},
			},
		},
	}
	require.NoError(t, svc.HandleCallback(context.Background(), envelope))

	repo.AssertExpectations(t)
	repo.AssertNumberOfCalls(t, "CreateTransaction", 1)
	repo.AssertNumberOfCalls(t, "MarkInvoicePaid", 1)
	repo.AssertNumberOfCalls(t, "CreateNotification", 1)
}

func TestSendB2CRequiresBusinessAdmin(t *testing.T) {
	gw := new(mockGateway)
	access := new(mockAccess)
	svc := newTestService(new(mockPaymentRepo), gw, access)

	access.On("IsBusinessAdmin", mock.Anything, uint(3), uint(7)).Return(false, nil)

	_, err := svc.SendB2CPayment(context.Background(), 3, &models.B2CPaymentRequest{
		BusinessID:  7,
		PhoneNumber: "0712345678",
		Amount:      500,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
	gw.AssertNotCalled(t, "B2CPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSweepResolvesSettledPayment(t *testing.T) {
	repo := new(mockPaymentRepo)
	gw := new(mockGateway)
	svc := newTestService(repo, gw, new(mockAccess))

	repo.On("ListStuckInitiated", mock.Anything).Return([]models.MpesaPayment{*initiatedPayment()}, nil)
	gw.On("QuerySTKStatus", mock.Anything, "checkout-1").Return(&mpesa.STKQueryResponse{
		CheckoutRequestID: "checkout-1",
		ResultCode:        "0",
		ResultDesc:        "The service request is processed successfully.",
	}, nil)
	repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
	repo.On("TransitionToCompleted", "payment-1", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	repo.On("CreateNotification", mock.Anything).Return(nil)

	resolved, err := svc.SweepStuckPayments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)
}
