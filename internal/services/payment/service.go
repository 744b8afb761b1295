// Package payment drives the mobile-money payment lifecycle. Initiation
// creates a pending record before the gateway is touched, the callback
// reconciler finalizes records exactly once, and every side effect of a
// successful payment lands in a single database transaction.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"pesaflow/internal/models"
	"pesaflow/internal/repositories"
	"pesaflow/internal/services/mpesa"
)

type service struct {
	payments repositories.PaymentRepository
	gateway  Gateway
	access   AccessChecker
	now      func() time.Time
}

// NewService creates a payment service.
func NewService(payments repositories.PaymentRepository, gateway Gateway, access AccessChecker) Service {
	return &service{
		payments: payments,
		gateway:  gateway,
		access:   access,
		now:      time.Now,
	}
}

// InitiatePayment records a pending payment, asks the gateway to push
// the charge to the payer's device, and marks the record initiated with
// the gateway correlation ids. A gateway rejection marks the record
// failed; the record is never silently dropped.
func (s *service) InitiatePayment(ctx context.Context, userID uint, req *models.InitiatePaymentRequest) (*models.MpesaPayment, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.BusinessID == 0 {
		return nil, ErrBusinessRequired
	}

	phone := mpesa.NormalizePhone(req.PhoneNumber)
	if len(phone) < 12 {
		return nil, ErrInvalidPhoneNumber
	}

	allowed, err := s.access.CanAccessBusiness(ctx, userID, req.BusinessID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrAccessDenied
	}

	accountRef := req.AccountReference
	if accountRef == "" {
		accountRef = fmt.Sprintf("BIZ%d", req.BusinessID)
	}
	desc := req.TransactionDesc
	if desc == "" {
		desc = "Payment"
	}

	record := &models.MpesaPayment{
		BusinessID:       req.BusinessID,
		UserID:           userID,
		PhoneNumber:      phone,
		Amount:           req.Amount,
		Status:           models.PaymentStatusPending,
		InvoiceID:        req.InvoiceID,
		AccountReference: accountRef,
		TransactionDesc:  desc,
	}
	if err := s.payments.Create(record); err != nil {
		return nil, err
	}

	resp, err := s.gateway.STKPush(ctx, phone, req.Amount, accountRef, desc, "")
	if err != nil {
		if failErr := s.payments.MarkFailed(record.ID, err.Error()); failErr != nil {
			log.Printf("Failed to mark payment %s failed: %v", record.ID, failErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if !resp.Accepted() {
		msg := fmt.Sprintf("gateway rejected request: %s (%s)", resp.ResponseDescription, resp.ResponseCode)
		if failErr := s.payments.MarkFailed(record.ID, msg); failErr != nil {
			log.Printf("Failed to mark payment %s failed: %v", record.ID, failErr)
		}
		return nil, fmt.Errorf("%w: %s", ErrGatewayUnavailable, msg)
	}

	if err := s.payments.MarkInitiated(record.ID, resp.MerchantRequestID, resp.CheckoutRequestID); err != nil {
		return nil, err
	}

	return s.payments.GetByID(record.ID)
}

// HandleCallback reconciles a gateway callback against the payment it
// correlates with. Replays and races are harmless: only the one caller
// that wins the conditional initiated->terminal update applies side
// effects, everyone else observes an already-terminal record and
// returns without touching anything.
func (s *service) HandleCallback(ctx context.Context, envelope *mpesa.CallbackEnvelope) error {
	cb := envelope.Body.StkCallback
	if cb.CheckoutRequestID == "" {
		return ErrUnknownCallback
	}

	record, err := s.payments.GetByCheckoutRequestID(cb.CheckoutRequestID)
	if err != nil {
		if err == repositories.ErrPaymentNotFound {
			return ErrUnknownCallback
		}
		return err
	}

	if record.IsTerminal() {
		return nil
	}

	// Persist the whole notification body, metadata included, for audit.
	raw := models.JSON{}
	if buf, err := json.Marshal(envelope); err == nil {
		if err := json.Unmarshal(buf, &raw); err != nil {
			log.Printf("Failed to decode callback envelope for payment %s: %v", record.ID, err)
		}
	}
	if err := s.payments.SaveCallbackData(record.ID, raw); err != nil {
		log.Printf("Failed to save callback data for payment %s: %v", record.ID, err)
	}

	if cb.Succeeded() {
		return s.completePayment(record, &cb)
	}
	return s.failPayment(record, cb.ResultDesc)
}

// completePayment applies every success side effect atomically: the
// payment transition, the notification, and, when an invoice is linked,
// the ledger entry and invoice settlement commit or roll back together.
func (s *service) completePayment(record *models.MpesaPayment, cb *mpesa.StkCallback) error {
	receipt := ""
	if r := cb.ReceiptNumber(); r != nil {
		receipt = *r
	}
	txDate := ""
	if d := cb.TransactionDate(); d != nil {
		txDate = *d
	}
	amount := record.Amount
	if a := cb.Amount(); a != nil {
		amount = *a
	}
	completedAt := s.now()

	return s.payments.ExecuteInTransaction(func(repo repositories.PaymentRepository) error {
		moved, err := repo.TransitionToCompleted(record.ID, receipt, txDate, completedAt)
		if err != nil {
			return err
		}
		if !moved {
			// Another delivery won the race; nothing left to do.
			return nil
		}

		// The ledger entry only exists for invoiced payments; ad-hoc
		// collections stay off the books until someone records them.
		if record.InvoiceID != nil {
			ledgerTx := &models.Transaction{
				BusinessID:      record.BusinessID,
				UserID:          record.UserID,
				Amount:          amount,
				Currency:        record.Currency,
				Type:            models.TransactionTypeIncome,
				PaymentMethod:   models.PaymentMethodMpesa,
				Status:          models.TransactionStatusCompleted,
				Description:     record.TransactionDesc,
				ReferenceNumber: receipt,
				ExternalID:      record.ID,
				Category:        "mpesa",
				InvoiceID:       record.InvoiceID,
				TransactionDate: completedAt,
			}
			if err := repo.CreateTransaction(ledgerTx); err != nil {
				return err
			}
			if err := repo.MarkInvoicePaid(*record.InvoiceID, completedAt); err != nil {
				return err
			}
		}

		return repo.CreateNotification(&models.Notification{
			UserID:       record.UserID,
			BusinessID:   &record.BusinessID,
			Title:        "Payment received",
			Message:      fmt.Sprintf("M-Pesa payment of %.2f %s received (%s)", amount, record.Currency, receipt),
			Type:         models.NotificationTypeMpesaPayment,
			Priority:     models.NotificationPriorityHigh,
			ResourceType: "mpesa_payment",
			ResourceID:   record.ID,
		})
	})
}

func (s *service) failPayment(record *models.MpesaPayment, reason string) error {
	return s.payments.ExecuteInTransaction(func(repo repositories.PaymentRepository) error {
		moved, err := repo.TransitionToFailed(record.ID, reason)
		if err != nil {
			return err
		}
		if !moved {
			return nil
		}

		return repo.CreateNotification(&models.Notification{
			UserID:       record.UserID,
			BusinessID:   &record.BusinessID,
			Title:        "Payment failed",
			Message:      fmt.Sprintf("M-Pesa payment of %.2f %s failed: %s", record.Amount, record.Currency, reason),
			Type:         models.NotificationTypeMpesaPayment,
			Priority:     models.NotificationPriorityMedium,
			ResourceType: "mpesa_payment",
			ResourceID:   record.ID,
		})
	})
}

func (s *service) GetPayment(ctx context.Context, userID uint, paymentID string) (*models.MpesaPayment, error) {
	record, err := s.payments.GetByID(paymentID)
	if err != nil {
		if err == repositories.ErrPaymentNotFound {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	allowed, err := s.access.CanAccessBusiness(ctx, userID, record.BusinessID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrAccessDenied
	}
	return record, nil
}

func (s *service) ListPayments(ctx context.Context, userID uint, filter ListFilter) ([]models.MpesaPayment, int64, error) {
	filter.normalize()

	ids, err := s.access.AccessibleBusinessIDs(ctx, userID, filter.BusinessID)
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return []models.MpesaPayment{}, 0, nil
	}

	return s.payments.List(ids, filter.Status, filter.Limit, filter.Offset)
}

// SendB2CPayment disburses money out to a customer wallet. Restricted to
// business admins because it moves funds outward.
func (s *service) SendB2CPayment(ctx context.Context, userID uint, req *models.B2CPaymentRequest) (*mpesa.B2CResponse, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.BusinessID == 0 {
		return nil, ErrBusinessRequired
	}

	allowed, err := s.access.IsBusinessAdmin(ctx, userID, req.BusinessID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrAccessDenied
	}

	resp, err := s.gateway.B2CPayment(ctx, req.PhoneNumber, req.Amount, req.Remarks, req.Occasion)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	return resp, nil
}

// SweepStuckPayments queries the gateway for initiated payments whose
// callback never arrived and finalizes the ones the gateway already
// settled. Returns how many records were resolved.
func (s *service) SweepStuckPayments(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-stuckAfter)
	stuck, err := s.payments.ListStuckInitiated(cutoff)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, record := range stuck {
		if record.CheckoutRequestID == nil {
			continue
		}

		status, err := s.gateway.QuerySTKStatus(ctx, *record.CheckoutRequestID)
		if err != nil {
			log.Printf("Status query failed for payment %s: %v", record.ID, err)
			continue
		}

		switch {
		case status.ResultCode == "0":
			cb := mpesa.StkCallback{
				MerchantRequestID: status.MerchantRequestID,
				CheckoutRequestID: status.CheckoutRequestID,
				ResultCode:        mpesa.ResultCodeSuccess,
				ResultDesc:        status.ResultDesc,
			}
			if err := s.completePayment(&record, &cb); err != nil {
				log.Printf("Failed to complete swept payment %s: %v", record.ID, err)
				continue
			}
			resolved++
		case status.ResultCode != "":
			reason := status.ResultDesc
			if reason == "" {
				reason = "rejected by gateway"
			}
			if err := s.failPayment(&record, reason); err != nil {
				log.Printf("Failed to fail swept payment %s: %v", record.ID, err)
				continue
			}
			resolved++
		}
	}
	return resolved, nil
}
