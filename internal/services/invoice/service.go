// Package invoice manages customer invoices. Settlement normally
// arrives through the payment reconciler, which flips an invoice to
// paid inside the payment's own database transaction.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pesaflow/internal/models"
	"pesaflow/internal/repositories"
)

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrAccessDenied    = errors.New("access denied for this business")
	ErrInvalidAmount   = errors.New("invoice total must be greater than zero")
)

// AccessChecker scopes invoice reads and writes to visible businesses.
type AccessChecker interface {
	CanAccessBusiness(ctx context.Context, userID, businessID uint) (bool, error)
	AccessibleBusinessIDs(ctx context.Context, userID, requestedID uint) ([]uint, error)
	IsBusinessAdmin(ctx context.Context, userID, businessID uint) (bool, error)
}

type Service interface {
	Create(ctx context.Context, userID uint, invoice *models.Invoice) (*models.Invoice, error)
	Get(ctx context.Context, userID uint, invoiceID string) (*models.Invoice, error)
	List(ctx context.Context, userID, businessID uint, status string, limit, offset int) ([]models.Invoice, int64, error)
	MarkSent(ctx context.Context, userID uint, invoiceID string) (*models.Invoice, error)
	MarkPaid(ctx context.Context, userID uint, invoiceID string) (*models.Invoice, error)
	Cancel(ctx context.Context, userID uint, invoiceID string) (*models.Invoice, error)
}

type service struct {
	invoices repositories.InvoiceRepository
	access   AccessChecker
	now      func() time.Time
}

func NewService(invoices repositories.InvoiceRepository, access AccessChecker) Service {
	return &service{
		invoices: invoices,
		access:   access,
		now:      time.Now,
	}
}

func (s *service) Create(ctx context.Context, userID uint, invoice *models.Invoice) (*models.Invoice, error) {
	if invoice.TotalAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	allowed, err := s.access.CanAccessBusiness(ctx, userID, invoice.BusinessID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrAccessDenied
	}

	invoice.UserID = userID
	invoice.Status = models.InvoiceStatusDraft
	if invoice.InvoiceNumber == "" {
		invoice.InvoiceNumber = fmt.Sprintf("INV-%d-%d", invoice.BusinessID, s.now().UnixNano())
	}
	if invoice.IssueDate.IsZero() {
		invoice.IssueDate = s.now()
	}

	if err := s.invoices.Create(invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *service) Get(ctx context.Context, userID uint, invoiceID string) (*models.Invoice, error) {
	invoice, err := s.invoices.GetByID(invoiceID)
	if err != nil {
		if err == repositories.ErrInvoiceNotFound {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}

	allowed, err := s.access.CanAccessBusiness(ctx, userID, invoice.BusinessID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrAccessDenied
	}
	return invoice, nil
}

func (s *service) List(ctx context.Context, userID, businessID uint, status string, limit, offset int) ([]models.Invoice, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	scope, err := tenantScope(ctx, s.access, userID, businessID)
	if err != nil {
		return nil, 0, err
	}
	return s.invoices.List(scope, status, limit, offset)
}

// tenantScope splits visible businesses by role: admins see every row,
// staff and viewers only see rows they created. A non-zero requestedID
// narrows the scope to that one business.
func tenantScope(ctx context.Context, access AccessChecker, userID, requestedID uint) (repositories.TenantScope, error) {
	scope := repositories.TenantScope{UserID: userID}

	ids, err := access.AccessibleBusinessIDs(ctx, userID, requestedID)
	if err != nil {
		return scope, err
	}
	for _, id := range ids {
		admin, err := access.IsBusinessAdmin(ctx, userID, id)
		if err != nil {
			return scope, err
		}
		if admin {
			scope.AdminIDs = append(scope.AdminIDs, id)
		} else {
			scope.MemberIDs = append(scope.MemberIDs, id)
		}
	}
	return scope, nil
}

func (s *service) MarkSent(ctx context.Context, userID uint, invoiceID string) (*models.Invoice, error) {
	return s.transition(ctx, userID, invoiceID, models.InvoiceStatusDraft, models.InvoiceStatusSent)
}

// MarkPaid settles an invoice by hand, for payments received outside
// the gateway (cash, bank transfer).
func (s *service) MarkPaid(ctx context.Context, userID uint, invoiceID string) (*models.Invoice, error) {
	invoice, err := s.Get(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	switch invoice.Status {
	case models.InvoiceStatusPaid:
		return invoice, nil
	case models.InvoiceStatusCancelled:
		return nil, errors.New("cancelled invoices cannot be marked paid")
	}
	now := s.now()
	invoice.Status = models.InvoiceStatusPaid
	invoice.PaidAt = &now
	if err := s.invoices.Update(invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *service) Cancel(ctx context.Context, userID uint, invoiceID string) (*models.Invoice, error) {
	invoice, err := s.Get(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoiceStatusPaid {
		return nil, errors.New("paid invoices cannot be cancelled")
	}
	invoice.Status = models.InvoiceStatusCancelled
	if err := s.invoices.Update(invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *service) transition(ctx context.Context, userID uint, invoiceID, from, to string) (*models.Invoice, error) {
	invoice, err := s.Get(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != from {
		return nil, fmt.Errorf("invoice is %s, expected %s", invoice.Status, from)
	}
	invoice.Status = to
	if err := s.invoices.Update(invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}
