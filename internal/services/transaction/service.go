// Package transaction exposes the read side of the ledger. Writes come
// from the payment reconciler or from manual entries recorded here;
// ledger rows are append-only and never edited after creation.
package transaction

import (
	"context"
	"errors"
	"time"

	"pesaflow/internal/models"
	"pesaflow/internal/repositories"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAccessDenied        = errors.New("access denied for this business")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidType         = errors.New("invalid transaction type")
)

// AccessChecker scopes ledger reads to visible businesses.
type AccessChecker interface {
	CanAccessBusiness(ctx context.Context, userID, businessID uint) (bool, error)
	AccessibleBusinessIDs(ctx context.Context, userID, requestedID uint) ([]uint, error)
	IsBusinessAdmin(ctx context.Context, userID, businessID uint) (bool, error)
}

type Service interface {
	Record(ctx context.Context, userID uint, tx *models.Transaction) (*models.Transaction, error)
	Get(ctx context.Context, userID uint, txID string) (*models.Transaction, error)
	List(ctx context.Context, userID, businessID uint, txType string, limit, offset int) ([]models.Transaction, int64, error)
}

type service struct {
	transactions repositories.TransactionRepository
	access       AccessChecker
	now          func() time.Time
}

func NewService(transactions repositories.TransactionRepository, access AccessChecker) Service {
	return &service{
		transactions: transactions,
		access:       access,
		now:          time.Now,
	}
}

// Record stores a manual ledger entry, for money that moved outside the
// mobile-money gateway.
func (s *service) Record(ctx context.Context, userID uint, tx *models.Transaction) (*models.Transaction, error) {
	if tx.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	switch tx.Type {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
	default:
		return nil, ErrInvalidType
	}

	allowed, err := s.access.CanAccessBusiness(ctx, userID, tx.BusinessID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrAccessDenied
	}

	tx.UserID = userID
	if tx.Status == "" {
		tx.Status = models.TransactionStatusCompleted
	}
	if tx.TransactionDate.IsZero() {
		tx.TransactionDate = s.now()
	}

	if err := s.transactions.Create(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *service) Get(ctx context.Context, userID uint, txID string) (*models.Transaction, error) {
	tx, err := s.transactions.GetByID(txID)
	if err != nil {
		if err == repositories.ErrTransactionNotFound {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	allowed, err := s.access.CanAccessBusiness(ctx, userID, tx.BusinessID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrAccessDenied
	}
	return tx, nil
}

func (s *service) List(ctx context.Context, userID, businessID uint, txType string, limit, offset int) ([]models.Transaction, int64, error) {
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
	return s.transactions.List(scope, txType, limit, offset)
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
