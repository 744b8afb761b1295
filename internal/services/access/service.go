package access

import (
	"context"
	"log"

	"pesaflow/internal/models"
	"pesaflow/internal/repositories"
	"pesaflow/internal/repositories/cache"
)

// Service answers tenant access questions. Super admins see every
// business; everyone else sees only the businesses their active
// memberships cover.
type Service interface {
	IsBusinessAdmin(ctx context.Context, userID, businessID uint) (bool, error)
	HasRoleAtLeast(ctx context.Context, userID, businessID uint, required string) (bool, error)
	CanAccessBusiness(ctx context.Context, userID, businessID uint) (bool, error)
	AccessibleBusinessIDs(ctx context.Context, userID, requestedID uint) ([]uint, error)
	InvalidateUser(ctx context.Context, userID uint) error
}

type service struct {
	users       repositories.UserRepository
	memberships repositories.MembershipRepository
	businesses  repositories.BusinessRepository
	cache       *cache.CacheService
}

func NewService(
	users repositories.UserRepository,
	memberships repositories.MembershipRepository,
	businesses repositories.BusinessRepository,
	cacheService *cache.CacheService,
) Service {
	return &service{
		users:       users,
		memberships: memberships,
		businesses:  businesses,
		cache:       cacheService,
	}
}

// IsBusinessAdmin reports whether the user may administer the business.
// A platform super admin passes for every business without a membership
// row.
func (s *service) IsBusinessAdmin(ctx context.Context, userID, businessID uint) (bool, error) {
	return s.HasRoleAtLeast(ctx, userID, businessID, models.MembershipRoleBusinessAdmin)
}

func (s *service) HasRoleAtLeast(ctx context.Context, userID, businessID uint, required string) (bool, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return false, ErrUserNotFound
		}
		return false, err
	}
	if user.IsSuperAdmin() {
		return true, nil
	}

	memberships, err := s.memberships.ListForBusiness(businessID)
	if err != nil {
		return false, err
	}
	for _, m := range memberships {
		if m.UserID != userID || !m.IsActive {
			continue
		}
		if models.RoleAtLeast(m.Role, required) {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) CanAccessBusiness(ctx context.Context, userID, businessID uint) (bool, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return false, ErrUserNotFound
		}
		return false, err
	}
	if user.IsSuperAdmin() {
		return true, nil
	}
	return s.memberships.HasActiveMembership(userID, businessID)
}

// AccessibleBusinessIDs returns every business id visible to the user,
// optionally narrowed to one requested business (requestedID != 0). A
// requested business outside the visible set yields an empty slice, not
// an error. Results are cached briefly in Redis since the predicate
// runs on every list endpoint.
func (s *service) AccessibleBusinessIDs(ctx context.Context, userID, requestedID uint) ([]uint, error) {
	ids, err := s.allAccessibleIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if requestedID == 0 {
		return ids, nil
	}
	for _, id := range ids {
		if id == requestedID {
			return []uint{requestedID}, nil
		}
	}
	return []uint{}, nil
}

func (s *service) allAccessibleIDs(ctx context.Context, userID uint) ([]uint, error) {
	if s.cache != nil {
		if ids, found, err := s.cache.GetAccessIDs(ctx, userID); err == nil && found {
			return ids, nil
		}
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var ids []uint
	if user.IsSuperAdmin() {
		ids, err = s.businesses.AllIDs()
	} else {
		ids, err = s.memberships.ActiveBusinessIDs(userID)
	}
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint{}
	}

	if s.cache != nil {
		if err := s.cache.CacheAccessIDs(ctx, userID, ids); err != nil {
			log.Printf("Failed to cache access ids for user %d: %v", userID, err)
		}
	}
	return ids, nil
}

func (s *service) InvalidateUser(ctx context.Context, userID uint) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.InvalidateAccessIDs(ctx, userID)
}
