// Package business manages tenants and their membership rosters. The
// creator of a business gets an admin membership automatically; all
// roster changes require the caller to hold the business_admin role.
package business

import (
	"context"

	"pesaflow/internal/models"
	"pesaflow/internal/repositories"
	"pesaflow/internal/services/access"
)

type Service interface {
	Create(ctx context.Context, ownerID uint, b *models.Business) (*models.Business, error)
	Get(ctx context.Context, userID, businessID uint) (*models.Business, error)
	ListAccessible(ctx context.Context, userID uint) ([]models.Business, error)
	AddMember(ctx context.Context, callerID, businessID, memberID uint, role string) (*models.Membership, error)
	RemoveMember(ctx context.Context, callerID, businessID, membershipID uint) error
	ListMembers(ctx context.Context, callerID, businessID uint) ([]models.Membership, error)
}

type service struct {
	businesses  repositories.BusinessRepository
	memberships repositories.MembershipRepository
	access      access.Service
}

func NewService(
	businesses repositories.BusinessRepository,
	memberships repositories.MembershipRepository,
	accessSvc access.Service,
) Service {
	return &service{
		businesses:  businesses,
		memberships: memberships,
		access:      accessSvc,
	}
}

func (s *service) Create(ctx context.Context, ownerID uint, b *models.Business) (*models.Business, error) {
	b.OwnerID = ownerID
	if err := s.businesses.Create(b); err != nil {
		return nil, err
	}

	m := &models.Membership{
		UserID:     ownerID,
		BusinessID: b.ID,
		Role:       models.MembershipRoleBusinessAdmin,
		IsActive:   true,
	}
	if err := s.memberships.Create(m); err != nil {
		return nil, err
	}

	if err := s.access.InvalidateUser(ctx, ownerID); err != nil {
		return b, nil
	}
	return b, nil
}

func (s *service) Get(ctx context.Context, userID, businessID uint) (*models.Business, error) {
	allowed, err := s.access.CanAccessBusiness(ctx, userID, businessID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrAccessDenied
	}

	b, err := s.businesses.GetByID(businessID)
	if err != nil {
		if err == repositories.ErrBusinessNotFound {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *service) ListAccessible(ctx context.Context, userID uint) ([]models.Business, error) {
	ids, err := s.access.AccessibleBusinessIDs(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	return s.businesses.ListByIDs(ids)
}

func (s *service) AddMember(ctx context.Context, callerID, businessID, memberID uint, role string) (*models.Membership, error) {
	switch role {
	case models.MembershipRoleBusinessAdmin, models.MembershipRoleStaff, models.MembershipRoleViewer:
	default:
		return nil, ErrInvalidRole
	}

	isAdmin, err := s.access.IsBusinessAdmin(ctx, callerID, businessID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, ErrNotAdmin
	}

	m := &models.Membership{
		UserID:     memberID,
		BusinessID: businessID,
		Role:       role,
		IsActive:   true,
		InvitedBy:  &callerID,
	}
	if err := s.memberships.Create(m); err != nil {
		return nil, err
	}

	if err := s.access.InvalidateUser(ctx, memberID); err != nil {
		return m, nil
	}
	return m, nil
}

func (s *service) RemoveMember(ctx context.Context, callerID, businessID, membershipID uint) error {
	isAdmin, err := s.access.IsBusinessAdmin(ctx, callerID, businessID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrNotAdmin
	}

	m, err := s.memberships.Deactivate(membershipID)
	if err != nil {
		return err
	}
	return s.access.InvalidateUser(ctx, m.UserID)
}

func (s *service) ListMembers(ctx context.Context, callerID, businessID uint) ([]models.Membership, error) {
	allowed, err := s.access.CanAccessBusiness(ctx, callerID, businessID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrAccessDenied
	}
	return s.memberships.ListForBusiness(businessID)
}
