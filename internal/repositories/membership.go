package repositories

import (
	"errors"
	"fmt"

	"pesaflow/internal/models"

	"gorm.io/gorm"
)

var ErrMembershipNotFound = errors.New("membership not found")

// MembershipRepository answers the questions the access predicate layer
// asks: does an active row with a given role exist, and which business
// ids does a user's active membership set cover.
type MembershipRepository interface {
	Create(m *models.Membership) error
	HasActiveRole(userID, businessID uint, role string) (bool, error)
	HasActiveMembership(userID, businessID uint) (bool, error)
	ActiveBusinessIDs(userID uint) ([]uint, error)
	ListForBusiness(businessID uint) ([]models.Membership, error)
	Deactivate(membershipID uint) (*models.Membership, error)
}

type membershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Create(m *models.Membership) error {
	if err := r.db.Create(m).Error; err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

func (r *membershipRepository) HasActiveRole(userID, businessID uint, role string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Membership{}).
		Where("user_id = ? AND business_id = ? AND role = ? AND is_active = ?", userID, businessID, role, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check membership role: %w", err)
	}
	return count > 0, nil
}

func (r *membershipRepository) HasActiveMembership(userID, businessID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Membership{}).
		Where("user_id = ? AND business_id = ? AND is_active = ?", userID, businessID, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return count > 0, nil
}

func (r *membershipRepository) ActiveBusinessIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Membership{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Distinct().
		Pluck("business_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list membership business ids: %w", err)
	}
	return ids, nil
}

func (r *membershipRepository) ListForBusiness(businessID uint) ([]models.Membership, error) {
	var memberships []models.Membership
	err := r.db.Where("business_id = ?", businessID).
		Order("created_at DESC").
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return memberships, nil
}

func (r *membershipRepository) Deactivate(membershipID uint) (*models.Membership, error) {
	var m models.Membership
	if err := r.db.First(&m, membershipID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	m.IsActive = false
	if err := r.db.Save(&m).Error; err != nil {
		return nil, fmt.Errorf("failed to deactivate membership: %w", err)
	}
	return &m, nil
}
