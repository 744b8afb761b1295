package repositories

import (
	"errors"
	"fmt"

	"pesaflow/internal/models"

	"gorm.io/gorm"
)

var ErrBusinessNotFound = errors.New("business not found")

// BusinessRepository defines tenant persistence operations.
type BusinessRepository interface {
	Create(business *models.Business) error
	GetByID(id uint) (*models.Business, error)
	AllIDs() ([]uint, error)
	ListByIDs(ids []uint) ([]models.Business, error)
}

type businessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) BusinessRepository {
	return &businessRepository{db: db}
}

func (r *businessRepository) Create(business *models.Business) error {
	if err := r.db.Create(business).Error; err != nil {
		return fmt.Errorf("failed to create business: %w", err)
	}
	return nil
}

func (r *businessRepository) GetByID(id uint) (*models.Business, error) {
	var business models.Business
	if err := r.db.First(&business, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}
	return &business, nil
}

func (r *businessRepository) AllIDs() ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.Business{}).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list business ids: %w", err)
	}
	return ids, nil
}

func (r *businessRepository) ListByIDs(ids []uint) ([]models.Business, error) {
	var businesses []models.Business
	if len(ids) == 0 {
		return businesses, nil
	}
	if err := r.db.Where("id IN ?", ids).Order("created_at DESC").Find(&businesses).Error; err != nil {
		return nil, fmt.Errorf("failed to list businesses: %w", err)
	}
	return businesses, nil
}
