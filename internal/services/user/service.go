package user

import (
	"errors"

	"pesaflow/internal/models"
	"pesaflow/internal/repositories"
)

type Service interface {
	GetByID(id uint) (*models.User, error)
	Update(user *models.User) error
}

type service struct {
	repo repositories.UserRepository
}

func NewService(repo repositories.UserRepository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) GetByID(id uint) (*models.User, error) {
	return s.repo.GetByID(id)
}

func (s *service) Update(user *models.User) error {
	if user.Email == "" {
		return errors.New("email is required")
	}
	return s.repo.Update(user)
}
