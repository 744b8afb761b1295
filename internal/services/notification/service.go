package notification

import (
	"pesaflow/internal/models"
	"pesaflow/internal/repositories"
)

type Service interface {
	Create(n *models.Notification) error
	ListForUser(userID uint, unreadOnly bool, limit, offset int) ([]models.Notification, int64, error)
	MarkRead(id string, userID uint) error
	MarkAllRead(userID uint) (int64, error)
	UnreadCount(userID uint) (int64, error)
}

type service struct {
	repo repositories.NotificationRepository
}

func NewService(repo repositories.NotificationRepository) Service {
	return &service{repo: repo}
}

func (s *service) Create(n *models.Notification) error {
	if n.Priority == "" {
		n.Priority = models.NotificationPriorityMedium
	}
	return s.repo.Create(n)
}

func (s *service) ListForUser(userID uint, unreadOnly bool, limit, offset int) ([]models.Notification, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListForUser(userID, unreadOnly, limit, offset)
}

func (s *service) MarkRead(id string, userID uint) error {
	return s.repo.MarkRead(id, userID)
}

func (s *service) MarkAllRead(userID uint) (int64, error) {
	return s.repo.MarkAllRead(userID)
}

func (s *service) UnreadCount(userID uint) (int64, error) {
	return s.repo.CountUnread(userID)
}
