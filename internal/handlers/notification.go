package handlers

import (
	"pesaflow/internal/models"
	"pesaflow/internal/services/notification"
	"pesaflow/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	notificationService notification.Service
}

func NewNotificationHandler(notificationService notification.Service) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// ListNotifications returns the caller's notifications, newest first.
func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	notifications, total, err := h.notificationService.ListForUser(
		claims.UserID,
		c.QueryBool("unread"),
		c.QueryInt("limit", 20),
		c.QueryInt("offset", 0),
	)
	if err != nil {
		return utils.InternalError(c, "Failed to list notifications")
	}

	return utils.Success(c, fiber.Map{
		"notifications": notifications,
		"total":         total,
	})
}

// MarkNotificationRead marks one notification read.
func (h *NotificationHandler) MarkNotificationRead(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	if err := h.notificationService.MarkRead(c.Params("id"), claims.UserID); err != nil {
		return utils.NotFound(c, "Notification not found")
	}

	return utils.Success(c, fiber.Map{"message": "Notification marked read"})
}

// UnreadNotificationCount returns how many notifications are unread.
func (h *NotificationHandler) UnreadNotificationCount(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	count, err := h.notificationService.UnreadCount(claims.UserID)
	if err != nil {
		return utils.InternalError(c, "Failed to count notifications")
	}

	return utils.Success(c, fiber.Map{"unread": count})
}

// MarkAllNotificationsRead marks every unread notification read.
func (h *NotificationHandler) MarkAllNotificationsRead(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	count, err := h.notificationService.MarkAllRead(claims.UserID)
	if err != nil {
		return utils.InternalError(c, "Failed to mark notifications read")
	}

	return utils.Success(c, fiber.Map{"marked": count})
}
