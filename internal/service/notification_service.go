package service

import (
	"iwala99_backend/internal/model"
	"iwala99_backend/internal/repository"
	"iwala99_backend/pkg/logger"

	"go.uber.org/zap"
)

type NotificationService struct {
	NotificationRepo *repository.NotificationRepository
	Hub              *RealtimeHub
}

func NewNotificationService(notificationRepo *repository.NotificationRepository, hub *RealtimeHub) *NotificationService {
	return &NotificationService{
		NotificationRepo: notificationRepo,
		Hub:              hub,
	}
}

// Notify persists the notification and pushes it over the socket if the
// user is connected. Failure to deliver is never an error for the caller.
func (s *NotificationService) Notify(userID uint, typ model.NotificationType, title, message string, data map[string]interface{}) {
	notification := &model.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		Data:    data,
	}

	if err := s.NotificationRepo.Create(notification); err != nil {
		logger.Log.Error("Failed to create notification",
			zap.Uint("userId", userID), zap.String("type", string(typ)), zap.Error(err))
		return
	}

	if s.Hub != nil {
		s.Hub.PushToUsers([]uint{userID}, WSMessage{
			Type: EventNotification,
			Data: notification,
		})
	}
}

func (s *NotificationService) List(userID uint) ([]model.Notification, int64, error) {
	notifications, err := s.NotificationRepo.FindByUser(userID, 50)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.NotificationRepo.CountUnread(userID)
	if err != nil {
		return nil, 0, err
	}
	return notifications, unread, nil
}

func (s *NotificationService) MarkRead(id string, userID uint) error {
	return s.NotificationRepo.MarkRead(id, userID)
}

func (s *NotificationService) MarkAllRead(userID uint) error {
	return s.NotificationRepo.MarkAllRead(userID)
}

func (s *NotificationService) Delete(id string, userID uint) error {
	return s.NotificationRepo.Delete(id, userID)
}
