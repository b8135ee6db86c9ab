package dataflow

import (
	"context"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/notification"
)

func (s *service) CreateNotification(ctx context.Context, req notification.CreateNotificationRequest) (notification.Notification, error) {
	return s.notifications.Notify(ctx, req)
}

func (s *service) MarkNotificationAsRead(ctx context.Context, employeeID, notificationID string) (notification.Notification, error) {
	return s.notifications.MarkAsRead(ctx, employeeID, notificationID)
}

func (s *service) GetUnreadNotifications(ctx context.Context, employeeID string) ([]notification.Notification, error) {
	return s.notifications.GetUnread(ctx, employeeID)
}

func (s *service) ListNotifications(ctx context.Context, employeeID string, unreadOnly bool) ([]notification.Notification, error) {
	return s.notifications.List(ctx, employeeID, unreadOnly)
}
