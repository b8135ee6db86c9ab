package notification

import (
	"context"
)

// Service fans notifications out to their audience and answers
// per-employee reads.
type Service interface {
	// Notify validates and stores a notification, retrying transient
	// storage failures.
	Notify(ctx context.Context, req CreateNotificationRequest) (Notification, error)
	// Dispatch is Notify for side effects: failures are logged and counted,
	// never returned.
	Dispatch(ctx context.Context, req CreateNotificationRequest)

	// MarkAsRead marks a notification in employeeID's audience as read.
	MarkAsRead(ctx context.Context, employeeID, notificationID string) (Notification, error)
	GetUnread(ctx context.Context, employeeID string) ([]Notification, error)
	List(ctx context.Context, employeeID string, unreadOnly bool) ([]Notification, error)

	// AudienceOf lists the targets whose notifications employeeID sees.
	AudienceOf(ctx context.Context, employeeID string) ([]Target, error)
}
