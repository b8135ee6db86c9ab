package notification

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, n Notification) (Notification, error)
	GetByID(ctx context.Context, id string) (Notification, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
	// ListByAudience returns notifications for any of the given targets,
	// newest first.
	ListByAudience(ctx context.Context, targets []Target, unreadOnly bool) ([]Notification, error)
	Watch(ctx context.Context, targets []Target, unreadOnly bool, fn func([]Notification)) (func(), error)
}
