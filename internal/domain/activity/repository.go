package activity

import "context"

type Repository interface {
	Append(ctx context.Context, entry ActivityLog) (ActivityLog, error)
	ListByEntity(ctx context.Context, entityType EntityType, entityID string) ([]ActivityLog, error)
	ListByEmployee(ctx context.Context, employeeID string, limit int) ([]ActivityLog, error)
}
