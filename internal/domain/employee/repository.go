package employee

import "context"

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (EmployeeProfile, error)
	// Create fails with ErrProfileExists when the id is taken.
	Create(ctx context.Context, profile EmployeeProfile) error
	Save(ctx context.Context, profile EmployeeProfile) error
	ListByRole(ctx context.Context, role Role) ([]EmployeeProfile, error)
	// Watch calls fn with the current profile, or nil while it does not exist.
	Watch(ctx context.Context, id string, fn func(*EmployeeProfile)) (func(), error)
}
