package performance

import "context"

type MeetingRepository interface {
	Create(ctx context.Context, m PerformanceMeeting) (PerformanceMeeting, error)
	GetByID(ctx context.Context, id string) (PerformanceMeeting, error)
	Update(ctx context.Context, m PerformanceMeeting) error
	ListByEmployee(ctx context.Context, employeeID string) ([]PerformanceMeeting, error)
}
