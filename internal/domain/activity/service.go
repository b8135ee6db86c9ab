package activity

import "context"

// Recorder writes the audit trail. Recording is best-effort: failures are
// logged and counted by the implementation and never reach the caller.
type Recorder interface {
	Record(ctx context.Context, entry ActivityLog)
	History(ctx context.Context, entityType EntityType, entityID string) ([]ActivityLog, error)
	// Recent lists an employee's latest entries, newest first.
	Recent(ctx context.Context, employeeID string, limit int) ([]ActivityLog, error)
}
