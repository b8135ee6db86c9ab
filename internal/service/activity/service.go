package activity

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/events"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/metrics"
	"go.uber.org/zap"
)

const defaultRecentLimit = 50

type recorder struct {
	repo      activity.Repository
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewRecorder appends entries to repo and then hands them to publisher.
// A nil publisher disables the event stream.
func NewRecorder(repo activity.Repository, publisher events.Publisher, m *metrics.Metrics, logger *zap.Logger) activity.Recorder {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &recorder{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger.Named("activity"),
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (r *recorder) Record(ctx context.Context, entry activity.ActivityLog) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.now()
	}

	saved, err := r.repo.Append(ctx, entry)
	if err != nil {
		r.metrics.SideEffectFailed(metrics.SideEffectActivity)
		r.logger.Warn("failed to record activity",
			zap.String("action", string(entry.Action)),
			zap.String("entity_type", string(entry.EntityType)),
			zap.String("entity_id", entry.EntityID),
			zap.Error(err),
		)
		return
	}

	r.publisher.Publish(events.Event{
		ID:         saved.ID,
		Action:     string(saved.Action),
		EmployeeID: saved.EmployeeID,
		EntityType: string(saved.EntityType),
		EntityID:   saved.EntityID,
		Before:     saved.Before,
		After:      saved.After,
		Timestamp:  saved.Timestamp,
	})
}

func (r *recorder) History(ctx context.Context, entityType activity.EntityType, entityID string) ([]activity.ActivityLog, error) {
	return r.repo.ListByEntity(ctx, entityType, entityID)
}

func (r *recorder) Recent(ctx context.Context, employeeID string, limit int) ([]activity.ActivityLog, error) {
	if limit <= 0 || limit > defaultRecentLimit {
		limit = defaultRecentLimit
	}
	return r.repo.ListByEmployee(ctx, employeeID, limit)
}
