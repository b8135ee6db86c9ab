package document

import (
	"context"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore"
	"github.com/google/uuid"
)

type ActivityRepository struct {
	collection[activity.ActivityLog]
}

var _ activity.Repository = (*ActivityRepository)(nil)

func NewActivityRepository(store docstore.Store) *ActivityRepository {
	return &ActivityRepository{collection[activity.ActivityLog]{
		store:    store,
		name:     CollectionActivityLogs,
		encode:   encodeActivity,
		decode:   decodeActivity,
		notFound: docstore.ErrNotFound,
	}}
}

func encodeActivity(a activity.ActivityLog) docstore.Document {
	return docstore.Document{
		"employeeId": a.EmployeeID,
		"action":     string(a.Action),
		"entityType": string(a.EntityType),
		"entityId":   a.EntityID,
		"before":     a.Before,
		"after":      a.After,
		"timestamp":  docstore.Timestamp(a.Timestamp),
	}
}

func decodeActivity(doc docstore.Document) activity.ActivityLog {
	return activity.ActivityLog{
		ID:         doc.ID(),
		EmployeeID: doc.String("employeeId"),
		Action:     activity.Action(doc.String("action")),
		EntityType: activity.EntityType(doc.String("entityType")),
		EntityID:   doc.String("entityId"),
		Before:     doc.Map("before"),
		After:      doc.Map("after"),
		Timestamp:  doc.Time("timestamp"),
	}
}

// Append stores a new entry. Entries are never updated. Generated ids are
// time-ordered, so entries sharing a timestamp still list in append order.
func (r *ActivityRepository) Append(ctx context.Context, a activity.ActivityLog) (activity.ActivityLog, error) {
	if a.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return activity.ActivityLog{}, err
		}
		a.ID = id.String()
	}
	if err := r.put(ctx, a.ID, a); err != nil {
		return activity.ActivityLog{}, err
	}
	return a, nil
}

func (r *ActivityRepository) ListByEntity(ctx context.Context, entityType activity.EntityType, entityID string) ([]activity.ActivityLog, error) {
	return r.query(ctx, docstore.Query{
		Filters: []docstore.Filter{
			docstore.Eq("entityType", string(entityType)),
			docstore.Eq("entityId", entityID),
		},
		OrderBy: []docstore.OrderBy{{Field: "timestamp"}, {Field: docstore.FieldID}},
	})
}

func (r *ActivityRepository) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]activity.ActivityLog, error) {
	return r.query(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("employeeId", employeeID)},
		OrderBy: []docstore.OrderBy{{Field: "timestamp", Desc: true}, {Field: docstore.FieldID, Desc: true}},
		Limit:   limit,
	})
}
