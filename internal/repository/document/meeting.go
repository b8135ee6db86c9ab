package document

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/performance"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore"
	"github.com/google/uuid"
)

type MeetingRepository struct {
	collection[performance.PerformanceMeeting]
}

var _ performance.MeetingRepository = (*MeetingRepository)(nil)

func NewMeetingRepository(store docstore.Store) *MeetingRepository {
	return &MeetingRepository{collection[performance.PerformanceMeeting]{
		store:    store,
		name:     CollectionMeetings,
		encode:   encodeMeeting,
		decode:   decodeMeeting,
		notFound: performance.ErrMeetingNotFound,
	}}
}

func encodeMeeting(m performance.PerformanceMeeting) docstore.Document {
	return docstore.Document{
		"employeeId":      m.EmployeeID,
		"managerId":       m.ManagerID,
		"type":            string(m.Type),
		"title":           m.Title,
		"scheduledAt":     docstore.Timestamp(m.ScheduledAt),
		"durationMinutes": m.DurationMinutes,
		"location":        m.Location,
		"status":          string(m.Status),
		"notes":           m.Notes,
		"confirmedAt":     docstore.TimestampPtr(m.ConfirmedAt),
		"completedAt":     docstore.TimestampPtr(m.CompletedAt),
		"cancelledAt":     docstore.TimestampPtr(m.CancelledAt),
		"createdAt":       docstore.Timestamp(m.CreatedAt),
		"updatedAt":       docstore.Timestamp(m.UpdatedAt),
	}
}

func decodeMeeting(doc docstore.Document) performance.PerformanceMeeting {
	return performance.PerformanceMeeting{
		ID:              doc.ID(),
		EmployeeID:      doc.String("employeeId"),
		ManagerID:       doc.String("managerId"),
		Type:            performance.MeetingType(doc.String("type")),
		Title:           doc.String("title"),
		ScheduledAt:     doc.Time("scheduledAt"),
		DurationMinutes: doc.Int("durationMinutes"),
		Location:        doc.String("location"),
		Status:          performance.MeetingStatus(doc.String("status")),
		Notes:           doc.String("notes"),
		ConfirmedAt:     doc.TimePtr("confirmedAt"),
		CompletedAt:     doc.TimePtr("completedAt"),
		CancelledAt:     doc.TimePtr("cancelledAt"),
		CreatedAt:       doc.Time("createdAt"),
		UpdatedAt:       doc.Time("updatedAt"),
	}
}

func (r *MeetingRepository) Create(ctx context.Context, m performance.PerformanceMeeting) (performance.PerformanceMeeting, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := r.put(ctx, m.ID, m); err != nil {
		return performance.PerformanceMeeting{}, err
	}
	return m, nil
}

func (r *MeetingRepository) GetByID(ctx context.Context, id string) (performance.PerformanceMeeting, error) {
	return r.get(ctx, id)
}

func (r *MeetingRepository) Update(ctx context.Context, m performance.PerformanceMeeting) error {
	return r.update(ctx, m.ID, encodeMeeting(m))
}

// ListByEmployee returns meetings where employeeID is the employee or the
// manager, soonest first.
func (r *MeetingRepository) ListByEmployee(ctx context.Context, employeeID string) ([]performance.PerformanceMeeting, error) {
	asEmployee, err := r.query(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("employeeId", employeeID)},
	})
	if err != nil {
		return nil, err
	}
	asManager, err := r.query(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("managerId", employeeID)},
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(asEmployee))
	out := make([]performance.PerformanceMeeting, 0, len(asEmployee)+len(asManager))
	for _, m := range append(asEmployee, asManager...) {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out, nil
}
