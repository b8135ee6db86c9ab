package document

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore"
	"github.com/google/uuid"
)

type NotificationRepository struct {
	collection[notification.Notification]
}

var _ notification.Repository = (*NotificationRepository)(nil)

func NewNotificationRepository(store docstore.Store) *NotificationRepository {
	return &NotificationRepository{collection[notification.Notification]{
		store:    store,
		name:     CollectionNotifications,
		encode:   encodeNotification,
		decode:   decodeNotification,
		notFound: notification.ErrNotificationNotFound,
	}}
}

func encodeNotification(n notification.Notification) docstore.Document {
	return docstore.Document{
		"audience":  n.Target.Audience(),
		"type":      string(n.Type),
		"category":  string(n.Category),
		"priority":  string(n.Priority),
		"title":     n.Title,
		"message":   n.Message,
		"actionUrl": n.ActionURL,
		"data":      n.Data,
		"read":      n.Read,
		"readAt":    docstore.TimestampPtr(n.ReadAt),
		"createdAt": docstore.Timestamp(n.CreatedAt),
	}
}

func decodeNotification(doc docstore.Document) notification.Notification {
	audience := doc.String("audience")
	target, _ := notification.ParseAudience(audience)
	return notification.Notification{
		ID:        doc.ID(),
		Target:    target,
		Audience:  audience,
		Type:      notification.Type(doc.String("type")),
		Category:  notification.Category(doc.String("category")),
		Priority:  notification.Priority(doc.String("priority")),
		Title:     doc.String("title"),
		Message:   doc.String("message"),
		ActionURL: doc.String("actionUrl"),
		Data:      doc.Map("data"),
		Read:      doc.Bool("read"),
		ReadAt:    doc.TimePtr("readAt"),
		CreatedAt: doc.Time("createdAt"),
	}
}

func (r *NotificationRepository) Create(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.Audience = n.Target.Audience()
	if err := r.put(ctx, n.ID, n); err != nil {
		return notification.Notification{}, err
	}
	return n, nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id string) (notification.Notification, error) {
	return r.get(ctx, id)
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, docstore.Document{
		"read":   true,
		"readAt": docstore.Timestamp(at),
	})
}

func audienceQuery(targets []notification.Target, unreadOnly bool) docstore.Query {
	audiences := make([]string, 0, len(targets))
	for _, t := range targets {
		audiences = append(audiences, t.Audience())
	}
	q := docstore.Query{
		Filters: []docstore.Filter{docstore.In("audience", toAny(audiences)...)},
		OrderBy: []docstore.OrderBy{{Field: "createdAt", Desc: true}},
	}
	if unreadOnly {
		q.Filters = append(q.Filters, docstore.Eq("read", false))
	}
	return q
}

func (r *NotificationRepository) ListByAudience(ctx context.Context, targets []notification.Target, unreadOnly bool) ([]notification.Notification, error) {
	return r.query(ctx, audienceQuery(targets, unreadOnly))
}

func (r *NotificationRepository) Watch(ctx context.Context, targets []notification.Target, unreadOnly bool, fn func([]notification.Notification)) (func(), error) {
	return r.watch(ctx, audienceQuery(targets, unreadOnly), fn)
}
