package notification

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds notification service configuration
type Config struct {
	MaxRetries    uint64        // default: 3
	RetryInterval time.Duration // default: 200ms
}

type service struct {
	repo     notification.Repository
	profiles employee.ProfileRepository
	metrics  *metrics.Metrics
	logger   *zap.Logger
	config   Config
	now      func() time.Time
}

// NewNotificationService creates the fan-out service. Notifications are
// written once per target; role and broadcast audiences share one record.
func NewNotificationService(repo notification.Repository, profiles employee.ProfileRepository, m *metrics.Metrics, logger *zap.Logger, cfg Config) notification.Service {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = 200 * time.Millisecond
	}

	return &service{
		repo:     repo,
		profiles: profiles,
		metrics:  m,
		logger:   logger.Named("notification"),
		config:   cfg,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *service) retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(s.config.RetryInterval), s.config.MaxRetries)
	return backoff.WithContext(b, ctx)
}

// Notify stores one notification. Only storage failures are retried; the id
// is fixed up front so a retried write replaces rather than duplicates.
func (s *service) Notify(ctx context.Context, req notification.CreateNotificationRequest) (notification.Notification, error) {
	if err := req.Validate(); err != nil {
		return notification.Notification{}, err
	}

	n := req.Build()
	n.ID = uuid.NewString()
	n.CreatedAt = s.now()

	attempt := 0
	created, err := backoff.RetryWithData(func() (notification.Notification, error) {
		attempt++
		created, err := s.repo.Create(ctx, n)
		if err != nil && !docstore.IsStorageError(err) {
			return created, backoff.Permanent(err)
		}
		if err != nil {
			s.logger.Debug("notification write failed, retrying",
				zap.Int("attempt", attempt),
				zap.String("audience", n.Audience),
				zap.Error(err),
			)
		}
		return created, err
	}, s.retryPolicy(ctx))

	s.metrics.NotificationWritten(string(n.Target.Kind), err)
	if err != nil {
		return notification.Notification{}, err
	}
	return created, nil
}

func (s *service) Dispatch(ctx context.Context, req notification.CreateNotificationRequest) {
	if _, err := s.Notify(ctx, req); err != nil {
		s.metrics.SideEffectFailed(metrics.SideEffectNotification)
		s.logger.Warn("failed to dispatch notification",
			zap.String("target", req.Target.String()),
			zap.String("category", string(req.Category)),
			zap.Error(err),
		)
	}
}

// MarkAsRead is idempotent: an already read notification keeps its
// original ReadAt. A notification outside the employee's audience is
// reported as not found.
func (s *service) MarkAsRead(ctx context.Context, employeeID, notificationID string) (notification.Notification, error) {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return notification.Notification{}, err
	}
	visible, err := s.visibleTo(ctx, employeeID, n)
	if err != nil {
		return notification.Notification{}, err
	}
	if !visible {
		return notification.Notification{}, notification.ErrNotificationNotFound
	}
	if n.Read {
		return n, nil
	}

	readAt := s.now()
	if err := s.repo.MarkRead(ctx, notificationID, readAt); err != nil {
		return notification.Notification{}, err
	}
	n.Read = true
	n.ReadAt = &readAt
	return n, nil
}

func (s *service) visibleTo(ctx context.Context, employeeID string, n notification.Notification) (bool, error) {
	targets, err := s.AudienceOf(ctx, employeeID)
	if err != nil {
		return false, err
	}
	for _, t := range targets {
		if t.Audience() == n.Audience {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) GetUnread(ctx context.Context, employeeID string) ([]notification.Notification, error) {
	return s.List(ctx, employeeID, true)
}

func (s *service) List(ctx context.Context, employeeID string, unreadOnly bool) ([]notification.Notification, error) {
	targets, err := s.AudienceOf(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByAudience(ctx, targets, unreadOnly)
}

// AudienceOf returns the employee and broadcast targets, plus the
// employee's role once a profile exists.
func (s *service) AudienceOf(ctx context.Context, employeeID string) ([]notification.Target, error) {
	if employeeID == "" {
		return nil, employee.ErrEmployeeIDRequired
	}
	targets := []notification.Target{notification.Individual(employeeID), notification.Broadcast()}

	profile, err := s.profiles.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrProfileNotFound) {
			return targets, nil
		}
		return nil, err
	}
	return append(targets, notification.Role(string(profile.Role()))), nil
}
