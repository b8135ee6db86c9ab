// Package dataflow implements the orchestrator: each operation performs its
// primary write, then fans out notifications, then records activity.
// Notification and activity failures are logged and never undo the write.
package dataflow

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/dataflow"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/performance"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/policy"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/metrics"
	"go.uber.org/zap"
)

// Transactor runs fn atomically. Repository calls inside fn must use the
// context fn receives.
type Transactor interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Dependencies struct {
	Transactor      Transactor
	Profiles        employee.ProfileRepository
	LeaveTypes      leave.LeaveTypeRepository
	LeaveRequests   leave.LeaveRequestRepository
	LeaveBalances   leave.LeaveBalanceRepository
	Policies        policy.PolicyRepository
	Acknowledgments policy.AcknowledgmentRepository
	Meetings        performance.MeetingRepository
	Notifications   notification.Service
	Activity        activity.Recorder
	Metrics         *metrics.Metrics
	Logger          *zap.Logger
}

type service struct {
	tx              Transactor
	profiles        employee.ProfileRepository
	leaveTypes      leave.LeaveTypeRepository
	leaveRequests   leave.LeaveRequestRepository
	leaveBalances   leave.LeaveBalanceRepository
	policies        policy.PolicyRepository
	acknowledgments policy.AcknowledgmentRepository
	meetings        performance.MeetingRepository
	notifications   notification.Service
	activity        activity.Recorder
	metrics         *metrics.Metrics
	logger          *zap.Logger
	now             func() time.Time
}

func NewDataFlowService(deps Dependencies) dataflow.Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		tx:              deps.Transactor,
		profiles:        deps.Profiles,
		leaveTypes:      deps.LeaveTypes,
		leaveRequests:   deps.LeaveRequests,
		leaveBalances:   deps.LeaveBalances,
		policies:        deps.Policies,
		acknowledgments: deps.Acknowledgments,
		meetings:        deps.Meetings,
		notifications:   deps.Notifications,
		activity:        deps.Activity,
		metrics:         deps.Metrics,
		logger:          logger.Named("dataflow"),
		now:             func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// observe is deferred by operations with a named error result.
func (s *service) observe(operation string, start time.Time, err *error) {
	s.metrics.ObserveOperation(operation, start, *err)
}

// detached keeps side effects running when the caller's context is
// cancelled after the primary write committed.
func detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

func (s *service) notify(ctx context.Context, req notification.CreateNotificationRequest) {
	s.notifications.Dispatch(detached(ctx), req)
}

func (s *service) record(ctx context.Context, entry activity.ActivityLog) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	s.activity.Record(detached(ctx), entry)
}

// displayName resolves an employee's name for notification text, falling
// back to the id.
func (s *service) displayName(ctx context.Context, employeeID string) string {
	profile, err := s.profiles.GetByID(ctx, employeeID)
	if err != nil {
		if !errors.Is(err, employee.ErrProfileNotFound) {
			s.logger.Debug("profile lookup failed", zap.String("employee_id", employeeID), zap.Error(err))
		}
		return employeeID
	}
	return profile.FullName()
}

func (s *service) LogActivity(ctx context.Context, entry activity.ActivityLog) {
	s.record(ctx, entry)
}

func (s *service) GetActivityHistory(ctx context.Context, entityType activity.EntityType, entityID string) ([]activity.ActivityLog, error) {
	return s.activity.History(ctx, entityType, entityID)
}

func (s *service) GetEmployeeActivity(ctx context.Context, employeeID string, limit int) ([]activity.ActivityLog, error) {
	if employeeID == "" {
		return nil, employee.ErrEmployeeIDRequired
	}
	return s.activity.Recent(ctx, employeeID, limit)
}
