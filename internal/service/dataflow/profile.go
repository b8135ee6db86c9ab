package dataflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/notification"
	"go.uber.org/zap"
)

func (s *service) GetEmployeeProfile(ctx context.Context, employeeID string) (employee.EmployeeProfile, error) {
	if employeeID == "" {
		return employee.EmployeeProfile{}, employee.ErrEmployeeIDRequired
	}
	return s.profiles.GetByID(ctx, employeeID)
}

// UpdateEmployeeProfile merges req into the stored profile, creating it on
// first update, and recomputes completeness. The read and the write share a
// transaction so concurrent partial updates do not drop each other's fields.
func (s *service) UpdateEmployeeProfile(ctx context.Context, employeeID string, req employee.UpdateProfileRequest) (_ employee.EmployeeProfile, err error) {
	defer s.observe("update_employee_profile", time.Now(), &err)

	if employeeID == "" {
		return employee.EmployeeProfile{}, employee.ErrEmployeeIDRequired
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeProfile{}, err
	}

	now := s.now()
	var (
		before  any
		updated employee.EmployeeProfile
	)
	err = s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		before = nil
		current, err := s.profiles.GetByID(ctx, employeeID)
		created := false
		if errors.Is(err, employee.ErrProfileNotFound) {
			// claim the id first so a concurrent first update merges into it
			seed := employee.EmployeeProfile{ID: employeeID, CreatedAt: now, UpdatedAt: now}
			err = s.profiles.Create(ctx, seed)
			switch {
			case err == nil:
				current, created = seed, true
			case errors.Is(err, employee.ErrProfileExists):
				current, err = s.profiles.GetByID(ctx, employeeID)
			}
		}
		if err != nil {
			return fmt.Errorf("failed to get employee profile: %w", err)
		}
		if !created {
			before = current.Redacted()
		}

		updated = current
		updated.Apply(req)
		updated.UpdatedAt = now

		if err := s.profiles.Save(ctx, updated); err != nil {
			return fmt.Errorf("failed to save employee profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return employee.EmployeeProfile{}, err
	}
	s.logger.Info("employee profile updated",
		zap.String("employee_id", employeeID),
		zap.Int("profile_completeness", updated.ProfileCompleteness),
	)

	s.notify(ctx, notification.CreateNotificationRequest{
		Target:    notification.Role(string(employee.RoleHR)),
		Type:      notification.TypeInfo,
		Category:  notification.CategoryProfileUpdated,
		Priority:  notification.PriorityLow,
		Title:     "Employee profile updated",
		Message:   fmt.Sprintf("%s updated their profile (%d%% complete)", updated.FullName(), updated.ProfileCompleteness),
		ActionURL: "/employees/" + employeeID,
		Data: map[string]any{
			"employeeId":          employeeID,
			"profileCompleteness": updated.ProfileCompleteness,
		},
	})
	s.record(ctx, activity.ActivityLog{
		EmployeeID: employeeID,
		Action:     activity.ActionProfileUpdated,
		EntityType: activity.EntityProfile,
		EntityID:   employeeID,
		Before:     activity.Snapshot(before),
		After:      activity.Snapshot(updated.Redacted()),
		Timestamp:  now,
	})

	return updated, nil
}
