package dataflow

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/leave"
)

func (s *service) CreateLeaveType(ctx context.Context, req leave.CreateLeaveTypeRequest, actorID string) (_ leave.LeaveType, err error) {
	defer s.observe("create_leave_type", time.Now(), &err)

	if err := req.Validate(); err != nil {
		return leave.LeaveType{}, err
	}

	now := s.now()
	leaveType := leave.LeaveType{
		Name:              req.Name,
		AnnualEntitlement: req.AnnualEntitlement,
		AccrualRate:       req.AccrualRate,
		CarryForward:      req.CarryForward,
		RequiresApproval:  true,
		DeductionType:     leave.DeductionWorkingDays,
		Color:             req.Color,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if req.RequiresApproval != nil {
		leaveType.RequiresApproval = *req.RequiresApproval
	}
	if req.DeductionType != "" {
		leaveType.DeductionType = leave.DeductionType(req.DeductionType)
	}

	created, err := s.leaveTypes.Create(ctx, leaveType)
	if err != nil {
		return leave.LeaveType{}, fmt.Errorf("failed to create leave type: %w", err)
	}

	s.record(ctx, activity.ActivityLog{
		EmployeeID: actorID,
		Action:     activity.ActionLeaveTypeCreated,
		EntityType: activity.EntityLeaveType,
		EntityID:   created.ID,
		After:      activity.Snapshot(created),
		Timestamp:  now,
	})
	return created, nil
}

func (s *service) ListLeaveTypes(ctx context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	return s.leaveTypes.List(ctx, activeOnly)
}

// DeactivateLeaveType soft-deletes a leave type. Existing requests and
// balances are kept; new requests are refused.
func (s *service) DeactivateLeaveType(ctx context.Context, leaveTypeID, actorID string) (err error) {
	defer s.observe("deactivate_leave_type", time.Now(), &err)

	leaveType, err := s.leaveTypes.GetByID(ctx, leaveTypeID)
	if err != nil {
		return err
	}
	if !leaveType.Active {
		return nil
	}

	before := leaveType
	leaveType.Active = false
	leaveType.UpdatedAt = s.now()
	if err := s.leaveTypes.Update(ctx, leaveType); err != nil {
		return fmt.Errorf("failed to deactivate leave type: %w", err)
	}

	s.record(ctx, activity.ActivityLog{
		EmployeeID: actorID,
		Action:     activity.ActionLeaveTypeDisabled,
		EntityType: activity.EntityLeaveType,
		EntityID:   leaveTypeID,
		Before:     activity.Snapshot(before),
		After:      activity.Snapshot(leaveType),
	})
	return nil
}
