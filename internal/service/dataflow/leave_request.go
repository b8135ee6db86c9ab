package dataflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// requestDays returns the days a request deducts. A supplied total must fit
// inside the inclusive calendar span; otherwise the leave type's deduction
// rule decides.
func requestDays(req leave.CreateLeaveRequestRequest, deduction leave.DeductionType) (decimal.Decimal, error) {
	start, end := req.Dates()
	if req.TotalDays != nil {
		span := decimal.NewFromInt(int64(leave.CountDays(start, end, leave.DeductionCalendarDays)))
		if req.TotalDays.GreaterThan(span) {
			return decimal.Zero, validator.ValidationErrors{{
				Field:   "total_days",
				Message: fmt.Sprintf("total_days must not exceed the %s calendar days requested", span),
			}}
		}
		return *req.TotalDays, nil
	}

	days := leave.CountDays(start, end, deduction)
	if days == 0 {
		return decimal.Zero, validator.ValidationErrors{{
			Field:   "end_date",
			Message: "the requested range contains no deductible days",
		}}
	}
	return decimal.NewFromInt(int64(days)), nil
}

// openBalance returns the stored balance for year, creating it on first use.
// A new balance starts from the entitlement, plus the prior year's unused days
// when the type carries them forward, plus the accrual owed for the months of
// year already reached by now. When two first submissions race, the loser of
// Create re-reads the winner's row.
func (s *service) openBalance(ctx context.Context, employeeID string, leaveType leave.LeaveType, year int, now time.Time) (leave.LeaveBalance, error) {
	balance, err := s.leaveBalances.Get(ctx, employeeID, leaveType.ID, year)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, leave.ErrLeaveBalanceNotFound) {
		return leave.LeaveBalance{}, fmt.Errorf("failed to get leave balance: %w", err)
	}

	balance = leave.NewLeaveBalance(employeeID, leaveType, year)
	if leaveType.CarryForward {
		prior, err := s.leaveBalances.Get(ctx, employeeID, leaveType.ID, year-1)
		switch {
		case err == nil:
			balance.CarryOver(prior)
		case !errors.Is(err, leave.ErrLeaveBalanceNotFound):
			return leave.LeaveBalance{}, fmt.Errorf("failed to get prior leave balance: %w", err)
		}
	}
	balance.CatchUpAccrual(leaveType.AccrualRate, monthsReached(year, now))
	balance.UpdatedAt = now

	err = s.leaveBalances.Create(ctx, balance)
	if errors.Is(err, leave.ErrLeaveBalanceExists) {
		balance, err = s.leaveBalances.Get(ctx, employeeID, leaveType.ID, year)
	}
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to open leave balance: %w", err)
	}
	return balance, nil
}

// monthsReached is how many months of year have started by now.
func monthsReached(year int, now time.Time) int {
	switch {
	case year < now.Year():
		return 12
	case year > now.Year():
		return 0
	}
	return int(now.Month())
}

// moveBalance applies trigger to the balance a request reserved against.
// Requests of untracked leave types have no balance and are left alone.
func (s *service) moveBalance(ctx context.Context, request leave.LeaveRequest, trigger leave.BalanceTrigger, now time.Time) error {
	balance, err := s.leaveBalances.Get(ctx, request.EmployeeID, request.LeaveTypeID, request.Year())
	if err != nil {
		if errors.Is(err, leave.ErrLeaveBalanceNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get leave balance: %w", err)
	}
	if err := balance.Apply(trigger, request.TotalDays); err != nil {
		return err
	}
	balance.UpdatedAt = now
	if err := s.leaveBalances.Save(ctx, balance); err != nil {
		return fmt.Errorf("failed to save leave balance: %w", err)
	}
	return nil
}

// CreateLeaveRequest stores a pending request and reserves its days in one
// transaction. Leave types that do not require approval are approved in the
// same transaction.
func (s *service) CreateLeaveRequest(ctx context.Context, req leave.CreateLeaveRequestRequest) (_ leave.LeaveRequest, err error) {
	defer s.observe("create_leave_request", time.Now(), &err)

	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}
	start, end := req.Dates()
	now := s.now()

	var (
		created   leave.LeaveRequest
		leaveType leave.LeaveType
	)
	err = s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		leaveType, err = s.leaveTypes.GetByID(ctx, req.LeaveTypeID)
		if err != nil {
			return fmt.Errorf("failed to get leave type: %w", err)
		}
		if !leaveType.Active {
			return leave.ErrLeaveTypeInactive
		}

		days, err := requestDays(req, leaveType.DeductionType)
		if err != nil {
			return err
		}

		request := leave.LeaveRequest{
			EmployeeID:  req.EmployeeID,
			LeaveTypeID: leaveType.ID,
			StartDate:   start,
			EndDate:     end,
			TotalDays:   days,
			Reason:      req.Reason,
			Status:      leave.LeaveRequestStatusPending,
			SubmittedAt: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if leaveType.TracksBalance() {
			balance, err := s.openBalance(ctx, req.EmployeeID, leaveType, start.Year(), now)
			if err != nil {
				return err
			}
			if !balance.CanCover(days) {
				return fmt.Errorf("%w: %s day(s) requested, %s remaining", leave.ErrInsufficientBalance, days, balance.Remaining)
			}
			if err := balance.Apply(leave.TriggerSubmit, days); err != nil {
				return err
			}
			balance.UpdatedAt = now
			if err := s.leaveBalances.Save(ctx, balance); err != nil {
				return fmt.Errorf("failed to save leave balance: %w", err)
			}
		}

		created, err = s.leaveRequests.Create(ctx, request)
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}

		if leaveType.RequiresApproval {
			return nil
		}
		created.Status = leave.LeaveRequestStatusApproved
		created.ApprovedAt = &now
		created.Comments = "approved automatically"
		if err := s.moveBalance(ctx, created, leave.TriggerApprove, now); err != nil {
			return err
		}
		if err := s.leaveRequests.Update(ctx, created); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	s.logger.Info("leave request submitted",
		zap.String("request_id", created.ID),
		zap.String("employee_id", created.EmployeeID),
		zap.String("status", string(created.Status)),
	)

	name := s.displayName(ctx, created.EmployeeID)
	period := fmt.Sprintf("%s to %s", created.StartDate.Format("2006-01-02"), created.EndDate.Format("2006-01-02"))
	data := map[string]any{
		"requestId":   created.ID,
		"employeeId":  created.EmployeeID,
		"leaveTypeId": created.LeaveTypeID,
		"totalDays":   created.TotalDays.String(),
	}

	if created.IsPending() {
		s.notify(ctx, notification.CreateNotificationRequest{
			Target:    notification.Role(string(employee.RoleHR)),
			Type:      notification.TypeInfo,
			Category:  notification.CategoryLeaveRequest,
			Priority:  notification.PriorityMedium,
			Title:     "Leave request awaiting review",
			Message:   fmt.Sprintf("%s requested %s day(s) of %s leave, %s", name, created.TotalDays, leaveType.Name, period),
			ActionURL: "/leave/requests/" + created.ID,
			Data:      data,
		})
		s.notify(ctx, notification.CreateNotificationRequest{
			Target:    notification.Individual(created.EmployeeID),
			Type:      notification.TypeInfo,
			Category:  notification.CategoryLeaveRequest,
			Priority:  notification.PriorityLow,
			Title:     "Leave request submitted",
			Message:   fmt.Sprintf("Your %s leave request for %s has been submitted", leaveType.Name, period),
			ActionURL: "/leave/requests/" + created.ID,
			Data:      data,
		})
	} else {
		s.notify(ctx, notification.CreateNotificationRequest{
			Target:    notification.Individual(created.EmployeeID),
			Type:      notification.TypeSuccess,
			Category:  notification.CategoryLeaveApproved,
			Priority:  notification.PriorityMedium,
			Title:     "Leave request approved",
			Message:   fmt.Sprintf("Your %s leave for %s was approved", leaveType.Name, period),
			ActionURL: "/leave/requests/" + created.ID,
			Data:      data,
		})
	}

	s.record(ctx, activity.ActivityLog{
		EmployeeID: created.EmployeeID,
		Action:     activity.ActionLeaveRequested,
		EntityType: activity.EntityLeaveRequest,
		EntityID:   created.ID,
		After:      activity.Snapshot(created),
		Timestamp:  now,
	})

	return created, nil
}

// resolve loads a pending request inside a transaction, lets change mutate
// it, moves the balance by trigger and stores the result.
func (s *service) resolve(ctx context.Context, requestID string, trigger leave.BalanceTrigger, change func(*leave.LeaveRequest) error) (before, after leave.LeaveRequest, err error) {
	now := s.now()
	err = s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		request, err := s.leaveRequests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if !request.IsPending() {
			return leave.ErrLeaveRequestAlreadyProcessed
		}
		before = request

		if err := change(&request); err != nil {
			return err
		}
		request.UpdatedAt = now

		if err := s.moveBalance(ctx, request, trigger, now); err != nil {
			return err
		}
		if err := s.leaveRequests.Update(ctx, request); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		after = request
		return nil
	})
	return before, after, err
}

func (s *service) ApproveLeaveRequest(ctx context.Context, req leave.ApproveLeaveRequestRequest) (_ leave.LeaveRequest, err error) {
	defer s.observe("approve_leave_request", time.Now(), &err)

	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}

	before, approved, err := s.resolve(ctx, req.RequestID, leave.TriggerApprove, func(r *leave.LeaveRequest) error {
		at := s.now()
		r.Status = leave.LeaveRequestStatusApproved
		r.ApprovedBy = req.ApproverID
		r.ApprovedAt = &at
		r.Comments = req.Comments
		return nil
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	s.logger.Info("leave request approved",
		zap.String("request_id", approved.ID),
		zap.String("approver_id", req.ApproverID),
	)

	message := fmt.Sprintf("Your leave request for %s to %s was approved",
		approved.StartDate.Format("2006-01-02"), approved.EndDate.Format("2006-01-02"))
	if approved.Comments != "" {
		message += ": " + approved.Comments
	}
	s.notify(ctx, notification.CreateNotificationRequest{
		Target:    notification.Individual(approved.EmployeeID),
		Type:      notification.TypeSuccess,
		Category:  notification.CategoryLeaveApproved,
		Priority:  notification.PriorityHigh,
		Title:     "Leave request approved",
		Message:   message,
		ActionURL: "/leave/requests/" + approved.ID,
		Data:      map[string]any{"requestId": approved.ID, "approvedBy": req.ApproverID},
	})
	s.record(ctx, activity.ActivityLog{
		EmployeeID: req.ApproverID,
		Action:     activity.ActionLeaveApproved,
		EntityType: activity.EntityLeaveRequest,
		EntityID:   approved.ID,
		Before:     activity.Snapshot(before),
		After:      activity.Snapshot(approved),
	})

	return approved, nil
}

func (s *service) RejectLeaveRequest(ctx context.Context, req leave.RejectLeaveRequestRequest) (_ leave.LeaveRequest, err error) {
	defer s.observe("reject_leave_request", time.Now(), &err)

	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}

	before, rejected, err := s.resolve(ctx, req.RequestID, leave.TriggerReject, func(r *leave.LeaveRequest) error {
		at := s.now()
		r.Status = leave.LeaveRequestStatusRejected
		r.ApprovedBy = req.ApproverID
		r.ApprovedAt = &at
		r.RejectionReason = req.Reason
		return nil
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	s.logger.Info("leave request rejected",
		zap.String("request_id", rejected.ID),
		zap.String("approver_id", req.ApproverID),
	)

	s.notify(ctx, notification.CreateNotificationRequest{
		Target:   notification.Individual(rejected.EmployeeID),
		Type:     notification.TypeError,
		Category: notification.CategoryLeaveRejected,
		Priority: notification.PriorityHigh,
		Title:    "Leave request rejected",
		Message: fmt.Sprintf("Your leave request for %s to %s was rejected: %s",
			rejected.StartDate.Format("2006-01-02"), rejected.EndDate.Format("2006-01-02"), rejected.RejectionReason),
		ActionURL: "/leave/requests/" + rejected.ID,
		Data:      map[string]any{"requestId": rejected.ID, "rejectedBy": req.ApproverID},
	})
	s.record(ctx, activity.ActivityLog{
		EmployeeID: req.ApproverID,
		Action:     activity.ActionLeaveRejected,
		EntityType: activity.EntityLeaveRequest,
		EntityID:   rejected.ID,
		Before:     activity.Snapshot(before),
		After:      activity.Snapshot(rejected),
	})

	return rejected, nil
}

// CancelLeaveRequest lets the owner withdraw a pending request; the reserved
// days return to the balance.
func (s *service) CancelLeaveRequest(ctx context.Context, requestID, employeeID string) (_ leave.LeaveRequest, err error) {
	defer s.observe("cancel_leave_request", time.Now(), &err)

	if employeeID == "" {
		return leave.LeaveRequest{}, employee.ErrEmployeeIDRequired
	}

	before, cancelled, err := s.resolve(ctx, requestID, leave.TriggerCancel, func(r *leave.LeaveRequest) error {
		if r.EmployeeID != employeeID {
			return leave.ErrNotRequestOwner
		}
		at := s.now()
		r.Status = leave.LeaveRequestStatusCancelled
		r.CancelledAt = &at
		return nil
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	s.notify(ctx, notification.CreateNotificationRequest{
		Target:    notification.Role(string(employee.RoleHR)),
		Type:      notification.TypeInfo,
		Category:  notification.CategoryLeaveCancelled,
		Priority:  notification.PriorityLow,
		Title:     "Leave request cancelled",
		Message:   fmt.Sprintf("%s cancelled their leave request for %s", s.displayName(ctx, employeeID), cancelled.StartDate.Format("2006-01-02")),
		ActionURL: "/leave/requests/" + cancelled.ID,
		Data:      map[string]any{"requestId": cancelled.ID, "employeeId": employeeID},
	})
	s.record(ctx, activity.ActivityLog{
		EmployeeID: employeeID,
		Action:     activity.ActionLeaveCancelled,
		EntityType: activity.EntityLeaveRequest,
		EntityID:   cancelled.ID,
		Before:     activity.Snapshot(before),
		After:      activity.Snapshot(cancelled),
	})

	return cancelled, nil
}

func (s *service) GetLeaveRequest(ctx context.Context, requestID string) (leave.LeaveRequest, error) {
	return s.leaveRequests.GetByID(ctx, requestID)
}

func (s *service) ListLeaveRequests(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, error) {
	return s.leaveRequests.List(ctx, filter)
}

// GetLeaveBalances lists the employee's balances for year, or for the
// current year when year is 0.
func (s *service) GetLeaveBalances(ctx context.Context, employeeID string, year int) ([]leave.LeaveBalance, error) {
	if employeeID == "" {
		return nil, employee.ErrEmployeeIDRequired
	}
	if year == 0 {
		year = s.now().Year()
	}
	return s.leaveBalances.ListByEmployee(ctx, employeeID, year)
}
