package leave

import (
	"context"
)

type LeaveTypeRepository interface {
	Create(ctx context.Context, leaveType LeaveType) (LeaveType, error)
	GetByID(ctx context.Context, id string) (LeaveType, error)
	List(ctx context.Context, activeOnly bool) ([]LeaveType, error)
	Update(ctx context.Context, leaveType LeaveType) error
}

type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	Update(ctx context.Context, request LeaveRequest) error
	List(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequest, error)
	Watch(ctx context.Context, filter LeaveRequestFilter, fn func([]LeaveRequest)) (func(), error)
}

type LeaveBalanceRepository interface {
	Get(ctx context.Context, employeeID, leaveTypeID string, year int) (LeaveBalance, error)
	// Create stores a new balance, failing with ErrLeaveBalanceExists when
	// another writer opened it first.
	Create(ctx context.Context, balance LeaveBalance) error
	Save(ctx context.Context, balance LeaveBalance) error
	ListByEmployee(ctx context.Context, employeeID string, year int) ([]LeaveBalance, error)
	ListByLeaveType(ctx context.Context, leaveTypeID string, year int) ([]LeaveBalance, error)
}
