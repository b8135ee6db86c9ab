package leave

import "errors"

var (
	ErrLeaveRequestNotFound         = errors.New("leave request not found")
	ErrLeaveRequestAlreadyProcessed = errors.New("leave request already processed")
	ErrInsufficientBalance          = errors.New("insufficient leave balance")
	ErrLeaveTypeNotFound            = errors.New("leave type not found")
	ErrLeaveTypeInactive            = errors.New("leave type is not active")
	ErrLeaveBalanceNotFound         = errors.New("leave balance not found")
	ErrLeaveBalanceExists           = errors.New("leave balance already exists")
	ErrNotRequestOwner              = errors.New("only the requesting employee may cancel a leave request")
	ErrInvalidDays                  = errors.New("leave days must be positive")
	ErrUnknownBalanceTrigger        = errors.New("unknown balance trigger")
)
