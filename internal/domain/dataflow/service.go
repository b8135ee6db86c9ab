// Package dataflow declares the orchestrator that sequences every
// multi-entity business operation: the primary write, then notification
// fan-out, then the activity trail.
package dataflow

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/performance"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/policy"
)

type Service interface {
	// Profile
	GetEmployeeProfile(ctx context.Context, employeeID string) (employee.EmployeeProfile, error)
	UpdateEmployeeProfile(ctx context.Context, employeeID string, req employee.UpdateProfileRequest) (employee.EmployeeProfile, error)

	// Leave types
	CreateLeaveType(ctx context.Context, req leave.CreateLeaveTypeRequest, actorID string) (leave.LeaveType, error)
	ListLeaveTypes(ctx context.Context, activeOnly bool) ([]leave.LeaveType, error)
	DeactivateLeaveType(ctx context.Context, leaveTypeID, actorID string) error

	// Leave requests
	CreateLeaveRequest(ctx context.Context, req leave.CreateLeaveRequestRequest) (leave.LeaveRequest, error)
	ApproveLeaveRequest(ctx context.Context, req leave.ApproveLeaveRequestRequest) (leave.LeaveRequest, error)
	RejectLeaveRequest(ctx context.Context, req leave.RejectLeaveRequestRequest) (leave.LeaveRequest, error)
	CancelLeaveRequest(ctx context.Context, requestID, employeeID string) (leave.LeaveRequest, error)
	GetLeaveRequest(ctx context.Context, requestID string) (leave.LeaveRequest, error)
	ListLeaveRequests(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, error)
	GetLeaveBalances(ctx context.Context, employeeID string, year int) ([]leave.LeaveBalance, error)
	// AccrueLeave credits each accruing leave type's monthly rate to the
	// balances of now's year, at most once per month. It returns the number
	// of balances credited.
	AccrueLeave(ctx context.Context, now time.Time) (int, error)

	// Policies
	CreatePolicy(ctx context.Context, req policy.CreatePolicyRequest) (policy.Policy, error)
	ListPolicies(ctx context.Context, activeOnly bool) ([]policy.Policy, error)
	AcknowledgePolicy(ctx context.Context, policyID, employeeID string) (policy.Acknowledgment, error)
	GetPendingPolicies(ctx context.Context, employeeID string) ([]policy.Policy, error)

	// Performance meetings
	ScheduleMeeting(ctx context.Context, req performance.ScheduleMeetingRequest) (performance.PerformanceMeeting, error)
	ConfirmMeeting(ctx context.Context, meetingID, employeeID string) (performance.PerformanceMeeting, error)
	UpdateMeetingStatus(ctx context.Context, req performance.UpdateMeetingStatusRequest) (performance.PerformanceMeeting, error)
	ListMeetings(ctx context.Context, employeeID string) ([]performance.PerformanceMeeting, error)

	// Notifications
	CreateNotification(ctx context.Context, req notification.CreateNotificationRequest) (notification.Notification, error)
	MarkNotificationAsRead(ctx context.Context, employeeID, notificationID string) (notification.Notification, error)
	GetUnreadNotifications(ctx context.Context, employeeID string) ([]notification.Notification, error)
	ListNotifications(ctx context.Context, employeeID string, unreadOnly bool) ([]notification.Notification, error)

	// Activity
	LogActivity(ctx context.Context, entry activity.ActivityLog)
	GetActivityHistory(ctx context.Context, entityType activity.EntityType, entityID string) ([]activity.ActivityLog, error)
	GetEmployeeActivity(ctx context.Context, employeeID string, limit int) ([]activity.ActivityLog, error)
}
