package activity

import "time"

type Action string

const (
	ActionProfileUpdated      Action = "profile_updated"
	ActionLeaveRequested      Action = "leave_requested"
	ActionLeaveApproved       Action = "leave_approved"
	ActionLeaveRejected       Action = "leave_rejected"
	ActionLeaveCancelled      Action = "leave_cancelled"
	ActionLeaveAccrued        Action = "leave_accrued"
	ActionLeaveTypeCreated    Action = "leave_type_created"
	ActionLeaveTypeDisabled   Action = "leave_type_deactivated"
	ActionPolicyCreated       Action = "policy_created"
	ActionPolicyAcknowledged  Action = "policy_acknowledged"
	ActionMeetingScheduled    Action = "meeting_scheduled"
	ActionMeetingStatusChange Action = "meeting_status_changed"
)

type EntityType string

const (
	EntityProfile      EntityType = "employee_profile"
	EntityLeaveRequest EntityType = "leave_request"
	EntityLeaveBalance EntityType = "leave_balance"
	EntityLeaveType    EntityType = "leave_type"
	EntityPolicy       EntityType = "policy"
	EntityMeeting      EntityType = "performance_meeting"
)

// ActivityLog is an append-only audit entry. Before and After are JSON
// snapshots of the entity around the change.
type ActivityLog struct {
	ID         string         `json:"id"`
	EmployeeID string         `json:"employeeId"`
	Action     Action         `json:"action"`
	EntityType EntityType     `json:"entityType"`
	EntityID   string         `json:"entityId"`
	Before     map[string]any `json:"before,omitempty"`
	After      map[string]any `json:"after,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}
