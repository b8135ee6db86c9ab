package notification

import (
	"fmt"
	"strings"
	"time"
)

// Type is the visual severity of a notification.
type Type string

const (
	TypeInfo    Type = "info"
	TypeWarning Type = "warning"
	TypeSuccess Type = "success"
	TypeError   Type = "error"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Category identifies the business event behind a notification.
type Category string

const (
	CategoryGeneral            Category = "general"
	CategoryProfileUpdated     Category = "profile_updated"
	CategoryLeaveRequest       Category = "leave_request"
	CategoryLeaveApproved      Category = "leave_approved"
	CategoryLeaveRejected      Category = "leave_rejected"
	CategoryLeaveCancelled     Category = "leave_cancelled"
	CategoryPolicyPublished    Category = "policy_published"
	CategoryPolicyAcknowledged Category = "policy_acknowledged"
	CategoryMeetingScheduled   Category = "meeting_scheduled"
	CategoryMeetingUpdated     Category = "meeting_updated"
)

type TargetKind string

const (
	TargetIndividual TargetKind = "employee"
	TargetRole       TargetKind = "role"
	TargetBroadcast  TargetKind = "broadcast"
)

// Target is the audience of a notification: one employee, every holder of a
// role, or everyone.
type Target struct {
	Kind TargetKind
	// Value is the employee id or role name; empty for broadcast.
	Value string
}

func Individual(employeeID string) Target {
	return Target{Kind: TargetIndividual, Value: employeeID}
}

func Role(role string) Target {
	return Target{Kind: TargetRole, Value: role}
}

func Broadcast() Target {
	return Target{Kind: TargetBroadcast}
}

// Audience encodes the target as a single stored key. The kind prefix keeps
// role names and employee ids from colliding.
func (t Target) Audience() string {
	if t.Kind == TargetBroadcast {
		return string(TargetBroadcast)
	}
	return string(t.Kind) + ":" + t.Value
}

func (t Target) Valid() bool {
	switch t.Kind {
	case TargetBroadcast:
		return t.Value == ""
	case TargetIndividual, TargetRole:
		return t.Value != ""
	}
	return false
}

func (t Target) String() string {
	return t.Audience()
}

// ParseAudience decodes a stored audience key.
func ParseAudience(s string) (Target, error) {
	if s == string(TargetBroadcast) {
		return Broadcast(), nil
	}
	kind, value, ok := strings.Cut(s, ":")
	t := Target{Kind: TargetKind(kind), Value: value}
	if !ok || !t.Valid() {
		return Target{}, fmt.Errorf("%w: %q", ErrInvalidTarget, s)
	}
	return t, nil
}

// Notification is a message addressed to a Target. Role and broadcast
// notifications are single records shared by their audience, so their read
// flag is shared too.
type Notification struct {
	ID        string         `json:"id"`
	Target    Target         `json:"-"`
	Audience  string         `json:"audience"`
	Type      Type           `json:"type"`
	Category  Category       `json:"category"`
	Priority  Priority       `json:"priority"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	ActionURL string         `json:"actionUrl,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Read      bool           `json:"read"`
	ReadAt    *time.Time     `json:"readAt,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}
