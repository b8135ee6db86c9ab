package performance

import "time"

type MeetingType string

const (
	MeetingTypeOneOnOne    MeetingType = "one_on_one"
	MeetingTypeReview      MeetingType = "performance_review"
	MeetingTypeGoalSetting MeetingType = "goal_setting"
	MeetingTypeFeedback    MeetingType = "feedback"
)

type MeetingStatus string

const (
	MeetingStatusScheduled MeetingStatus = "scheduled"
	MeetingStatusConfirmed MeetingStatus = "confirmed"
	MeetingStatusCompleted MeetingStatus = "completed"
	MeetingStatusCancelled MeetingStatus = "cancelled"
)

var transitions = map[MeetingStatus][]MeetingStatus{
	MeetingStatusScheduled: {MeetingStatusConfirmed, MeetingStatusCancelled},
	MeetingStatusConfirmed: {MeetingStatusCompleted, MeetingStatusCancelled},
}

// CanTransition reports whether a meeting may move from one status to
// another. Completed and cancelled are terminal.
func CanTransition(from, to MeetingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type PerformanceMeeting struct {
	ID              string        `json:"id"`
	EmployeeID      string        `json:"employeeId"`
	ManagerID       string        `json:"managerId"`
	Type            MeetingType   `json:"type"`
	Title           string        `json:"title"`
	ScheduledAt     time.Time     `json:"scheduledAt"`
	DurationMinutes int           `json:"durationMinutes"`
	Location        string        `json:"location"`
	Status          MeetingStatus `json:"status"`
	Notes           string        `json:"notes"`
	ConfirmedAt     *time.Time    `json:"confirmedAt,omitempty"`
	CompletedAt     *time.Time    `json:"completedAt,omitempty"`
	CancelledAt     *time.Time    `json:"cancelledAt,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// Transition moves the meeting to status, stamping the matching timestamp.
func (m *PerformanceMeeting) Transition(status MeetingStatus, at time.Time) error {
	if !CanTransition(m.Status, status) {
		return ErrInvalidStatusTransition
	}
	m.Status = status
	m.UpdatedAt = at
	switch status {
	case MeetingStatusConfirmed:
		m.ConfirmedAt = &at
	case MeetingStatusCompleted:
		m.CompletedAt = &at
	case MeetingStatusCancelled:
		m.CancelledAt = &at
	}
	return nil
}
