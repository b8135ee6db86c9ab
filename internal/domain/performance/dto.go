package performance

import (
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/validator"
)

type ScheduleMeetingRequest struct {
	EmployeeID      string `json:"employee_id" validate:"required"`
	ManagerID       string `json:"-"`
	Type            string `json:"type" validate:"required,oneof=one_on_one performance_review goal_setting feedback"`
	Title           string `json:"title" validate:"required,max=255"`
	ScheduledAt     string `json:"scheduled_at" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"gt=0,lte=480"`
	Location        string `json:"location" validate:"omitempty,max=255"`
	Notes           string `json:"notes" validate:"omitempty,max=2000"`
}

func (r *ScheduleMeetingRequest) Validate() error {
	errs := validator.Struct(r)

	if validator.IsEmpty(r.ManagerID) {
		errs.Add("manager_id", "manager_id is required")
	}
	if r.ScheduledAt != "" {
		if _, ok := validator.IsValidDateTime(r.ScheduledAt); !ok {
			errs.Add("scheduled_at", "scheduled_at must be an ISO8601 timestamp")
		}
	}

	return errs.Err()
}

// ScheduledTime returns the parsed meeting time in UTC. Call after Validate.
func (r *ScheduleMeetingRequest) ScheduledTime() time.Time {
	t, _ := validator.IsValidDateTime(r.ScheduledAt)
	return t.UTC()
}

type UpdateMeetingStatusRequest struct {
	MeetingID string `json:"-"`
	ActorID   string `json:"-"`
	Status    string `json:"status" validate:"required,oneof=confirmed completed cancelled"`
	Notes     string `json:"notes" validate:"omitempty,max=2000"`
}

func (r *UpdateMeetingStatusRequest) Validate() error {
	errs := validator.Struct(r)
	if validator.IsEmpty(r.MeetingID) {
		errs.Add("meeting_id", "meeting_id is required")
	}
	return errs.Err()
}
