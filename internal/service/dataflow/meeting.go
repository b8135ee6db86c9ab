package dataflow

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/performance"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/validator"
)

const meetingTimeLayout = "Mon, 02 Jan 2006 15:04 MST"

func (s *service) ScheduleMeeting(ctx context.Context, req performance.ScheduleMeetingRequest) (_ performance.PerformanceMeeting, err error) {
	defer s.observe("schedule_meeting", time.Now(), &err)

	if err := req.Validate(); err != nil {
		return performance.PerformanceMeeting{}, err
	}
	if req.EmployeeID == req.ManagerID {
		return performance.PerformanceMeeting{}, validator.ValidationErrors{{
			Field:   "employee_id",
			Message: "a meeting needs an employee other than the organiser",
		}}
	}

	now := s.now()
	created, err := s.meetings.Create(ctx, performance.PerformanceMeeting{
		EmployeeID:      req.EmployeeID,
		ManagerID:       req.ManagerID,
		Type:            performance.MeetingType(req.Type),
		Title:           req.Title,
		ScheduledAt:     req.ScheduledTime(),
		DurationMinutes: req.DurationMinutes,
		Location:        req.Location,
		Status:          performance.MeetingStatusScheduled,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return performance.PerformanceMeeting{}, fmt.Errorf("failed to create meeting: %w", err)
	}

	s.notify(ctx, notification.CreateNotificationRequest{
		Target:   notification.Individual(created.EmployeeID),
		Type:     notification.TypeInfo,
		Category: notification.CategoryMeetingScheduled,
		Priority: notification.PriorityMedium,
		Title:    "Performance meeting scheduled",
		Message: fmt.Sprintf("%s scheduled %q for %s (%d minutes)",
			s.displayName(ctx, created.ManagerID), created.Title, created.ScheduledAt.Format(meetingTimeLayout), created.DurationMinutes),
		ActionURL: "/meetings/" + created.ID,
		Data:      map[string]any{"meetingId": created.ID, "managerId": created.ManagerID},
	})
	s.record(ctx, activity.ActivityLog{
		EmployeeID: created.ManagerID,
		Action:     activity.ActionMeetingScheduled,
		EntityType: activity.EntityMeeting,
		EntityID:   created.ID,
		After:      activity.Snapshot(created),
		Timestamp:  now,
	})

	return created, nil
}

// ConfirmMeeting is the invited employee's acceptance.
func (s *service) ConfirmMeeting(ctx context.Context, meetingID, employeeID string) (performance.PerformanceMeeting, error) {
	if employeeID == "" {
		return performance.PerformanceMeeting{}, employee.ErrEmployeeIDRequired
	}
	return s.transitionMeeting(ctx, meetingID, employeeID, func(m performance.PerformanceMeeting) error {
		if m.EmployeeID != employeeID {
			return performance.ErrNotMeetingParticipant
		}
		return nil
	}, performance.MeetingStatusConfirmed, "")
}

// UpdateMeetingStatus moves a meeting forward on behalf of either
// participant and tells the other one.
func (s *service) UpdateMeetingStatus(ctx context.Context, req performance.UpdateMeetingStatusRequest) (performance.PerformanceMeeting, error) {
	if err := req.Validate(); err != nil {
		return performance.PerformanceMeeting{}, err
	}
	return s.transitionMeeting(ctx, req.MeetingID, req.ActorID, func(m performance.PerformanceMeeting) error {
		if req.ActorID != m.EmployeeID && req.ActorID != m.ManagerID {
			return performance.ErrNotMeetingParticipant
		}
		return nil
	}, performance.MeetingStatus(req.Status), req.Notes)
}

// transitionMeeting re-reads the meeting inside a transaction, so a racing
// update cannot overwrite a terminal status it never saw.
func (s *service) transitionMeeting(ctx context.Context, meetingID, actorID string, authorize func(performance.PerformanceMeeting) error, status performance.MeetingStatus, notes string) (_ performance.PerformanceMeeting, err error) {
	defer s.observe("update_meeting_status", time.Now(), &err)

	var before, meeting performance.PerformanceMeeting
	err = s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		meeting, err = s.meetings.GetByID(ctx, meetingID)
		if err != nil {
			return err
		}
		if err := authorize(meeting); err != nil {
			return err
		}

		before = meeting
		if err := meeting.Transition(status, s.now()); err != nil {
			return fmt.Errorf("%w: %s to %s", err, before.Status, status)
		}
		if notes != "" {
			meeting.Notes = notes
		}
		if err := s.meetings.Update(ctx, meeting); err != nil {
			return fmt.Errorf("failed to update meeting: %w", err)
		}
		return nil
	})
	if err != nil {
		return performance.PerformanceMeeting{}, err
	}

	recipient := meeting.ManagerID
	if actorID == meeting.ManagerID {
		recipient = meeting.EmployeeID
	}
	kind := notification.TypeSuccess
	if status == performance.MeetingStatusCancelled {
		kind = notification.TypeWarning
	}
	s.notify(ctx, notification.CreateNotificationRequest{
		Target:    notification.Individual(recipient),
		Type:      kind,
		Category:  notification.CategoryMeetingUpdated,
		Priority:  notification.PriorityMedium,
		Title:     fmt.Sprintf("Meeting %s", status),
		Message:   fmt.Sprintf("%s marked %q as %s", s.displayName(ctx, actorID), meeting.Title, status),
		ActionURL: "/meetings/" + meeting.ID,
		Data:      map[string]any{"meetingId": meeting.ID, "status": string(status)},
	})
	s.record(ctx, activity.ActivityLog{
		EmployeeID: actorID,
		Action:     activity.ActionMeetingStatusChange,
		EntityType: activity.EntityMeeting,
		EntityID:   meeting.ID,
		Before:     activity.Snapshot(before),
		After:      activity.Snapshot(meeting),
	})

	return meeting, nil
}

func (s *service) ListMeetings(ctx context.Context, employeeID string) ([]performance.PerformanceMeeting, error) {
	if employeeID == "" {
		return nil, employee.ErrEmployeeIDRequired
	}
	return s.meetings.ListByEmployee(ctx, employeeID)
}
