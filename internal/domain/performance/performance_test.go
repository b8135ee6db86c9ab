package performance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to MeetingStatus
		want     bool
	}{
		{MeetingStatusScheduled, MeetingStatusConfirmed, true},
		{MeetingStatusScheduled, MeetingStatusCancelled, true},
		{MeetingStatusScheduled, MeetingStatusCompleted, false},
		{MeetingStatusConfirmed, MeetingStatusCompleted, true},
		{MeetingStatusConfirmed, MeetingStatusCancelled, true},
		{MeetingStatusConfirmed, MeetingStatusScheduled, false},
		{MeetingStatusCompleted, MeetingStatusCancelled, false},
		{MeetingStatusCancelled, MeetingStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestPerformanceMeeting_Transition(t *testing.T) {
	at := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	m := PerformanceMeeting{Status: MeetingStatusScheduled}

	require.NoError(t, m.Transition(MeetingStatusConfirmed, at))
	assert.Equal(t, MeetingStatusConfirmed, m.Status)
	require.NotNil(t, m.ConfirmedAt)
	assert.Equal(t, at, *m.ConfirmedAt)

	require.NoError(t, m.Transition(MeetingStatusCompleted, at.Add(time.Hour)))
	require.NotNil(t, m.CompletedAt)

	assert.ErrorIs(t, m.Transition(MeetingStatusCancelled, at), ErrInvalidStatusTransition)
	assert.Equal(t, MeetingStatusCompleted, m.Status)
}

func TestScheduleMeetingRequest_Validate(t *testing.T) {
	req := ScheduleMeetingRequest{
		EmployeeID:      "e1",
		ManagerID:       "m1",
		Type:            "one_on_one",
		Title:           "Weekly sync",
		ScheduledAt:     "2026-04-01T09:00:00+07:00",
		DurationMinutes: 30,
	}
	require.NoError(t, req.Validate())
	assert.Equal(t, 2, req.ScheduledTime().Hour())

	bad := ScheduleMeetingRequest{Type: "party", ScheduledAt: "tomorrow"}
	err := bad.Validate()
	require.Error(t, err)
	for _, field := range []string{"employee_id", "manager_id", "type", "title", "scheduled_at", "duration_minutes"} {
		assert.ErrorContains(t, err, field)
	}
}
