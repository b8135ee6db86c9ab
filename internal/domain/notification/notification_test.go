package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTarget_Audience(t *testing.T) {
	tests := []struct {
		target Target
		want   string
	}{
		{Individual("e1"), "employee:e1"},
		{Role("hr"), "role:hr"},
		{Broadcast(), "broadcast"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.target.Audience())
			assert.True(t, tt.target.Valid())

			parsed, err := ParseAudience(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.target, parsed)
		})
	}
}

func TestTarget_NoCollision(t *testing.T) {
	// an employee whose id equals a role name stays distinct
	assert.NotEqual(t, Individual("hr").Audience(), Role("hr").Audience())
	assert.NotEqual(t, Individual("broadcast").Audience(), Broadcast().Audience())
}

func TestParseAudience_Invalid(t *testing.T) {
	for _, s := range []string{"", "hr", "employee:", "team:x", "role:"} {
		_, err := ParseAudience(s)
		assert.ErrorIs(t, err, ErrInvalidTarget, s)
	}
}

func TestCreateNotificationRequest(t *testing.T) {
	req := CreateNotificationRequest{Target: Role("hr"), Title: "Leave request", Message: "Budi requested 5 days"}
	require.NoError(t, req.Validate())

	n := req.Build()
	assert.Equal(t, "role:hr", n.Audience)
	assert.Equal(t, TypeInfo, n.Type)
	assert.Equal(t, PriorityMedium, n.Priority)
	assert.Equal(t, CategoryGeneral, n.Category)
	assert.False(t, n.Read)

	bad := CreateNotificationRequest{Target: Target{Kind: "team", Value: "x"}, Type: "fatal"}
	err := bad.Validate()
	require.Error(t, err)
	for _, field := range []string{"target", "type", "title", "message"} {
		assert.ErrorContains(t, err, field)
	}
}

func TestSendNotificationRequest_ToCreate(t *testing.T) {
	req := SendNotificationRequest{
		TargetKind:                "role",
		TargetValue:               "manager",
		CreateNotificationRequest: CreateNotificationRequest{Title: "t", Message: "m"},
	}
	create := req.ToCreate()
	assert.Equal(t, Role("manager"), create.Target)
	require.NoError(t, create.Validate())
}
