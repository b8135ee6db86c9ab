package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_IsEffective(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)

	tests := []struct {
		name   string
		policy Policy
		want   bool
	}{
		{"no window", Policy{}, true},
		{"started", Policy{EffectiveDate: past}, true},
		{"not yet effective", Policy{EffectiveDate: future}, false},
		{"expired", Policy{EffectiveDate: past, ExpiryDate: &past}, false},
		{"expires later", Policy{EffectiveDate: past, ExpiryDate: &future}, true},
		{"expires now", Policy{ExpiryDate: &now}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.IsEffective(now))
		})
	}
}

func TestPolicy_AppliesTo(t *testing.T) {
	everyone := Policy{}
	managers := Policy{TargetRoles: []string{"manager", "hr"}}
	finance := Policy{TargetDepartments: []string{"Finance"}}
	both := Policy{TargetRoles: []string{"manager"}, TargetDepartments: []string{"Finance"}}

	assert.True(t, everyone.AppliesTo("employee", ""))
	assert.True(t, managers.AppliesTo("hr", "Ops"))
	assert.False(t, managers.AppliesTo("employee", "Ops"))
	assert.True(t, finance.AppliesTo("employee", "Finance"))
	assert.False(t, finance.AppliesTo("employee", "Ops"))
	assert.True(t, both.AppliesTo("manager", "Finance"))
	assert.False(t, both.AppliesTo("manager", "Ops"))
}

func TestAcknowledgmentID(t *testing.T) {
	assert.Equal(t, "p1:e1", AcknowledgmentID("p1", "e1"))
}

func TestCreatePolicyRequest_Validate(t *testing.T) {
	req := CreatePolicyRequest{
		Title:         "Code of conduct",
		Content:       "Be kind.",
		EffectiveDate: "2026-01-01",
		ExpiryDate:    "2027-01-01",
		TargetRoles:   []string{"employee", "manager"},
	}
	require.NoError(t, req.Validate())

	effective, expiry := req.Window()
	assert.Equal(t, 2026, effective.Year())
	assert.Equal(t, 2027, expiry.Year())

	bad := CreatePolicyRequest{EffectiveDate: "2026-01-01", ExpiryDate: "2025-01-01"}
	err := bad.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "title")
	assert.ErrorContains(t, err, "content")

	window := CreatePolicyRequest{Title: "t", Content: "c", EffectiveDate: "2026-01-01", ExpiryDate: "2025-01-01"}
	assert.ErrorContains(t, window.Validate(), "expiry_date")

	roles := CreatePolicyRequest{Title: "t", Content: "c", TargetRoles: []string{"ceo"}}
	assert.ErrorContains(t, roles.Validate(), "target_roles")
}
