package policy

import (
	"fmt"
	"time"
)

// Policy is an immutable company policy document. A new version is a new
// policy.
type Policy struct {
	ID                     string     `json:"id"`
	Title                  string     `json:"title"`
	Content                string     `json:"content"`
	Version                string     `json:"version"`
	Category               string     `json:"category"`
	EffectiveDate          time.Time  `json:"effectiveDate"`
	ExpiryDate             *time.Time `json:"expiryDate,omitempty"`
	RequiresAcknowledgment bool       `json:"requiresAcknowledgment"`
	// TargetRoles and TargetDepartments narrow the audience; empty means everyone.
	TargetRoles       []string  `json:"targetRoles"`
	TargetDepartments []string  `json:"targetDepartments"`
	Active            bool      `json:"active"`
	CreatedBy         string    `json:"createdBy"`
	CreatedAt         time.Time `json:"createdAt"`
}

// IsEffective reports whether now falls inside the policy's window.
func (p Policy) IsEffective(now time.Time) bool {
	if !p.EffectiveDate.IsZero() && now.Before(p.EffectiveDate) {
		return false
	}
	if p.ExpiryDate != nil && !now.Before(*p.ExpiryDate) {
		return false
	}
	return true
}

// AppliesTo reports whether an employee with the given role and department
// is in the policy's audience.
func (p Policy) AppliesTo(role, department string) bool {
	if len(p.TargetRoles) > 0 && !contains(p.TargetRoles, role) {
		return false
	}
	if len(p.TargetDepartments) > 0 && !contains(p.TargetDepartments, department) {
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Acknowledgment records that an employee has read a policy. There is at
// most one per employee and policy.
type Acknowledgment struct {
	ID             string    `json:"id"`
	PolicyID       string    `json:"policyId"`
	EmployeeID     string    `json:"employeeId"`
	PolicyVersion  string    `json:"policyVersion"`
	AcknowledgedAt time.Time `json:"acknowledgedAt"`
}

// AcknowledgmentID is the deterministic id of an acknowledgment document.
func AcknowledgmentID(policyID, employeeID string) string {
	return fmt.Sprintf("%s:%s", policyID, employeeID)
}
