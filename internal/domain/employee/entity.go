package employee

import (
	"strings"
	"time"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleHR, RoleAdmin:
		return true
	}
	return false
}

// IsApprover reports whether r may approve leave and schedule meetings.
func (r Role) IsApprover() bool {
	return r == RoleManager || r == RoleHR || r == RoleAdmin
}

type PersonalInfo struct {
	FirstName     string     `json:"firstName"`
	MiddleName    string     `json:"middleName"`
	LastName      string     `json:"lastName"`
	DateOfBirth   *time.Time `json:"dateOfBirth"`
	Gender        string     `json:"gender"`
	Nationality   string     `json:"nationality"`
	MaritalStatus string     `json:"maritalStatus"`
}

type ContactInfo struct {
	Email                 string `json:"email"`
	Phone                 string `json:"phone"`
	Address               string `json:"address"`
	EmergencyContactName  string `json:"emergencyContactName"`
	EmergencyContactPhone string `json:"emergencyContactPhone"`
}

type BankingInfo struct {
	BankName          string `json:"bankName"`
	AccountNumber     string `json:"accountNumber"`
	AccountHolderName string `json:"accountHolderName"`
}

type WorkInfo struct {
	EmployeeCode string     `json:"employeeCode"`
	Department   string     `json:"department"`
	Position     string     `json:"position"`
	HireDate     *time.Time `json:"hireDate"`
	ManagerID    string     `json:"managerId"`
	Role         Role       `json:"role"`
}

// EmployeeProfile is the aggregate of an employee's self-service data.
// ProfileCompleteness is derived and never taken from callers.
type EmployeeProfile struct {
	ID                  string       `json:"id"`
	PersonalInfo        PersonalInfo `json:"personalInfo"`
	ContactInfo         ContactInfo  `json:"contactInfo"`
	BankingInfo         BankingInfo  `json:"bankingInfo"`
	WorkInfo            WorkInfo     `json:"workInfo"`
	ProfileCompleteness int          `json:"profileCompleteness"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

// Redacted masks the account number down to its last four characters. Use it
// for copies that leave the profile store, such as the audit trail.
func (p EmployeeProfile) Redacted() EmployeeProfile {
	p.BankingInfo.AccountNumber = maskTail(p.BankingInfo.AccountNumber, 4)
	return p
}

func maskTail(s string, keep int) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	if len(r) <= keep {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-keep) + string(r[len(r)-keep:])
}

func (p EmployeeProfile) FullName() string {
	name := p.PersonalInfo.FirstName
	if p.PersonalInfo.MiddleName != "" {
		name += " " + p.PersonalInfo.MiddleName
	}
	if p.PersonalInfo.LastName != "" {
		name += " " + p.PersonalInfo.LastName
	}
	if name == "" {
		return p.ID
	}
	return name
}

// Role falls back to RoleEmployee when unset.
func (p EmployeeProfile) Role() Role {
	if p.WorkInfo.Role == "" {
		return RoleEmployee
	}
	return p.WorkInfo.Role
}
