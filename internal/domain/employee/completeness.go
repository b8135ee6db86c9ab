package employee

import (
	"math"
	"time"
)

// TrackedFields are the fields that count towards profile completeness.
var TrackedFields = []string{
	"firstName",
	"lastName",
	"dateOfBirth",
	"gender",
	"nationality",
	"email",
	"phone",
	"address",
	"bankName",
	"accountNumber",
	"department",
	"position",
	"hireDate",
}

func present(s string) bool {
	return s != ""
}

func presentTime(t *time.Time) bool {
	return t != nil && !t.IsZero()
}

// filledFields lists every field name carrying a value across all four
// sub-records.
func (p EmployeeProfile) filledFields() map[string]bool {
	pi, ci, bi, wi := p.PersonalInfo, p.ContactInfo, p.BankingInfo, p.WorkInfo
	return map[string]bool{
		"firstName":             present(pi.FirstName),
		"middleName":            present(pi.MiddleName),
		"lastName":              present(pi.LastName),
		"dateOfBirth":           presentTime(pi.DateOfBirth),
		"gender":                present(pi.Gender),
		"nationality":           present(pi.Nationality),
		"maritalStatus":         present(pi.MaritalStatus),
		"email":                 present(ci.Email),
		"phone":                 present(ci.Phone),
		"address":               present(ci.Address),
		"emergencyContactName":  present(ci.EmergencyContactName),
		"emergencyContactPhone": present(ci.EmergencyContactPhone),
		"bankName":              present(bi.BankName),
		"accountNumber":         present(bi.AccountNumber),
		"accountHolderName":     present(bi.AccountHolderName),
		"employeeCode":          present(wi.EmployeeCode),
		"department":            present(wi.Department),
		"position":              present(wi.Position),
		"hireDate":              presentTime(wi.HireDate),
		"managerId":             present(wi.ManagerID),
		"role":                  present(string(wi.Role)),
	}
}

// CalculateCompleteness returns the rounded percentage of tracked fields
// that are filled.
func CalculateCompleteness(p EmployeeProfile) int {
	filled := p.filledFields()
	found := 0
	for _, f := range TrackedFields {
		if filled[f] {
			found++
		}
	}
	return int(math.Round(float64(found) / float64(len(TrackedFields)) * 100))
}

// MissingFields lists the tracked fields that are still empty, in order.
func MissingFields(p EmployeeProfile) []string {
	filled := p.filledFields()
	var missing []string
	for _, f := range TrackedFields {
		if !filled[f] {
			missing = append(missing, f)
		}
	}
	return missing
}
