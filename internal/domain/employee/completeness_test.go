package employee

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateCompleteness(t *testing.T) {
	dob := time.Date(1994, 7, 1, 0, 0, 0, 0, time.UTC)
	full := EmployeeProfile{
		PersonalInfo: PersonalInfo{FirstName: "Siti", LastName: "Rahma", DateOfBirth: &dob, Gender: "female", Nationality: "ID"},
		ContactInfo:  ContactInfo{Email: "siti@example.com", Phone: "0812", Address: "Jl. Merdeka 1"},
		BankingInfo:  BankingInfo{BankName: "BCA", AccountNumber: "123"},
		WorkInfo:     WorkInfo{Department: "Finance", Position: "Analyst", HireDate: &dob},
	}

	tests := []struct {
		name    string
		profile EmployeeProfile
		want    int
	}{
		{"empty", EmployeeProfile{}, 0},
		{"first and last name", EmployeeProfile{PersonalInfo: PersonalInfo{FirstName: "Siti", LastName: "Rahma"}}, 15},
		{"untracked fields do not count", EmployeeProfile{PersonalInfo: PersonalInfo{MiddleName: "Nur", MaritalStatus: "single"}, WorkInfo: WorkInfo{Role: RoleHR}}, 0},
		{"zero date is empty", EmployeeProfile{PersonalInfo: PersonalInfo{DateOfBirth: &time.Time{}}}, 0},
		{"one field", EmployeeProfile{ContactInfo: ContactInfo{Email: "a@b.cd"}}, 8},
		{"all tracked fields", full, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateCompleteness(tt.profile))
			// deterministic
			assert.Equal(t, CalculateCompleteness(tt.profile), CalculateCompleteness(tt.profile))
		})
	}
}

func TestMissingFields(t *testing.T) {
	p := EmployeeProfile{PersonalInfo: PersonalInfo{FirstName: "Siti", LastName: "Rahma"}}
	missing := MissingFields(p)
	assert.Len(t, missing, 11)
	assert.Equal(t, "dateOfBirth", missing[0])
	assert.NotContains(t, missing, "firstName")
}

func TestApply(t *testing.T) {
	p := EmployeeProfile{
		ID:           "e1",
		PersonalInfo: PersonalInfo{FirstName: "Siti", LastName: "Rahma"},
		ContactInfo:  ContactInfo{Email: "old@example.com"},
	}

	req := UpdateProfileRequest{
		PersonalInfo: &PersonalInfoInput{LastName: "", DateOfBirth: "1994-07-01"},
		ContactInfo:  &ContactInfoInput{Email: "new@example.com"},
		WorkInfo:     &WorkInfoInput{Department: "Finance", Role: "manager"},
	}
	require.NoError(t, req.Validate())
	p.Apply(req)

	assert.Equal(t, "Rahma", p.PersonalInfo.LastName, "empty input keeps stored value")
	require.NotNil(t, p.PersonalInfo.DateOfBirth)
	assert.Equal(t, 1994, p.PersonalInfo.DateOfBirth.Year())
	assert.Equal(t, "new@example.com", p.ContactInfo.Email)
	assert.Equal(t, RoleManager, p.WorkInfo.Role)
	assert.Equal(t, CalculateCompleteness(p), p.ProfileCompleteness)
	assert.Equal(t, 38, p.ProfileCompleteness)
	assert.True(t, req.ChangesRole())
}

func TestUpdateProfileRequest_Validate(t *testing.T) {
	req := UpdateProfileRequest{
		PersonalInfo: &PersonalInfoInput{DateOfBirth: "01-07-1994"},
		ContactInfo:  &ContactInfoInput{Email: "not-an-email"},
		WorkInfo:     &WorkInfoInput{Role: "ceo"},
	}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "personal_info.date_of_birth")
	assert.Contains(t, err.Error(), "contact_info.email")
	assert.Contains(t, err.Error(), "work_info.role")
}

func TestEmployeeProfile_FullNameAndRole(t *testing.T) {
	p := EmployeeProfile{ID: "e1"}
	assert.Equal(t, "e1", p.FullName())
	assert.Equal(t, RoleEmployee, p.Role())

	p.PersonalInfo = PersonalInfo{FirstName: "Siti", MiddleName: "Nur", LastName: "Rahma"}
	p.WorkInfo.Role = RoleHR
	assert.Equal(t, "Siti Nur Rahma", p.FullName())
	assert.Equal(t, RoleHR, p.Role())
	assert.True(t, RoleHR.IsApprover())
	assert.False(t, RoleEmployee.IsApprover())
	assert.False(t, Role("ceo").Valid())
}
