package employee

import (
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

type PersonalInfoInput struct {
	FirstName     string `json:"first_name" validate:"omitempty,max=100"`
	MiddleName    string `json:"middle_name" validate:"omitempty,max=100"`
	LastName      string `json:"last_name" validate:"omitempty,max=100"`
	DateOfBirth   string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Gender        string `json:"gender" validate:"omitempty,max=20"`
	Nationality   string `json:"nationality" validate:"omitempty,max=100"`
	MaritalStatus string `json:"marital_status" validate:"omitempty,max=50"`
}

type ContactInfoInput struct {
	Email                 string `json:"email" validate:"omitempty,email"`
	Phone                 string `json:"phone" validate:"omitempty,max=20"`
	Address               string `json:"address" validate:"omitempty,max=500"`
	EmergencyContactName  string `json:"emergency_contact_name" validate:"omitempty,max=100"`
	EmergencyContactPhone string `json:"emergency_contact_phone" validate:"omitempty,max=20"`
}

type BankingInfoInput struct {
	BankName          string `json:"bank_name" validate:"omitempty,max=100"`
	AccountNumber     string `json:"account_number" validate:"omitempty,max=50"`
	AccountHolderName string `json:"account_holder_name" validate:"omitempty,max=100"`
}

type WorkInfoInput struct {
	EmployeeCode string `json:"employee_code" validate:"omitempty,max=50"`
	Department   string `json:"department" validate:"omitempty,max=100"`
	Position     string `json:"position" validate:"omitempty,max=100"`
	HireDate     string `json:"hire_date" validate:"omitempty,datetime=2006-01-02"`
	ManagerID    string `json:"manager_id" validate:"omitempty,max=100"`
	Role         string `json:"role" validate:"omitempty,oneof=employee manager hr admin"`
}

// UpdateProfileRequest carries a partial profile. Only non-empty fields are
// merged into the stored profile.
type UpdateProfileRequest struct {
	PersonalInfo *PersonalInfoInput `json:"personal_info,omitempty"`
	ContactInfo  *ContactInfoInput  `json:"contact_info,omitempty"`
	BankingInfo  *BankingInfoInput  `json:"banking_info,omitempty"`
	WorkInfo     *WorkInfoInput     `json:"work_info,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	return validator.Struct(r).Err()
}

// ChangesRole reports whether the request sets a role.
func (r *UpdateProfileRequest) ChangesRole() bool {
	return r.WorkInfo != nil && r.WorkInfo.Role != ""
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func mergeDate(dst **time.Time, src string) {
	if src == "" {
		return
	}
	t, err := time.Parse(dateLayout, src)
	if err != nil {
		return
	}
	*dst = &t
}

// Apply merges the non-empty fields of r into p. Call Validate first; dates
// that fail to parse are ignored.
func (p *EmployeeProfile) Apply(r UpdateProfileRequest) {
	if in := r.PersonalInfo; in != nil {
		mergeString(&p.PersonalInfo.FirstName, in.FirstName)
		mergeString(&p.PersonalInfo.MiddleName, in.MiddleName)
		mergeString(&p.PersonalInfo.LastName, in.LastName)
		mergeDate(&p.PersonalInfo.DateOfBirth, in.DateOfBirth)
		mergeString(&p.PersonalInfo.Gender, in.Gender)
		mergeString(&p.PersonalInfo.Nationality, in.Nationality)
		mergeString(&p.PersonalInfo.MaritalStatus, in.MaritalStatus)
	}
	if in := r.ContactInfo; in != nil {
		mergeString(&p.ContactInfo.Email, in.Email)
		mergeString(&p.ContactInfo.Phone, in.Phone)
		mergeString(&p.ContactInfo.Address, in.Address)
		mergeString(&p.ContactInfo.EmergencyContactName, in.EmergencyContactName)
		mergeString(&p.ContactInfo.EmergencyContactPhone, in.EmergencyContactPhone)
	}
	if in := r.BankingInfo; in != nil {
		mergeString(&p.BankingInfo.BankName, in.BankName)
		mergeString(&p.BankingInfo.AccountNumber, in.AccountNumber)
		mergeString(&p.BankingInfo.AccountHolderName, in.AccountHolderName)
	}
	if in := r.WorkInfo; in != nil {
		mergeString(&p.WorkInfo.EmployeeCode, in.EmployeeCode)
		mergeString(&p.WorkInfo.Department, in.Department)
		mergeString(&p.WorkInfo.Position, in.Position)
		mergeDate(&p.WorkInfo.HireDate, in.HireDate)
		mergeString(&p.WorkInfo.ManagerID, in.ManagerID)
		if in.Role != "" {
			p.WorkInfo.Role = Role(in.Role)
		}
	}
	p.ProfileCompleteness = CalculateCompleteness(*p)
}
