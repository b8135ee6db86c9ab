package policy

import (
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

type CreatePolicyRequest struct {
	Title                  string   `json:"title" validate:"required,max=255"`
	Content                string   `json:"content" validate:"required"`
	Version                string   `json:"version" validate:"omitempty,max=20"`
	Category               string   `json:"category" validate:"omitempty,max=100"`
	EffectiveDate          string   `json:"effective_date" validate:"omitempty,datetime=2006-01-02"`
	ExpiryDate             string   `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	RequiresAcknowledgment bool     `json:"requires_acknowledgment"`
	TargetRoles            []string `json:"target_roles" validate:"omitempty,dive,oneof=employee manager hr admin"`
	TargetDepartments      []string `json:"target_departments" validate:"omitempty,dive,required"`
	CreatedBy              string   `json:"-"`
}

func (r *CreatePolicyRequest) Validate() error {
	errs := validator.Struct(r)

	if len(errs) == 0 && r.EffectiveDate != "" && r.ExpiryDate != "" {
		effective, expiry := r.Window()
		if !expiry.After(effective) {
			errs.Add("expiry_date", "expiry_date must be after effective_date")
		}
	}

	return errs.Err()
}

// Window returns the parsed effective and expiry dates; unset dates are zero.
func (r *CreatePolicyRequest) Window() (time.Time, time.Time) {
	var effective, expiry time.Time
	if r.EffectiveDate != "" {
		effective, _ = time.Parse(dateLayout, r.EffectiveDate)
	}
	if r.ExpiryDate != "" {
		expiry, _ = time.Parse(dateLayout, r.ExpiryDate)
	}
	return effective, expiry
}
