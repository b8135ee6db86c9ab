package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type CreateLeaveTypeRequest struct {
	Name              string          `json:"leave_type_name" validate:"required,max=255"`
	AnnualEntitlement decimal.Decimal `json:"annual_entitlement"`
	AccrualRate       decimal.Decimal `json:"accrual_rate"`
	CarryForward      bool            `json:"carry_forward"`
	RequiresApproval  *bool           `json:"requires_approval,omitempty"`
	DeductionType     string          `json:"deduction_type" validate:"omitempty,oneof=calendar_days working_days"`
	Color             string          `json:"color" validate:"omitempty,max=20"`
}

func (r *CreateLeaveTypeRequest) Validate() error {
	errs := validator.Struct(r)

	if validator.IsEmpty(r.Name) && len(r.Name) > 0 {
		errs.Add("leave_type_name", "leave_type_name is required")
	}
	if r.AnnualEntitlement.IsNegative() {
		errs.Add("annual_entitlement", "annual_entitlement must not be negative")
	}
	if r.AccrualRate.IsNegative() {
		errs.Add("accrual_rate", "accrual_rate must not be negative")
	}

	return errs.Err()
}

type CreateLeaveRequestRequest struct {
	EmployeeID  string `json:"-"`
	LeaveTypeID string `json:"leave_type_id" validate:"required"`
	StartDate   string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"required,datetime=2006-01-02"`
	// TotalDays is computed from the leave type's deduction rule when omitted.
	TotalDays *decimal.Decimal `json:"total_days,omitempty"`
	Reason    string           `json:"reason" validate:"required,max=1000"`
}

func (r *CreateLeaveRequestRequest) Validate() error {
	errs := validator.Struct(r)

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if len(errs) == 0 {
		start, end := r.Dates()
		if end.Before(start) {
			errs.Add("end_date", "end_date must not be before start_date")
		}
	}
	if r.TotalDays != nil && !r.TotalDays.IsPositive() {
		errs.Add("total_days", "total_days must be greater than 0")
	}

	return errs.Err()
}

// Dates returns the parsed start and end dates. Call after Validate.
func (r *CreateLeaveRequestRequest) Dates() (time.Time, time.Time) {
	start, _ := time.Parse(dateLayout, r.StartDate)
	end, _ := time.Parse(dateLayout, r.EndDate)
	return start, end
}

type ApproveLeaveRequestRequest struct {
	RequestID  string `json:"-"`
	ApproverID string `json:"-"`
	Comments   string `json:"comments" validate:"max=1000"`
}

func (r *ApproveLeaveRequestRequest) Validate() error {
	errs := validator.Struct(r)
	if validator.IsEmpty(r.RequestID) {
		errs.Add("request_id", "request_id is required")
	}
	if validator.IsEmpty(r.ApproverID) {
		errs.Add("approver_id", "approver_id is required")
	}
	return errs.Err()
}

type RejectLeaveRequestRequest struct {
	RequestID  string `json:"-"`
	ApproverID string `json:"-"`
	Reason     string `json:"reason" validate:"required,max=1000"`
}

func (r *RejectLeaveRequestRequest) Validate() error {
	errs := validator.Struct(r)
	if validator.IsEmpty(r.RequestID) {
		errs.Add("request_id", "request_id is required")
	}
	if validator.IsEmpty(r.ApproverID) {
		errs.Add("approver_id", "approver_id is required")
	}
	return errs.Err()
}

type LeaveRequestFilter struct {
	EmployeeID string
	Status     LeaveRequestStatus
}
