package leave

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type DeductionType string

const (
	DeductionCalendarDays DeductionType = "calendar_days"
	DeductionWorkingDays  DeductionType = "working_days"
)

// LeaveType entity
type LeaveType struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	AnnualEntitlement decimal.Decimal `json:"annualEntitlement"`
	// AccrualRate is credited once per month by the accrual job.
	AccrualRate      decimal.Decimal `json:"accrualRate"`
	CarryForward     bool            `json:"carryForward"`
	RequiresApproval bool            `json:"requiresApproval"`
	DeductionType    DeductionType   `json:"deductionType"`
	Color            string          `json:"color"`
	Active           bool            `json:"active"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// TracksBalance reports whether requests of this type draw on a quota.
func (t LeaveType) TracksBalance() bool {
	return t.AnnualEntitlement.IsPositive() || t.AccrualRate.IsPositive()
}

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending   LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved  LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected  LeaveRequestStatus = "rejected"
	LeaveRequestStatusCancelled LeaveRequestStatus = "cancelled"
)

// LeaveRequest entity
type LeaveRequest struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employeeId"`
	LeaveTypeID string          `json:"leaveTypeId"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     time.Time       `json:"endDate"`
	TotalDays   decimal.Decimal `json:"totalDays"`
	Reason      string          `json:"reason"`

	Status          LeaveRequestStatus `json:"status"`
	SubmittedAt     time.Time          `json:"submittedAt"`
	ApprovedBy      string             `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time         `json:"approvedAt,omitempty"`
	Comments        string             `json:"comments,omitempty"`
	RejectionReason string             `json:"rejectionReason,omitempty"`
	CancelledAt     *time.Time         `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r LeaveRequest) IsPending() bool {
	return r.Status == LeaveRequestStatusPending
}

// Year is the balance year a request draws on.
func (r LeaveRequest) Year() int {
	return r.StartDate.Year()
}

// LeaveBalance tracks one employee's quota for one leave type and year.
// Remaining + Used + Pending always equals TotalEntitlement + Accrued.
type LeaveBalance struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employeeId"`
	LeaveTypeID      string          `json:"leaveTypeId"`
	Year             int             `json:"year"`
	TotalEntitlement decimal.Decimal `json:"totalEntitlement"`
	Used             decimal.Decimal `json:"used"`
	Remaining        decimal.Decimal `json:"remaining"`
	Pending          decimal.Decimal `json:"pending"`
	Accrued          decimal.Decimal `json:"accrued"`
	// CarriedForward is the part of TotalEntitlement taken over from the
	// previous year's remaining days.
	CarriedForward decimal.Decimal `json:"carriedForward"`
	// LastAccrualMonth is the last month (1-12) credited, 0 when none.
	LastAccrualMonth int       `json:"lastAccrualMonth"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// BalanceID is the deterministic id of a balance document.
func BalanceID(employeeID, leaveTypeID string, year int) string {
	return fmt.Sprintf("%s:%s:%d", employeeID, leaveTypeID, year)
}

// NewLeaveBalance opens a balance with the leave type's annual entitlement.
func NewLeaveBalance(employeeID string, leaveType LeaveType, year int) LeaveBalance {
	return LeaveBalance{
		ID:               BalanceID(employeeID, leaveType.ID, year),
		EmployeeID:       employeeID,
		LeaveTypeID:      leaveType.ID,
		Year:             year,
		TotalEntitlement: leaveType.AnnualEntitlement,
		Used:             decimal.Zero,
		Remaining:        leaveType.AnnualEntitlement,
		Pending:          decimal.Zero,
		Accrued:          decimal.Zero,
		CarriedForward:   decimal.Zero,
	}
}

// Consistent reports whether the balance invariant holds.
func (b LeaveBalance) Consistent() bool {
	return b.Remaining.Add(b.Used).Add(b.Pending).Equal(b.TotalEntitlement.Add(b.Accrued))
}
