package leave

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BalanceTrigger names the lifecycle event that moves days between the
// buckets of a LeaveBalance.
type BalanceTrigger string

const (
	TriggerSubmit  BalanceTrigger = "submit"
	TriggerApprove BalanceTrigger = "approve"
	TriggerReject  BalanceTrigger = "reject"
	TriggerCancel  BalanceTrigger = "cancel"
	TriggerAccrue  BalanceTrigger = "accrue"
)

// Apply moves days according to trigger:
//
//	submit   remaining -d  pending +d
//	approve  pending -d    used +d
//	reject   pending -d    remaining +d
//	cancel   pending -d    remaining +d
//	accrue   remaining +d  accrued +d
//
// Sufficiency is the caller's decision; Apply only keeps the buckets
// consistent.
func (b *LeaveBalance) Apply(trigger BalanceTrigger, days decimal.Decimal) error {
	if !days.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidDays, days)
	}

	switch trigger {
	case TriggerSubmit:
		b.Remaining = b.Remaining.Sub(days)
		b.Pending = b.Pending.Add(days)
	case TriggerApprove:
		b.Pending = b.Pending.Sub(days)
		b.Used = b.Used.Add(days)
	case TriggerReject, TriggerCancel:
		b.Pending = b.Pending.Sub(days)
		b.Remaining = b.Remaining.Add(days)
	case TriggerAccrue:
		b.Remaining = b.Remaining.Add(days)
		b.Accrued = b.Accrued.Add(days)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBalanceTrigger, trigger)
	}
	return nil
}

// CanCover reports whether the remaining balance covers days.
func (b LeaveBalance) CanCover(days decimal.Decimal) bool {
	return b.Remaining.GreaterThanOrEqual(days)
}

// CarryOver adds the prior year's unused days to the entitlement. Pending
// days stay with the prior year until their request is resolved.
func (b *LeaveBalance) CarryOver(prior LeaveBalance) {
	if !prior.Remaining.IsPositive() {
		return
	}
	b.CarriedForward = b.CarriedForward.Add(prior.Remaining)
	b.TotalEntitlement = b.TotalEntitlement.Add(prior.Remaining)
	b.Remaining = b.Remaining.Add(prior.Remaining)
}

// CatchUpAccrual credits rate for every month after LastAccrualMonth up to
// and including month. It returns false when nothing was owed.
func (b *LeaveBalance) CatchUpAccrual(rate decimal.Decimal, month int) bool {
	if month > 12 {
		month = 12
	}
	owed := month - b.LastAccrualMonth
	if !rate.IsPositive() || owed <= 0 {
		return false
	}
	_ = b.Apply(TriggerAccrue, rate.Mul(decimal.NewFromInt(int64(owed))))
	b.LastAccrualMonth = month
	return true
}
