package dataflow

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/leave"
	"go.uber.org/zap"
)

// AccrueLeave credits each active leave type's monthly AccrualRate to the
// balances opened for now's year. A balance is credited at most once per
// month; each leave type is processed in its own transaction.
func (s *service) AccrueLeave(ctx context.Context, now time.Time) (credited int, err error) {
	defer s.observe("accrue_leave", time.Now(), &err)

	leaveTypes, err := s.leaveTypes.List(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("failed to list leave types: %w", err)
	}

	year, month := now.Year(), int(now.Month())
	for _, leaveType := range leaveTypes {
		if !leaveType.AccrualRate.IsPositive() {
			continue
		}

		var updated []leave.LeaveBalance
		err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
			updated = updated[:0]
			balances, err := s.leaveBalances.ListByLeaveType(ctx, leaveType.ID, year)
			if err != nil {
				return fmt.Errorf("failed to list leave balances: %w", err)
			}
			for _, balance := range balances {
				if balance.LastAccrualMonth >= month {
					continue
				}
				if err := balance.Apply(leave.TriggerAccrue, leaveType.AccrualRate); err != nil {
					return err
				}
				balance.LastAccrualMonth = month
				balance.UpdatedAt = now
				if err := s.leaveBalances.Save(ctx, balance); err != nil {
					return fmt.Errorf("failed to save leave balance: %w", err)
				}
				updated = append(updated, balance)
			}
			return nil
		})
		if err != nil {
			return credited, fmt.Errorf("accrue %s: %w", leaveType.Name, err)
		}

		credited += len(updated)
		for _, balance := range updated {
			s.record(ctx, activity.ActivityLog{
				EmployeeID: balance.EmployeeID,
				Action:     activity.ActionLeaveAccrued,
				EntityType: activity.EntityLeaveBalance,
				EntityID:   balance.ID,
				After:      activity.Snapshot(balance),
				Timestamp:  now,
			})
		}
	}

	s.logger.Info("leave accrual completed", zap.Int("credited", credited), zap.Int("year", year), zap.Int("month", month))
	return credited, nil
}
