package cron

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LeaveAccruer credits monthly accruals; it is satisfied by the data flow
// service.
type LeaveAccruer interface {
	AccrueLeave(ctx context.Context, now time.Time) (int, error)
}

// LeaveJobs contains leave-related cron jobs
type LeaveJobs struct {
	accruer  LeaveAccruer
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewLeaveJobs builds the accrual job. Accrual is idempotent within a month,
// so interval only bounds how late in a new month the credit lands.
func NewLeaveJobs(accruer LeaveAccruer, interval time.Duration, logger *zap.Logger) *LeaveJobs {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaveJobs{
		accruer:  accruer,
		interval: interval,
		logger:   logger.Named("cron"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (j *LeaveJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("accrue_leave_balances", j.interval, j.AccrueLeaveBalances)
}

func (j *LeaveJobs) AccrueLeaveBalances(ctx context.Context) error {
	credited, err := j.accruer.AccrueLeave(ctx, j.now())
	if err != nil {
		return err
	}
	if credited > 0 {
		j.logger.Info("Cron: Accrued leave balances", zap.Int("count", credited))
	}
	return nil
}
