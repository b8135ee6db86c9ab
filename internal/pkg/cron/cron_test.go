package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockAccruer struct {
	mock.Mock
}

func (m *MockAccruer) AccrueLeave(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func TestScheduler_RunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler(zap.NewNop())

	var runs atomic.Int32
	s.AddJob("tick", 10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())
}

func TestScheduler_RunOnceLogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewScheduler(zap.New(core))

	var order []string
	s.AddJob("first", time.Hour, func(context.Context) error {
		order = append(order, "first")
		return errors.New("boom")
	})
	s.AddJob("second", time.Hour, func(context.Context) error {
		order = append(order, "second")
		return nil
	})

	s.RunOnce(context.Background())

	assert.Equal(t, []string{"first", "second"}, order)
	failed := logs.FilterMessage("Cron job failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "first", failed[0].ContextMap()["name"])
}

func TestLeaveJobs_AccrueLeaveBalances(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 5, 0, 0, time.UTC)
	accruer := new(MockAccruer)
	accruer.On("AccrueLeave", mock.Anything, now).Return(3, nil).Once()
	accruer.On("AccrueLeave", mock.Anything, now).Return(0, errors.New("store down")).Once()

	core, logs := observer.New(zapcore.InfoLevel)
	jobs := NewLeaveJobs(accruer, 0, zap.New(core))
	jobs.now = func() time.Time { return now }
	assert.Equal(t, time.Hour, jobs.interval)

	require.NoError(t, jobs.AccrueLeaveBalances(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("Cron: Accrued leave balances").Len())

	assert.EqualError(t, jobs.AccrueLeaveBalances(context.Background()), "store down")
	accruer.AssertExpectations(t)
}

func TestLeaveJobs_RegisterJobs(t *testing.T) {
	s := NewScheduler(nil)
	NewLeaveJobs(new(MockAccruer), 15*time.Minute, nil).RegisterJobs(s)

	require.Len(t, s.jobs, 1)
	assert.Equal(t, "accrue_leave_balances", s.jobs[0].Name)
	assert.Equal(t, 15*time.Minute, s.jobs[0].Interval)
}
