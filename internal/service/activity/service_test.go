package activity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore/memory"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/events"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/repository/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *capturePublisher) Close() {}

type failingRepository struct {
	activity.Repository
}

func (failingRepository) Append(context.Context, activity.ActivityLog) (activity.ActivityLog, error) {
	return activity.ActivityLog{}, errors.New("store unavailable")
}

func newRepo(t *testing.T) activity.Repository {
	store := memory.New()
	t.Cleanup(func() { _ = store.Close() })
	return document.NewRepositories(store).Activities
}

func TestRecord_AppendsAndPublishes(t *testing.T) {
	repo := newRepo(t)
	pub := &capturePublisher{}
	rec := NewRecorder(repo, pub, metrics.New(), zaptest.NewLogger(t))
	ctx := context.Background()

	rec.Record(ctx, activity.ActivityLog{
		EmployeeID: "e1",
		Action:     activity.ActionLeaveRequested,
		EntityType: activity.EntityLeaveRequest,
		EntityID:   "r1",
		After:      map[string]any{"status": "pending"},
	})

	history, err := rec.History(ctx, activity.EntityLeaveRequest, "r1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].Timestamp.IsZero())

	require.Len(t, pub.events, 1)
	assert.Equal(t, history[0].ID, pub.events[0].ID)
	assert.Equal(t, "leave_requested", pub.events[0].Action)
	assert.Equal(t, "pending", pub.events[0].After["status"])
}

func TestRecord_FailureIsSwallowed(t *testing.T) {
	core, recorded := observer.New(zap.WarnLevel)
	pub := &capturePublisher{}
	rec := NewRecorder(failingRepository{}, pub, nil, zap.New(core))

	assert.NotPanics(t, func() {
		rec.Record(context.Background(), activity.ActivityLog{Action: activity.ActionPolicyCreated})
	})
	assert.Equal(t, 1, recorded.FilterMessage("failed to record activity").Len())
	assert.Empty(t, pub.events)
}

func TestRecent_ClampsLimit(t *testing.T) {
	repo := newRepo(t)
	rec := NewRecorder(repo, nil, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec.Record(ctx, activity.ActivityLog{
			EmployeeID: "e1",
			Action:     activity.ActionProfileUpdated,
			EntityType: activity.EntityProfile,
			EntityID:   "e1",
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
		})
	}

	recent, err := rec.Recent(ctx, "e1", 0)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.True(t, recent[0].Timestamp.After(recent[2].Timestamp))

	recent, err = rec.Recent(ctx, "e1", 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}
