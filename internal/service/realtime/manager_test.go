package realtime

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/policy"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore/memory"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/repository/document"
	notificationsvc "github.com/cmlabs-hris/hris-dataflow-go/internal/service/notification"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recorder[T any] struct {
	mu    sync.Mutex
	calls []T
}

func (r *recorder[T]) add(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, v)
}

func (r *recorder[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recorder[T]) last() T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

func assertActive(t *testing.T, m *metrics.Metrics, series ...string) {
	t.Helper()
	expected := "# HELP hris_dataflow_subscriptions_active Live realtime subscriptions by topic.\n" +
		"# TYPE hris_dataflow_subscriptions_active gauge\n" +
		strings.Join(series, "\n") + "\n"
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "hris_dataflow_subscriptions_active"))
}

func setup(t *testing.T) (*Manager, document.Repositories, *metrics.Metrics) {
	t.Helper()
	store := memory.New()
	t.Cleanup(func() { _ = store.Close() })

	repos := document.NewRepositories(store)
	logger := zaptest.NewLogger(t)
	m := metrics.New()
	notifications := notificationsvc.NewNotificationService(repos.Notifications, repos.Profiles, m, logger, notificationsvc.Config{})

	manager := NewManager(Dependencies{
		Profiles:      repos.Profiles,
		LeaveRequests: repos.LeaveRequests,
		Policies:      repos.Policies,
		Notifications: repos.Notifications,
		Audience:      notifications,
		Metrics:       m,
		Logger:        logger,
	})
	t.Cleanup(manager.Close)
	return manager, repos, m
}

func TestSubscribeToEmployeeProfile_InitialAndUpdates(t *testing.T) {
	manager, repos, m := setup(t)
	ctx := context.Background()

	var got recorder[*employee.EmployeeProfile]
	unsub, err := manager.SubscribeToEmployeeProfile(ctx, "e1", got.add)
	require.NoError(t, err)

	// initial delivery happens before Subscribe returns, even when empty
	require.Equal(t, 1, got.len())
	assert.Nil(t, got.last())
	assert.Equal(t, 1, manager.Count("profile:e1"))
	assertActive(t, m, `hris_dataflow_subscriptions_active{topic="profile"} 1`)

	require.NoError(t, repos.Profiles.Save(ctx, employee.EmployeeProfile{
		ID:           "e1",
		PersonalInfo: employee.PersonalInfo{FirstName: "Rina"},
	}))
	assert.Eventually(t, func() bool {
		p := got.last()
		return p != nil && p.PersonalInfo.FirstName == "Rina"
	}, time.Second, 10*time.Millisecond)

	unsub()
	unsub()
	assert.Zero(t, manager.Count("profile:e1"))
	assert.Zero(t, manager.Total())
}

func TestSubscribeToEmployeeProfile_RequiresID(t *testing.T) {
	manager, _, _ := setup(t)

	_, err := manager.SubscribeToEmployeeProfile(context.Background(), "", func(*employee.EmployeeProfile) {})
	assert.ErrorIs(t, err, employee.ErrEmployeeIDRequired)
}

func TestSubscribeToNotifications_FollowsAudience(t *testing.T) {
	manager, repos, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, repos.Profiles.Save(ctx, employee.EmployeeProfile{
		ID:       "h1",
		WorkInfo: employee.WorkInfo{Role: employee.RoleHR},
	}))

	var got recorder[[]notification.Notification]
	unsub, err := manager.SubscribeToNotifications(ctx, "h1", true, got.add)
	require.NoError(t, err)
	defer unsub()

	require.Equal(t, 1, got.len())
	assert.Empty(t, got.last())

	for _, target := range []notification.Target{notification.Role("hr"), notification.Role("manager"), notification.Broadcast()} {
		_, err := repos.Notifications.Create(ctx, notification.Notification{
			ID:        target.Audience(),
			Target:    target,
			Type:      notification.TypeInfo,
			Category:  notification.CategoryGeneral,
			Priority:  notification.PriorityMedium,
			Title:     "t",
			Message:   "m",
			CreatedAt: time.Now(),
		})
		require.NoError(t, err)
	}

	assert.Eventually(t, func() bool { return len(got.last()) == 2 }, time.Second, 10*time.Millisecond)
}

func TestSubscribeToLeaveRequestsAndPolicies(t *testing.T) {
	manager, repos, _ := setup(t)
	ctx := context.Background()

	var requests recorder[[]leave.LeaveRequest]
	unsubRequests, err := manager.SubscribeToLeaveRequests(ctx, leave.LeaveRequestFilter{}, requests.add)
	require.NoError(t, err)
	defer unsubRequests()

	var policies recorder[[]policy.Policy]
	unsubPolicies, err := manager.SubscribeToPolicies(ctx, true, policies.add)
	require.NoError(t, err)
	defer unsubPolicies()

	assert.Equal(t, 1, manager.Count("leave-requests:*"))
	assert.Equal(t, 1, manager.Count("policies"))

	_, err = repos.LeaveRequests.Create(ctx, leave.LeaveRequest{
		EmployeeID:  "e1",
		LeaveTypeID: "lt1",
		StartDate:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		TotalDays:   decimal.NewFromInt(1),
		Status:      leave.LeaveRequestStatusPending,
	})
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return len(requests.last()) == 1 }, time.Second, 10*time.Millisecond)

	_, err = repos.Policies.Create(ctx, policy.Policy{Title: "Conduct", Content: "c", Version: "1.0", Active: true})
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return len(policies.last()) == 1 }, time.Second, 10*time.Millisecond)
}

func TestSubscribe_ContextCancelUnsubscribes(t *testing.T) {
	manager, _, _ := setup(t)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := manager.SubscribeToPolicies(ctx, false, func([]policy.Policy) {})
	require.NoError(t, err)
	_, err = manager.SubscribeToPolicies(context.Background(), false, func([]policy.Policy) {})
	require.NoError(t, err)
	assert.Equal(t, 2, manager.Count("policies"))

	cancel()
	assert.Eventually(t, func() bool { return manager.Count("policies") == 1 }, time.Second, 10*time.Millisecond)
}

func TestClose(t *testing.T) {
	manager, _, m := setup(t)
	ctx := context.Background()

	unsub, err := manager.SubscribeToPolicies(ctx, false, func([]policy.Policy) {})
	require.NoError(t, err)
	_, err = manager.SubscribeToEmployeeProfile(ctx, "e1", func(*employee.EmployeeProfile) {})
	require.NoError(t, err)
	assert.Equal(t, 2, manager.Total())

	manager.Close()
	assert.Zero(t, manager.Total())
	assertActive(t, m,
		`hris_dataflow_subscriptions_active{topic="policies"} 0`,
		`hris_dataflow_subscriptions_active{topic="profile"} 0`,
	)

	unsub()
	_, err = manager.SubscribeToPolicies(ctx, false, func([]policy.Policy) {})
	assert.ErrorIs(t, err, ErrManagerClosed)
}
