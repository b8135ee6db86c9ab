// Package realtime fans store watches out to long-lived subscribers such as
// SSE streams. Every subscriber receives the full current state, first
// synchronously on subscribe and then after each matching change.
package realtime

import (
	"context"
	"errors"
	"sync"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/policy"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/metrics"
	"go.uber.org/zap"
)

var ErrManagerClosed = errors.New("realtime manager closed")

const (
	TopicProfile       = "profile"
	TopicLeaveRequests = "leave-requests"
	TopicNotifications = "notifications"
	TopicPolicies      = "policies"
)

// Unsubscribe stops a subscription. It is safe to call more than once.
type Unsubscribe func()

// AudienceResolver lists the notification targets an employee can see.
type AudienceResolver interface {
	AudienceOf(ctx context.Context, employeeID string) ([]notification.Target, error)
}

type subscription struct {
	topic  string
	cancel func()
}

// Manager keeps a multimap of key to subscription id to subscription.
type Manager struct {
	profiles      employee.ProfileRepository
	leaveRequests leave.LeaveRequestRepository
	policies      policy.PolicyRepository
	notifications notification.Repository
	audience      AudienceResolver
	metrics       *metrics.Metrics
	logger        *zap.Logger

	mu     sync.Mutex
	subs   map[string]map[uint64]subscription
	nextID uint64
	closed bool
}

type Dependencies struct {
	Profiles      employee.ProfileRepository
	LeaveRequests leave.LeaveRequestRepository
	Policies      policy.PolicyRepository
	Notifications notification.Repository
	Audience      AudienceResolver
	Metrics       *metrics.Metrics
	Logger        *zap.Logger
}

func NewManager(deps Dependencies) *Manager {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		profiles:      deps.Profiles,
		leaveRequests: deps.LeaveRequests,
		policies:      deps.Policies,
		notifications: deps.Notifications,
		audience:      deps.Audience,
		metrics:       deps.Metrics,
		logger:        logger.Named("realtime"),
		subs:          make(map[string]map[uint64]subscription),
	}
}

// SubscribeToEmployeeProfile delivers the profile, or nil while none exists.
func (m *Manager) SubscribeToEmployeeProfile(ctx context.Context, employeeID string, fn func(*employee.EmployeeProfile)) (Unsubscribe, error) {
	if employeeID == "" {
		return nil, employee.ErrEmployeeIDRequired
	}
	return m.subscribe(ctx, TopicProfile, TopicProfile+":"+employeeID, func(ctx context.Context) (func(), error) {
		return m.profiles.Watch(ctx, employeeID, fn)
	})
}

// SubscribeToLeaveRequests watches the requests matching filter. An empty
// EmployeeID watches every employee, which is what approvers use.
func (m *Manager) SubscribeToLeaveRequests(ctx context.Context, filter leave.LeaveRequestFilter, fn func([]leave.LeaveRequest)) (Unsubscribe, error) {
	key := TopicLeaveRequests + ":" + filter.EmployeeID
	if filter.EmployeeID == "" {
		key = TopicLeaveRequests + ":*"
	}
	return m.subscribe(ctx, TopicLeaveRequests, key, func(ctx context.Context) (func(), error) {
		return m.leaveRequests.Watch(ctx, filter, fn)
	})
}

// SubscribeToNotifications watches everything addressed to the employee,
// their role, or everyone. The audience is resolved once at subscribe time.
func (m *Manager) SubscribeToNotifications(ctx context.Context, employeeID string, unreadOnly bool, fn func([]notification.Notification)) (Unsubscribe, error) {
	targets, err := m.audience.AudienceOf(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return m.subscribe(ctx, TopicNotifications, TopicNotifications+":"+employeeID, func(ctx context.Context) (func(), error) {
		return m.notifications.Watch(ctx, targets, unreadOnly, fn)
	})
}

func (m *Manager) SubscribeToPolicies(ctx context.Context, activeOnly bool, fn func([]policy.Policy)) (Unsubscribe, error) {
	return m.subscribe(ctx, TopicPolicies, TopicPolicies, func(ctx context.Context) (func(), error) {
		return m.policies.Watch(ctx, activeOnly, fn)
	})
}

func (m *Manager) subscribe(ctx context.Context, topic, key string, watch func(context.Context) (func(), error)) (Unsubscribe, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	m.mu.Unlock()

	// the initial delivery runs inside watch, so it must not hold mu
	cancel, err := watch(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		cancel()
		return nil, ErrManagerClosed
	}
	m.nextID++
	id := m.nextID
	if m.subs[key] == nil {
		m.subs[key] = make(map[uint64]subscription)
	}
	m.subs[key][id] = subscription{topic: topic, cancel: cancel}
	m.mu.Unlock()

	m.metrics.SubscriptionOpened(topic)
	m.logger.Debug("subscription opened", zap.String("key", key), zap.Uint64("subscription_id", id))

	var once sync.Once
	release := func() {
		once.Do(func() { m.remove(key, id) })
	}
	stop := context.AfterFunc(ctx, release)

	return func() {
		stop()
		release()
	}, nil
}

func (m *Manager) remove(key string, id uint64) {
	m.mu.Lock()
	sub, ok := m.subs[key][id]
	if ok {
		delete(m.subs[key], id)
		if len(m.subs[key]) == 0 {
			delete(m.subs, key)
		}
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	sub.cancel()
	m.metrics.SubscriptionClosed(sub.topic)
	m.logger.Debug("subscription closed", zap.String("key", key), zap.Uint64("subscription_id", id))
}

// Count returns the number of live subscriptions under key, e.g.
// "notifications:e1" or "policies".
func (m *Manager) Count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[key])
}

// Total returns the number of live subscriptions across all keys.
func (m *Manager) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, subs := range m.subs {
		total += len(subs)
	}
	return total
}

// Close cancels every subscription and rejects new ones.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	subs := m.subs
	m.subs = make(map[string]map[uint64]subscription)
	m.mu.Unlock()

	for _, byID := range subs {
		for _, sub := range byID {
			sub.cancel()
			m.metrics.SubscriptionClosed(sub.topic)
		}
	}
}
