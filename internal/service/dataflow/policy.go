package dataflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/policy"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultPolicyVersion = "1.0"

// CreatePolicy publishes a policy. When acknowledgment is required exactly
// one notification is written per audience: one per target role, or a single
// broadcast.
func (s *service) CreatePolicy(ctx context.Context, req policy.CreatePolicyRequest) (_ policy.Policy, err error) {
	defer s.observe("create_policy", time.Now(), &err)

	if err := req.Validate(); err != nil {
		return policy.Policy{}, err
	}

	now := s.now()
	effective, expiry := req.Window()
	if effective.IsZero() {
		effective = now
	}

	p := policy.Policy{
		Title:                  req.Title,
		Content:                req.Content,
		Version:                req.Version,
		Category:               req.Category,
		EffectiveDate:          effective,
		RequiresAcknowledgment: req.RequiresAcknowledgment,
		TargetRoles:            req.TargetRoles,
		TargetDepartments:      req.TargetDepartments,
		Active:                 true,
		CreatedBy:              req.CreatedBy,
		CreatedAt:              now,
	}
	if p.Version == "" {
		p.Version = defaultPolicyVersion
	}
	if !expiry.IsZero() {
		p.ExpiryDate = &expiry
	}

	created, err := s.policies.Create(ctx, p)
	if err != nil {
		return policy.Policy{}, fmt.Errorf("failed to create policy: %w", err)
	}
	s.logger.Info("policy published",
		zap.String("policy_id", created.ID),
		zap.Bool("requires_acknowledgment", created.RequiresAcknowledgment),
	)

	if created.RequiresAcknowledgment {
		targets := []notification.Target{notification.Broadcast()}
		if len(created.TargetRoles) > 0 {
			targets = targets[:0]
			for _, role := range created.TargetRoles {
				targets = append(targets, notification.Role(role))
			}
		}
		for _, target := range targets {
			s.notify(ctx, notification.CreateNotificationRequest{
				Target:    target,
				Type:      notification.TypeWarning,
				Category:  notification.CategoryPolicyPublished,
				Priority:  notification.PriorityHigh,
				Title:     "New policy requires acknowledgment",
				Message:   fmt.Sprintf("Please read and acknowledge %q (version %s)", created.Title, created.Version),
				ActionURL: "/policies/" + created.ID,
				Data:      map[string]any{"policyId": created.ID, "version": created.Version},
			})
		}
	}

	s.record(ctx, activity.ActivityLog{
		EmployeeID: created.CreatedBy,
		Action:     activity.ActionPolicyCreated,
		EntityType: activity.EntityPolicy,
		EntityID:   created.ID,
		After:      activity.Snapshot(created),
		Timestamp:  now,
	})

	return created, nil
}

func (s *service) ListPolicies(ctx context.Context, activeOnly bool) ([]policy.Policy, error) {
	return s.policies.List(ctx, activeOnly)
}

// AcknowledgePolicy is idempotent: acknowledging twice returns the first
// acknowledgment and notifies HR only once.
func (s *service) AcknowledgePolicy(ctx context.Context, policyID, employeeID string) (_ policy.Acknowledgment, err error) {
	defer s.observe("acknowledge_policy", time.Now(), &err)

	if employeeID == "" {
		return policy.Acknowledgment{}, employee.ErrEmployeeIDRequired
	}

	var (
		p       policy.Policy
		ack     policy.Acknowledgment
		created bool
	)
	err = s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.policies.GetByID(ctx, policyID)
		if err != nil {
			return err
		}
		if !p.Active {
			return policy.ErrPolicyInactive
		}

		ack, err = s.acknowledgments.Get(ctx, policyID, employeeID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, policy.ErrAcknowledgmentNotFound) {
			return fmt.Errorf("failed to get acknowledgment: %w", err)
		}

		ack, err = s.acknowledgments.Create(ctx, policy.Acknowledgment{
			PolicyID:       policyID,
			EmployeeID:     employeeID,
			PolicyVersion:  p.Version,
			AcknowledgedAt: s.now(),
		})
		if err != nil {
			return fmt.Errorf("failed to create acknowledgment: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return policy.Acknowledgment{}, err
	}
	if !created {
		return ack, nil
	}

	s.notify(ctx, notification.CreateNotificationRequest{
		Target:    notification.Role(string(employee.RoleHR)),
		Type:      notification.TypeInfo,
		Category:  notification.CategoryPolicyAcknowledged,
		Priority:  notification.PriorityLow,
		Title:     "Policy acknowledged",
		Message:   fmt.Sprintf("%s acknowledged %q (version %s)", s.displayName(ctx, employeeID), p.Title, p.Version),
		ActionURL: "/policies/" + p.ID,
		Data:      map[string]any{"policyId": p.ID, "employeeId": employeeID},
	})
	s.record(ctx, activity.ActivityLog{
		EmployeeID: employeeID,
		Action:     activity.ActionPolicyAcknowledged,
		EntityType: activity.EntityPolicy,
		EntityID:   p.ID,
		After:      activity.Snapshot(ack),
		Timestamp:  ack.AcknowledgedAt,
	})

	return ack, nil
}

// GetPendingPolicies lists the active, effective policies that require the
// employee's acknowledgment and have not received it. It is recomputed on
// every call.
func (s *service) GetPendingPolicies(ctx context.Context, employeeID string) ([]policy.Policy, error) {
	if employeeID == "" {
		return nil, employee.ErrEmployeeIDRequired
	}

	var (
		role       = employee.RoleEmployee
		department string
		policies   []policy.Policy
		acks       []policy.Acknowledgment
	)
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		profile, err := s.profiles.GetByID(gCtx, employeeID)
		switch {
		case err == nil:
			role, department = profile.Role(), profile.WorkInfo.Department
		case !errors.Is(err, employee.ErrProfileNotFound):
			return fmt.Errorf("failed to get employee profile: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		if policies, err = s.policies.List(gCtx, true); err != nil {
			return fmt.Errorf("failed to list policies: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		if acks, err = s.acknowledgments.ListByEmployee(gCtx, employeeID); err != nil {
			return fmt.Errorf("failed to list acknowledgments: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	acknowledged := make(map[string]struct{}, len(acks))
	for _, ack := range acks {
		acknowledged[ack.PolicyID] = struct{}{}
	}

	now := s.now()
	pending := make([]policy.Policy, 0)
	for _, p := range policies {
		if !p.RequiresAcknowledgment || !p.IsEffective(now) || !p.AppliesTo(string(role), department) {
			continue
		}
		if _, ok := acknowledged[p.ID]; ok {
			continue
		}
		pending = append(pending, p)
	}
	return pending, nil
}
