package policy

import "context"

type PolicyRepository interface {
	Create(ctx context.Context, p Policy) (Policy, error)
	GetByID(ctx context.Context, id string) (Policy, error)
	List(ctx context.Context, activeOnly bool) ([]Policy, error)
	Watch(ctx context.Context, activeOnly bool, fn func([]Policy)) (func(), error)
}

type AcknowledgmentRepository interface {
	Get(ctx context.Context, policyID, employeeID string) (Acknowledgment, error)
	// Create stores ack under its deterministic id, replacing any previous one.
	Create(ctx context.Context, ack Acknowledgment) (Acknowledgment, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Acknowledgment, error)
}
