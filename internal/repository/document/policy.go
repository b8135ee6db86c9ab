package document

import (
	"context"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/policy"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore"
	"github.com/google/uuid"
)

type PolicyRepository struct {
	collection[policy.Policy]
}

var _ policy.PolicyRepository = (*PolicyRepository)(nil)

func NewPolicyRepository(store docstore.Store) *PolicyRepository {
	return &PolicyRepository{collection[policy.Policy]{
		store:    store,
		name:     CollectionPolicies,
		encode:   encodePolicy,
		decode:   decodePolicy,
		notFound: policy.ErrPolicyNotFound,
	}}
}

func encodePolicy(p policy.Policy) docstore.Document {
	roles := p.TargetRoles
	if roles == nil {
		roles = []string{}
	}
	departments := p.TargetDepartments
	if departments == nil {
		departments = []string{}
	}
	return docstore.Document{
		"title":                  p.Title,
		"content":                p.Content,
		"version":                p.Version,
		"category":               p.Category,
		"effectiveDate":          docstore.Timestamp(p.EffectiveDate),
		"expiryDate":             docstore.TimestampPtr(p.ExpiryDate),
		"requiresAcknowledgment": p.RequiresAcknowledgment,
		"targetRoles":            roles,
		"targetDepartments":      departments,
		"active":                 p.Active,
		"createdBy":              p.CreatedBy,
		"createdAt":              docstore.Timestamp(p.CreatedAt),
	}
}

func decodePolicy(doc docstore.Document) policy.Policy {
	return policy.Policy{
		ID:                     doc.ID(),
		Title:                  doc.String("title"),
		Content:                doc.String("content"),
		Version:                doc.String("version"),
		Category:               doc.String("category"),
		EffectiveDate:          doc.Time("effectiveDate"),
		ExpiryDate:             doc.TimePtr("expiryDate"),
		RequiresAcknowledgment: doc.Bool("requiresAcknowledgment"),
		TargetRoles:            doc.Strings("targetRoles"),
		TargetDepartments:      doc.Strings("targetDepartments"),
		Active:                 doc.Bool("active"),
		CreatedBy:              doc.String("createdBy"),
		CreatedAt:              doc.Time("createdAt"),
	}
}

func (r *PolicyRepository) Create(ctx context.Context, p policy.Policy) (policy.Policy, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := r.put(ctx, p.ID, p); err != nil {
		return policy.Policy{}, err
	}
	return p, nil
}

func (r *PolicyRepository) GetByID(ctx context.Context, id string) (policy.Policy, error) {
	return r.get(ctx, id)
}

func policyQuery(activeOnly bool) docstore.Query {
	q := docstore.Query{OrderBy: []docstore.OrderBy{{Field: "createdAt", Desc: true}}}
	if activeOnly {
		q.Filters = []docstore.Filter{docstore.Eq("active", true)}
	}
	return q
}

func (r *PolicyRepository) List(ctx context.Context, activeOnly bool) ([]policy.Policy, error) {
	return r.query(ctx, policyQuery(activeOnly))
}

func (r *PolicyRepository) Watch(ctx context.Context, activeOnly bool, fn func([]policy.Policy)) (func(), error) {
	return r.watch(ctx, policyQuery(activeOnly), fn)
}

type AcknowledgmentRepository struct {
	collection[policy.Acknowledgment]
}

var _ policy.AcknowledgmentRepository = (*AcknowledgmentRepository)(nil)

func NewAcknowledgmentRepository(store docstore.Store) *AcknowledgmentRepository {
	return &AcknowledgmentRepository{collection[policy.Acknowledgment]{
		store:    store,
		name:     CollectionAcknowledgments,
		encode:   encodeAcknowledgment,
		decode:   decodeAcknowledgment,
		notFound: policy.ErrAcknowledgmentNotFound,
	}}
}

func encodeAcknowledgment(a policy.Acknowledgment) docstore.Document {
	return docstore.Document{
		"policyId":       a.PolicyID,
		"employeeId":     a.EmployeeID,
		"policyVersion":  a.PolicyVersion,
		"acknowledgedAt": docstore.Timestamp(a.AcknowledgedAt),
	}
}

func decodeAcknowledgment(doc docstore.Document) policy.Acknowledgment {
	return policy.Acknowledgment{
		ID:             doc.ID(),
		PolicyID:       doc.String("policyId"),
		EmployeeID:     doc.String("employeeId"),
		PolicyVersion:  doc.String("policyVersion"),
		AcknowledgedAt: doc.Time("acknowledgedAt"),
	}
}

func (r *AcknowledgmentRepository) Get(ctx context.Context, policyID, employeeID string) (policy.Acknowledgment, error) {
	return r.get(ctx, policy.AcknowledgmentID(policyID, employeeID))
}

func (r *AcknowledgmentRepository) Create(ctx context.Context, a policy.Acknowledgment) (policy.Acknowledgment, error) {
	a.ID = policy.AcknowledgmentID(a.PolicyID, a.EmployeeID)
	if err := r.put(ctx, a.ID, a); err != nil {
		return policy.Acknowledgment{}, err
	}
	return a, nil
}

func (r *AcknowledgmentRepository) ListByEmployee(ctx context.Context, employeeID string) ([]policy.Acknowledgment, error) {
	return r.query(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("employeeId", employeeID)},
	})
}
