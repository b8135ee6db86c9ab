package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore"
	"github.com/google/uuid"
)

type LeaveTypeRepository struct {
	collection[leave.LeaveType]
}

var _ leave.LeaveTypeRepository = (*LeaveTypeRepository)(nil)

func NewLeaveTypeRepository(store docstore.Store) *LeaveTypeRepository {
	return &LeaveTypeRepository{collection[leave.LeaveType]{
		store:    store,
		name:     CollectionLeaveTypes,
		encode:   encodeLeaveType,
		decode:   decodeLeaveType,
		notFound: leave.ErrLeaveTypeNotFound,
	}}
}

func encodeLeaveType(t leave.LeaveType) docstore.Document {
	return docstore.Document{
		"name":              t.Name,
		"annualEntitlement": encodeDecimal(t.AnnualEntitlement),
		"accrualRate":       encodeDecimal(t.AccrualRate),
		"carryForward":      t.CarryForward,
		"requiresApproval":  t.RequiresApproval,
		"deductionType":     string(t.DeductionType),
		"color":             t.Color,
		"active":            t.Active,
		"createdAt":         docstore.Timestamp(t.CreatedAt),
		"updatedAt":         docstore.Timestamp(t.UpdatedAt),
	}
}

func decodeLeaveType(doc docstore.Document) leave.LeaveType {
	return leave.LeaveType{
		ID:                doc.ID(),
		Name:              doc.String("name"),
		AnnualEntitlement: decodeDecimal(doc, "annualEntitlement"),
		AccrualRate:       decodeDecimal(doc, "accrualRate"),
		CarryForward:      doc.Bool("carryForward"),
		RequiresApproval:  doc.Bool("requiresApproval"),
		DeductionType:     leave.DeductionType(doc.String("deductionType")),
		Color:             doc.String("color"),
		Active:            doc.Bool("active"),
		CreatedAt:         doc.Time("createdAt"),
		UpdatedAt:         doc.Time("updatedAt"),
	}
}

func (r *LeaveTypeRepository) Create(ctx context.Context, t leave.LeaveType) (leave.LeaveType, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := r.put(ctx, t.ID, t); err != nil {
		return leave.LeaveType{}, err
	}
	return t, nil
}

func (r *LeaveTypeRepository) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	return r.get(ctx, id)
}

func (r *LeaveTypeRepository) List(ctx context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	q := docstore.Query{OrderBy: []docstore.OrderBy{{Field: "name"}}}
	if activeOnly {
		q.Filters = []docstore.Filter{docstore.Eq("active", true)}
	}
	return r.query(ctx, q)
}

func (r *LeaveTypeRepository) Update(ctx context.Context, t leave.LeaveType) error {
	if _, err := r.get(ctx, t.ID); err != nil {
		return err
	}
	return r.put(ctx, t.ID, t)
}

type LeaveRequestRepository struct {
	collection[leave.LeaveRequest]
}

var _ leave.LeaveRequestRepository = (*LeaveRequestRepository)(nil)

func NewLeaveRequestRepository(store docstore.Store) *LeaveRequestRepository {
	return &LeaveRequestRepository{collection[leave.LeaveRequest]{
		store:    store,
		name:     CollectionLeaveRequests,
		encode:   encodeLeaveRequest,
		decode:   decodeLeaveRequest,
		notFound: leave.ErrLeaveRequestNotFound,
	}}
}

func encodeLeaveRequest(r leave.LeaveRequest) docstore.Document {
	return docstore.Document{
		"employeeId":      r.EmployeeID,
		"leaveTypeId":     r.LeaveTypeID,
		"startDate":       docstore.Timestamp(r.StartDate),
		"endDate":         docstore.Timestamp(r.EndDate),
		"totalDays":       encodeDecimal(r.TotalDays),
		"reason":          r.Reason,
		"status":          string(r.Status),
		"submittedAt":     docstore.Timestamp(r.SubmittedAt),
		"approvedBy":      r.ApprovedBy,
		"approvedAt":      docstore.TimestampPtr(r.ApprovedAt),
		"comments":        r.Comments,
		"rejectionReason": r.RejectionReason,
		"cancelledAt":     docstore.TimestampPtr(r.CancelledAt),
		"createdAt":       docstore.Timestamp(r.CreatedAt),
		"updatedAt":       docstore.Timestamp(r.UpdatedAt),
	}
}

func decodeLeaveRequest(doc docstore.Document) leave.LeaveRequest {
	return leave.LeaveRequest{
		ID:              doc.ID(),
		EmployeeID:      doc.String("employeeId"),
		LeaveTypeID:     doc.String("leaveTypeId"),
		StartDate:       doc.Time("startDate"),
		EndDate:         doc.Time("endDate"),
		TotalDays:       decodeDecimal(doc, "totalDays"),
		Reason:          doc.String("reason"),
		Status:          leave.LeaveRequestStatus(doc.String("status")),
		SubmittedAt:     doc.Time("submittedAt"),
		ApprovedBy:      doc.String("approvedBy"),
		ApprovedAt:      doc.TimePtr("approvedAt"),
		Comments:        doc.String("comments"),
		RejectionReason: doc.String("rejectionReason"),
		CancelledAt:     doc.TimePtr("cancelledAt"),
		CreatedAt:       doc.Time("createdAt"),
		UpdatedAt:       doc.Time("updatedAt"),
	}
}

func (r *LeaveRequestRepository) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if err := r.put(ctx, req.ID, req); err != nil {
		return leave.LeaveRequest{}, err
	}
	return req, nil
}

func (r *LeaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.get(ctx, id)
}

func (r *LeaveRequestRepository) Update(ctx context.Context, req leave.LeaveRequest) error {
	doc := encodeLeaveRequest(req)
	return r.update(ctx, req.ID, doc)
}

func requestQuery(filter leave.LeaveRequestFilter) docstore.Query {
	q := docstore.Query{OrderBy: []docstore.OrderBy{{Field: "submittedAt", Desc: true}}}
	if filter.EmployeeID != "" {
		q.Filters = append(q.Filters, docstore.Eq("employeeId", filter.EmployeeID))
	}
	if filter.Status != "" {
		q.Filters = append(q.Filters, docstore.Eq("status", string(filter.Status)))
	}
	return q
}

func (r *LeaveRequestRepository) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, error) {
	return r.query(ctx, requestQuery(filter))
}

func (r *LeaveRequestRepository) Watch(ctx context.Context, filter leave.LeaveRequestFilter, fn func([]leave.LeaveRequest)) (func(), error) {
	return r.watch(ctx, requestQuery(filter), fn)
}

type LeaveBalanceRepository struct {
	collection[leave.LeaveBalance]
}

var _ leave.LeaveBalanceRepository = (*LeaveBalanceRepository)(nil)

func NewLeaveBalanceRepository(store docstore.Store) *LeaveBalanceRepository {
	return &LeaveBalanceRepository{collection[leave.LeaveBalance]{
		store:    store,
		name:     CollectionLeaveBalances,
		encode:   encodeLeaveBalance,
		decode:   decodeLeaveBalance,
		notFound: leave.ErrLeaveBalanceNotFound,
	}}
}

func encodeLeaveBalance(b leave.LeaveBalance) docstore.Document {
	return docstore.Document{
		"employeeId":       b.EmployeeID,
		"leaveTypeId":      b.LeaveTypeID,
		"year":             b.Year,
		"totalEntitlement": encodeDecimal(b.TotalEntitlement),
		"used":             encodeDecimal(b.Used),
		"remaining":        encodeDecimal(b.Remaining),
		"pending":          encodeDecimal(b.Pending),
		"accrued":          encodeDecimal(b.Accrued),
		"carriedForward":   encodeDecimal(b.CarriedForward),
		"lastAccrualMonth": b.LastAccrualMonth,
		"updatedAt":        docstore.Timestamp(b.UpdatedAt),
	}
}

func decodeLeaveBalance(doc docstore.Document) leave.LeaveBalance {
	return leave.LeaveBalance{
		ID:               doc.ID(),
		EmployeeID:       doc.String("employeeId"),
		LeaveTypeID:      doc.String("leaveTypeId"),
		Year:             doc.Int("year"),
		TotalEntitlement: decodeDecimal(doc, "totalEntitlement"),
		Used:             decodeDecimal(doc, "used"),
		Remaining:        decodeDecimal(doc, "remaining"),
		Pending:          decodeDecimal(doc, "pending"),
		Accrued:          decodeDecimal(doc, "accrued"),
		CarriedForward:   decodeDecimal(doc, "carriedForward"),
		LastAccrualMonth: doc.Int("lastAccrualMonth"),
		UpdatedAt:        doc.Time("updatedAt"),
	}
}

func (r *LeaveBalanceRepository) Get(ctx context.Context, employeeID, leaveTypeID string, year int) (leave.LeaveBalance, error) {
	return r.get(ctx, leave.BalanceID(employeeID, leaveTypeID, year))
}

func (r *LeaveBalanceRepository) Create(ctx context.Context, b leave.LeaveBalance) error {
	b.ID = leave.BalanceID(b.EmployeeID, b.LeaveTypeID, b.Year)
	err := r.create(ctx, b.ID, b)
	if errors.Is(err, docstore.ErrAlreadyExists) {
		return fmt.Errorf("%w: %w", leave.ErrLeaveBalanceExists, err)
	}
	return err
}

func (r *LeaveBalanceRepository) Save(ctx context.Context, b leave.LeaveBalance) error {
	b.ID = leave.BalanceID(b.EmployeeID, b.LeaveTypeID, b.Year)
	return r.put(ctx, b.ID, b)
}

func (r *LeaveBalanceRepository) ListByEmployee(ctx context.Context, employeeID string, year int) ([]leave.LeaveBalance, error) {
	return r.query(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("employeeId", employeeID), docstore.Eq("year", year)},
		OrderBy: []docstore.OrderBy{{Field: "leaveTypeId"}},
	})
}

func (r *LeaveBalanceRepository) ListByLeaveType(ctx context.Context, leaveTypeID string, year int) ([]leave.LeaveBalance, error) {
	return r.query(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("leaveTypeId", leaveTypeID), docstore.Eq("year", year)},
	})
}
