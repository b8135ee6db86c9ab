package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/dataflow"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type LeaveHandler interface {
	CreateType(w http.ResponseWriter, r *http.Request)
	ListTypes(w http.ResponseWriter, r *http.Request)
	DeactivateType(w http.ResponseWriter, r *http.Request)

	ListRequests(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	CreateRequest(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	RejectRequest(w http.ResponseWriter, r *http.Request)
	CancelRequest(w http.ResponseWriter, r *http.Request)

	GetBalances(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	svc    dataflow.Service
	logger *zap.Logger
}

func NewLeaveHandler(svc dataflow.Service, logger *zap.Logger) LeaveHandler {
	return &leaveHandlerImpl{svc: svc, logger: logger.Named("http.leave")}
}

func (h *leaveHandlerImpl) CreateType(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req leave.CreateLeaveTypeRequest
	if !decodeJSON(w, r, &req, h.logger, "create_leave_type") {
		return
	}

	leaveType, err := h.svc.CreateLeaveType(r.Context(), req, claims.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Leave type created successfully", leaveType)
}

func (h *leaveHandlerImpl) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.ListLeaveTypes(r.Context(), queryBool(r, "active_only", true))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, types)
}

func (h *leaveHandlerImpl) DeactivateType(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeactivateLeaveType(r.Context(), chi.URLParam(r, "id"), claims.EmployeeID); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave type deactivated successfully", nil)
}

// ListRequests lists the caller's requests. Approvers may filter by
// employee_id and status; without employee_id they see everyone's.
func (h *leaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	filter := leave.LeaveRequestFilter{
		EmployeeID: claims.EmployeeID,
		Status:     leave.LeaveRequestStatus(r.URL.Query().Get("status")),
	}
	if claims.Role.IsApprover() {
		filter.EmployeeID = r.URL.Query().Get("employee_id")
	}

	requests, err := h.svc.ListLeaveRequests(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, requests)
}

func (h *leaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	request, err := h.svc.GetLeaveRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if request.EmployeeID != claims.EmployeeID && !claims.Role.IsApprover() {
		response.HandleError(w, leave.ErrLeaveRequestNotFound)
		return
	}
	response.Success(w, request)
}

func (h *leaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req leave.CreateLeaveRequestRequest
	if !decodeJSON(w, r, &req, h.logger, "create_leave_request") {
		return
	}
	// employee_id always comes from the token
	req.EmployeeID = claims.EmployeeID

	request, err := h.svc.CreateLeaveRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Leave request created successfully", request)
}

func (h *leaveHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req leave.ApproveLeaveRequestRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, h.logger, "approve_leave_request") {
		return
	}
	req.RequestID = chi.URLParam(r, "id")
	req.ApproverID = claims.EmployeeID

	request, err := h.svc.ApproveLeaveRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request approved successfully", request)
}

func (h *leaveHandlerImpl) RejectRequest(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req leave.RejectLeaveRequestRequest
	if !decodeJSON(w, r, &req, h.logger, "reject_leave_request") {
		return
	}
	req.RequestID = chi.URLParam(r, "id")
	req.ApproverID = claims.EmployeeID

	request, err := h.svc.RejectLeaveRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request rejected successfully", request)
}

func (h *leaveHandlerImpl) CancelRequest(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	request, err := h.svc.CancelLeaveRequest(r.Context(), chi.URLParam(r, "id"), claims.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request cancelled successfully", request)
}

func (h *leaveHandlerImpl) GetBalances(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	balances, err := h.svc.GetLeaveBalances(r.Context(), scopedEmployeeID(r, claims), queryInt(r, "year", 0))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, balances)
}
