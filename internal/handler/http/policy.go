package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/dataflow"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/policy"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PolicyHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Acknowledge(w http.ResponseWriter, r *http.Request)
	Pending(w http.ResponseWriter, r *http.Request)
}

type policyHandlerImpl struct {
	svc    dataflow.Service
	logger *zap.Logger
}

func NewPolicyHandler(svc dataflow.Service, logger *zap.Logger) PolicyHandler {
	return &policyHandlerImpl{svc: svc, logger: logger.Named("http.policy")}
}

func (h *policyHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	policies, err := h.svc.ListPolicies(r.Context(), queryBool(r, "active_only", true))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, policies)
}

func (h *policyHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req policy.CreatePolicyRequest
	if !decodeJSON(w, r, &req, h.logger, "create_policy") {
		return
	}
	req.CreatedBy = claims.EmployeeID

	created, err := h.svc.CreatePolicy(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Policy created successfully", created)
}

func (h *policyHandlerImpl) Acknowledge(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	ack, err := h.svc.AcknowledgePolicy(r.Context(), chi.URLParam(r, "id"), claims.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Policy acknowledged", ack)
}

func (h *policyHandlerImpl) Pending(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	pending, err := h.svc.GetPendingPolicies(r.Context(), claims.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, pending)
}
