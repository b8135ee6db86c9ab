package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/dataflow"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ActivityHandler interface {
	History(w http.ResponseWriter, r *http.Request)
	Recent(w http.ResponseWriter, r *http.Request)
}

type activityHandlerImpl struct {
	svc dataflow.Service
}

func NewActivityHandler(svc dataflow.Service) ActivityHandler {
	return &activityHandlerImpl{svc: svc}
}

// History returns an entity's audit trail, oldest first.
func (h *activityHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	entityType := activity.EntityType(chi.URLParam(r, "entityType"))
	logs, err := h.svc.GetActivityHistory(r.Context(), entityType, chi.URLParam(r, "entityID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, logs)
}

// Recent returns the caller's latest actions; approvers may pass
// employee_id.
func (h *activityHandlerImpl) Recent(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	logs, err := h.svc.GetEmployeeActivity(r.Context(), scopedEmployeeID(r, claims), queryInt(r, "limit", 0))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, logs)
}
