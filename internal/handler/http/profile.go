package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/dataflow"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ProfileHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
}

type profileHandlerImpl struct {
	svc    dataflow.Service
	logger *zap.Logger
}

func NewProfileHandler(svc dataflow.Service, logger *zap.Logger) ProfileHandler {
	return &profileHandlerImpl{svc: svc, logger: logger.Named("http.profile")}
}

// Get returns a profile to its owner or to an approver.
func (h *profileHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}
	employeeID := chi.URLParam(r, "employeeID")
	if employeeID != claims.EmployeeID && !claims.Role.IsApprover() {
		response.Forbidden(w, "Cannot view another employee's profile")
		return
	}

	profile, err := h.svc.GetEmployeeProfile(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, profile)
}

// Update merges the request into a profile. Employees edit their own
// profile; only hr and admin edit others or change roles.
func (h *profileHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}
	employeeID := chi.URLParam(r, "employeeID")
	if employeeID != claims.EmployeeID && !isHR(claims.Role) {
		response.Forbidden(w, "Cannot edit another employee's profile")
		return
	}

	var req employee.UpdateProfileRequest
	if !decodeJSON(w, r, &req, h.logger, "update_profile") {
		return
	}
	if req.ChangesRole() && !isHR(claims.Role) {
		response.HandleError(w, employee.ErrRoleChangeForbidden)
		return
	}

	profile, err := h.svc.UpdateEmployeeProfile(r.Context(), employeeID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Profile updated successfully", profile)
}
