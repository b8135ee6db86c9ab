package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/performance"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/policy"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Employee domain errors
	case errors.Is(err, employee.ErrProfileNotFound):
		NotFound(w, "Employee profile not found")
	case errors.Is(err, employee.ErrEmployeeIDRequired):
		BadRequest(w, "Employee ID is required", nil)
	case errors.Is(err, employee.ErrRoleChangeForbidden):
		Forbidden(w, err.Error())

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrLeaveTypeNotFound):
		NotFound(w, "Leave type not found")
	case errors.Is(err, leave.ErrLeaveBalanceNotFound):
		NotFound(w, "Leave balance not found")
	case errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed):
		Conflict(w, "Leave request already processed")
	case errors.Is(err, leave.ErrInsufficientBalance):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, leave.ErrLeaveTypeInactive):
		BadRequest(w, "Leave type is not active", nil)
	case errors.Is(err, leave.ErrNotRequestOwner):
		Forbidden(w, err.Error())

	// Policy domain errors
	case errors.Is(err, policy.ErrPolicyNotFound):
		NotFound(w, "Policy not found")
	case errors.Is(err, policy.ErrPolicyInactive):
		Conflict(w, "Policy is not active")

	// Performance domain errors
	case errors.Is(err, performance.ErrMeetingNotFound):
		NotFound(w, "Meeting not found")
	case errors.Is(err, performance.ErrInvalidStatusTransition):
		Conflict(w, err.Error())
	case errors.Is(err, performance.ErrNotMeetingParticipant):
		Forbidden(w, err.Error())

	// Notification domain errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")
	case errors.Is(err, notification.ErrInvalidTarget):
		BadRequest(w, err.Error(), nil)

	// Store errors
	case errors.Is(err, docstore.ErrNotFound):
		NotFound(w, "Resource not found")
	case errors.Is(err, docstore.ErrInvalidField):
		BadRequest(w, "Invalid query", nil)
	case errors.Is(err, docstore.ErrClosed):
		ServiceUnavailable(w, "Service is shutting down")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
