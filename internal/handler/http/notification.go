package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/dataflow"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type NotificationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	MarkAsRead(w http.ResponseWriter, r *http.Request)
	Send(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	svc    dataflow.Service
	logger *zap.Logger
}

func NewNotificationHandler(svc dataflow.Service, logger *zap.Logger) NotificationHandler {
	return &notificationHandlerImpl{svc: svc, logger: logger.Named("http.notification")}
}

// List returns the notifications visible to the caller, newest first.
func (h *notificationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	notifications, err := h.svc.ListNotifications(r.Context(), claims.EmployeeID, queryBool(r, "unread_only", false))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, notifications)
}

// MarkAsRead only reaches notifications addressed to the caller.
func (h *notificationHandlerImpl) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	n, err := h.svc.MarkNotificationAsRead(r.Context(), claims.EmployeeID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Notification marked as read", n)
}

// Send lets hr post an announcement to an employee, a role or everyone.
func (h *notificationHandlerImpl) Send(w http.ResponseWriter, r *http.Request) {
	var req notification.SendNotificationRequest
	if !decodeJSON(w, r, &req, h.logger, "send_notification") {
		return
	}

	n, err := h.svc.CreateNotification(r.Context(), req.ToCreate())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Notification sent", n)
}
