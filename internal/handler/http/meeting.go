package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/dataflow"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/performance"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type MeetingHandler interface {
	Schedule(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Confirm(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
}

type meetingHandlerImpl struct {
	svc    dataflow.Service
	logger *zap.Logger
}

func NewMeetingHandler(svc dataflow.Service, logger *zap.Logger) MeetingHandler {
	return &meetingHandlerImpl{svc: svc, logger: logger.Named("http.meeting")}
}

// Schedule creates a meeting organised by the caller.
func (h *meetingHandlerImpl) Schedule(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req performance.ScheduleMeetingRequest
	if !decodeJSON(w, r, &req, h.logger, "schedule_meeting") {
		return
	}
	req.ManagerID = claims.EmployeeID

	meeting, err := h.svc.ScheduleMeeting(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Meeting scheduled successfully", meeting)
}

func (h *meetingHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	meetings, err := h.svc.ListMeetings(r.Context(), scopedEmployeeID(r, claims))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, meetings)
}

func (h *meetingHandlerImpl) Confirm(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	meeting, err := h.svc.ConfirmMeeting(r.Context(), chi.URLParam(r, "id"), claims.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Meeting confirmed", meeting)
}

func (h *meetingHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req performance.UpdateMeetingStatusRequest
	if !decodeJSON(w, r, &req, h.logger, "update_meeting_status") {
		return
	}
	req.MeetingID = chi.URLParam(r, "id")
	req.ActorID = claims.EmployeeID

	meeting, err := h.svc.UpdateMeetingStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Meeting status updated", meeting)
}
