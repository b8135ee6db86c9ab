package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/policy"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/service/realtime"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultKeepalive = 30 * time.Second

type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

type StreamHandler interface {
	Token(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type streamHandlerImpl struct {
	realtime   *realtime.Manager
	jwtService jwt.Service
	logger     *zap.Logger
	keepalive  time.Duration
}

func NewStreamHandler(manager *realtime.Manager, jwtService jwt.Service, logger *zap.Logger) StreamHandler {
	return &streamHandlerImpl{
		realtime:   manager,
		jwtService: jwtService,
		logger:     logger.Named("http.stream"),
		keepalive:  defaultKeepalive,
	}
}

// Token issues a short-lived token for opening a stream.
func (h *streamHandlerImpl) Token(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(claims)
	if err != nil {
		h.logger.Error("failed to generate SSE token", zap.Error(err))
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}
	response.Success(w, SSETokenResponse{Token: token, ExpiresIn: expiresIn})
}

// Stream pushes the full current state of a topic on connect and after
// every change. The token comes from the query string because EventSource
// cannot set headers.
func (h *streamHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}
	claims, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	topic := chi.URLParam(r, "topic")
	updates := sse.NewLatest[any]()
	unsubscribe, err := h.subscribe(r.Context(), topic, claims, r, updates.Put)
	if err != nil {
		if errors.Is(err, errUnknownTopic) {
			response.NotFound(w, "Unknown stream topic")
			return
		}
		response.HandleError(w, err)
		return
	}
	defer unsubscribe()

	stream, err := sse.NewWriter(w)
	if err != nil {
		response.InternalServerError(w, "Streaming not supported")
		return
	}
	if err := stream.Send("connected", map[string]string{"topic": topic, "employee_id": claims.EmployeeID}); err != nil {
		return
	}

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case state := <-updates.C():
			if err := stream.Send(topic, state); err != nil {
				h.logger.Debug("stream write failed", zap.String("topic", topic), zap.Error(err))
				return
			}
		case now := <-keepalive.C:
			if err := stream.Ping(now); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

var errUnknownTopic = errors.New("unknown stream topic")

func (h *streamHandlerImpl) subscribe(ctx context.Context, topic string, claims jwt.Claims, r *http.Request, put func(any)) (realtime.Unsubscribe, error) {
	switch topic {
	case realtime.TopicNotifications:
		return h.realtime.SubscribeToNotifications(ctx, claims.EmployeeID, queryBool(r, "unread_only", false), func(list []notification.Notification) {
			put(list)
		})
	case realtime.TopicLeaveRequests:
		filter := leave.LeaveRequestFilter{EmployeeID: claims.EmployeeID}
		if claims.Role.IsApprover() {
			filter = leave.LeaveRequestFilter{
				EmployeeID: r.URL.Query().Get("employee_id"),
				Status:     leave.LeaveRequestStatus(r.URL.Query().Get("status")),
			}
		}
		return h.realtime.SubscribeToLeaveRequests(ctx, filter, func(list []leave.LeaveRequest) {
			put(list)
		})
	case realtime.TopicPolicies:
		return h.realtime.SubscribeToPolicies(ctx, true, func(list []policy.Policy) {
			put(list)
		})
	case realtime.TopicProfile:
		return h.realtime.SubscribeToEmployeeProfile(ctx, claims.EmployeeID, func(p *employee.EmployeeProfile) {
			put(p)
		})
	}
	return nil, errUnknownTopic
}
