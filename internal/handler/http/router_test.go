package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore/memory"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/repository/document"
	activitysvc "github.com/cmlabs-hris/hris-dataflow-go/internal/service/activity"
	dataflowsvc "github.com/cmlabs-hris/hris-dataflow-go/internal/service/dataflow"
	notificationsvc "github.com/cmlabs-hris/hris-dataflow-go/internal/service/notification"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/service/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type testAPI struct {
	handler http.Handler
	jwt     jwt.Service
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memory.New()
	t.Cleanup(func() { _ = store.Close() })

	logger := zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))
	m := metrics.New()
	repos := document.NewRepositories(store)
	notifications := notificationsvc.NewNotificationService(repos.Notifications, repos.Profiles, m, logger, notificationsvc.Config{})
	recorder := activitysvc.NewRecorder(repos.Activities, nil, m, logger)

	svc := dataflowsvc.NewDataFlowService(dataflowsvc.Dependencies{
		Transactor:      store,
		Profiles:        repos.Profiles,
		LeaveTypes:      repos.LeaveTypes,
		LeaveRequests:   repos.LeaveRequests,
		LeaveBalances:   repos.LeaveBalances,
		Policies:        repos.Policies,
		Acknowledgments: repos.Acknowledgments,
		Meetings:        repos.Meetings,
		Notifications:   notifications,
		Activity:        recorder,
		Metrics:         m,
		Logger:          logger,
	})
	manager := realtime.NewManager(realtime.Dependencies{
		Profiles:      repos.Profiles,
		LeaveRequests: repos.LeaveRequests,
		Policies:      repos.Policies,
		Notifications: repos.Notifications,
		Audience:      notifications,
		Metrics:       m,
		Logger:        logger,
	})
	t.Cleanup(manager.Close)

	jwtService := jwt.NewJWTService("test-secret-key-for-jwt", time.Hour)
	router := NewRouter(RouterConfig{AllowedOrigins: []string{"http://localhost:3000"}, Env: "test"}, jwtService, Handlers{
		Profile:      NewProfileHandler(svc, logger),
		Leave:        NewLeaveHandler(svc, logger),
		Policy:       NewPolicyHandler(svc, logger),
		Meeting:      NewMeetingHandler(svc, logger),
		Notification: NewNotificationHandler(svc, logger),
		Activity:     NewActivityHandler(svc),
		Stream:       NewStreamHandler(manager, jwtService, logger),
		Metrics:      m.Handler(),
	})

	return &testAPI{handler: router, jwt: jwtService}
}

func (a *testAPI) token(t *testing.T, employeeID string, role employee.Role) string {
	t.Helper()
	token, _, err := a.jwt.GenerateAccessToken(employeeID, role)
	require.NoError(t, err)
	return token
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var resp response.Response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func dataMap(t *testing.T, resp response.Response) map[string]any {
	t.Helper()
	m, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return m
}

func TestRouter_HeartbeatAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	rec, _ := api.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = api.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RequiresAccessToken(t *testing.T) {
	api := newTestAPI(t)

	rec, resp := api.do(t, http.MethodGet, "/api/v1/notifications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, resp.Success)

	sseToken, _, err := api.jwt.GenerateSSEToken(jwt.Claims{EmployeeID: "e1", Role: employee.RoleEmployee})
	require.NoError(t, err)
	rec, _ = api.do(t, http.MethodGet, "/api/v1/notifications", sseToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfileEndpoints(t *testing.T) {
	api := newTestAPI(t)
	self := api.token(t, "e1", employee.RoleEmployee)
	hr := api.token(t, "h1", employee.RoleHR)

	rec, resp := api.do(t, http.MethodPut, "/api/v1/profile/e1", self, map[string]any{
		"personal_info": map[string]any{"first_name": "Dewi", "last_name": "Lestari"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(15), dataMap(t, resp)["profileCompleteness"])

	rec, _ = api.do(t, http.MethodGet, "/api/v1/profile/e1", self, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = api.do(t, http.MethodPut, "/api/v1/profile/e2", self, map[string]any{})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = api.do(t, http.MethodPut, "/api/v1/profile/e1", self, map[string]any{
		"work_info": map[string]any{"role": "hr"},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = api.do(t, http.MethodPut, "/api/v1/profile/e1", hr, map[string]any{
		"work_info": map[string]any{"role": "manager"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "manager", dataMap(t, resp)["workInfo"].(map[string]any)["role"])

	rec, resp = api.do(t, http.MethodPut, "/api/v1/profile/e1", self, map[string]any{
		"contact_info": map[string]any{"email": "nope"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	rec, _ = api.do(t, http.MethodGet, "/api/v1/profile/missing", hr, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeaveEndpoints(t *testing.T) {
	api := newTestAPI(t)
	self := api.token(t, "e1", employee.RoleEmployee)
	manager := api.token(t, "m1", employee.RoleManager)
	hr := api.token(t, "h1", employee.RoleHR)

	rec, _ := api.do(t, http.MethodPost, "/api/v1/leave/types", self, map[string]any{"leave_type_name": "Annual", "annual_entitlement": "20"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp := api.do(t, http.MethodPost, "/api/v1/leave/types", hr, map[string]any{"leave_type_name": "Annual", "annual_entitlement": "20"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	typeID := dataMap(t, resp)["id"].(string)

	rec, resp = api.do(t, http.MethodPost, "/api/v1/leave/requests", self, map[string]any{
		"leave_type_id": typeID,
		"start_date":    "2026-03-02",
		"end_date":      "2026-03-06",
		"reason":        "family trip",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	request := dataMap(t, resp)
	requestID := request["id"].(string)
	assert.Equal(t, "e1", request["employeeId"])
	assert.Equal(t, "pending", request["status"])

	rec, _ = api.do(t, http.MethodPost, "/api/v1/leave/requests/"+requestID+"/approve", self, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = api.do(t, http.MethodPost, "/api/v1/leave/requests/"+requestID+"/approve", manager, map[string]any{"comments": "ok"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "approved", dataMap(t, resp)["status"])

	rec, _ = api.do(t, http.MethodPost, "/api/v1/leave/requests/"+requestID+"/approve", manager, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = api.do(t, http.MethodPost, "/api/v1/leave/requests/"+requestID+"/reject", manager, map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, resp = api.do(t, http.MethodGet, "/api/v1/leave/balances?year=2026", self, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	balances := resp.Data.([]any)
	require.Len(t, balances, 1)
	assert.Equal(t, "15", balances[0].(map[string]any)["remaining"])

	rec, resp = api.do(t, http.MethodGet, "/api/v1/leave/requests", api.token(t, "e2", employee.RoleEmployee), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Data)

	rec, resp = api.do(t, http.MethodGet, "/api/v1/leave/requests?status=approved", hr, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp.Data, 1)

	rec, _ = api.do(t, http.MethodGet, "/api/v1/leave/requests/"+requestID, api.token(t, "e2", employee.RoleEmployee), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = api.do(t, http.MethodPost, "/api/v1/leave/requests/missing/cancel", self, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPolicyAndNotificationEndpoints(t *testing.T) {
	api := newTestAPI(t)
	self := api.token(t, "e1", employee.RoleEmployee)
	hr := api.token(t, "h1", employee.RoleHR)

	rec, resp := api.do(t, http.MethodPost, "/api/v1/policies", hr, map[string]any{
		"title":                   "Code of conduct",
		"content":                 "Be kind.",
		"requires_acknowledgment": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	policyID := dataMap(t, resp)["id"].(string)

	rec, resp = api.do(t, http.MethodGet, "/api/v1/policies/pending", self, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp.Data, 1)

	rec, resp = api.do(t, http.MethodGet, "/api/v1/notifications?unread_only=true", self, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := resp.Data.([]any)
	require.Len(t, list, 1)
	notificationID := list[0].(map[string]any)["id"].(string)

	for i := 0; i < 2; i++ {
		rec, _ = api.do(t, http.MethodPost, "/api/v1/notifications/"+notificationID+"/read", self, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	for i := 0; i < 2; i++ {
		rec, _ = api.do(t, http.MethodPost, "/api/v1/policies/"+policyID+"/acknowledge", self, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	rec, resp = api.do(t, http.MethodGet, "/api/v1/policies/pending", self, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Data)

	rec, _ = api.do(t, http.MethodPost, "/api/v1/notifications", hr, map[string]any{
		"target_kind":  "role",
		"target_value": "",
		"title":        "Hello",
		"message":      "World",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = api.do(t, http.MethodPost, "/api/v1/notifications", hr, map[string]any{
		"target_kind":  "employee",
		"target_value": "e1",
		"title":        "Hello",
		"message":      "World",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, resp = api.do(t, http.MethodGet, "/api/v1/activity/policy/"+policyID, hr, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp.Data, 2)

	rec, _ = api.do(t, http.MethodGet, "/api/v1/activity/policy/"+policyID, self, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMarkAsRead_OnlyOwnNotifications(t *testing.T) {
	api := newTestAPI(t)
	self := api.token(t, "e1", employee.RoleEmployee)
	other := api.token(t, "e2", employee.RoleEmployee)
	hr := api.token(t, "h1", employee.RoleHR)

	rec, resp := api.do(t, http.MethodPost, "/api/v1/notifications", hr, map[string]any{
		"target_kind":  "employee",
		"target_value": "e1",
		"title":        "Leave rejected",
		"message":      "Rejected: team coverage",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	notificationID := dataMap(t, resp)["id"].(string)

	rec, resp = api.do(t, http.MethodPost, "/api/v1/notifications/"+notificationID+"/read", other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Nil(t, resp.Data)
	assert.NotContains(t, rec.Body.String(), "team coverage")

	rec, resp = api.do(t, http.MethodGet, "/api/v1/notifications?unread_only=true", self, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp.Data, 1)

	rec, _ = api.do(t, http.MethodPost, "/api/v1/notifications/"+notificationID+"/read", self, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMeetingEndpoints(t *testing.T) {
	api := newTestAPI(t)
	self := api.token(t, "e1", employee.RoleEmployee)
	manager := api.token(t, "m1", employee.RoleManager)

	rec, resp := api.do(t, http.MethodPost, "/api/v1/meetings", manager, map[string]any{
		"employee_id":      "e1",
		"type":             "one_on_one",
		"title":            "Check-in",
		"scheduled_at":     "2026-03-10T10:00:00Z",
		"duration_minutes": 30,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	meetingID := dataMap(t, resp)["id"].(string)

	rec, _ = api.do(t, http.MethodPost, "/api/v1/meetings/"+meetingID+"/confirm", manager, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = api.do(t, http.MethodPost, "/api/v1/meetings/"+meetingID+"/confirm", self, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = api.do(t, http.MethodPut, "/api/v1/meetings/"+meetingID+"/status", manager, map[string]any{"status": "completed"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = api.do(t, http.MethodPut, "/api/v1/meetings/"+meetingID+"/status", self, map[string]any{"status": "cancelled"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, resp = api.do(t, http.MethodGet, "/api/v1/meetings", self, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp.Data, 1)
}

func TestStream(t *testing.T) {
	api := newTestAPI(t)
	server := httptest.NewServer(api.handler)
	defer server.Close()

	self := api.token(t, "e1", employee.RoleEmployee)
	rec, resp := api.do(t, http.MethodPost, "/api/v1/stream/token", self, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sseToken := dataMap(t, resp)["token"].(string)

	rec, _ = api.do(t, http.MethodGet, "/api/v1/stream/notifications?token=bogus", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = api.do(t, http.MethodGet, "/api/v1/stream/payroll?token="+sseToken, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/stream/notifications?token="+sseToken, nil)
	require.NoError(t, err)
	res, err := server.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	body := bufio.NewReader(res.Body)
	events := readEvents(body, 2)
	require.Len(t, events, 2)
	assert.Equal(t, "connected", events[0][0])
	assert.Equal(t, "notifications", events[1][0])
	assert.Equal(t, "[]", events[1][1])

	hr := api.token(t, "h1", employee.RoleHR)
	rec, _ = api.do(t, http.MethodPost, "/api/v1/notifications", hr, map[string]any{
		"target_kind": "broadcast",
		"title":       "Office closed",
		"message":     "Friday is a holiday",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	events = readEvents(body, 1)
	require.Len(t, events, 1)
	assert.Equal(t, "notifications", events[0][0])
	assert.Contains(t, events[0][1], "Office closed")
}

// readEvents reads n SSE events as (event, data) pairs.
func readEvents(r *bufio.Reader, n int) [][2]string {
	var events [][2]string
	var current [2]string
	for len(events) < n {
		line, err := r.ReadString('\n')
		if err != nil {
			return events
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			current[0] = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current[1] = strings.TrimPrefix(line, "data: ")
		case line == "" && current[0] != "":
			if current[0] != "ping" {
				events = append(events, current)
			}
			current = [2]string{}
		}
	}
	return events
}
