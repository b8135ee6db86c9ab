package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/jwt"
	"go.uber.org/zap"
)

// currentClaims returns the caller's identity or writes 401.
func currentClaims(w http.ResponseWriter, r *http.Request) (jwt.Claims, bool) {
	claims, ok := middleware.Claims(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return jwt.Claims{}, false
	}
	return claims, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, logger *zap.Logger, op string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Debug("request decode error", zap.String("op", op), zap.Error(err))
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

func isHR(role employee.Role) bool {
	return role == employee.RoleHR || role == employee.RoleAdmin
}

// scopedEmployeeID lets approvers act on the employee named by the
// employee_id query parameter; everyone else gets their own id.
func scopedEmployeeID(r *http.Request, claims jwt.Claims) string {
	if claims.Role.IsApprover() {
		if id := r.URL.Query().Get("employee_id"); id != "" {
			return id
		}
	}
	return claims.EmployeeID
}

func queryBool(r *http.Request, key string, defaultVal bool) bool {
	val, err := strconv.ParseBool(r.URL.Query().Get(key))
	if err != nil {
		return defaultVal
	}
	return val
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	val, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return defaultVal
	}
	return val
}
