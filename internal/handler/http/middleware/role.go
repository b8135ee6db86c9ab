package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/handler/http/response"
)

// RequireRole allows only the listed roles through. Run it after
// AuthRequired.
func RequireRole(roles ...employee.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := Claims(r.Context())
			if !ok {
				response.Unauthorized(w, "Unauthorized")
				return
			}

			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Forbidden(w, fmt.Sprintf("Insufficient permissions: role '%s' is not allowed", claims.Role))
		})
	}
}

// RequireHR allows hr and admin.
func RequireHR(next http.Handler) http.Handler {
	return RequireRole(employee.RoleHR, employee.RoleAdmin)(next)
}

// RequireApprover allows manager, hr and admin.
func RequireApprover(next http.Handler) http.Handler {
	return RequireRole(employee.RoleManager, employee.RoleHR, employee.RoleAdmin)(next)
}
