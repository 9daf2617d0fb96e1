package middleware

import (
	"net/http"

	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/pkg/response"
)

// RequireRole creates a middleware that checks if the user has any of the required roles
// Role is read from context (set by AuthMiddleware from JWT claims)
func RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActorFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			if !actor.Is(allowedRoles...) {
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only endpoints
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleAdmin)(next)
}

// RequireBackOffice admits agents and admins
func RequireBackOffice(next http.Handler) http.Handler {
	return RequireRole(entity.RoleAgent, entity.RoleAdmin)(next)
}

// RequireCustomer is a convenience middleware for customer-only endpoints
func RequireCustomer(next http.Handler) http.Handler {
	return RequireRole(entity.RoleCustomer)(next)
}

// RequireFieldStaff admits the roles that work on site or on the shop floor
func RequireFieldStaff(next http.Handler) http.Handler {
	return RequireRole(entity.RoleStaff, entity.RoleEngineer, entity.RoleAdmin)(next)
}
