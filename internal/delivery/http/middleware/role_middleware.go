package middleware

import (
	"net/http"
	"slices"
	"strings"

	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/pkg/response"
)

// RequireRole lets a request through only when the role in the access token
// is one of allowed. It runs after Authenticate, which puts the role on the
// context.
func RequireRole(allowed ...int) func(http.Handler) http.Handler {
	names := make([]string, 0, len(allowed))
	for _, id := range allowed {
		names = append(names, entity.RoleNameByID(id))
	}
	denied := "Only " + strings.Join(names, " or ") + " accounts can use this endpoint"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleID, ok := GetRoleIDFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}
			if !slices.Contains(allowed, roleID) {
				response.Forbidden(w, denied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin guards doctor onboarding and the audit log.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin)(next)
}

// RequireDoctor guards a doctor's own week, days off and exceptional dates.
func RequireDoctor(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDDoctor)(next)
}

// RequirePatient guards booking and the patient profile.
func RequirePatient(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDPatient)(next)
}

// RequireAdminOrDoctor guards appointment status changes made by clinic staff.
func RequireAdminOrDoctor(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin, entity.RoleIDDoctor)(next)
}
