package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/verif-backoffice/internal/domain"
	apperrors "github.com/spec-kit/verif-backoffice/pkg/util"
)

// RequireRole ensures the request carries an admin principal. With roles given, the
// admin must also hold one of them.
func RequireRole(allowed ...domain.AdminRole) fiber.Handler {
	allowedSet := make(map[domain.AdminRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Admin == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Admin.Role]; !exists {
			return apperrors.NewDomainError("FORBIDDEN", "insufficient role", fiber.StatusForbidden, map[string]any{
				"required": allowed,
				"role":     principal.Admin.Role,
			})
		}
		return c.Next()
	}
}

// RequireSuperAdmin restricts a route to super admins.
func RequireSuperAdmin() fiber.Handler {
	return RequireRole(domain.AdminRoleSuperAdmin)
}
