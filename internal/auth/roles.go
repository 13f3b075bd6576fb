package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/leadops/lead-dashboard/internal/domain"
	apperrors "github.com/leadops/lead-dashboard/pkg/util/errorutil"
)

// RequireRole ensures the operator has one of the allowed roles. With no
// roles it only requires an authenticated operator.
func RequireRole(allowed ...domain.OperatorRole) fiber.Handler {
	allowedSet := make(map[domain.OperatorRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Operator == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Operator.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
