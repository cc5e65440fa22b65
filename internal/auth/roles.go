package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/techexpert/helpdesk/internal/domain"
	apperrors "github.com/techexpert/helpdesk/pkg/util"
)

// RequireRole ensures the principal holds one of the allowed roles.
func RequireRole(allowed ...string) fiber.Handler {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		for _, role := range principal.User.Roles {
			if _, exists := allowedSet[role]; exists {
				return c.Next()
			}
		}
		return apperrors.NewForbidden("insufficient role")
	}
}

// RequireCapability gates a route on a derived capability rather than a raw
// role name.
func RequireCapability(capability domain.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		for _, role := range principal.User.Roles {
			for _, granted := range domain.CapabilitiesForRole(role) {
				if granted == capability {
					return c.Next()
				}
			}
		}
		return apperrors.NewForbidden("capability required")
	}
}
