package middleware

import (
	"strings"

	"plotsure-backend/internal/application/auth"
	"plotsure-backend/internal/domain"
	"plotsure-backend/internal/pkg/apperr"
	"plotsure-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const (
	localsUser   = "current_user"
	localsClaims = "token_claims"
)

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return ""
}

// RequireAuth rejects requests without a valid bearer token and stores the
// authenticated user in Locals for handlers downstream.
func RequireAuth(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return response.FromError(c, apperr.Unauthorized("Authentication required"))
		}
		user, claims, err := svc.Authenticate(c.UserContext(), token)
		if err != nil {
			return response.FromError(c, err)
		}
		c.Locals(localsUser, user)
		c.Locals(localsClaims, claims)
		return c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return response.FromError(c, apperr.Unauthorized("Authentication required"))
		}
		for _, r := range roles {
			if user.Role == r {
				return c.Next()
			}
		}
		return response.FromError(c, apperr.Forbidden("You do not have permission to perform this action"))
	}
}

// OptionalAuth attaches the user when a valid token is present but lets
// anonymous requests through.
func OptionalAuth(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if user, claims, err := svc.Authenticate(c.UserContext(), token); err == nil {
				c.Locals(localsUser, user)
				c.Locals(localsClaims, claims)
			}
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil on public routes.
func CurrentUser(c *fiber.Ctx) *domain.User {
	if u, ok := c.Locals(localsUser).(*domain.User); ok {
		return u
	}
	return nil
}

// CurrentClaims returns the parsed token claims set by RequireAuth.
func CurrentClaims(c *fiber.Ctx) *auth.Claims {
	if cl, ok := c.Locals(localsClaims).(*auth.Claims); ok {
		return cl
	}
	return nil
}
