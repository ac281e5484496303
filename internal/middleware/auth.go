package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/archhub/internal/config"
	"github.com/localnerve/archhub/internal/services"
	"github.com/localnerve/archhub/internal/types"
)

const actorKey = "actor"

// AuthAdmin validates that the request has admin role authorization
func AuthAdmin(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, cfg, []string{"admin"}, "data.authorization.admin")
	}
}

// AuthUser validates that the request has user role authorization
func AuthUser(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, cfg, []string{"user"}, "data.authorization.user")
	}
}

// authorize performs the authorization check. With auth disabled every
// request proceeds as the system actor.
func authorize(c *fiber.Ctx, cfg *config.Config, roles []string, errorType string) error {
	if !cfg.AuthEnabled() {
		return c.Next()
	}

	session := c.Cookies("cookie_session")
	if session == "" {
		return types.NewCustomError(fiber.StatusForbidden, errorType, "Authorizer cookie %q not found", "cookie_session")
	}

	if err := services.InitAuthorizer(cfg, c.Protocol(), c.Hostname()); err != nil {
		Logger(c).Error().Err(err).Msg("Authorizer unavailable")
		return types.NewCustomError(fiber.StatusServiceUnavailable, errorType, "Authorization service unavailable").Wrap(err)
	}

	actor, err := services.ValidateSession(session, roles)
	if err != nil {
		return types.NewCustomError(fiber.StatusForbidden, errorType, "Invalid session: %v", err).Wrap(err)
	}

	c.Locals(actorKey, actor)
	return c.Next()
}

// Actor returns the authenticated user, or nil when auth is disabled
func Actor(c *fiber.Ctx) *services.Actor {
	actor, _ := c.Locals(actorKey).(*services.Actor)
	return actor
}

// ActorName is the name recorded against changes made by the request
func ActorName(c *fiber.Ctx) string {
	return Actor(c).Name()
}
