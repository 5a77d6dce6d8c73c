package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cardvault/cardvault/internal/auth"
)

// RegisterAuthRoutes wires the public login endpoint behind the rate
// limiter.
func RegisterAuthRoutes(router fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	grp := router.Group("/auth")
	grp.Post("/login", rateLimiter, h.Login)
}
