package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cardvault/cardvault/internal/holder"
)

// RegisterHolderRoutes wires holder administration. The router passed in is
// already behind the admin role guard.
func RegisterHolderRoutes(router fiber.Router, h *holder.Handler) {
	grp := router.Group("/holders")
	grp.Post("", h.Create)
	grp.Get("", h.List)
	grp.Get("/:holderId", h.Get)
	grp.Put("/:holderId", h.Update)
	grp.Delete("/:holderId", h.Delete)
	grp.Delete("", h.DeleteAll)

	router.Post("/roles", h.CreateRole)
}
