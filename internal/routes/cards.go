package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cardvault/cardvault/internal/card"
)

// RegisterCardRoutes wires the endpoints any authenticated holder may call
// against their own cards. "/cards/mine" registers before the admin
// "/cards/:cardId" wildcard so it wins the match.
func RegisterCardRoutes(router fiber.Router, h *card.Handler) {
	grp := router.Group("/cards")
	grp.Get("/mine", h.Mine)
	grp.Post("/transfer", h.Transfer)
	grp.Post("/:cardId/block", h.Block)
	grp.Get("/:cardId/balance", h.Balance)
}

// RegisterCardAdminRoutes wires the cross-holder card surface. The router
// passed in is already behind the admin role guard.
func RegisterCardAdminRoutes(router fiber.Router, h *card.Handler) {
	grp := router.Group("/cards")
	grp.Post("", h.Issue)
	grp.Get("", h.List)
	grp.Get("/:cardId", h.Get)
	grp.Put("/:cardId", h.Update)
	grp.Delete("/:cardId", h.Delete)
	grp.Delete("", h.DeleteAll)
}
