package card

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/cardvault/cardvault/internal/cardnum"
	"github.com/cardvault/cardvault/internal/holder"
	"github.com/cardvault/cardvault/internal/middleware"
)

// Handler exposes card HTTP endpoints. The caller identity is always taken
// from verified token claims and passed explicitly into the service.
type Handler struct {
	service *Service
}

// NewHandler builds a card HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type issueRequest struct {
	HolderID string `json:"holder_id"`
}

// Issue creates a card for a holder. Admin only.
func (h *Handler) Issue(c *fiber.Ctx) error {
	var req issueRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	view, err := h.service.Issue(c.UserContext(), req.HolderID)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(view)
}

// Get returns a single card view. Admin only.
func (h *Handler) Get(c *fiber.Ctx) error {
	view, err := h.service.GetByID(c.UserContext(), c.Params("cardId"))
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(view)
}

type updateRequest struct {
	HolderID   *string `json:"holder_id"`
	Expiration *string `json:"expiration"`
	Status     *string `json:"status"`
	Balance    *string `json:"balance"`
}

// Update applies an administrative update. Admin only.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	input := UpdateInput{HolderID: req.HolderID}
	if req.Expiration != nil {
		exp, err := time.Parse(time.DateOnly, *req.Expiration)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "expiration must be YYYY-MM-DD")
		}
		input.Expiration = &exp
	}
	if req.Status != nil {
		status, err := ParseStatus(*req.Status)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		input.Status = &status
	}
	if req.Balance != nil {
		bal, err := decimal.NewFromString(*req.Balance)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "balance must be a decimal string")
		}
		input.Balance = &bal
	}

	view, err := h.service.Update(c.UserContext(), c.Params("cardId"), input)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(view)
}

// Delete removes a single card. Admin only.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.service.DeleteByID(c.UserContext(), c.Params("cardId")); err != nil {
		return mapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeleteAll removes every card. Admin only.
func (h *Handler) DeleteAll(c *fiber.Ctx) error {
	if err := h.service.DeleteAll(c.UserContext()); err != nil {
		return mapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// List returns the filtered page of cards across all holders. Admin only.
func (h *Handler) List(c *fiber.Ctx) error {
	filter, page, err := parseQuery(c)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	views, err := h.service.List(c.UserContext(), filter, page)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(views)
}

// Mine returns the caller's own cards matching the filter.
func (h *Handler) Mine(c *fiber.Ctx) error {
	username, _ := c.Locals(middleware.LocalUsername).(string)
	filter, page, err := parseQuery(c)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	views, err := h.service.ListByHolder(c.UserContext(), username, filter, page)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(views)
}

type transferRequest struct {
	FromCardID string `json:"from_card_id"`
	ToCardID   string `json:"to_card_id"`
	Amount     string `json:"amount"`
}

// Transfer moves funds between two of the caller's cards.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "amount must be a decimal string")
	}
	username, _ := c.Locals(middleware.LocalUsername).(string)
	if err := h.service.Transfer(c.UserContext(), username, req.FromCardID, req.ToCardID, amount); err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "transferred"})
}

// Block sets the caller's card to blocked.
func (h *Handler) Block(c *fiber.Ctx) error {
	username, _ := c.Locals(middleware.LocalUsername).(string)
	if err := h.service.Block(c.UserContext(), username, c.Params("cardId")); err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": string(StatusBlocked)})
}

// Balance returns the balance of the caller's card.
func (h *Handler) Balance(c *fiber.Ctx) error {
	username, _ := c.Locals(middleware.LocalUsername).(string)
	balance, err := h.service.GetBalance(c.UserContext(), username, c.Params("cardId"))
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"card_id": c.Params("cardId"), "balance": balance})
}

func parseQuery(c *fiber.Ctx) (Filter, Page, error) {
	var filter Filter
	filter.Number = c.Query("number")
	if v := c.Query("expiration"); v != "" {
		exp, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return Filter{}, Page{}, errors.New("expiration must be YYYY-MM-DD")
		}
		filter.Expiration = &exp
	}
	if v := c.Query("status"); v != "" {
		status, err := ParseStatus(v)
		if err != nil {
			return Filter{}, Page{}, err
		}
		filter.Status = &status
	}
	if v := c.Query("balance"); v != "" {
		bal, err := decimal.NewFromString(v)
		if err != nil {
			return Filter{}, Page{}, errors.New("balance must be a decimal string")
		}
		filter.Balance = &bal
	}

	var page Page
	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return Filter{}, Page{}, errors.New("offset must be a non-negative integer")
		}
		page.Offset = offset
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return Filter{}, Page{}, errors.New("limit must be a non-negative integer")
		}
		page.Limit = limit
	}
	return filter, page, nil
}

// mapError translates service errors to HTTP statuses. Codec failures on
// stored data deliberately surface as 500s: the operation fails closed
// instead of rendering a fabricated number.
func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, holder.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidTransfer),
		errors.Is(err, ErrInactiveCard),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrInvalidUpdate):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, cardnum.ErrBadToken), errors.Is(err, cardnum.ErrInvalidNumber):
		return fiber.NewError(http.StatusInternalServerError, "stored card number is unreadable")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
