package holder

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes holder administration endpoints. All of them sit behind
// the admin role guard at the routing layer.
type Handler struct {
	service *Service
}

// NewHandler builds a holder HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

// Create registers a holder.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	view, err := h.service.Create(c.UserContext(), CreateInput{
		Username: req.Username,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(view)
}

// Get returns a holder by id.
func (h *Handler) Get(c *fiber.Ctx) error {
	view, err := h.service.GetByID(c.UserContext(), c.Params("holderId"))
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(view)
}

type updateRequest struct {
	Password *string  `json:"password"`
	Roles    []string `json:"roles"`
}

// Update rehashes the credential and/or reassigns roles.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	view, err := h.service.Update(c.UserContext(), c.Params("holderId"), UpdateInput{
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(view)
}

// Delete removes a holder.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.service.DeleteByID(c.UserContext(), c.Params("holderId")); err != nil {
		return mapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeleteAll removes every holder.
func (h *Handler) DeleteAll(c *fiber.Ctx) error {
	if err := h.service.DeleteAll(c.UserContext()); err != nil {
		return mapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// List returns the filtered page of holders.
func (h *Handler) List(c *fiber.Ctx) error {
	var filter Filter
	filter.Username = c.Query("username")
	if v := c.Query("role"); v != "" {
		filter.Roles = []string{v}
	}

	var page Page
	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return fiber.NewError(http.StatusBadRequest, "offset must be a non-negative integer")
		}
		page.Offset = offset
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return fiber.NewError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		page.Limit = limit
	}

	views, err := h.service.List(c.UserContext(), filter, page)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(views)
}

type roleRequest struct {
	Name string `json:"name"`
}

// CreateRole registers a role name for later assignment.
func (h *Handler) CreateRole(c *fiber.Ctx) error {
	var req roleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.AddRole(c.UserContext(), req.Name); err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"name": req.Name})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrExists), errors.Is(err, ErrRoleExists):
		return fiber.NewError(http.StatusConflict, err.Error())
	default:
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
}
