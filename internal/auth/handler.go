package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cardvault/cardvault/internal/holder"
)

// Handler exposes the login endpoint.
type Handler struct {
	holders *holder.Service
	tokens  *Service
}

// NewHandler builds the auth HTTP handler.
func NewHandler(holders *holder.Service, tokens *Service) *Handler {
	return &Handler{holders: holders, tokens: tokens}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	Username    string `json:"username"`
}

// Login validates credentials and returns an access token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	hld, err := h.holders.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, holder.ErrBadCredentials) {
			return fiber.NewError(http.StatusUnauthorized, "bad credentials")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	token, expiresIn, err := h.tokens.Issue(hld)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(loginResponse{AccessToken: token, ExpiresIn: expiresIn, Username: hld.Username})
}
