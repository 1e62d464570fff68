package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/steeltrade/stockledger-api/internal/application/dto"
	"github.com/steeltrade/stockledger-api/pkg/jwt"
)

// AuthHandler mints development tokens. Identity lives in the main ERP; this
// endpoint exists so the API is usable standalone and is disabled in
// production.
type AuthHandler struct {
	secret     string
	issuer     string
	expMinutes int
}

// NewAuthHandler builds the handler.
func NewAuthHandler(secret, issuer string, expMinutes int) *AuthHandler {
	return &AuthHandler{secret: secret, issuer: issuer, expMinutes: expMinutes}
}

type tokenRequest struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

// Token godoc
// @Summary      Mint a development bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  tokenRequest  true  "user_id, user_name"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/auth/token [post]
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var in tokenRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "user_id required"})
	}
	token, err := jwt.Generate(h.secret, in.UserID, in.UserName, h.issuer, h.expMinutes)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"token": token})
}
