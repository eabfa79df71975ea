package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kimhun645/stock-ledger-api/internal/application/dto"
	"github.com/kimhun645/stock-ledger-api/pkg/jwt"
)

// AuthHandler stub de autenticación: emite tokens para consumir la API.
// La identidad real vive aguas arriba; aquí solo se firma el token con el
// secreto compartido para que el middleware pueda validar.
type AuthHandler struct {
	secret     string
	issuer     string
	expMinutes int
}

// NewAuthHandler construye el handler.
func NewAuthHandler(secret, issuer string, expMinutes int) *AuthHandler {
	return &AuthHandler{secret: secret, issuer: issuer, expMinutes: expMinutes}
}

type tokenRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Token godoc
// @Summary      Emitir token de acceso (stub)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  tokenRequest  true  "user_id, role"
// @Success      200   {object}  map[string]string
// @Router       /api/auth/token [post]
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var in tokenRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "user_id requerido"})
	}
	if in.Role == "" {
		in.Role = "bodeguero"
	}
	token, err := jwt.Generate(h.secret, in.UserID, in.Role, h.issuer, h.expMinutes)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "no se pudo emitir el token"})
	}
	return c.JSON(fiber.Map{"token": token})
}
