package rest

import (
	"log/slog"
	"strings"

	"github.com/giftflow/certgen-backend/internal/application/dto"
	"github.com/gofiber/fiber/v2"
)

// APIKeyAuth guards the management endpoints with a static bearer key.
// Verification and static certificate files stay public.
func APIKeyAuth(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "missing Authorization header"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[1] == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "missing API key in Authorization header"})
		}
		if apiKey == "" {
			slog.Error("API_KEY is not configured")
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "server configuration is invalid"})
		}
		if parts[1] != apiKey {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "invalid API key"})
		}
		return c.Next()
	}
}
