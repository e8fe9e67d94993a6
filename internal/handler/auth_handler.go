package handler

import (
	"go-handicraft-ops/internal/handler/response"
	"go-handicraft-ops/internal/service"
	"go-handicraft-ops/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	authService service.AuthService
	log         *logger.Logger
}

func NewAuthHandler(authService service.AuthService, logg *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: logg}
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid JSON")
	}

	resp, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(resp)
}

// Heartbeat keeps the session inside the idle window
// POST /api/v1/auth/heartbeat
func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	actor := actorFrom(c)
	if actor.ID == uuid.Nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := h.authService.Heartbeat(c.UserContext(), actor.ID); err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Heartbeat received", "status": "online"})
}
