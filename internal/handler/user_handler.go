package handler

import (
	"go-handicraft-ops/internal/handler/response"
	"go-handicraft-ops/internal/service"
	"go-handicraft-ops/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
	log         *logger.Logger
}

func NewUserHandler(userService service.UserService, logg *logger.Logger) *UserHandler {
	return &UserHandler{userService: userService, log: logg}
}

// GetUsers returns all users
// GET /api/v1/users?search
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.userService.List(c.UserContext(), c.Query("search"))
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(users)
}

// GetRoles returns all roles with their privileges
// GET /api/v1/roles
func (h *UserHandler) GetRoles(c *fiber.Ctx) error {
	roles, err := h.userService.ListRoles(c.UserContext())
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(roles)
}
