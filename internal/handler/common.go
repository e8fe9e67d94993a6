package handler

import (
	"strings"
	"time"

	"go-handicraft-ops/internal/middleware"
	"go-handicraft-ops/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// actorFrom builds the acting user from the locals set by RequireAuth.
func actorFrom(c *fiber.Ctx) service.Actor {
	var actor service.Actor
	if id, ok := c.Locals(middleware.LocalUserID).(string); ok {
		actor.ID, _ = uuid.Parse(id)
	}
	actor.Name, _ = c.Locals(middleware.LocalUserName).(string)
	actor.Email, _ = c.Locals(middleware.LocalUserEmail).(string)
	return actor
}

// optionalUUIDQuery returns nil when the query value is absent and ok=false when it is malformed.
func optionalUUIDQuery(c *fiber.Ctx, key string) (*uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// optionalDateQuery accepts RFC3339 timestamps or plain YYYY-MM-DD dates.
func optionalDateQuery(c *fiber.Ctx, key string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, true
		}
	}
	return nil, false
}
