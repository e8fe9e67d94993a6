package middleware

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go-handicraft-ops/internal/handler/response"
	"go-handicraft-ops/pkg/apperror"
	"go-handicraft-ops/pkg/logger"
	pkgredis "go-handicraft-ops/pkg/redis"

	"github.com/gofiber/fiber/v2"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type idempotencyRecord struct {
	Status      int    `json:"status"`
	Body        string `json:"body"`
	ContentType string `json:"content_type,omitempty"`
	RequestHash string `json:"request_hash"`
}

// Idempotency replays the first response for a repeated Idempotency-Key on the
// same user, method and path. Requests without the header pass straight through,
// as does everything when store is nil. Server errors are not recorded.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) fiber.Handler {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return func(c *fiber.Ctx) error {
		key := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
		if store == nil || key == "" {
			return c.Next()
		}

		ctx := c.UserContext()
		requestHash := hashBody(c.Body())
		storeKey := store.IdempotencyKey(buildScope(c), key)

		stored, err := store.Get(ctx, storeKey)
		switch {
		case err != nil && !errors.Is(err, pkgredis.ErrMiss):
			// degrade to a normal request rather than failing writes when redis is down
			if logg != nil {
				logg.Error(ctx, "check idempotency key", err)
			}
			return c.Next()
		case err == nil && stored != "":
			var record idempotencyRecord
			if err := json.Unmarshal([]byte(stored), &record); err != nil {
				return response.Error(c, logg, apperror.Internal(err, "decode idempotency record"))
			}
			if record.RequestHash != requestHash {
				return response.Error(c, logg, apperror.Conflict("Idempotency-Key reused with a different request body"))
			}
			return writeStoredResponse(c, record)
		}

		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			return nil
		}
		payload, err := json.Marshal(idempotencyRecord{
			Status:      status,
			Body:        base64.StdEncoding.EncodeToString(c.Response().Body()),
			ContentType: string(c.Response().Header.ContentType()),
			RequestHash: requestHash,
		})
		if err != nil {
			if logg != nil {
				logg.Error(ctx, "marshal idempotency record", err)
			}
			return nil
		}
		if _, err := store.SetNX(ctx, storeKey, string(payload), ttl); err != nil && logg != nil {
			logg.Error(ctx, "persist idempotency record", err)
		}
		return nil
	}
}

func buildScope(c *fiber.Ctx) string {
	userID, _ := c.Locals(LocalUserID).(string)
	return strings.Join([]string{userID, c.Method(), c.Path()}, "|")
}

func writeStoredResponse(c *fiber.Ctx, record idempotencyRecord) error {
	body, err := base64.StdEncoding.DecodeString(record.Body)
	if err != nil {
		return response.Error(c, nil, apperror.Internal(err, "decode idempotency body"))
	}
	if record.ContentType != "" {
		c.Set(fiber.HeaderContentType, record.ContentType)
	}
	c.Set("Idempotent-Replay", "true")
	return c.Status(record.Status).Send(body)
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}
