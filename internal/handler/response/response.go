// Package response renders service errors as `{error, details?}` JSON bodies.
package response

import (
	"go-handicraft-ops/pkg/apperror"
	"go-handicraft-ops/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// Error writes err with the status mapped from its apperror code. Untyped and
// INTERNAL errors are logged and reported without their cause.
func Error(c *fiber.Ctx, logg *logger.Logger, err error) error {
	typed := apperror.As(err)
	if typed == nil {
		typed = apperror.Internal(err, "unexpected error")
	}
	meta := apperror.MetadataFor(typed.Code())

	if typed.Code() == apperror.CodeInternal && logg != nil {
		logg.Error(c.UserContext(), typed.Message(), err)
	}

	message := meta.PublicMessage
	if meta.ExposeMessage && typed.Message() != "" {
		message = typed.Message()
	}
	body := fiber.Map{"error": message}
	if meta.ExposeMessage && typed.Details() != "" {
		body["details"] = typed.Details()
	}
	return c.Status(meta.HTTPStatus).JSON(body)
}

// BadRequest is the short form for malformed input caught in a handler.
func BadRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

// FiberErrorHandler is installed as fiber.Config.ErrorHandler so errors that
// escape handlers still get the same body shape.
func FiberErrorHandler(logg *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if fe, ok := err.(*fiber.Error); ok {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		return Error(c, logg, err)
	}
}
