package transport

import (
	"errors"

	"github.com/dxgrid/acl-notify/internal/response"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler turns escaped errors into the type/title/detail body the
// rest of the API speaks. ServiceErrors pass through verbatim; anything
// else becomes a generic failure without leaking internals beyond the
// log.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var svcErr *response.ServiceError
		if errors.As(err, &svcErr) {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", svcErr.StatusCode),
				zap.String("title", svcErr.Title),
			)
			return c.Status(svcErr.StatusCode).JSON(svcErr)
		}

		code := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error("request error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		title := response.BadRequestURN
		if code >= fiber.StatusInternalServerError {
			title = response.InternalServerErrorURN
		}

		return c.Status(code).JSON(&response.ServiceError{
			Type:   code,
			Title:  title,
			Detail: err.Error(),
		})
	}
}
