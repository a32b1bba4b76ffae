package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/dxgrid/acl-notify/internal/domain"
	"github.com/dxgrid/acl-notify/internal/ratelimit"
	"github.com/dxgrid/acl-notify/internal/response"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type NotificationService interface {
	GetNotifications(ctx context.Context, caller domain.Identity) (*response.Envelope, error)
}

type NotificationHandler struct {
	service NotificationService
	limiter ratelimit.RateLimiter
}

func NewNotificationHandler(service NotificationService, limiter ratelimit.RateLimiter) (*NotificationHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("notification service is required")
	}
	return &NotificationHandler{service: service, limiter: limiter}, nil
}

func RegisterNotificationRoutes(
	router fiber.Router,
	service NotificationService,
	limiter ratelimit.RateLimiter,
	users UserInfoFetcher,
	logger *zap.Logger,
) error {
	h, err := NewNotificationHandler(service, limiter)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1", IdentityMiddleware(users, logger))
	v1.Get("/notifications", h.GetNotifications)

	return nil
}

func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	caller, ok := identityFromContext(c)
	if !ok {
		return unauthorized(c, "caller identity is not resolved")
	}

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(c.Context(), caller.ID)
		if err != nil {
			return err
		}
		if !allowed {
			svcErr := response.LimitExceeded("Too many notification requests, slow down")
			return c.Status(svcErr.StatusCode).JSON(svcErr)
		}
	}

	envelope, err := h.service.GetNotifications(c.Context(), caller)
	if err != nil {
		var svcErr *response.ServiceError
		if errors.As(err, &svcErr) {
			return c.Status(svcErr.StatusCode).JSON(svcErr)
		}
		return err
	}

	return c.Status(envelope.StatusCode).JSON(envelope)
}
