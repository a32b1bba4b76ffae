package handler

import (
	"context"
	"strings"

	"github.com/dxgrid/acl-notify/internal/auth"
	"github.com/dxgrid/acl-notify/internal/domain"
	"github.com/dxgrid/acl-notify/internal/response"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Trusted headers set by the API gateway after token introspection.
const (
	HeaderUserID            = "X-User-Id"
	HeaderUserRole          = "X-User-Role"
	HeaderResourceServerURL = "X-Resource-Server-Url"
	HeaderUserFirstName     = "X-User-First-Name"
	HeaderUserLastName      = "X-User-Last-Name"
	HeaderUserEmail         = "X-User-Email"

	identityLocal = "identity"
)

// UserInfoFetcher completes identities whose name/email the gateway did
// not forward.
type UserInfoFetcher interface {
	UserInfo(ctx context.Context, userID string) (auth.UserInfo, error)
}

// IdentityMiddleware builds the caller identity from the trusted
// gateway headers. The requester id must be a UUID before the pipeline
// runs; role values outside the closed enumeration are rejected here,
// while the pipeline itself stays total over whatever role reaches it.
func IdentityMiddleware(users UserInfoFetcher, logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get(HeaderUserID))
		if _, err := uuid.Parse(userID); err != nil {
			return unauthorized(c, "user id must be a valid UUID")
		}

		role, err := domain.ParseRoleFromString(c.Get(HeaderUserRole))
		if err != nil {
			return unauthorized(c, "unknown user role")
		}

		resourceServerURL := strings.TrimSpace(c.Get(HeaderResourceServerURL))
		if resourceServerURL == "" {
			return unauthorized(c, "resource server url is required")
		}

		identity := domain.Identity{
			ID:                userID,
			FirstName:         strings.TrimSpace(c.Get(HeaderUserFirstName)),
			LastName:          strings.TrimSpace(c.Get(HeaderUserLastName)),
			Email:             strings.TrimSpace(c.Get(HeaderUserEmail)),
			ResourceServerURL: resourceServerURL,
			Role:              role,
		}

		if identity.Email == "" && users != nil {
			info, err := users.UserInfo(c.Context(), userID)
			if err != nil {
				logger.Warn("failed to resolve user info from auth server",
					zap.String("userId", userID),
					zap.Error(err),
				)
			} else {
				identity.FirstName = info.FirstName
				identity.LastName = info.LastName
				identity.Email = info.Email
			}
		}

		c.Locals(identityLocal, identity)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, detail string) error {
	svcErr := response.Unauthorized(detail)
	return c.Status(svcErr.StatusCode).JSON(svcErr)
}

func identityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(identityLocal).(domain.Identity)
	return identity, ok
}
