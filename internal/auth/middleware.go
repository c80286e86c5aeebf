package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/verif-backoffice/internal/domain"
	apperrors "github.com/spec-kit/verif-backoffice/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated admin and the session it came from.
type Principal struct {
	Admin   *domain.AdminAccount
	Session *domain.AdminSession
}

// SessionValidator resolves a session id into the live session and its admin.
type SessionValidator interface {
	ValidateSession(ctx context.Context, sessionID string) (*domain.AdminSession, *domain.AdminAccount, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens    *TokenManager
	validator SessionValidator
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, validator SessionValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, validator: validator}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	token := ""
	switch {
	case authHeader != "":
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return apperrors.NewUnauthorized("invalid authorization header")
		}
		token = parts[1]
	case c.Query("access_token") != "":
		// EventSource cannot set headers.
		token = c.Query("access_token")
	default:
		return apperrors.NewUnauthorized("missing authorization header")
	}

	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	session, admin, err := m.validator.ValidateSession(c.UserContext(), claims.SessionID)
	if err != nil {
		return err
	}
	if admin.ID != claims.AdminID {
		return apperrors.NewUnauthorized("session does not match token")
	}

	c.Locals(principalKey, &Principal{Admin: admin, Session: session})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated admin.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
