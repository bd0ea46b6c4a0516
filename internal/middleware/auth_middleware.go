package middleware

import (
	"context"
	"errors"

	"github.com/arzan03/FilesManager/internal/services"
	"github.com/gofiber/fiber/v2"
)

// TokenHeader carries the session token on every authenticated request.
const TokenHeader = "X-Token"

// UserIDKey is the fiber.Locals key holding the authenticated user id.
const UserIDKey = "user_id"

type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (string, error)
}

// AuthMiddleware rejects requests without a live session token and stores
// the user id for the next handlers.
func AuthMiddleware(resolver TokenResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := resolver.ResolveToken(c.UserContext(), c.Get(TokenHeader))
		if err != nil {
			return err
		}
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// OptionalAuthMiddleware resolves the token when one is sent but lets
// anonymous requests through.
func OptionalAuthMiddleware(resolver TokenResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(TokenHeader)
		if token == "" {
			return c.Next()
		}
		userID, err := resolver.ResolveToken(c.UserContext(), token)
		if err != nil && !errors.Is(err, services.ErrUnauthorized) {
			return err
		}
		if err == nil {
			c.Locals(UserIDKey, userID)
		}
		return c.Next()
	}
}

// UserID returns the id stored by the auth middlewares, or "" for
// anonymous requests.
func UserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(UserIDKey).(string)
	return userID
}
