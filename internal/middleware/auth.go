package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"our-diary/internal/user"
)

const userLocal = "currentUser"

// TokenParser verifies a bearer token and returns the user id it carries.
type TokenParser interface {
	ParseUserID(tokenStr string) (uint, error)
}

// Protect verifies the bearer token and resolves the embedded user id to a
// live DB row, which downstream handlers read with CurrentUser. Missing
// header, bad signature, expired token and deleted user all reject with 401.
func Protect(tokens TokenParser, users *user.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authorization header missing")
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if tokenStr == header {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token format")
		}

		userID, err := tokens.ParseUserID(tokenStr)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		u, err := users.FindByID(userID)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "user not found")
		}

		c.Locals(userLocal, u)
		return c.Next()
	}
}

// CurrentUser returns the user attached by Protect.
func CurrentUser(c *fiber.Ctx) *user.User {
	u, _ := c.Locals(userLocal).(*user.User)
	return u
}
