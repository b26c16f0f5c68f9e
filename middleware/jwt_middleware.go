package middleware

import (
	"context"
	"strings"

	"gearguard/models"
	"gearguard/utils"

	"github.com/gofiber/fiber/v2"
)

// Authenticator resolves a verified token subject to an account.
type Authenticator interface {
	Authenticate(ctx context.Context, userID uint) (*models.User, error)
}

// Protected admits requests carrying a valid session token, read from the
// session cookie first and the Authorization header second.
func Protected(auth Authenticator, issuer *utils.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(utils.SessionCookieName)
		if token == "" {
			authHeader := c.Get("Authorization")
			if authHeader == "" {
				return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Authorization required")
			}
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid authorization format")
			}
			token = tokenParts[1]
		}

		claims, err := issuer.Parse(token)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		user, err := auth.Authenticate(c.UserContext(), claims.UserID)
		if err != nil {
			if utils.IsKind(err, utils.KindNotFound) {
				return utils.ErrorResponse(c, fiber.StatusUnauthorized, "User not found")
			}
			return err
		}

		c.Locals("user", user)
		c.Locals("userID", user.ID)
		return c.Next()
	}
}

// CurrentUser returns the account stored by Protected.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

// RequireRole admits only users holding one of roles.
func RequireRole(message string, roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Authorization required")
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return utils.ErrorResponse(c, fiber.StatusForbidden, message)
	}
}

func ManagerOnly() fiber.Handler {
	return RequireRole("Access denied: Managers only", models.RoleManager)
}
