package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"minevent/config"
	"minevent/models"
	"minevent/utils"
)

// Protected verifies the session cookie (or a Bearer token) and loads the
// account into the request context. Unauthenticated requests get a 401
// with a redirect hint to the entry page.
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var token string
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return unauthorized(c, "Invalid authorization format")
			}
			token = tokenParts[1]
		} else {
			token = c.Cookies(utils.SessionCookieName)
			if token == "" {
				return unauthorized(c, "Authorization required")
			}
		}

		claims, err := utils.ParseSessionToken(token)
		if err != nil {
			return unauthorized(c, "Invalid or expired session")
		}

		var account models.Account
		if err := config.DB.Preload("Events").First(&account, claims.AccountID).Error; err != nil {
			return unauthorized(c, "Account not found")
		}

		c.Locals("account", &account)
		c.Locals("accountID", account.ID)
		c.Locals("session", claims)

		return c.Next()
	}
}

// VerifiedOnly gates competition actions behind email verification.
// Must run after Protected.
func VerifiedOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		account := c.Locals("account").(*models.Account)
		if account.VerifiedAt == nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Email not verified",
			})
		}
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":    message,
		"redirect": "/auth/login",
	})
}
