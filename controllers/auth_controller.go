package controller

import (
	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"minevent/config"
	"minevent/models"
	"minevent/utils"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := checkmail.ValidateFormat(req.Email); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email must be a valid email",
		})
	}
	if config.AppConfig.CheckMX {
		if err := checkmail.ValidateMX(req.Email); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "email domain does not accept mail",
			})
		}
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondError(c, "password_hash_failed", err, nil)
	}

	account, err := models.CreateAccount(config.DB, req.Email, string(hashedPassword))
	if err != nil {
		return respondError(c, "account_create_failed", err, map[string]interface{}{
			"email": req.Email,
		})
	}

	// Send verification email; registration stands even if delivery fails,
	// the user can request a resend.
	token, err := models.IssueVerificationToken(config.DB, account.Email)
	if err != nil {
		LogError("verification_token_failed", err, map[string]interface{}{
			"account_id": account.ID,
		})
	} else if err := utils.SendVerificationEmail(account.Email, token.Token); err != nil {
		LogError("verification_email_failed", err, map[string]interface{}{
			"account_id": account.ID,
		})
	}

	LogEvent("account_registered", map[string]interface{}{
		"account_id": account.ID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created. Check your inbox for a verification link.",
	})
}

func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// Find account
	var account models.Account
	if err := config.DB.Preload("Events").Where("email = ?", req.Email).First(&account).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid email or password",
		})
	}

	// Check password
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid email or password",
		})
	}

	token, err := utils.GenerateSessionToken(&account)
	if err != nil {
		return respondError(c, "session_token_failed", err, map[string]interface{}{
			"account_id": account.ID,
		})
	}
	c.Cookie(utils.SessionCookie(token))

	return c.JSON(fiber.Map{
		"message": "Logged in",
		"account": account,
	})
}

func Logout(c *fiber.Ctx) error {
	c.Cookie(utils.ClearSessionCookie())
	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}

func GetCurrentAccount(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.Account)
	return c.JSON(account)
}
