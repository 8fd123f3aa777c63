package controller

import (
	"github.com/gofiber/fiber/v2"

	"minevent/config"
	"minevent/models"
	"minevent/utils"
)

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// NewVerification confirms an account from the emailed token link. The
// token is single-use; it is deleted on success.
func NewVerification(c *fiber.Ctx) error {
	tokenValue := c.Query("token")
	if tokenValue == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "token is required",
		})
	}

	account, err := models.ConsumeVerificationToken(config.DB, tokenValue)
	if err != nil {
		return respondError(c, "verification_failed", err, nil)
	}

	LogEvent("account_verified", map[string]interface{}{
		"account_id": account.ID,
	})

	return c.JSON(fiber.Map{
		"message": "Email verified. You can now register for competitions.",
	})
}

// ResendVerification issues a fresh token and re-sends the email. The
// response does not reveal whether the address has an account.
func ResendVerification(c *fiber.Ctx) error {
	var req ResendVerificationRequest
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

	neutral := fiber.Map{
		"message": "If an unverified account exists, a new verification email will be sent",
	}

	var account models.Account
	if err := config.DB.Where("email = ?", req.Email).First(&account).Error; err != nil {
		return c.JSON(neutral)
	}
	if account.VerifiedAt != nil {
		return c.JSON(neutral)
	}

	token, err := models.IssueVerificationToken(config.DB, account.Email)
	if err != nil {
		return respondError(c, "verification_token_failed", err, map[string]interface{}{
			"account_id": account.ID,
		})
	}
	if err := utils.SendVerificationEmail(account.Email, token.Token); err != nil {
		return respondError(c, "verification_email_failed", err, map[string]interface{}{
			"account_id": account.ID,
		})
	}

	return c.JSON(neutral)
}
