package controller

import (
	"github.com/gofiber/fiber/v2"

	"minevent/models"
)

// competitionFromParams resolves the :competition route parameter.
func competitionFromParams(c *fiber.Ctx) (models.Competition, bool) {
	comp, ok := models.CompetitionByCode(c.Params("competition"))
	return comp, ok
}

func unknownCompetition(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "Unknown competition",
	})
}

// respondDomain maps a domain error code to an HTTP status and surfaces
// the stable code alongside the message for the form layer.
func respondDomain(c *fiber.Ctx, de *models.DomainError) error {
	status := fiber.StatusConflict
	switch de.Code {
	case "TEAM_NOT_FOUND", "NOT_REGISTERED":
		status = fiber.StatusNotFound
	case "STAGE_LOCKED", "MANAGER_ONLY", "MANAGER_LOCKED":
		status = fiber.StatusForbidden
	case "TOKEN_INVALID", "TOKEN_EXPIRED", "UPLOAD_INVALID":
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{
		"error": de.Message,
		"code":  de.Code,
	})
}

// respondError reports a domain error when err carries one, otherwise logs
// the failure and answers with a generic message. Internals never reach
// the client.
func respondError(c *fiber.Ctx, errorType string, err error, context map[string]interface{}) error {
	if de, ok := models.AsDomain(err); ok {
		return respondDomain(c, de)
	}
	LogError(errorType, err, context)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Something went wrong, please try again later",
	})
}
