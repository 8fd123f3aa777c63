package controller

import (
	"github.com/gofiber/fiber/v2"

	"minevent/config"
	"minevent/models"
	"minevent/utils"
)

type ParticipantRegisterRequest struct {
	FullName    string `json:"full_name" validate:"required,max=100"`
	Institution string `json:"institution" validate:"required,max=100"`
	Phone       string `json:"phone" validate:"required,max=20"`
	IDNumber    string `json:"id_number" validate:"required,max=30"`
}

// individualCompetition resolves the :competition parameter to an
// individual track (poster, photo).
func individualCompetition(c *fiber.Ctx) (models.Competition, bool) {
	comp, ok := competitionFromParams(c)
	if !ok || !comp.Individual {
		return models.Competition{}, false
	}
	return comp, true
}

func RegisterParticipant(c *fiber.Ctx) error {
	comp, ok := individualCompetition(c)
	if !ok {
		return unknownCompetition(c)
	}

	var req ParticipantRegisterRequest
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

	account := c.Locals("account").(*models.Account)
	participant, err := models.RegisterParticipant(config.DB, comp, account.ID, models.MemberProfile{
		FullName:    req.FullName,
		Institution: req.Institution,
		Phone:       req.Phone,
		IDNumber:    req.IDNumber,
	})
	if err != nil {
		return respondError(c, "participant_register_failed", err, map[string]interface{}{
			"competition": comp.Code,
			"account_id":  account.ID,
		})
	}

	LogEvent("participant_registered", map[string]interface{}{
		"competition":    comp.Code,
		"participant_id": participant.ID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Registered for " + comp.Name,
		"participant": participant,
	})
}

func GetMyRegistration(c *fiber.Ctx) error {
	comp, ok := individualCompetition(c)
	if !ok {
		return unknownCompetition(c)
	}

	account := c.Locals("account").(*models.Account)
	participant, err := models.ParticipantForAccount(config.DB, comp, account.ID)
	if err != nil {
		return respondError(c, "participant_fetch_failed", err, map[string]interface{}{
			"competition": comp.Code,
			"account_id":  account.ID,
		})
	}

	return c.JSON(fiber.Map{
		"participant": participant,
		"documents": fiber.Map{
			"id_card_url":       presignIfSet(participant.IDCardLink),
			"payment_proof_url": presignIfSet(participant.PaymentLink),
			"submission_url":    presignIfSet(participant.SubmissionLink),
		},
		"steps": stepState(participant.Status),
	})
}

func UpdateParticipantProfile(c *fiber.Ctx) error {
	comp, ok := individualCompetition(c)
	if !ok {
		return unknownCompetition(c)
	}

	var req ParticipantRegisterRequest
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

	account := c.Locals("account").(*models.Account)
	participant, err := models.ParticipantForAccount(config.DB, comp, account.ID)
	if err != nil {
		return respondError(c, "participant_fetch_failed", err, map[string]interface{}{
			"competition": comp.Code,
			"account_id":  account.ID,
		})
	}
	if !models.ProfileOpen(participant.Status) {
		return respondDomain(c, models.ErrStageLocked)
	}

	if err := participant.UpdateProfile(config.DB, models.MemberProfile{
		FullName:    req.FullName,
		Institution: req.Institution,
		Phone:       req.Phone,
		IDNumber:    req.IDNumber,
	}); err != nil {
		return respondError(c, "participant_update_failed", err, map[string]interface{}{
			"participant_id": participant.ID,
		})
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated",
	})
}

// UploadParticipantDocument replaces the participant's ID card, payment
// proof or submission. The matching verification flag resets to pending.
func UploadParticipantDocument(c *fiber.Ctx) error {
	comp, ok := individualCompetition(c)
	if !ok {
		return unknownCompetition(c)
	}

	account := c.Locals("account").(*models.Account)
	participant, err := models.ParticipantForAccount(config.DB, comp, account.ID)
	if err != nil {
		return respondError(c, "participant_fetch_failed", err, map[string]interface{}{
			"competition": comp.Code,
			"account_id":  account.ID,
		})
	}

	var folder string
	var open bool
	doc := c.Params("doc")
	switch doc {
	case "id-card":
		folder = comp.IDCardFolder()
		open = models.ProfileOpen(participant.Status) || models.ReuploadOpen(participant.Status, participant.IDCardVerified)
	case "payment-proof":
		folder = comp.PaymentFolder()
		open = models.PaymentOpen(participant.Status) || models.ReuploadOpen(participant.Status, participant.PaymentVerified)
	case "submission":
		folder = comp.SubmissionFolder()
		open = models.SubmissionOpen(participant.Status) || models.ReuploadOpen(participant.Status, participant.SubmissionVerified)
	default:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Unknown document type",
		})
	}
	if !open {
		return respondDomain(c, models.ErrStageLocked)
	}

	description := c.FormValue("description")
	if doc == "submission" && description == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "description is required",
		})
	}

	key, err := storeUpload(c, "file", folder, account.ID)
	if err != nil {
		return respondError(c, "document_upload_failed", err, map[string]interface{}{
			"competition": comp.Code,
			"account_id":  account.ID,
			"doc":         doc,
		})
	}

	switch doc {
	case "id-card":
		err = participant.SetIDCard(config.DB, key)
	case "payment-proof":
		err = participant.SetPaymentProof(config.DB, key)
	case "submission":
		err = participant.SetSubmission(config.DB, key, description)
	}
	if err != nil {
		return respondError(c, "document_record_failed", err, map[string]interface{}{
			"participant_id": participant.ID,
			"doc":            doc,
		})
	}

	LogEvent("participant_document_uploaded", map[string]interface{}{
		"competition":    comp.Code,
		"participant_id": participant.ID,
		"doc":            doc,
	})

	return c.JSON(fiber.Map{
		"message": "Document uploaded, awaiting review",
		"key":     key,
	})
}

func WithdrawParticipant(c *fiber.Ctx) error {
	comp, ok := individualCompetition(c)
	if !ok {
		return unknownCompetition(c)
	}

	account := c.Locals("account").(*models.Account)
	if err := models.WithdrawParticipant(config.DB, comp, account.ID); err != nil {
		return respondError(c, "participant_withdraw_failed", err, map[string]interface{}{
			"competition": comp.Code,
			"account_id":  account.ID,
		})
	}

	LogEvent("participant_withdrawn", map[string]interface{}{
		"competition": comp.Code,
		"account_id":  account.ID,
	})

	return c.JSON(fiber.Map{
		"message": "Registration withdrawn",
	})
}
