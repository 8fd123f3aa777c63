package controller

import (
	"github.com/gofiber/fiber/v2"

	"minevent/config"
	"minevent/models"
	"minevent/utils"
)

type CreateTeamRequest struct {
	TeamName    string `json:"team_name" validate:"required,min=3,max=50"`
	FullName    string `json:"full_name" validate:"required,max=100"`
	Institution string `json:"institution" validate:"required,max=100"`
	Phone       string `json:"phone" validate:"required,max=20"`
	IDNumber    string `json:"id_number" validate:"required,max=30"`
}

type JoinTeamRequest struct {
	Code        string `json:"code" validate:"required,len=5,alpha"`
	FullName    string `json:"full_name" validate:"required,max=100"`
	Institution string `json:"institution" validate:"required,max=100"`
	Phone       string `json:"phone" validate:"required,max=20"`
	IDNumber    string `json:"id_number" validate:"required,max=30"`
}

type MemberProfileRequest struct {
	FullName    string `json:"full_name" validate:"required,max=100"`
	Institution string `json:"institution" validate:"required,max=100"`
	Phone       string `json:"phone" validate:"required,max=20"`
	IDNumber    string `json:"id_number" validate:"required,max=30"`
}

// teamCompetition resolves the :competition parameter to a team track.
func teamCompetition(c *fiber.Ctx) (models.Competition, bool) {
	comp, ok := competitionFromParams(c)
	if !ok || comp.Individual {
		return models.Competition{}, false
	}
	return comp, true
}

func CreateTeam(c *fiber.Ctx) error {
	comp, ok := teamCompetition(c)
	if !ok {
		return unknownCompetition(c)
	}

	var req CreateTeamRequest
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
	team, err := models.CreateTeamWithManager(config.DB, comp, req.TeamName, account.ID, models.MemberProfile{
		FullName:    req.FullName,
		Institution: req.Institution,
		Phone:       req.Phone,
		IDNumber:    req.IDNumber,
	})
	if err != nil {
		return respondError(c, "team_create_failed", err, map[string]interface{}{
			"competition": comp.Code,
			"account_id":  account.ID,
		})
	}

	LogEvent("team_created", map[string]interface{}{
		"competition": comp.Code,
		"team_id":     team.ID,
		"account_id":  account.ID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Team created",
		"team":    team,
	})
}

func JoinTeam(c *fiber.Ctx) error {
	comp, ok := teamCompetition(c)
	if !ok {
		return unknownCompetition(c)
	}

	var req JoinTeamRequest
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
	team, err := models.JoinTeamByCode(config.DB, comp, req.Code, account.ID, models.MemberProfile{
		FullName:    req.FullName,
		Institution: req.Institution,
		Phone:       req.Phone,
		IDNumber:    req.IDNumber,
	})
	if err != nil {
		return respondError(c, "team_join_failed", err, map[string]interface{}{
			"competition": comp.Code,
			"account_id":  account.ID,
		})
	}

	LogEvent("team_joined", map[string]interface{}{
		"competition": comp.Code,
		"team_id":     team.ID,
		"account_id":  account.ID,
	})

	return c.JSON(fiber.Map{
		"message": "Joined team " + team.Name,
		"team":    team,
	})
}

func GetMyTeam(c *fiber.Ctx) error {
	comp, ok := teamCompetition(c)
	if !ok {
		return unknownCompetition(c)
	}

	account := c.Locals("account").(*models.Account)
	team, member, err := models.TeamForAccount(config.DB, comp, account.ID)
	if err != nil {
		return respondError(c, "team_fetch_failed", err, map[string]interface{}{
			"competition": comp.Code,
			"account_id":  account.ID,
		})
	}

	return c.JSON(fiber.Map{
		"team":   team,
		"member": member,
		"documents": fiber.Map{
			"id_card_url":       presignIfSet(member.IDCardLink),
			"payment_proof_url": presignIfSet(member.PaymentLink),
			"submission_url":    presignIfSet(team.SubmissionLink),
		},
		"steps": stepState(team.Status),
	})
}

func LeaveTeam(c *fiber.Ctx) error {
	comp, ok := teamCompetition(c)
	if !ok {
		return unknownCompetition(c)
	}

	account := c.Locals("account").(*models.Account)
	if err := models.LeaveTeam(config.DB, comp, account.ID); err != nil {
		return respondError(c, "team_leave_failed", err, map[string]interface{}{
			"competition": comp.Code,
			"account_id":  account.ID,
		})
	}

	LogEvent("team_left", map[string]interface{}{
		"competition": comp.Code,
		"account_id":  account.ID,
	})

	return c.JSON(fiber.Map{
		"message": "Left the team",
	})
}

func UpdateMemberProfile(c *fiber.Ctx) error {
	comp, ok := teamCompetition(c)
	if !ok {
		return unknownCompetition(c)
	}

	var req MemberProfileRequest
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
	team, member, err := models.TeamForAccount(config.DB, comp, account.ID)
	if err != nil {
		return respondError(c, "member_fetch_failed", err, map[string]interface{}{
			"competition": comp.Code,
			"account_id":  account.ID,
		})
	}
	if !models.ProfileOpen(team.Status) {
		return respondDomain(c, models.ErrStageLocked)
	}

	if err := member.UpdateProfile(config.DB, models.MemberProfile{
		FullName:    req.FullName,
		Institution: req.Institution,
		Phone:       req.Phone,
		IDNumber:    req.IDNumber,
	}); err != nil {
		return respondError(c, "member_update_failed", err, map[string]interface{}{
			"member_id": member.ID,
		})
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated",
	})
}

// UploadMemberDocument replaces the caller's ID card or payment proof.
// The matching verification flag resets to pending; the team status is
// left to the review process.
func UploadMemberDocument(c *fiber.Ctx) error {
	comp, ok := teamCompetition(c)
	if !ok {
		return unknownCompetition(c)
	}

	account := c.Locals("account").(*models.Account)
	team, member, err := models.TeamForAccount(config.DB, comp, account.ID)
	if err != nil {
		return respondError(c, "member_fetch_failed", err, map[string]interface{}{
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
		open = models.ProfileOpen(team.Status) || models.ReuploadOpen(team.Status, member.IDCardVerified)
	case "payment-proof":
		folder = comp.PaymentFolder()
		open = models.PaymentOpen(team.Status) || models.ReuploadOpen(team.Status, member.PaymentVerified)
	default:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Unknown document type",
		})
	}
	if !open {
		return respondDomain(c, models.ErrStageLocked)
	}

	key, err := storeUpload(c, "file", folder, account.ID)
	if err != nil {
		return respondError(c, "document_upload_failed", err, map[string]interface{}{
			"competition": comp.Code,
			"account_id":  account.ID,
			"doc":         doc,
		})
	}

	if doc == "id-card" {
		err = member.SetIDCard(config.DB, key)
	} else {
		err = member.SetPaymentProof(config.DB, key)
	}
	if err != nil {
		return respondError(c, "document_record_failed", err, map[string]interface{}{
			"member_id": member.ID,
			"doc":       doc,
		})
	}

	LogEvent("member_document_uploaded", map[string]interface{}{
		"competition": comp.Code,
		"member_id":   member.ID,
		"doc":         doc,
	})

	return c.JSON(fiber.Map{
		"message": "Document uploaded, awaiting review",
		"key":     key,
	})
}

// UploadTeamSubmission stores the team's submission file and description.
// Manager only.
func UploadTeamSubmission(c *fiber.Ctx) error {
	comp, ok := teamCompetition(c)
	if !ok {
		return unknownCompetition(c)
	}

	account := c.Locals("account").(*models.Account)
	team, member, err := models.TeamForAccount(config.DB, comp, account.ID)
	if err != nil {
		return respondError(c, "team_fetch_failed", err, map[string]interface{}{
			"competition": comp.Code,
			"account_id":  account.ID,
		})
	}
	if member.Role != models.RoleManager {
		return respondDomain(c, models.ErrManagerOnly)
	}
	if !models.SubmissionOpen(team.Status) && !models.ReuploadOpen(team.Status, team.SubmissionVerified) {
		return respondDomain(c, models.ErrStageLocked)
	}

	description := c.FormValue("description")
	if description == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "description is required",
		})
	}

	key, err := storeUpload(c, "file", comp.SubmissionFolder(), account.ID)
	if err != nil {
		return respondError(c, "submission_upload_failed", err, map[string]interface{}{
			"competition": comp.Code,
			"team_id":     team.ID,
		})
	}

	if err := team.SetSubmission(config.DB, key, description); err != nil {
		return respondError(c, "submission_record_failed", err, map[string]interface{}{
			"team_id": team.ID,
		})
	}

	LogEvent("team_submission_uploaded", map[string]interface{}{
		"competition": comp.Code,
		"team_id":     team.ID,
	})

	return c.JSON(fiber.Map{
		"message": "Submission uploaded, awaiting review",
		"key":     key,
	})
}

// stepState tells the UI which workflow sections are unlocked.
func stepState(status int) fiber.Map {
	return fiber.Map{
		"profile_open":    models.ProfileOpen(status),
		"submission_open": models.SubmissionOpen(status),
		"payment_open":    models.PaymentOpen(status),
		"terminal":        models.Terminal(status),
	}
}
