package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB gives each test its own in-memory database with the same
// TranslateError setup the real connection uses, so unique violations
// surface as gorm.ErrDuplicatedKey here too.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One connection only; each sqlite connection would otherwise see its
	// own private :memory: database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&Account{},
		&AccountEvent{},
		&VerificationToken{},
		&Team{},
		&Member{},
		&Participant{},
	))
	return db
}

func testProfile(name string) MemberProfile {
	return MemberProfile{
		FullName:    name,
		Institution: "Institute of Mining",
		Phone:       "081234567890",
		IDNumber:    "13520001",
	}
}

func mustCompetition(t *testing.T, code string) Competition {
	t.Helper()
	comp, ok := CompetitionByCode(code)
	require.True(t, ok)
	return comp
}

func TestCreateTeamWithManager_Persists(t *testing.T) {
	db := openTestDB(t)
	comp := mustCompetition(t, "hackathon")

	team, err := CreateTeamWithManager(db, comp, "Tech Miners", 1, testProfile("Alice"))
	require.NoError(t, err)

	assert.Len(t, team.Code, 5)
	assert.Equal(t, StatusPendingVerification, team.Status)
	require.Len(t, team.Members, 1)
	assert.Equal(t, RoleManager, team.Members[0].Role)
	assert.Equal(t, uint(1), team.Members[0].AccountID)

	var events []AccountEvent
	require.NoError(t, db.Where("account_id = ?", 1).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, "HACK", events[0].Event)
}

func TestCreateTeam_NameTakenCaseInsensitive(t *testing.T) {
	db := openTestDB(t)
	comp := mustCompetition(t, "hackathon")

	_, err := CreateTeamWithManager(db, comp, "Tech Miners", 1, testProfile("Alice"))
	require.NoError(t, err)

	_, err = CreateTeamWithManager(db, comp, "  tech   MINERS ", 2, testProfile("Bob"))
	assert.ErrorIs(t, err, ErrTeamNameTaken)

	// Same name in another competition is a different namespace
	_, err = CreateTeamWithManager(db, mustCompetition(t, "mining"), "Tech Miners", 2, testProfile("Bob"))
	assert.NoError(t, err)
}

func TestCreateTeam_SecondTeamSameAccount(t *testing.T) {
	db := openTestDB(t)
	comp := mustCompetition(t, "hackathon")

	_, err := CreateTeamWithManager(db, comp, "Tech Miners", 1, testProfile("Alice"))
	require.NoError(t, err)

	_, err = CreateTeamWithManager(db, comp, "Other Crew", 1, testProfile("Alice"))
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestResolveTeamInsertConflict(t *testing.T) {
	db := openTestDB(t)
	comp := mustCompetition(t, "hackathon")

	_, err := CreateTeamWithManager(db, comp, "Tech Miners", 1, testProfile("Alice"))
	require.NoError(t, err)

	// A duplicate against a committed name is the user's error
	err = resolveTeamInsertConflict(db, comp, TeamNameKey("Tech Miners"))
	assert.ErrorIs(t, err, ErrTeamNameTaken)

	// A duplicate with no committed name was the join code; the caller
	// retries with a fresh one
	err = resolveTeamInsertConflict(db, comp, TeamNameKey("Other Crew"))
	assert.NoError(t, err)
}

func TestJoinTeamByCode(t *testing.T) {
	db := openTestDB(t)
	comp := mustCompetition(t, "hackathon")

	team, err := CreateTeamWithManager(db, comp, "Tech Miners", 1, testProfile("Alice"))
	require.NoError(t, err)

	// Codes are matched case-insensitively on input
	joined, err := JoinTeamByCode(db, comp, strings.ToLower(team.Code), 2, testProfile("Bob"))
	require.NoError(t, err)
	assert.Equal(t, team.ID, joined.ID)

	var members []Member
	require.NoError(t, db.Where("team_id = ?", team.ID).Find(&members).Error)
	assert.Len(t, members, 2)

	var events []AccountEvent
	require.NoError(t, db.Where("account_id = ?", 2).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, "HACK", events[0].Event)
}

func TestJoinTeam_UnknownCode(t *testing.T) {
	db := openTestDB(t)
	comp := mustCompetition(t, "hackathon")

	_, err := JoinTeamByCode(db, comp, "ZZZZZ", 2, testProfile("Bob"))
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestJoinTeam_CapacityGuard(t *testing.T) {
	db := openTestDB(t)
	comp := mustCompetition(t, "paper") // capacity 3

	team, err := CreateTeamWithManager(db, comp, "Deep Seam", 1, testProfile("Alice"))
	require.NoError(t, err)

	_, err = JoinTeamByCode(db, comp, team.Code, 2, testProfile("Bob"))
	require.NoError(t, err)
	_, err = JoinTeamByCode(db, comp, team.Code, 3, testProfile("Carol"))
	require.NoError(t, err)

	_, err = JoinTeamByCode(db, comp, team.Code, 4, testProfile("Dave"))
	assert.ErrorIs(t, err, ErrTeamFull)

	var count int64
	require.NoError(t, db.Model(&Member{}).Where("team_id = ?", team.ID).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestJoinTeam_RejoinFullTeam(t *testing.T) {
	db := openTestDB(t)
	comp := mustCompetition(t, "paper") // capacity 3

	team, err := CreateTeamWithManager(db, comp, "Deep Seam", 1, testProfile("Alice"))
	require.NoError(t, err)
	_, err = JoinTeamByCode(db, comp, team.Code, 2, testProfile("Bob"))
	require.NoError(t, err)
	_, err = JoinTeamByCode(db, comp, team.Code, 3, testProfile("Carol"))
	require.NoError(t, err)

	// An existing member re-joining a full team is a duplicate, not a
	// capacity problem
	_, err = JoinTeamByCode(db, comp, team.Code, 2, testProfile("Bob"))
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestLeaveTeamRules(t *testing.T) {
	db := openTestDB(t)
	comp := mustCompetition(t, "hackathon")

	team, err := CreateTeamWithManager(db, comp, "Tech Miners", 1, testProfile("Alice"))
	require.NoError(t, err)
	_, err = JoinTeamByCode(db, comp, team.Code, 2, testProfile("Bob"))
	require.NoError(t, err)

	assert.ErrorIs(t, LeaveTeam(db, comp, 1), ErrManagerLocked)

	require.NoError(t, db.Model(&Team{}).Where("id = ?", team.ID).
		Update("status", StatusAwaitingPayment).Error)
	assert.ErrorIs(t, LeaveTeam(db, comp, 2), ErrStageLocked)

	require.NoError(t, db.Model(&Team{}).Where("id = ?", team.ID).
		Update("status", StatusAwaitingDocuments).Error)
	require.NoError(t, LeaveTeam(db, comp, 2))

	var count int64
	require.NoError(t, db.Model(&Member{}).
		Where("competition = ? AND account_id = ?", comp.Code, 2).
		Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, db.Model(&AccountEvent{}).
		Where("account_id = ?", 2).Count(&count).Error)
	assert.Zero(t, count, "event tag should be removed with the membership")
}

func TestMemberDocumentFlagReset(t *testing.T) {
	db := openTestDB(t)
	comp := mustCompetition(t, "hackathon")

	_, err := CreateTeamWithManager(db, comp, "Tech Miners", 1, testProfile("Alice"))
	require.NoError(t, err)
	_, member, err := TeamForAccount(db, comp, 1)
	require.NoError(t, err)

	// Review rejected the documents; a re-upload must reset them to pending
	require.NoError(t, db.Model(member).Updates(map[string]interface{}{
		"id_card_verified": DocRejected,
		"payment_verified": DocAccepted,
	}).Error)

	require.NoError(t, member.SetIDCard(db, "hackathon-id/1.pdf"))
	require.NoError(t, member.SetPaymentProof(db, "hackathon-pp/1.png"))

	var fresh Member
	require.NoError(t, db.First(&fresh, member.ID).Error)
	assert.Equal(t, "hackathon-id/1.pdf", fresh.IDCardLink)
	assert.Equal(t, DocPending, fresh.IDCardVerified)
	assert.Equal(t, "hackathon-pp/1.png", fresh.PaymentLink)
	assert.Equal(t, DocPending, fresh.PaymentVerified)
}

func TestTeamSubmissionFlagReset(t *testing.T) {
	db := openTestDB(t)
	comp := mustCompetition(t, "hackathon")

	_, err := CreateTeamWithManager(db, comp, "Tech Miners", 1, testProfile("Alice"))
	require.NoError(t, err)
	team, _, err := TeamForAccount(db, comp, 1)
	require.NoError(t, err)

	require.NoError(t, db.Model(team).Updates(map[string]interface{}{
		"status":              StatusAwaitingDocuments,
		"submission_verified": DocRejected,
	}).Error)

	require.NoError(t, team.SetSubmission(db, "hackathon-sub/1.pdf", "Final build"))

	var fresh Team
	require.NoError(t, db.First(&fresh, team.ID).Error)
	assert.Equal(t, "hackathon-sub/1.pdf", fresh.SubmissionLink)
	assert.Equal(t, "Final build", fresh.SubmissionDescription)
	assert.Equal(t, DocPending, fresh.SubmissionVerified)
	assert.Equal(t, StatusAwaitingDocuments, fresh.Status, "status stays with the review process")
}
