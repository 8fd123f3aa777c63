package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterParticipant(t *testing.T) {
	db := openTestDB(t)
	comp := mustCompetition(t, "poster")

	participant, err := RegisterParticipant(db, comp, 1, testProfile("Alice"))
	require.NoError(t, err)
	assert.Equal(t, StatusPendingVerification, participant.Status)

	var events []AccountEvent
	require.NoError(t, db.Where("account_id = ?", 1).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, "POSTER", events[0].Event)

	_, err = RegisterParticipant(db, comp, 1, testProfile("Alice"))
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	// The other individual track is a separate registration
	_, err = RegisterParticipant(db, mustCompetition(t, "photo"), 1, testProfile("Alice"))
	assert.NoError(t, err)
}

func TestParticipantForAccount_NotRegistered(t *testing.T) {
	db := openTestDB(t)

	_, err := ParticipantForAccount(db, mustCompetition(t, "poster"), 7)
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestWithdrawParticipant(t *testing.T) {
	db := openTestDB(t)
	comp := mustCompetition(t, "poster")

	participant, err := RegisterParticipant(db, comp, 1, testProfile("Alice"))
	require.NoError(t, err)

	require.NoError(t, db.Model(participant).
		Update("status", StatusAwaitingPayment).Error)
	assert.ErrorIs(t, WithdrawParticipant(db, comp, 1), ErrStageLocked)

	require.NoError(t, db.Model(participant).
		Update("status", StatusAwaitingDocuments).Error)
	require.NoError(t, WithdrawParticipant(db, comp, 1))

	_, err = ParticipantForAccount(db, comp, 1)
	assert.ErrorIs(t, err, ErrNotRegistered)

	var count int64
	require.NoError(t, db.Model(&AccountEvent{}).
		Where("account_id = ?", 1).Count(&count).Error)
	assert.Zero(t, count, "event tag should be removed with the registration")
}

func TestParticipantDocumentFlagReset(t *testing.T) {
	db := openTestDB(t)
	comp := mustCompetition(t, "photo")

	participant, err := RegisterParticipant(db, comp, 1, testProfile("Alice"))
	require.NoError(t, err)

	require.NoError(t, db.Model(participant).Updates(map[string]interface{}{
		"id_card_verified":    DocRejected,
		"submission_verified": DocAccepted,
	}).Error)

	require.NoError(t, participant.SetIDCard(db, "photo-id/1.jpg"))
	require.NoError(t, participant.SetSubmission(db, "photo-sub/1.jpg", "Open pit at dawn"))

	var fresh Participant
	require.NoError(t, db.First(&fresh, participant.ID).Error)
	assert.Equal(t, "photo-id/1.jpg", fresh.IDCardLink)
	assert.Equal(t, DocPending, fresh.IDCardVerified)
	assert.Equal(t, "photo-sub/1.jpg", fresh.SubmissionLink)
	assert.Equal(t, "Open pit at dawn", fresh.SubmissionDescription)
	assert.Equal(t, DocPending, fresh.SubmissionVerified)
	assert.Equal(t, StatusPendingVerification, fresh.Status)
}
