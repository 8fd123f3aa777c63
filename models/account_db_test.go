package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	db := openTestDB(t)

	account, err := CreateAccount(db, "miner@example.com", "hash")
	require.NoError(t, err)
	assert.NotZero(t, account.ID)

	_, err = CreateAccount(db, "miner@example.com", "other-hash")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestVerificationTokenLifecycle(t *testing.T) {
	db := openTestDB(t)

	account, err := CreateAccount(db, "miner@example.com", "hash")
	require.NoError(t, err)
	require.Nil(t, account.VerifiedAt)

	first, err := IssueVerificationToken(db, account.Email)
	require.NoError(t, err)

	// Re-issuing replaces the previous token
	second, err := IssueVerificationToken(db, account.Email)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	_, err = ConsumeVerificationToken(db, first.Token)
	de, ok := AsDomain(err)
	require.True(t, ok)
	assert.Equal(t, "TOKEN_INVALID", de.Code)

	verified, err := ConsumeVerificationToken(db, second.Token)
	require.NoError(t, err)
	require.NotNil(t, verified.VerifiedAt)

	// Single use
	_, err = ConsumeVerificationToken(db, second.Token)
	de, ok = AsDomain(err)
	require.True(t, ok)
	assert.Equal(t, "TOKEN_INVALID", de.Code)
}

func TestConsumeVerificationToken_Expired(t *testing.T) {
	db := openTestDB(t)

	account, err := CreateAccount(db, "miner@example.com", "hash")
	require.NoError(t, err)

	stale := VerificationToken{
		Identifier: account.Email,
		Token:      "deadbeef",
		ExpiresAt:  time.Now().Add(-time.Minute),
	}
	require.NoError(t, db.Create(&stale).Error)

	_, err = ConsumeVerificationToken(db, "deadbeef")
	de, ok := AsDomain(err)
	require.True(t, ok)
	assert.Equal(t, "TOKEN_EXPIRED", de.Code)

	var fresh Account
	require.NoError(t, db.First(&fresh, account.ID).Error)
	assert.Nil(t, fresh.VerifiedAt, "expired token must not verify the account")
}

func TestAddAccountEvent_DuplicateSwallowed(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AddAccountEvent(db, 1, "HACK"))
	require.NoError(t, AddAccountEvent(db, 1, "HACK"))

	var count int64
	require.NoError(t, db.Model(&AccountEvent{}).
		Where("account_id = ?", 1).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	require.NoError(t, RemoveAccountEvent(db, 1, "HACK"))
	require.NoError(t, db.Model(&AccountEvent{}).
		Where("account_id = ?", 1).Count(&count).Error)
	assert.Zero(t, count)
}
