package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"minevent/models"
)

func TestVerificationTokenExpired(t *testing.T) {
	live := models.VerificationToken{ExpiresAt: time.Now().Add(30 * time.Minute)}
	assert.False(t, live.Expired())

	stale := models.VerificationToken{ExpiresAt: time.Now().Add(-time.Minute)}
	assert.True(t, stale.Expired())
}

func TestAccountEventTags(t *testing.T) {
	account := models.Account{
		Events: []models.AccountEvent{
			{AccountID: 1, Event: "HACK"},
			{AccountID: 1, Event: "POSTER"},
		},
	}
	assert.Equal(t, []string{"HACK", "POSTER"}, account.EventTags())

	empty := models.Account{}
	assert.Empty(t, empty.EventTags())
	assert.NotNil(t, empty.EventTags(), "tags should serialize as [] not null")
}
