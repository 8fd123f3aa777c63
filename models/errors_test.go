package models_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minevent/models"
)

func TestAsDomain(t *testing.T) {
	de, ok := models.AsDomain(models.ErrTeamFull)
	require.True(t, ok)
	assert.Equal(t, "TEAM_FULL", de.Code)

	// Wrapped domain errors still unwrap
	wrapped := fmt.Errorf("joining team: %w", models.ErrAlreadyRegistered)
	de, ok = models.AsDomain(wrapped)
	require.True(t, ok)
	assert.Equal(t, "ALREADY_REGISTERED", de.Code)

	_, ok = models.AsDomain(errors.New("connection refused"))
	assert.False(t, ok)

	_, ok = models.AsDomain(nil)
	assert.False(t, ok)
}

func TestDomainErrorCodesStable(t *testing.T) {
	codes := map[*models.DomainError]string{
		models.ErrEmailTaken:        "EMAIL_EXISTS",
		models.ErrTeamNameTaken:     "TEAM_NAME_TAKEN",
		models.ErrTeamFull:          "TEAM_FULL",
		models.ErrAlreadyRegistered: "ALREADY_REGISTERED",
		models.ErrTeamNotFound:      "TEAM_NOT_FOUND",
		models.ErrNotRegistered:     "NOT_REGISTERED",
		models.ErrCodeExhausted:     "CODE_EXHAUSTED",
		models.ErrManagerOnly:       "MANAGER_ONLY",
		models.ErrManagerLocked:     "MANAGER_LOCKED",
		models.ErrStageLocked:       "STAGE_LOCKED",
	}

	for err, code := range codes {
		assert.Equal(t, code, err.Code)
		assert.NotEmpty(t, err.Message)
		assert.Equal(t, err.Message, err.Error())
	}
}
