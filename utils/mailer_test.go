package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minevent/config"
	"minevent/utils"
)

func TestVerificationLink(t *testing.T) {
	config.AppConfig.BaseURL = "https://minevent.id"

	link := utils.VerificationLink("abc123")
	assert.Equal(t, "https://minevent.id/auth/new-verification?token=abc123", link)

	// Token values are query-escaped
	link = utils.VerificationLink("a b&c")
	assert.Equal(t, "https://minevent.id/auth/new-verification?token=a+b%26c", link)
}

func TestRenderEmail_Verification(t *testing.T) {
	body, err := utils.RenderEmail("verification", utils.EmailData{
		Subject: "Verify your email address",
		To:      "miner@example.com",
		Data:    struct{ Link string }{Link: "https://minevent.id/auth/new-verification?token=tok"},
		Year:    2026,
	})
	require.NoError(t, err)

	assert.Contains(t, body, "https://minevent.id/auth/new-verification?token=tok")
	assert.Contains(t, body, "Verify your email address")
	assert.Contains(t, body, "2026")
}

func TestRenderEmail_UnknownTemplate(t *testing.T) {
	_, err := utils.RenderEmail("newsletter", utils.EmailData{})
	assert.Error(t, err)
}
