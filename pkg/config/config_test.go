package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "token-123456789")
	t.Setenv("REQUEST_CHANNEL_ID", "111")
	t.Setenv("MANAGE_CHANNEL_ID", "222")
	t.Setenv("RESULT_CHANNEL_ID", "333")
	t.Setenv("REQUIRED_ROLE_ID", "444")
	// Clear optionals so defaults apply
	t.Setenv("GUILD_ID", "")
	t.Setenv("TIMEZONE", "")
	t.Setenv("REMINDER_INTERVAL_SECONDS", "")
}

func TestLoadFromEnv(t *testing.T) {
	setRequired(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "token-123456789", cfg.BotToken)
	assert.Equal(t, "111", cfg.RequestChannelID)
	assert.Equal(t, "222", cfg.ManageChannelID)
	assert.Equal(t, "333", cfg.ResultChannelID)
	assert.Equal(t, "444", cfg.RequiredRoleID)
	assert.Equal(t, "Asia/Tokyo", cfg.Location.String())
	assert.Equal(t, time.Minute, cfg.ReminderInterval)
}

func TestLoadFromEnvMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("RESULT_CHANNEL_ID", "")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RESULT_CHANNEL_ID")
}

func TestLoadFromEnvCustomTimezone(t *testing.T) {
	setRequired(t)
	t.Setenv("TIMEZONE", "Europe/Berlin")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", cfg.Location.String())
}

func TestLoadFromEnvInvalidTimezone(t *testing.T) {
	setRequired(t)
	t.Setenv("TIMEZONE", "Nowhere/Invalid")

	_, err := LoadFromEnv()
	assert.Error(t, err)
}

func TestLoadFromEnvInvalidInterval(t *testing.T) {
	setRequired(t)

	for _, value := range []string{"abc", "0", "-5"} {
		t.Setenv("REMINDER_INTERVAL_SECONDS", value)
		_, err := LoadFromEnv()
		assert.Error(t, err, "interval %q", value)
	}
}
