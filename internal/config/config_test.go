package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderDeepSeek, cfg.LLMProvider)
	assert.Equal(t, "deepseek-chat", cfg.DeepSeekModel)
	assert.Equal(t, 150, cfg.MaxTokens)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, 300*time.Second, cfg.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.CallTimeout)
	assert.Equal(t, 1000, cfg.SeenCapacity)
	assert.Equal(t, BackendCSV, cfg.RecorderBackend)
	assert.Equal(t, TransportDirect, cfg.PublisherTransport)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("POLL_INTERVAL", "90s")
	t.Setenv("PORT", "8080")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.LLMProvider)
	assert.Equal(t, 90*time.Second, cfg.PollInterval)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.TelegramEnabled())
}

func TestValidate_ReportsEveryMissingKey(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.Validate(ModeOnce)
	var missing *MissingError
	require.True(t, errors.As(err, &missing), "want *MissingError, got %v", err)
	assert.ElementsMatch(t, []string{
		"DEEPSEEK_API_KEY",
		"APIDANCE_API_KEY",
		"TWITTER_AUTH_TOKEN",
		"TARGET_TWEET_ID",
		"TARGET_TWEET_TEXT",
	}, missing.Keys)
}

func TestValidate_PollNeedsClientCredentials(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "k")
	t.Setenv("APIDANCE_API_KEY", "a")
	t.Setenv("TWITTER_AUTH_TOKEN", "t")
	cfg, err := Load()
	require.NoError(t, err)

	require.NoError(t, cfg.Validate(ModeWebhook))

	err = cfg.Validate(ModePoll)
	var missing *MissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"TWITTER_USERNAME", "TWITTER_PASSWORD", "TWITTER_EMAIL"}, missing.Keys)
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := &Config{
		LLMProvider:        "mystery",
		PublisherTransport: TransportDirect,
		ApidanceAPIKey:     "a",
		TwitterAuthToken:   "t",
		RecorderBackend:    BackendPostgres,
		Port:               5000,
	}
	err := cfg.Validate(ModeWebhook)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_PROVIDER")
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
