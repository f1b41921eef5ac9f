package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "TELEGRAM_LOG_CHAT_ID", "ADMIN_USER_ID",
	"FINNHUB_API_KEY", "GEMINI_API_KEY", "AI_API_KEY", "HTTPS_PROXY",
	"SQLITE_PATH", "REDIS_ADDR", "PORT", "SERVER_API_TOKEN",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0 0 * * * *", cfg.Schedule.Cron)
	assert.Equal(t, "Europe/Paris", cfg.Schedule.Timezone)
	assert.Equal(t, "22-6", cfg.Schedule.QuietHours)
	assert.True(t, cfg.RunOnStart())
	assert.True(t, cfg.ServerEnabled())
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Cooldown.Window)
	assert.Equal(t, "memory", cfg.Cooldown.Backend)
	assert.Equal(t, 10*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 3, cfg.AI.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.AI.Backoff)
	assert.Equal(t, 180, cfg.DataSource.HistoryDays)
	assert.Equal(t, 5, cfg.DataSource.ATHYears)
	assert.Equal(t, 0.92, cfg.FX.Fallback)
	assert.Equal(t, "yahoo", cfg.DataSource.Quotes)
	assert.Equal(t, "data/signal_sentinel.db", cfg.Database.SQLitePath)

	require.Len(t, cfg.Watchlist, 6)
	assert.Equal(t, "URTH", cfg.Watchlist[0].Symbol)
	assert.Equal(t, "AMZN", cfg.Watchlist[5].Symbol)

	assert.Error(t, cfg.RequireTelegram())
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
telegram:
  bot_token: file-token
  chat_id: "-100"
watchlist:
  - symbol: " aaa "
    name: Triple A
schedule:
  quiet_hours: "off"
  run_on_start: false
server:
  enabled: false
  port: 8080
  trust_proxy: true
ai:
  max_attempts: 2
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("GEMINI_API_KEY", "gemini")
	t.Setenv("AI_API_KEY", "override")
	t.Setenv("ADMIN_USER_ID", "42")
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_API_TOKEN", "tok")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.RequireTelegram())

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "-100", cfg.Telegram.ChatID)
	assert.Equal(t, "override", cfg.AI.APIKey)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "tok", cfg.Server.APIToken)
	assert.True(t, cfg.Server.TrustProxy)
	assert.Equal(t, "redis", cfg.Cooldown.Backend)
	assert.Equal(t, 2, cfg.AI.MaxAttempts)
	assert.False(t, cfg.RunOnStart())
	assert.False(t, cfg.ServerEnabled())
	assert.Equal(t, []string{"42"}, cfg.Admins())

	require.Len(t, cfg.Watchlist, 1)
	assert.Equal(t, "AAA", cfg.Watchlist[0].Symbol)
	assert.Equal(t, "Triple A (AAA)", cfg.Watchlist[0].Title())
}

func TestValidate_Errors(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		body string
	}{
		{"bad timezone", "schedule:\n  timezone: Mars/Olympus\n"},
		{"bad quiet hours", "schedule:\n  quiet_hours: \"25-3\"\n"},
		{"bad quote source", "data_source:\n  quotes: bloomberg\n"},
		{"finnhub without key", "data_source:\n  quotes: finnhub\n"},
		{"redis without addr", "cooldown:\n  backend: redis\n"},
		{"empty symbol", "watchlist:\n  - name: nothing\n"},
		{"fx band inverted", "fx:\n  min: 1.5\n  max: 1.2\n"},
		{"log level", "log:\n  level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.body))
			require.NoError(t, err)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, "telegram: [unclosed"))
	assert.Error(t, err)
}

func TestParseQuietHours(t *testing.T) {
	tests := []struct {
		in         string
		start, end int
		enabled    bool
		wantErr    bool
	}{
		{"22-6", 22, 6, true, false},
		{" 1 - 5 ", 1, 5, true, false},
		{"off", 0, 0, false, false},
		{"", 0, 0, false, false},
		{"3-3", 0, 0, false, false},
		{"22", 0, 0, false, true},
		{"x-6", 0, 0, false, true},
		{"22-24", 0, 0, false, true},
	}
	for _, tt := range tests {
		start, end, enabled, err := ParseQuietHours(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.start, start, tt.in)
		assert.Equal(t, tt.end, end, tt.in)
		assert.Equal(t, tt.enabled, enabled, tt.in)
	}
}
