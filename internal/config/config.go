package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"SignalSentinel/internal/model"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken    string        `yaml:"bot_token"`
		ChatID      string        `yaml:"chat_id"`
		LogChatID   string        `yaml:"log_chat_id"`
		AdminUserID string        `yaml:"admin_user_id"`
		PollTimeout time.Duration `yaml:"poll_timeout" default:"30s"`
	} `yaml:"telegram"`
	Watchlist  []model.Instrument `yaml:"watchlist" validate:"dive"`
	DataSource struct {
		Quotes        string        `yaml:"quotes" default:"yahoo" validate:"oneof=yahoo finnhub"`
		FinnhubAPIKey string        `yaml:"finnhub_api_key"`
		HistoryDays   int           `yaml:"history_days" default:"180" validate:"gte=30,lte=730"`
		ATHYears      int           `yaml:"ath_years" default:"5" validate:"gte=1,lte=30"`
		Timeout       time.Duration `yaml:"timeout" default:"15s"`
	} `yaml:"data_source"`
	FX struct {
		Target   string  `yaml:"target" default:"EUR"`
		Min      float64 `yaml:"min" default:"0.5" validate:"gt=0"`
		Max      float64 `yaml:"max" default:"2.0" validate:"gtfield=Min"`
		Fallback float64 `yaml:"fallback" default:"0.92" validate:"gt=0"`
	} `yaml:"fx"`
	AI struct {
		APIKey      string        `yaml:"api_key"`
		BaseURL     string        `yaml:"base_url"`
		Model       string        `yaml:"model"`
		Timeout     time.Duration `yaml:"timeout" default:"10s"`
		MaxAttempts int           `yaml:"max_attempts" default:"3" validate:"gte=1,lte=10"`
		Backoff     time.Duration `yaml:"backoff" default:"2s"`
		MinLength   int           `yaml:"min_length" default:"10"`
	} `yaml:"ai"`
	Schedule struct {
		Cron       string `yaml:"cron" default:"0 0 * * * *"`
		Timezone   string `yaml:"timezone" default:"Europe/Paris"`
		QuietHours string `yaml:"quiet_hours" default:"22-6"`
		RunOnStart *bool  `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Cooldown struct {
		Window  time.Duration `yaml:"window" default:"30s"`
		Backend string        `yaml:"backend" default:"memory" validate:"oneof=memory redis"`
		Admins  []string      `yaml:"admins"`
	} `yaml:"cooldown"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" default:"data/signal_sentinel.db"`
	} `yaml:"database"`
	Server struct {
		Enabled    *bool  `yaml:"enabled"`
		Port       int    `yaml:"port" default:"3000" validate:"gte=1,lte=65535"`
		APIToken   string `yaml:"api_token"`
		TrustProxy bool   `yaml:"trust_proxy"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// DefaultWatchlist is used when the config lists no instruments.
func DefaultWatchlist() []model.Instrument {
	return []model.Instrument{
		{Symbol: "URTH", Name: "iShares MSCI World ETF"},
		{Symbol: "MCD", Name: "McDonald's"},
		{Symbol: "TTWO", Name: "Take-Two Interactive"},
		{Symbol: "NVDA", Name: "NVIDIA"},
		{Symbol: "TSLA", Name: "Tesla"},
		{Symbol: "AMZN", Name: "Amazon"},
	}
}

var validate = validator.New()

// Load reads config from a YAML file, then applies environment variable
// overrides, then struct defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if len(cfg.Watchlist) == 0 {
		cfg.Watchlist = DefaultWatchlist()
	}
	for i := range cfg.Watchlist {
		cfg.Watchlist[i].Symbol = strings.ToUpper(strings.TrimSpace(cfg.Watchlist[i].Symbol))
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("TELEGRAM_LOG_CHAT_ID"); v != "" {
		c.Telegram.LogChatID = v
	}
	if v := os.Getenv("ADMIN_USER_ID"); v != "" {
		c.Telegram.AdminUserID = v
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.DataSource.FinnhubAPIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv("AI_API_KEY"); v != "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Cooldown.Backend = "redis"
	}
	if v := os.Getenv("SERVER_API_TOKEN"); v != "" {
		c.Server.APIToken = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	if _, _, _, err := ParseQuietHours(c.Schedule.QuietHours); err != nil {
		return fmt.Errorf("schedule.quiet_hours: %w", err)
	}
	if c.DataSource.Quotes == "finnhub" && c.DataSource.FinnhubAPIKey == "" {
		return errors.New("data_source.finnhub_api_key is required for finnhub quotes")
	}
	if c.Cooldown.Backend == "redis" && c.Redis.Addr == "" {
		return errors.New("redis.addr is required for the redis cooldown backend")
	}
	return nil
}

// RequireTelegram checks the fields needed to deliver to Telegram.
func (c *Config) RequireTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

// RunOnStart reports whether a cycle runs right after startup. Defaults to true.
func (c *Config) RunOnStart() bool {
	return c.Schedule.RunOnStart == nil || *c.Schedule.RunOnStart
}

// ServerEnabled reports whether the HTTP listener starts. Defaults to true.
func (c *Config) ServerEnabled() bool {
	return c.Server.Enabled == nil || *c.Server.Enabled
}

// Admins returns every identity exempt from the cooldown.
func (c *Config) Admins() []string {
	out := make([]string, 0, len(c.Cooldown.Admins)+1)
	if c.Telegram.AdminUserID != "" {
		out = append(out, c.Telegram.AdminUserID)
	}
	out = append(out, c.Cooldown.Admins...)
	return out
}

// Location loads the schedule time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Schedule.Timezone)
}

// ParseQuietHours parses "START-END" local hours, e.g. "22-6". "off" or ""
// disables the quiet window.
func ParseQuietHours(s string) (start, end int, enabled bool, err error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "off" || s == "none" {
		return 0, 0, false, nil
	}
	a, b, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, false, fmt.Errorf("%q: want START-END", s)
	}
	start, err = strconv.Atoi(strings.TrimSpace(a))
	if err != nil || start < 0 || start > 23 {
		return 0, 0, false, fmt.Errorf("%q: bad start hour", s)
	}
	end, err = strconv.Atoi(strings.TrimSpace(b))
	if err != nil || end < 0 || end > 23 {
		return 0, 0, false, fmt.Errorf("%q: bad end hour", s)
	}
	if start == end {
		return 0, 0, false, nil
	}
	return start, end, true, nil
}
