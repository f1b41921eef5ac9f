package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"SignalSentinel/internal/model"

	"github.com/rs/zerolog"
)

// DefaultTelegramBaseURL is the Bot API root.
const DefaultTelegramBaseURL = "https://api.telegram.org"

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	BaseURL     string
	BotToken    string
	ChatID      string // signal reports
	LogChatID   string // cycle start/summary; empty disables
	AdminUserID string // mentioned on alerts
	Client      *http.Client
	MaxRetries  int
	RetryBase   time.Duration
	PollTimeout time.Duration
	Log         zerolog.Logger
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string, log zerolog.Logger) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BaseURL:  DefaultTelegramBaseURL,
		BotToken: botToken,
		ChatID:   chatID,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		MaxRetries:  3,
		RetryBase:   time.Second,
		PollTimeout: 30 * time.Second,
		Log:         log,
	}
}

func (t *TelegramNotifier) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", strings.TrimRight(t.BaseURL, "/"), t.BotToken, method)
}

// Send sends an HTML message to chatID.
func (t *TelegramNotifier) Send(ctx context.Context, chatID, text string) error {
	payload := map[string]interface{}{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, chatID, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		err := t.Send(ctx, chatID, text)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == maxRetries {
			break
		}
		backoff := time.Duration(1<<uint(i)) * t.RetryBase
		t.Log.Warn().Err(err).
			Int("attempt", i+1).
			Int("max_attempts", maxRetries+1).
			Dur("retry_in", backoff).
			Msg("telegram send failed")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

// Deliver sends one signal report to the alert chat.
func (t *TelegramNotifier) Deliver(ctx context.Context, r *model.SignalReport) error {
	return t.SendWithRetry(ctx, t.ChatID, FormatSignalReport(r), t.MaxRetries)
}

// Notify sends an operational message to the log chat, if one is configured.
func (t *TelegramNotifier) Notify(ctx context.Context, text string) error {
	if t.LogChatID == "" {
		return nil
	}
	return t.SendWithRetry(ctx, t.LogChatID, text, t.MaxRetries)
}

// Alert is Notify with the admin mentioned.
func (t *TelegramNotifier) Alert(ctx context.Context, text string) error {
	if t.AdminUserID != "" {
		text = fmt.Sprintf("<a href=\"tg://user?id=%s\">admin</a> ⚠️ <b>ALERT</b>\n%s", url.QueryEscape(t.AdminUserID), text)
	}
	return t.Notify(ctx, text)
}
