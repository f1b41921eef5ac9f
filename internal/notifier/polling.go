package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"SignalSentinel/internal/model"
)

// CommandHandler is called when a user command is received. A non-empty
// return value is sent back to the originating chat.
type CommandHandler func(ctx context.Context, cmd model.Command) string

// telegramUpdate represents a Telegram update from long polling.
type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		From *struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// StartPolling begins long-polling for Telegram commands. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := 0
	pollSeconds := int(t.PollTimeout.Seconds())
	client := &http.Client{Timeout: t.PollTimeout + 5*time.Second, Transport: t.Client.Transport}

	for {
		select {
		case <-ctx.Done():
			t.Log.Info().Msg("telegram polling stopped")
			return
		default:
		}

		apiURL := fmt.Sprintf("%s?offset=%d&timeout=%d", t.endpoint("getUpdates"), offset, pollSeconds)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			t.Log.Error().Err(err).Msg("create polling request")
			sleep(ctx, 5*time.Second)
			continue
		}

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			t.Log.Warn().Err(err).Msg("polling request failed")
			sleep(ctx, 5*time.Second)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Log.Warn().Err(err).Msg("read polling response")
			continue
		}

		var result struct {
			OK     bool             `json:"ok"`
			Result []telegramUpdate `json:"result"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			t.Log.Warn().Err(err).Msg("decode polling response")
			sleep(ctx, time.Second)
			continue
		}

		for _, update := range result.Result {
			offset = update.UpdateID + 1
			msg := update.Message
			if msg == nil || !strings.HasPrefix(strings.TrimSpace(msg.Text), "/") {
				continue
			}
			cmd := model.Command{
				Text:   strings.TrimSpace(msg.Text),
				ChatID: strconv.FormatInt(msg.Chat.ID, 10),
			}
			if msg.From != nil {
				cmd.UserID = strconv.FormatInt(msg.From.ID, 10)
			}
			t.Log.Info().Str("command", cmd.Name()).Str("user_id", cmd.UserID).Msg("received command")

			// Commands may run a whole cycle; keep polling meanwhile.
			go func(cmd model.Command) {
				reply := handler(ctx, cmd)
				if reply == "" {
					return
				}
				if err := t.Send(ctx, cmd.ChatID, reply); err != nil {
					t.Log.Error().Err(err).Msg("send reply")
				}
			}(cmd)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
