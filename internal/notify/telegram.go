// Package notify delivers due-review reminders to learners.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/p-n-ai/pai-practice/internal/catalog"
	"github.com/p-n-ai/pai-practice/internal/practice"
)

// ErrNoChat is returned for learners without a Telegram chat id.
var ErrNoChat = errors.New("notify: learner has no telegram chat")

// TelegramNotifier sends reminders through the Telegram Bot API. Learner ids
// are Telegram chat ids.
type TelegramNotifier struct {
	baseURL string
	client  *http.Client
}

// NewTelegram creates a notifier for the bot token.
func NewTelegram(token string) (*TelegramNotifier, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is required (LEARN_TELEGRAM_BOT_TOKEN)")
	}
	return &TelegramNotifier{
		baseURL: "https://api.telegram.org/bot" + token,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

// NotifyDue sends one message listing the due reviews per skill.
func (t *TelegramNotifier) NotifyDue(ctx context.Context, learnerID string, due []practice.Attempt) error {
	if _, err := strconv.ParseInt(learnerID, 10, 64); err != nil {
		return fmt.Errorf("%w: %q", ErrNoChat, learnerID)
	}
	if len(due) == 0 {
		return nil
	}

	params := url.Values{
		"chat_id": {learnerID},
		"text":    {ReminderText(due)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/sendMessage", strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("building Telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending Telegram message: %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error %d", resp.StatusCode)
	}

	slog.Debug("reminder sent", "learner_id", learnerID, "count", len(due))
	return nil
}

// ReminderText summarizes due reviews, skills in catalog order.
func ReminderText(due []practice.Attempt) string {
	counts := make(map[practice.Skill]int)
	for _, a := range due {
		counts[a.Skill]++
	}

	var parts []string
	for _, s := range practice.AllSkills() {
		if n := counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s (%d)", catalog.DisplayName(s), n))
		}
	}

	noun := "exercises"
	if len(due) == 1 {
		noun = "exercise"
	}
	return fmt.Sprintf("You have %d %s to review: %s.", len(due), noun, strings.Join(parts, ", "))
}
