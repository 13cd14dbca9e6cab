package notifications

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Notifier delivers trading alerts out of band.
type Notifier interface {
	SendAlert(level, message string) error
}

// TelegramNotifier sends alerts through the Telegram bot API.
type TelegramNotifier struct {
	token  string
	chatID string
}

// NewTelegramNotifier creates a notifier for the given bot token and chat.
func NewTelegramNotifier(token, chatID string) *TelegramNotifier {
	return &TelegramNotifier{token: token, chatID: chatID}
}

func (t *TelegramNotifier) SendAlert(level, message string) error {
	emoji := "ℹ️"
	switch level {
	case "warning":
		emoji = "⚠️"
	case "error":
		emoji = "🚨"
	case "trade":
		emoji = "✅"
	}

	text := fmt.Sprintf("%s *MTX Bot*\n\n%s", emoji, message)

	apiURL := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)

	data := url.Values{}
	data.Set("chat_id", t.chatID)
	data.Set("text", text)
	data.Set("parse_mode", "Markdown")

	resp, err := http.Post(apiURL, "application/x-www-form-urlencoded",
		strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}
	return nil
}

// NoopNotifier discards alerts; used when notifications are not configured.
type NoopNotifier struct{}

func (NoopNotifier) SendAlert(string, string) error { return nil }
