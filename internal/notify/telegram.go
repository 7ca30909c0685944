// Package notify pushes background-pass results to the user. The client is
// usually not on screen when a proactive follow-up runs, so results go out
// through Telegram when a bot token is configured.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const maxTelegramMessage = 4096

// Telegram sends notification texts to one chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram creates a Telegram notifier for the given bot token and chat.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// Notify sends the text to the configured chat, splitting messages that
// exceed Telegram's length limit.
func (t *Telegram) Notify(text string) error {
	for _, part := range splitMessage(text) {
		msg := tgbotapi.NewMessage(t.chatID, part)
		if _, err := t.bot.Send(msg); err != nil {
			return fmt.Errorf("send telegram message: %w", err)
		}
	}
	return nil
}

// splitMessage chunks text at the Telegram message size limit.
func splitMessage(text string) []string {
	if len(text) <= maxTelegramMessage {
		return []string{text}
	}
	var parts []string
	for len(text) > maxTelegramMessage {
		parts = append(parts, text[:maxTelegramMessage])
		text = text[maxTelegramMessage:]
	}
	if len(text) > 0 {
		parts = append(parts, text)
	}
	return parts
}
