package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jonathan/job-harvester/internal/pipeline"
)

// messageSender is the part of *tgbotapi.BotAPI used here.
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts batch summaries to one chat.
type Telegram struct {
	bot    messageSender
	chatID int64
}

// NewTelegram connects a bot with token. Only batches with stored postings
// or errors are reported.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// NotifyRun implements pipeline.Notifier.
func (t *Telegram) NotifyRun(_ context.Context, s *pipeline.Summary) error {
	if s.Stored == 0 && s.Error == "" {
		return nil
	}
	msg := tgbotapi.NewMessage(t.chatID, FormatSummary(s))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	return nil
}
