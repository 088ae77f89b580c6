package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrDisabled is returned when no bot token is configured; callers treat it
// like any other dispatch failure.
var ErrDisabled = errors.New("telegram notifier disabled: no bot token")

// TelegramNotifier sends match notifications through the Telegram Bot API.
type TelegramNotifier struct {
	bot *tgbotapi.BotAPI
	log *slog.Logger
}

func NewTelegramNotifier(token string, log *slog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, log: log}, nil
}

func (t *TelegramNotifier) NotifyMatch(ctx context.Context, n MatchNotification) error {
	text := fmt.Sprintf("You have a new match with %s!", n.MatchedName)
	if n.MatchedUsername != "" {
		text += fmt.Sprintf("\n\nYou can now chat: @%s", n.MatchedUsername)
	}
	text += "\n\nOpen the app to see their profile."

	msg := tgbotapi.NewMessage(n.RecipientTelegramID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := t.bot.Send(msg); err != nil {
		t.log.Warn("match notification failed", "recipient", n.RecipientTelegramID, "err", err)
		return fmt.Errorf("telegram send failed: %w", err)
	}
	return nil
}

// Disabled is the no-op notifier used when the bot token is unset. It always
// fails, so notification flags stay false and dispatch can be retried once a
// token is configured and the pair re-matches.
type Disabled struct{}

func (Disabled) NotifyMatch(ctx context.Context, n MatchNotification) error {
	return ErrDisabled
}
