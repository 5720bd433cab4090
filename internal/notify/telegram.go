package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// Telegram sends messages through the Bot API. Sends are rate limited
// to Telegram's global ceiling of 30 messages per second.
type Telegram struct {
	api     *tgbotapi.BotAPI
	limiter *rate.Limiter
}

func NewTelegram(token string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	return &Telegram{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(30), 1),
	}, nil
}

func (t *Telegram) Send(ctx context.Context, chatID int64, text string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
