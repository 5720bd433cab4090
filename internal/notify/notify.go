package notify

import (
	"context"

	"github.com/alberthlima/saas-legal/internal/logger"
	"github.com/alberthlima/saas-legal/internal/metrics"
)

// Notifier sends a message to a Telegram chat. Callers that need
// fire-and-forget semantics go through BestEffort instead of handling
// the error themselves.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// BestEffort sends a notification and swallows any failure. The local
// state change that triggered the notification has already committed;
// delivery problems are logged and counted, never propagated.
func BestEffort(ctx context.Context, n Notifier, chatID int64, text string) {
	if err := n.Send(ctx, chatID, text); err != nil {
		logger.Error("notification failed", "chat_id", chatID, "err", err)
		metrics.RecordNotification("failed")
		return
	}
	metrics.RecordNotification("sent")
}

// Noop discards every notification. Used in tests and in deployments
// without a bot token.
type Noop struct{}

func (Noop) Send(ctx context.Context, chatID int64, text string) error {
	return nil
}
