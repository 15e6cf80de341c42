package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tweet-responder/internal/storage"
)

// telegram rejects messages above 4096 characters
const maxMessageRunes = 4000

// sender is the part of the bot API the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier mirrors reply outcomes into an operator chat. It satisfies
// storage.Recorder so it can sit in a storage.Fanout next to the real store.
type Notifier struct {
	s      sender
	chatID int64
	logger *zap.Logger
}

var _ storage.Recorder = (*Notifier)(nil)

// NewNotifier authorizes the bot. Every bot API request is bounded by
// timeout; a non-positive timeout falls back to 30s.
func NewNotifier(botToken string, chatID int64, timeout time.Duration, logger *zap.Logger) (*Notifier, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	api, err := tgbotapi.NewBotAPIWithClient(botToken, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("telegram notifier authorized", zap.String("bot", api.Self.UserName), zap.Int64("chat_id", chatID))
	return &Notifier{s: api, chatID: chatID, logger: logger}, nil
}

// AppendOutcome sends one message describing the outcome.
func (n *Notifier) AppendOutcome(ctx context.Context, o storage.Outcome) error {
	return n.send(ctx, FormatOutcome(o))
}

// SendText posts free-form text, e.g. the daily report.
func (n *Notifier) SendText(ctx context.Context, text string) error {
	return n.send(ctx, text)
}

// send returns when the message is delivered or ctx is done, whichever
// comes first. The bot API has no context support, so an abandoned request
// finishes in the background under the http client timeout.
func (n *Notifier) send(ctx context.Context, text string) error {
	if utf8.RuneCountInString(text) > maxMessageRunes {
		text = string([]rune(text)[:maxMessageRunes]) + "…"
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.DisableWebPagePreview = true

	done := make(chan error, 1)
	go func() {
		_, err := n.s.Send(msg)
		done <- err
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		n.logger.Warn("failed to send telegram message", zap.Error(err))
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// FormatOutcome renders an outcome as a chat message.
func FormatOutcome(o storage.Outcome) string {
	if o.Success {
		return fmt.Sprintf("✅ Replied to %s\n\n📝 %s\n\n🤖 %s\n\n🔗 https://x.com/i/status/%s",
			o.ContentID, o.ContentText, o.GeneratedReply, o.ContentID)
	}
	return fmt.Sprintf("❌ Failed on %s\n\n📝 %s\n\n⚠️ %s", o.ContentID, o.ContentText, o.GeneratedReply)
}
