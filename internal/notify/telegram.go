package notify

import (
	"context"
	"errors"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// telegramRequestTimeout bounds each Bot API call.
const telegramRequestTimeout = 15 * time.Second

// Sender is the minimal interface needed to push a text message.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// botSender sends through the Telegram Bot API.
type botSender struct {
	bot *tgbotapi.BotAPI
}

// SendMessage gives up when ctx ends. The request itself is bounded by the
// client timeout.
func (b botSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true

	done := make(chan error, 1)
	go func() {
		_, err := b.bot.Send(msg)
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TelegramSink delivers reminders to a Telegram chat, so they reach the user
// when the widget is not in front.
type TelegramSink struct {
	token  string
	chatID int64
	log    *zap.Logger

	// connect builds a Sender; replaced in tests.
	connect func(token string) (Sender, error)
	sender  Sender
}

func NewTelegramSink(token string, chatID int64, log *zap.Logger) *TelegramSink {
	return &TelegramSink{
		token:  token,
		chatID: chatID,
		log:    log,
		connect: func(token string) (Sender, error) {
			client := &http.Client{Timeout: telegramRequestTimeout}
			bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
			if err != nil {
				return nil, err
			}
			bot.Debug = false
			return botSender{bot: bot}, nil
		},
	}
}

func (*TelegramSink) Name() string { return "telegram" }

// RequestPermission authenticates the bot. A rejected token is a denial;
// missing configuration means the channel is unsupported.
func (t *TelegramSink) RequestPermission(context.Context) Permission {
	if t.token == "" || t.chatID == 0 {
		return PermissionUnsupported
	}
	if t.sender != nil {
		return PermissionGranted
	}
	s, err := t.connect(t.token)
	if err != nil {
		t.log.Info("telegram bot authorization failed", zap.Error(err))
		return PermissionDenied
	}
	t.sender = s
	return PermissionGranted
}

func (t *TelegramSink) Show(ctx context.Context, title, body string) error {
	if t.sender == nil {
		return errors.New("telegram sink not authorized")
	}
	return t.sender.SendMessage(ctx, t.chatID, title+"\n\n"+body)
}
