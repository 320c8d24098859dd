package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"github.com/irfndi/vix-alert-go/internal/config"
	"github.com/irfndi/vix-alert-go/internal/retry"
)

// Notifier delivers alert text to a single Telegram chat with bounded retry.
type Notifier struct {
	bot    *bot.Bot
	chatID int64
	policy retry.Policy
	logger logrus.FieldLogger
}

// NewNotifier creates a Notifier from configuration. Construction performs no
// network calls. Extra options are appended after the defaults, which lets
// tests point the bot at a fake server.
func NewNotifier(cfg *config.TelegramConfig, policy retry.Policy, logger logrus.FieldLogger, opts ...bot.Option) (*Notifier, error) {
	chatID, err := strconv.ParseInt(cfg.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	options := append([]bot.Option{
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(cfg.GetRequestTimeout(), &http.Client{
			Timeout: cfg.GetRequestTimeout(),
		}),
	}, opts...)

	b, err := bot.New(cfg.BotToken, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Notifier{
		bot:    b,
		chatID: chatID,
		policy: policy,
		logger: logger,
	}, nil
}

// Send delivers text to the configured chat as plain text, retrying per the
// policy. The sent message is returned for logging; after exhaustion the
// final attempt's error comes back unmodified.
func (n *Notifier) Send(ctx context.Context, text string) (*models.Message, error) {
	var sent *models.Message
	err := n.policy.Do(ctx, n.logger, "send_telegram_message", func() error {
		msg, sendErr := n.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: n.chatID,
			Text:   text,
		})
		if sendErr != nil {
			return sendErr
		}
		sent = msg
		return nil
	})
	if err != nil {
		return nil, err
	}

	n.logger.WithFields(logrus.Fields{
		"chat_id":    n.chatID,
		"message_id": sent.ID,
	}).Info("Telegram message sent")

	return sent, nil
}
