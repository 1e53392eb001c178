package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"Referent/internal/config"
	"Referent/internal/domain"
	"Referent/internal/ports"
	"Referent/pkg/textutil"
)

// maxMessageLength is the Bot API limit for a text message.
const maxMessageLength = 4096

// Publisher sends generated posts to a Telegram chat via the Bot API.
type Publisher struct {
	bot    *tgbotapi.BotAPI
	chat   string
	logger *slog.Logger
}

var _ ports.Publisher = (*Publisher)(nil)

// NewPublisher authenticates the bot (getMe) and binds it to cfg.ChatID, which
// is either a numeric chat ID or an @channel username.
func NewPublisher(cfg config.TelegramConfig, client *http.Client, log *slog.Logger) (*Publisher, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%w: telegram bot token or chat id is not set", domain.ErrConfiguration)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}

	if log != nil {
		log.Info("telegram publisher ready", "bot", bot.Self.UserName, "chat", cfg.ChatID)
	}
	return &Publisher{bot: bot, chat: strings.TrimSpace(cfg.ChatID), logger: log}, nil
}

// Publish posts text as a plain message. Text over the Bot API limit is cut.
func (p *Publisher) Publish(ctx context.Context, text string) error {
	if p == nil || p.bot == nil {
		return fmt.Errorf("%w: telegram publisher is nil", domain.ErrConfiguration)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := p.message(textutil.Truncate(text, maxMessageLength))
	if err != nil {
		return err
	}

	sent, err := p.bot.Send(msg)
	if err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) {
			return fmt.Errorf("telegram send: %d %s: %w", apiErr.Code, apiErr.Message, err)
		}
		return fmt.Errorf("telegram send: %w", err)
	}

	if p.logger != nil {
		p.logger.Debug("telegram message sent", "message_id", sent.MessageID)
	}
	return nil
}

func (p *Publisher) message(text string) (tgbotapi.MessageConfig, error) {
	if strings.HasPrefix(p.chat, "@") {
		return tgbotapi.NewMessageToChannel(p.chat, text), nil
	}
	chatID, err := strconv.ParseInt(p.chat, 10, 64)
	if err != nil {
		return tgbotapi.MessageConfig{}, fmt.Errorf("%w: telegram chat id %q is neither numeric nor @username", domain.ErrConfiguration, p.chat)
	}
	return tgbotapi.NewMessage(chatID, text), nil
}
