package relay

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/colmeia/hive/internal/infrastructure/config"
	"github.com/colmeia/hive/pkg/errors"
)

// Listener is the optional inbound bridge: it long-polls the relay bot
// and hands replies typed in the mirrored chat back to the console, so
// a user can continue a conversation from Telegram.
type Listener struct {
	cfg    func() config.RelayConfig
	handle func(ctx context.Context, text string)
	logger *zap.Logger
}

// NewListener creates an inbound bridge. handle receives the raw text
// of each message seen in the configured chat.
func NewListener(cfg func() config.RelayConfig, handle func(ctx context.Context, text string), logger *zap.Logger) *Listener {
	return &Listener{
		cfg:    cfg,
		handle: handle,
		logger: logger.With(zap.String("component", "relay-listener")),
	}
}

// Run polls for updates until ctx is cancelled. It returns immediately
// when the bridge is not configured.
func (l *Listener) Run(ctx context.Context) error {
	cfg := l.cfg()
	if !cfg.Listen || cfg.BotToken == "" || cfg.ChatID == "" {
		l.logger.Debug("Inbound bridge not configured, skipping")
		return nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return errors.NewTransportError("connect relay bot", err)
	}
	l.logger.Info("Inbound bridge connected", zap.String("bot", bot.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg := update.Message
			if msg == nil || msg.Text == "" {
				continue
			}
			// Only the mirrored chat, and never the bot's own echoes
			if strconv.FormatInt(msg.Chat.ID, 10) != cfg.ChatID {
				continue
			}
			if msg.From != nil && msg.From.IsBot {
				continue
			}
			l.logger.Info("Inbound relay message", zap.Int("length", len(msg.Text)))
			l.handle(ctx, msg.Text)
		}
	}
}
