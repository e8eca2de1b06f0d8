package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"chef/internal/storage"
)

// NewBot creates a new Telegram bot
func NewBot(token string, db storage.Storage, generator AnswerGenerator, adminID int64, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot created",
		zap.String("bot_username", api.Self.UserName),
		zap.Int64("admin_id", adminID),
	)

	return &Bot{
		api:       api,
		db:        db,
		generator: generator,
		adminID:   adminID,
		states:    make(map[int64]*ConversationState),
		logger:    logger,
	}, nil
}

// Token returns the bot API token, used by the HTTP server to validate
// Mini App init data
func (b *Bot) Token() string {
	if b.api == nil {
		return ""
	}
	return b.api.Token
}
