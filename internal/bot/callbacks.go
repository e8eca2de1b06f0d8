package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Callback data prefixes for the inline favorite buttons. Recipe ids are
// extracted with a fixed-prefix trim, never by splitting on underscores.
const (
	callbackAddFavorite    = "add_fav_"
	callbackRemoveFavorite = "remove_fav_"
	callbackFeedbackYes    = "feedback_yes"
	callbackFeedbackNo     = "feedback_no"
)

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery", zap.Any("panic", r))
		}
	}()

	ctx := context.Background()

	// Answer the callback query to remove the loading state
	if b.api != nil {
		b.api.Request(tgbotapi.NewCallback(query.ID, ""))
	}

	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID

	data := query.Data
	switch {
	case data == callbackFeedbackYes:
		b.sendText(chatID, "¡Gracias por tu feedback positivo!")
	case data == callbackFeedbackNo:
		b.sendText(chatID, "Lo sentimos, intentamos mejorar día a día.")
	case strings.HasPrefix(data, callbackAddFavorite):
		b.toggleFavorite(ctx, chatID, query.From.ID, strings.TrimPrefix(data, callbackAddFavorite))
	case strings.HasPrefix(data, callbackRemoveFavorite):
		b.toggleFavorite(ctx, chatID, query.From.ID, strings.TrimPrefix(data, callbackRemoveFavorite))
	}
}

// toggleFavorite flips the membership and confirms the actual outcome.
// Both button kinds funnel through the same toggle, so a stale button still
// leaves the favorite set consistent.
func (b *Bot) toggleFavorite(ctx context.Context, chatID, userID int64, recipeID string) {
	added, err := b.db.ToggleFavorite(ctx, userID, recipeID)
	if err != nil {
		b.logger.Error("Failed to toggle favorite",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("recipe_id", recipeID),
		)
		b.sendText(chatID, "Lo siento, hubo un error al actualizar tus favoritos.")
		return
	}

	if added {
		b.sendText(chatID, "Receta añadida a tus favoritos.")
	} else {
		b.sendText(chatID, "Receta eliminada de tus favoritos.")
	}
}
