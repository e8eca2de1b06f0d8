package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"chef/internal/models"
)

// sendMessage sends a chattable through the API, logging failures
func (b *Bot) sendMessage(msg tgbotapi.Chattable) {
	if b.api == nil {
		return // For testing
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Error(err))
	}
}

// sendText sends a plain text message
func (b *Bot) sendText(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

// sendRecipeList sends one message per recipe, capped to keep a large
// collection from flooding the chat
func (b *Bot) sendRecipeList(ctx context.Context, chatID, userID int64, recipes []models.Recipe) {
	shown := recipes
	if len(shown) > maxRecipeMessages {
		shown = shown[:maxRecipeMessages]
	}

	for _, recipe := range shown {
		b.sendRecipe(ctx, chatID, userID, recipe)
	}

	if len(recipes) > maxRecipeMessages {
		b.sendText(chatID, fmt.Sprintf("Mostrando %d de %d recetas. Usa la búsqueda para afinar los resultados.",
			maxRecipeMessages, len(recipes)))
	}
}

// sendRecipe sends a single recipe with a favorite toggle button
func (b *Bot) sendRecipe(ctx context.Context, chatID, userID int64, recipe models.Recipe) {
	isFav, err := b.db.IsFavorite(ctx, userID, recipe.ID)
	if err != nil {
		b.logger.Error("Failed to check favorite status",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("recipe_id", recipe.ID),
		)
		// Fall through with isFav=false: the recipe is still shown
	}

	msg := tgbotapi.NewMessage(chatID, formatRecipe(recipe))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = favoriteKeyboard(recipe.ID, isFav)
	b.sendMessage(msg)
}

// formatRecipe renders a recipe as a Markdown chat message
func formatRecipe(recipe models.Recipe) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s*\n", recipe.Name)
	fmt.Fprintf(&sb, "Ingredientes: %s\n", strings.Join(recipe.Ingredients, ", "))
	fmt.Fprintf(&sb, "Instrucciones: %s", recipe.Instructions)
	if len(recipe.Tags) > 0 {
		fmt.Fprintf(&sb, "\nEtiquetas: %s", strings.Join(recipe.Tags, ", "))
	}
	return sb.String()
}

// favoriteKeyboard builds the add/remove favorite inline button for a recipe
func favoriteKeyboard(recipeID string, isFavorite bool) tgbotapi.InlineKeyboardMarkup {
	label := "Añadir a favoritos"
	data := callbackAddFavorite + recipeID
	if isFavorite {
		label = "Eliminar de favoritos"
		data = callbackRemoveFavorite + recipeID
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, data),
		),
	)
}

// userIDOf returns the sender id, falling back to the chat id when the
// message carries no sender (channel posts)
func userIDOf(message *tgbotapi.Message) int64 {
	if message.From != nil {
		return message.From.ID
	}
	return message.Chat.ID
}
