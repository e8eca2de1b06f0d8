package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// maxRecipeMessages caps how many recipes a single listing or search sends,
// one message per recipe
const maxRecipeMessages = 10

// handleMenu shows the main menu as a reply keyboard
func (b *Bot) handleMenu(message *tgbotapi.Message) {
	msg := tgbotapi.NewMessage(message.Chat.ID, "Kaixo sukaldari! ¿En qué te puedo ayudar?")

	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Buscar Recetas")),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Añadir Receta")),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Preguntar sobre Cocina")),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Ver recetas favoritas")),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Ver todas las recetas")),
	)
	keyboard.OneTimeKeyboard = true
	msg.ReplyMarkup = keyboard

	b.sendMessage(msg)
}

// handleSearchStart initiates the search dialog
func (b *Bot) handleSearchStart(message *tgbotapi.Message) {
	b.startDialog(message.Chat.ID, StageSearching)
	b.sendText(message.Chat.ID, "Escribe el nombre, ingrediente o etiqueta para buscar recetas:")
}

// handleAddRecipeStart initiates the add-recipe dialog. Only the configured
// admin may add recipes; a denied attempt performs no state transition.
func (b *Bot) handleAddRecipeStart(message *tgbotapi.Message) {
	if message.From == nil || message.From.ID != b.adminID {
		b.logger.Warn("Unauthorized add-recipe attempt",
			zap.Int64("chat_id", message.Chat.ID),
		)
		b.sendText(message.Chat.ID, "No tienes permisos para agregar recetas.")
		return
	}

	b.startDialog(message.Chat.ID, StageAddingName)
	b.sendText(message.Chat.ID, "¿Cómo se llama la receta?")
}

// handleAskStart initiates the cooking-question dialog
func (b *Bot) handleAskStart(message *tgbotapi.Message) {
	b.startDialog(message.Chat.ID, StageAsking)
	b.sendText(message.Chat.ID, "Escribe tu pregunta sobre cocina:")
}

// handleListAll sends every recipe, one message per recipe with a favorite
// toggle button
func (b *Bot) handleListAll(ctx context.Context, message *tgbotapi.Message) {
	recipes, err := b.db.ListRecipes(ctx)
	if err != nil {
		b.logger.Error("Failed to list recipes", zap.Error(err))
		b.sendText(message.Chat.ID, "Lo siento, no pude obtener las recetas en este momento.")
		return
	}

	if len(recipes) == 0 {
		b.sendText(message.Chat.ID, "No hay recetas disponibles.")
		return
	}

	b.sendRecipeList(ctx, message.Chat.ID, userIDOf(message), recipes)
}

// handleListFavorites sends the user's favorite recipes
func (b *Bot) handleListFavorites(ctx context.Context, message *tgbotapi.Message) {
	userID := userIDOf(message)

	recipes, err := b.db.ListFavorites(ctx, userID)
	if err != nil {
		b.logger.Error("Failed to list favorites", zap.Error(err), zap.Int64("user_id", userID))
		b.sendText(message.Chat.ID, "Lo siento, no pude obtener tus recetas favoritas.")
		return
	}

	if len(recipes) == 0 {
		b.sendText(message.Chat.ID, "No tienes recetas favoritas guardadas.")
		return
	}

	b.sendRecipeList(ctx, message.Chat.ID, userID, recipes)
}

// runSearch executes a search dialog's terminal step
func (b *Bot) runSearch(ctx context.Context, chatID, userID int64, term string) {
	recipes, err := b.db.SearchRecipes(ctx, term)
	if err != nil {
		b.logger.Error("Failed to search recipes", zap.Error(err), zap.String("term", term))
		b.sendText(chatID, "Lo siento, hubo un error al buscar recetas.")
		return
	}

	if len(recipes) == 0 {
		b.sendText(chatID, fmt.Sprintf("No se encontraron recetas para %q.", term))
		return
	}

	b.sendRecipeList(ctx, chatID, userID, recipes)
}
