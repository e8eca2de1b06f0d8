package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Menu keywords, matched against trimmed lowercased message text
const (
	cmdMenu          = "chef!"
	cmdSearch        = "buscar recetas"
	cmdAddRecipe     = "añadir receta"
	cmdListAll       = "ver todas las recetas"
	cmdListFavorites = "ver recetas favoritas"
	cmdAsk           = "preguntar sobre cocina"
	cmdCancel        = "cancelar"
	cmdCancelEN      = "cancel"
)

// handleMessage processes a single message: it resumes the chat's pending
// dialog if one exists, otherwise dispatches on the menu keyword.
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage", zap.Any("panic", r))
			b.sendText(message.Chat.ID, "Ha ocurrido un error al procesar tu mensaje. Inténtalo de nuevo.")
		}
	}()

	chatID := message.Chat.ID
	ctx := context.Background()

	normalized := strings.ToLower(strings.TrimSpace(message.Text))

	// Cancel escapes any pending dialog
	if normalized == cmdCancel || normalized == cmdCancelEN {
		if _, ok := b.lookupState(chatID); ok {
			b.clearState(chatID)
			b.sendText(chatID, "De acuerdo, he cancelado la operación.")
		} else {
			b.sendText(chatID, "No hay ninguna operación en curso.")
		}
		return
	}

	// A pending dialog consumes the text as its next step, even if it looks
	// like a menu keyword
	if state, ok := b.lookupState(chatID); ok {
		b.handleConversation(ctx, message, state)
		return
	}

	switch normalized {
	case cmdMenu:
		b.handleMenu(message)
	case cmdSearch:
		b.handleSearchStart(message)
	case cmdAddRecipe:
		b.handleAddRecipeStart(message)
	case cmdListAll:
		b.handleListAll(ctx, message)
	case cmdListFavorites:
		b.handleListFavorites(ctx, message)
	case cmdAsk:
		b.handleAskStart(message)
	default:
		b.sendText(chatID, "No entiendo ese comando. Por favor, selecciona una opción del menú.")
	}
}
