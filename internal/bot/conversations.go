package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"chef/internal/models"
)

// handleConversation advances the chat's pending dialog with the message
// text. Empty or whitespace-only input re-prompts without changing stage.
func (b *Bot) handleConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	chatID := message.Chat.ID
	input := strings.TrimSpace(message.Text)

	if input == "" {
		b.sendText(chatID, stagePrompt(state.Stage))
		return
	}

	switch state.Stage {
	case StageSearching:
		b.runSearch(ctx, chatID, userIDOf(message), strings.ToLower(input))
		b.clearState(chatID)

	case StageAsking:
		b.answerQuestion(ctx, chatID, input)
		b.clearState(chatID)

	case StageAddingName:
		state.RecipeName = input
		state.Stage = StageAddingIngredients
		b.sendText(chatID, stagePrompt(StageAddingIngredients))

	case StageAddingIngredients:
		ingredients := splitIngredients(input)
		if len(ingredients) == 0 {
			b.sendText(chatID, stagePrompt(StageAddingIngredients))
			return
		}
		state.RecipeIngredients = ingredients
		state.Stage = StageAddingInstructions
		b.sendText(chatID, stagePrompt(StageAddingInstructions))

	case StageAddingInstructions:
		b.finishAddRecipe(ctx, chatID, state, input)
		b.clearState(chatID)

	default:
		b.clearState(chatID)
	}
}

// answerQuestion runs the terminal step of the ask dialog: generate an
// answer, cache the question, then ask for feedback
func (b *Bot) answerQuestion(ctx context.Context, chatID int64, question string) {
	response := b.generator.Generate(ctx, question)
	b.sendText(chatID, response)

	if err := b.db.RecordFAQ(ctx, question, response); err != nil {
		// The user already has the answer, so a cache failure is only logged
		b.logger.Error("Failed to record FAQ entry", zap.Error(err))
	}

	b.sendFeedbackPrompt(chatID)
}

// finishAddRecipe persists the accumulated recipe. Persistence failure
// reports an error and discards the partial input.
func (b *Bot) finishAddRecipe(ctx context.Context, chatID int64, state *ConversationState, instructions string) {
	recipe := models.Recipe{
		Name:         state.RecipeName,
		Ingredients:  state.RecipeIngredients,
		Instructions: instructions,
	}

	if _, err := b.db.CreateRecipe(ctx, recipe); err != nil {
		b.logger.Error("Failed to save recipe", zap.Error(err), zap.String("name", recipe.Name))
		b.sendText(chatID, "Error al guardar la receta.")
		return
	}

	b.sendText(chatID, fmt.Sprintf("Receta %q guardada correctamente.", recipe.Name))
}

// sendFeedbackPrompt asks whether the generated answer was useful
func (b *Bot) sendFeedbackPrompt(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "¿Te ha sido útil esta respuesta?")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Sí", "feedback_yes"),
			tgbotapi.NewInlineKeyboardButtonData("No", "feedback_no"),
		),
	)
	b.sendMessage(msg)
}

// stagePrompt returns the question the user is expected to answer at a stage
func stagePrompt(stage Stage) string {
	switch stage {
	case StageSearching:
		return "Escribe el nombre, ingrediente o etiqueta para buscar recetas:"
	case StageAsking:
		return "Escribe tu pregunta sobre cocina:"
	case StageAddingName:
		return "¿Cómo se llama la receta?"
	case StageAddingIngredients:
		return "¿Cuáles son los ingredientes? (Separados por comas)"
	case StageAddingInstructions:
		return "Escribe las instrucciones:"
	}
	return ""
}

// splitIngredients parses a comma-separated ingredient list, dropping empty
// entries
func splitIngredients(input string) []string {
	var ingredients []string
	for _, part := range strings.Split(input, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ingredients = append(ingredients, part)
		}
	}
	return ingredients
}
