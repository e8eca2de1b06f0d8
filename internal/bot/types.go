package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"chef/internal/storage"
)

// Stage identifies the current step of a multi-message dialog for one chat
type Stage int

const (
	StageNone Stage = iota
	StageSearching
	StageAsking
	StageAddingName
	StageAddingIngredients
	StageAddingInstructions
)

// AnswerGenerator produces an answer for a cooking question. Implementations
// must not fail: errors are converted to a user-visible fallback string.
type AnswerGenerator interface {
	Generate(ctx context.Context, question string) string
}

// Bot represents the Telegram bot wrapper
type Bot struct {
	api       *tgbotapi.BotAPI
	db        storage.Storage
	generator AnswerGenerator
	adminID   int64
	states    map[int64]*ConversationState
	statesMu  sync.Mutex
	logger    *zap.Logger
}

// ConversationState tracks the pending dialog of one chat. At most one
// dialog is active per chat; completed dialogs are removed from the map.
type ConversationState struct {
	Stage Stage

	// Partial recipe collected during the add-recipe dialog
	RecipeName        string
	RecipeIngredients []string
}

// lookupState returns the chat's pending conversation, if any
func (b *Bot) lookupState(chatID int64) (*ConversationState, bool) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	state, ok := b.states[chatID]
	return state, ok
}

// startDialog replaces any pending conversation for the chat
func (b *Bot) startDialog(chatID int64, stage Stage) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	b.states[chatID] = &ConversationState{Stage: stage}
}

// clearState ends the chat's conversation
func (b *Bot) clearState(chatID int64) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	delete(b.states, chatID)
}
