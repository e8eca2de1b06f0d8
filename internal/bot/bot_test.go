package bot

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"chef/internal/models"
	"chef/internal/storage/stubs"
)

// Note: We can't easily mock tgbotapi.BotAPI, so tests focus on internal logic
// without actually sending messages to Telegram

const (
	testAdminID = int64(99)
	testUserID  = int64(123)
	testChatID  = int64(456)
)

type stubGenerator struct {
	reply string
}

func (s stubGenerator) Generate(ctx context.Context, question string) string {
	return s.reply
}

func newTestBot(db *stubs.MockDB) *Bot {
	return &Bot{
		api:       nil, // Not needed for internal logic tests
		db:        db,
		generator: stubGenerator{reply: "Añade sal al final."},
		adminID:   testAdminID,
		states:    make(map[int64]*ConversationState),
		logger:    zap.NewNop(),
	}
}

func textMessage(userID, chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}
}

func stageOf(t *testing.T, b *Bot, chatID int64) Stage {
	t.Helper()
	state, ok := b.lookupState(chatID)
	if !ok {
		return StageNone
	}
	return state.Stage
}

func TestBot_AddRecipeConversation(t *testing.T) {
	db := stubs.NewMockDB()
	ctx := context.Background()
	b := newTestBot(db)

	// Greeting shows the menu without starting a dialog
	b.handleMessage(textMessage(testAdminID, testChatID, "Chef!"))
	if got := stageOf(t, b, testChatID); got != StageNone {
		t.Fatalf("Expected no dialog after greeting, got stage %d", got)
	}

	// Admin starts the add-recipe dialog
	b.handleMessage(textMessage(testAdminID, testChatID, "Añadir Receta"))
	if got := stageOf(t, b, testChatID); got != StageAddingName {
		t.Fatalf("Expected StageAddingName, got %d", got)
	}

	b.handleMessage(textMessage(testAdminID, testChatID, "Tarta"))
	if got := stageOf(t, b, testChatID); got != StageAddingIngredients {
		t.Fatalf("Expected StageAddingIngredients, got %d", got)
	}

	b.handleMessage(textMessage(testAdminID, testChatID, "harina, huevo"))
	if got := stageOf(t, b, testChatID); got != StageAddingInstructions {
		t.Fatalf("Expected StageAddingInstructions, got %d", got)
	}

	b.handleMessage(textMessage(testAdminID, testChatID, "Hornear 30 min"))
	if got := stageOf(t, b, testChatID); got != StageNone {
		t.Fatalf("Expected dialog to complete, got stage %d", got)
	}

	// Verify the recipe was persisted with the collected fields
	recipes, err := db.ListRecipes(ctx)
	if err != nil {
		t.Fatalf("Failed to list recipes: %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("Expected 1 recipe, got %d", len(recipes))
	}
	recipe := recipes[0]
	if recipe.Name != "Tarta" {
		t.Errorf("Expected name 'Tarta', got %q", recipe.Name)
	}
	if len(recipe.Ingredients) != 2 || recipe.Ingredients[0] != "harina" || recipe.Ingredients[1] != "huevo" {
		t.Errorf("Unexpected ingredients: %v", recipe.Ingredients)
	}
	if recipe.Instructions != "Hornear 30 min" {
		t.Errorf("Unexpected instructions: %q", recipe.Instructions)
	}
}

func TestBot_AddRecipeRequiresAdmin(t *testing.T) {
	db := stubs.NewMockDB()
	ctx := context.Background()
	b := newTestBot(db)

	b.handleMessage(textMessage(testUserID, testChatID, "Añadir Receta"))

	if got := stageOf(t, b, testChatID); got != StageNone {
		t.Errorf("Expected no state transition for non-admin, got stage %d", got)
	}

	// Follow-up text must not be treated as a recipe name
	b.handleMessage(textMessage(testUserID, testChatID, "Tarta"))
	recipes, err := db.ListRecipes(ctx)
	if err != nil {
		t.Fatalf("Failed to list recipes: %v", err)
	}
	if len(recipes) != 0 {
		t.Errorf("Expected no recipes, got %d", len(recipes))
	}
}

func TestBot_EmptyInputReprompts(t *testing.T) {
	db := stubs.NewMockDB()
	b := newTestBot(db)

	b.handleMessage(textMessage(testUserID, testChatID, "Buscar Recetas"))
	if got := stageOf(t, b, testChatID); got != StageSearching {
		t.Fatalf("Expected StageSearching, got %d", got)
	}

	// Whitespace-only input never reaches the store query and keeps the stage
	b.handleMessage(textMessage(testUserID, testChatID, "   "))
	if got := stageOf(t, b, testChatID); got != StageSearching {
		t.Errorf("Expected stage to stay StageSearching, got %d", got)
	}
}

func TestBot_SearchConversation(t *testing.T) {
	db := stubs.NewMockDB()
	ctx := context.Background()
	b := newTestBot(db)

	_, err := db.CreateRecipe(ctx, models.Recipe{
		Name:         "Tortilla",
		Ingredients:  []string{"huevo", "patata"},
		Instructions: "Bate y fríe",
	})
	if err != nil {
		t.Fatalf("Failed to create recipe: %v", err)
	}

	b.handleMessage(textMessage(testUserID, testChatID, "Buscar Recetas"))
	b.handleMessage(textMessage(testUserID, testChatID, "patata"))

	if got := stageOf(t, b, testChatID); got != StageNone {
		t.Errorf("Expected search dialog to complete, got stage %d", got)
	}

	found, err := db.SearchRecipes(ctx, "patata")
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(found) != 1 || found[0].Name != "Tortilla" {
		t.Errorf("Expected Tortilla for 'patata', got %v", found)
	}

	missing, err := db.SearchRecipes(ctx, "zanahoria")
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("Expected no results for 'zanahoria', got %v", missing)
	}
}

func TestBot_CommandKeywordMidDialogIsConsumedAsInput(t *testing.T) {
	db := stubs.NewMockDB()
	b := newTestBot(db)

	b.handleMessage(textMessage(testAdminID, testChatID, "Añadir Receta"))

	// A menu keyword while mid-dialog is dialog input, not a new command
	b.handleMessage(textMessage(testAdminID, testChatID, "Buscar Recetas"))

	state, ok := b.lookupState(testChatID)
	if !ok {
		t.Fatal("Expected dialog to continue")
	}
	if state.Stage != StageAddingIngredients {
		t.Errorf("Expected StageAddingIngredients, got %d", state.Stage)
	}
	if state.RecipeName != "Buscar Recetas" {
		t.Errorf("Expected keyword captured as recipe name, got %q", state.RecipeName)
	}
}

func TestBot_CancelAbortsDialog(t *testing.T) {
	db := stubs.NewMockDB()
	b := newTestBot(db)

	b.handleMessage(textMessage(testAdminID, testChatID, "Añadir Receta"))
	b.handleMessage(textMessage(testAdminID, testChatID, "Tarta"))
	b.handleMessage(textMessage(testAdminID, testChatID, "Cancelar"))

	if got := stageOf(t, b, testChatID); got != StageNone {
		t.Errorf("Expected cancel to clear the dialog, got stage %d", got)
	}
}

func TestBot_PersistenceFailureResetsDialog(t *testing.T) {
	db := stubs.NewMockDB()
	ctx := context.Background()
	b := newTestBot(db)

	b.handleMessage(textMessage(testAdminID, testChatID, "Añadir Receta"))
	b.handleMessage(textMessage(testAdminID, testChatID, "Tarta"))
	b.handleMessage(textMessage(testAdminID, testChatID, "harina, huevo"))

	db.FailWrites = true
	b.handleMessage(textMessage(testAdminID, testChatID, "Hornear 30 min"))
	db.FailWrites = false

	if got := stageOf(t, b, testChatID); got != StageNone {
		t.Errorf("Expected dialog reset after persistence failure, got stage %d", got)
	}

	recipes, err := db.ListRecipes(ctx)
	if err != nil {
		t.Fatalf("Failed to list recipes: %v", err)
	}
	if len(recipes) != 0 {
		t.Errorf("Expected partial input to be discarded, got %d recipes", len(recipes))
	}
}

func TestBot_AskConversationRecordsFAQ(t *testing.T) {
	db := stubs.NewMockDB()
	ctx := context.Background()
	b := newTestBot(db)

	b.handleMessage(textMessage(testUserID, testChatID, "Preguntar sobre Cocina"))
	if got := stageOf(t, b, testChatID); got != StageAsking {
		t.Fatalf("Expected StageAsking, got %d", got)
	}

	b.handleMessage(textMessage(testUserID, testChatID, "¿Cuándo se añade la sal?"))
	if got := stageOf(t, b, testChatID); got != StageNone {
		t.Errorf("Expected ask dialog to complete, got stage %d", got)
	}

	entries, err := db.TopFAQ(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to list FAQ: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 FAQ entry, got %d", len(entries))
	}
	if entries[0].Answer != "Añade sal al final." {
		t.Errorf("Expected generated answer cached, got %q", entries[0].Answer)
	}
	if entries[0].QueryCount != 1 {
		t.Errorf("Expected query count 1, got %d", entries[0].QueryCount)
	}
}

func TestBot_SingleDialogPerChat(t *testing.T) {
	db := stubs.NewMockDB()
	b := newTestBot(db)

	b.handleMessage(textMessage(testAdminID, testChatID, "Añadir Receta"))
	otherChat := int64(789)
	b.handleMessage(textMessage(testUserID, otherChat, "Buscar Recetas"))

	if got := stageOf(t, b, testChatID); got != StageAddingName {
		t.Errorf("Expected first chat in StageAddingName, got %d", got)
	}
	if got := stageOf(t, b, otherChat); got != StageSearching {
		t.Errorf("Expected second chat in StageSearching, got %d", got)
	}

	b.statesMu.Lock()
	if len(b.states) != 2 {
		t.Errorf("Expected one state entry per chat, got %d", len(b.states))
	}
	b.statesMu.Unlock()
}

func TestBot_FavoriteCallbackToggle(t *testing.T) {
	db := stubs.NewMockDB()
	ctx := context.Background()
	b := newTestBot(db)

	id, err := db.CreateRecipe(ctx, models.Recipe{
		Name:         "Tortilla",
		Ingredients:  []string{"huevo", "patata"},
		Instructions: "Bate y fríe",
	})
	if err != nil {
		t.Fatalf("Failed to create recipe: %v", err)
	}

	query := &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: testUserID},
		Message: textMessage(testUserID, testChatID, ""),
		Data:    callbackAddFavorite + id,
	}
	b.handleCallbackQuery(query)

	fav, err := db.IsFavorite(ctx, testUserID, id)
	if err != nil {
		t.Fatalf("Failed to check favorite: %v", err)
	}
	if !fav {
		t.Error("Expected recipe to be a favorite after add callback")
	}

	query.Data = callbackRemoveFavorite + id
	b.handleCallbackQuery(query)

	fav, err = db.IsFavorite(ctx, testUserID, id)
	if err != nil {
		t.Fatalf("Failed to check favorite: %v", err)
	}
	if fav {
		t.Error("Expected recipe removed from favorites after remove callback")
	}
}

func TestBot_UnknownCommandKeepsStageNone(t *testing.T) {
	db := stubs.NewMockDB()
	b := newTestBot(db)

	b.handleMessage(textMessage(testUserID, testChatID, "hola"))

	if got := stageOf(t, b, testChatID); got != StageNone {
		t.Errorf("Expected StageNone after unknown command, got %d", got)
	}
}
