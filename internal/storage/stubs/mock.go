package stubs

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"chef/internal/models"
	"chef/internal/storage"

	"github.com/google/uuid"
)

// MockDB is an in-memory implementation of the Storage interface for testing
type MockDB struct {
	mu        sync.RWMutex
	recipes   map[string]models.Recipe
	favorites map[int64]map[string]bool
	faq       map[string]models.FAQEntry

	// FailWrites makes every mutating call return an error, used to test
	// dialog abort behavior on persistence failures
	FailWrites bool
}

// NewMockDB creates a new mock database
func NewMockDB() *MockDB {
	return &MockDB{
		recipes:   make(map[string]models.Recipe),
		favorites: make(map[int64]map[string]bool),
		faq:       make(map[string]models.FAQEntry),
	}
}

// Initialize does nothing for mock DB
func (m *MockDB) Initialize(ctx context.Context) error {
	return nil
}

// CreateRecipe validates and stores a new recipe
func (m *MockDB) CreateRecipe(ctx context.Context, recipe models.Recipe) (string, error) {
	if err := storage.ValidateRecipe(recipe); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites {
		return "", fmt.Errorf("mock write failure")
	}

	recipe.ID = uuid.NewString()
	if recipe.Tags == nil {
		recipe.Tags = []string{}
	}
	m.recipes[recipe.ID] = recipe
	return recipe.ID, nil
}

// GetRecipe returns a recipe by id
func (m *MockDB) GetRecipe(ctx context.Context, id string) (models.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recipe, ok := m.recipes[id]
	if !ok {
		return models.Recipe{}, fmt.Errorf("recipe %s not found", id)
	}
	return recipe, nil
}

// ListRecipes returns all recipes sorted by name
func (m *MockDB) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var recipes []models.Recipe
	for _, recipe := range m.recipes {
		recipes = append(recipes, recipe)
	}
	sortRecipes(recipes)
	return recipes, nil
}

// SearchRecipes matches the term case-insensitively against names,
// ingredients and tags
func (m *MockDB) SearchRecipes(ctx context.Context, term string) ([]models.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(term)

	var recipes []models.Recipe
	for _, recipe := range m.recipes {
		if recipeMatches(recipe, needle) {
			recipes = append(recipes, recipe)
		}
	}
	sortRecipes(recipes)
	return recipes, nil
}

// ToggleFavorite flips the favorite membership, creating the user entry
// lazily on first use
func (m *MockDB) ToggleFavorite(ctx context.Context, userID int64, recipeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites {
		return false, fmt.Errorf("mock write failure")
	}

	favs, ok := m.favorites[userID]
	if !ok {
		favs = make(map[string]bool)
		m.favorites[userID] = favs
	}

	if favs[recipeID] {
		delete(favs, recipeID)
		return false, nil
	}
	favs[recipeID] = true
	return true, nil
}

// IsFavorite treats a missing user record as an empty favorite set
func (m *MockDB) IsFavorite(ctx context.Context, userID int64, recipeID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.favorites[userID][recipeID], nil
}

// ListFavorites returns the user's favorite recipes sorted by name
func (m *MockDB) ListFavorites(ctx context.Context, userID int64) ([]models.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var recipes []models.Recipe
	for id := range m.favorites[userID] {
		if recipe, ok := m.recipes[id]; ok {
			recipes = append(recipes, recipe)
		}
	}
	sortRecipes(recipes)
	return recipes, nil
}

// RecordFAQ upserts a question/answer pair keyed on the lowercased question
func (m *MockDB) RecordFAQ(ctx context.Context, question, answer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites {
		return fmt.Errorf("mock write failure")
	}

	key := strings.ToLower(strings.TrimSpace(question))
	entry, ok := m.faq[key]
	if !ok {
		m.faq[key] = models.FAQEntry{
			Question:   strings.TrimSpace(question),
			Answer:     answer,
			QueryCount: 1,
		}
		return nil
	}

	entry.Answer = answer
	entry.QueryCount++
	m.faq[key] = entry
	return nil
}

// TopFAQ returns entries ordered by query count descending
func (m *MockDB) TopFAQ(ctx context.Context, limit int) ([]models.FAQEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var entries []models.FAQEntry
	for _, entry := range m.faq {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].QueryCount != entries[j].QueryCount {
			return entries[i].QueryCount > entries[j].QueryCount
		}
		return entries[i].Question < entries[j].Question
	})

	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

// Close does nothing for mock DB
func (m *MockDB) Close() error {
	return nil
}

func recipeMatches(recipe models.Recipe, needle string) bool {
	if strings.Contains(strings.ToLower(recipe.Name), needle) {
		return true
	}
	for _, ing := range recipe.Ingredients {
		if strings.Contains(strings.ToLower(ing), needle) {
			return true
		}
	}
	for _, tag := range recipe.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func sortRecipes(recipes []models.Recipe) {
	sort.Slice(recipes, func(i, j int) bool {
		return recipes[i].Name < recipes[j].Name
	})
}
