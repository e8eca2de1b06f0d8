package storage

import (
	"context"
	"errors"

	"chef/internal/models"
)

// ErrValidation is returned when a recipe is missing a required field
var ErrValidation = errors.New("recipe is missing a required field")

// Storage defines the interface for data storage operations
type Storage interface {
	// Recipe operations
	CreateRecipe(ctx context.Context, recipe models.Recipe) (string, error)
	GetRecipe(ctx context.Context, id string) (models.Recipe, error)
	ListRecipes(ctx context.Context) ([]models.Recipe, error)

	// SearchRecipes returns recipes whose name, any ingredient or any tag
	// contains the term, matched case-insensitively
	SearchRecipes(ctx context.Context, term string) ([]models.Recipe, error)

	// Favorite operations

	// ToggleFavorite adds the recipe to the user's favorites if absent and
	// removes it if present. The user record is created lazily on first use.
	// Returns true when the recipe was added, false when it was removed.
	ToggleFavorite(ctx context.Context, userID int64, recipeID string) (bool, error)
	IsFavorite(ctx context.Context, userID int64, recipeID string) (bool, error)
	ListFavorites(ctx context.Context, userID int64) ([]models.Recipe, error)

	// FAQ operations

	// RecordFAQ stores a question/answer pair. Questions are matched
	// case-insensitively: a repeated question increments its query counter
	// instead of inserting a duplicate row.
	RecordFAQ(ctx context.Context, question, answer string) error
	TopFAQ(ctx context.Context, limit int) ([]models.FAQEntry, error)

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}

// ValidateRecipe checks the required recipe fields before persistence
func ValidateRecipe(r models.Recipe) error {
	if r.Name == "" || r.Instructions == "" || len(r.Ingredients) == 0 {
		return ErrValidation
	}
	for _, ing := range r.Ingredients {
		if ing == "" {
			return ErrValidation
		}
	}
	return nil
}
