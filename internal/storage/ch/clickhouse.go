package ch

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"chef/internal/models"
	"chef/internal/storage"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
)

type ClickHouseDB struct {
	conn clickhouse.Conn
}

// NewClickHouseDB creates a new ClickHouse database connection
func NewClickHouseDB(host string, port int, database, user, password string, useTLS bool) (*ClickHouseDB, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	options := &clickhouse.Options{
		Addr:     []string{addr},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	}

	if useTLS {
		options.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Initialize is a no-op - tables are managed via migrations
func (db *ClickHouseDB) Initialize(ctx context.Context) error {
	// Tables are managed via migrations (see migrations/ directory)
	return nil
}

// CreateRecipe validates and stores a new recipe, returning its generated id
func (db *ClickHouseDB) CreateRecipe(ctx context.Context, recipe models.Recipe) (string, error) {
	if err := storage.ValidateRecipe(recipe); err != nil {
		return "", err
	}

	id := uuid.NewString()
	err := db.conn.Exec(ctx,
		`INSERT INTO recipes (id, name, ingredients, instructions, tags, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, recipe.Name, recipe.Ingredients, recipe.Instructions, tagsOrEmpty(recipe.Tags), time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to create recipe: %w", err)
	}
	return id, nil
}

// GetRecipe returns a single recipe by id
func (db *ClickHouseDB) GetRecipe(ctx context.Context, id string) (models.Recipe, error) {
	row := db.conn.QueryRow(ctx,
		`SELECT id, name, ingredients, instructions, tags FROM recipes WHERE id = ?`, id)

	var recipe models.Recipe
	if err := row.Scan(&recipe.ID, &recipe.Name, &recipe.Ingredients, &recipe.Instructions, &recipe.Tags); err != nil {
		return models.Recipe{}, fmt.Errorf("failed to get recipe %s: %w", id, err)
	}
	return recipe, nil
}

// ListRecipes returns every recipe ordered by name
func (db *ClickHouseDB) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	rows, err := db.conn.Query(ctx,
		`SELECT id, name, ingredients, instructions, tags FROM recipes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	return scanRecipes(rows)
}

// SearchRecipes matches the term case-insensitively against recipe names,
// ingredients and tags
func (db *ClickHouseDB) SearchRecipes(ctx context.Context, term string) ([]models.Recipe, error) {
	rows, err := db.conn.Query(ctx, `
		SELECT id, name, ingredients, instructions, tags
		FROM recipes
		WHERE positionCaseInsensitiveUTF8(name, ?) > 0
		   OR arrayExists(x -> positionCaseInsensitiveUTF8(x, ?) > 0, ingredients)
		   OR arrayExists(x -> positionCaseInsensitiveUTF8(x, ?) > 0, tags)
		ORDER BY name`,
		term, term, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}
	defer rows.Close()

	return scanRecipes(rows)
}

// ToggleFavorite flips the favorite membership for (userID, recipeID).
// Membership rows use ReplacingMergeTree semantics: the newest row per key
// wins, so a toggle is a read of the current state plus one insert.
func (db *ClickHouseDB) ToggleFavorite(ctx context.Context, userID int64, recipeID string) (bool, error) {
	current, err := db.IsFavorite(ctx, userID, recipeID)
	if err != nil {
		return false, err
	}

	err = db.conn.Exec(ctx,
		`INSERT INTO favorites (user_id, recipe_id, is_active, updated_at) VALUES (?, ?, ?, ?)`,
		userID, recipeID, !current, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	return !current, nil
}

// IsFavorite reports whether the recipe is in the user's favorites.
// A user with no favorite rows at all reads as false.
func (db *ClickHouseDB) IsFavorite(ctx context.Context, userID int64, recipeID string) (bool, error) {
	rows, err := db.conn.Query(ctx,
		`SELECT is_active FROM favorites FINAL WHERE user_id = ? AND recipe_id = ?`,
		userID, recipeID)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	defer rows.Close()

	var active bool
	for rows.Next() {
		if err := rows.Scan(&active); err != nil {
			return false, fmt.Errorf("failed to scan favorite: %w", err)
		}
	}
	return active, nil
}

// ListFavorites returns the user's favorite recipes ordered by name
func (db *ClickHouseDB) ListFavorites(ctx context.Context, userID int64) ([]models.Recipe, error) {
	rows, err := db.conn.Query(ctx, `
		SELECT r.id, r.name, r.ingredients, r.instructions, r.tags
		FROM recipes AS r
		INNER JOIN (
			SELECT recipe_id FROM favorites FINAL WHERE user_id = ? AND is_active
		) AS f ON r.id = f.recipe_id
		ORDER BY r.name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	return scanRecipes(rows)
}

// RecordFAQ upserts a question/answer pair keyed on the lowercased question.
// A repeated question replaces the row with an incremented query counter.
func (db *ClickHouseDB) RecordFAQ(ctx context.Context, question, answer string) error {
	key := strings.ToLower(strings.TrimSpace(question))

	rows, err := db.conn.Query(ctx,
		`SELECT query_count FROM faq FINAL WHERE question_key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to look up FAQ entry: %w", err)
	}
	var count uint64
	for rows.Next() {
		if err := rows.Scan(&count); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan FAQ entry: %w", err)
		}
	}
	rows.Close()

	err = db.conn.Exec(ctx,
		`INSERT INTO faq (question_key, question, answer, query_count, updated_at) VALUES (?, ?, ?, ?, ?)`,
		key, strings.TrimSpace(question), answer, count+1, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record FAQ entry: %w", err)
	}
	return nil
}

// TopFAQ returns the most frequently asked questions
func (db *ClickHouseDB) TopFAQ(ctx context.Context, limit int) ([]models.FAQEntry, error) {
	rows, err := db.conn.Query(ctx,
		`SELECT question, answer, query_count FROM faq FINAL ORDER BY query_count DESC, question_key LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list FAQ entries: %w", err)
	}
	defer rows.Close()

	var entries []models.FAQEntry
	for rows.Next() {
		var entry models.FAQEntry
		if err := rows.Scan(&entry.Question, &entry.Answer, &entry.QueryCount); err != nil {
			return nil, fmt.Errorf("failed to scan FAQ entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Close closes the database connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

func scanRecipes(rows interface {
	Next() bool
	Scan(dest ...any) error
}) ([]models.Recipe, error) {
	var recipes []models.Recipe
	for rows.Next() {
		var recipe models.Recipe
		if err := rows.Scan(&recipe.ID, &recipe.Name, &recipe.Ingredients, &recipe.Instructions, &recipe.Tags); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

// tagsOrEmpty keeps tag inserts non-nil so ClickHouse stores an empty array
func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
