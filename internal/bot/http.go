package bot

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"chef/internal/models"
	"chef/internal/storage"
)

// HTTPServer exposes the recipe collection over a small JSON API. Writes are
// authenticated with Telegram Mini App init data and restricted to the admin.
type HTTPServer struct {
	bot         *Bot
	webhookMode bool // If false (polling mode), skip authentication for easier local dev
}

// NewHTTPServer creates a new HTTP server for the recipe API
func NewHTTPServer(bot *Bot, webhookMode bool) *HTTPServer {
	return &HTTPServer{
		bot:         bot,
		webhookMode: webhookMode,
	}
}

// RegisterRoutes registers API routes on the provided mux
func (hs *HTTPServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/recipes", hs.handleRecipes)
	mux.HandleFunc("/api/faq", hs.handleFAQ)
}

// validateTelegramInitData validates the Telegram Mini App initData and
// returns the authenticated user id
func (hs *HTTPServer) validateTelegramInitData(initData string) (int64, error) {
	if initData == "" {
		return 0, fmt.Errorf("missing initData")
	}

	values, err := url.ParseQuery(initData)
	if err != nil {
		return 0, fmt.Errorf("invalid initData format: %w", err)
	}

	hash := values.Get("hash")
	if hash == "" {
		return 0, fmt.Errorf("missing hash in initData")
	}
	values.Del("hash")

	// Create data-check-string
	var keys []string
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var dataCheckString strings.Builder
	for i, k := range keys {
		if i > 0 {
			dataCheckString.WriteByte('\n')
		}
		dataCheckString.WriteString(k)
		dataCheckString.WriteByte('=')
		dataCheckString.WriteString(values.Get(k))
	}

	// Create secret key
	secretKey := hmac.New(sha256.New, []byte("WebAppData"))
	secretKey.Write([]byte(hs.bot.Token()))
	secret := secretKey.Sum(nil)

	h := hmac.New(sha256.New, secret)
	h.Write([]byte(dataCheckString.String()))
	calculatedHash := hex.EncodeToString(h.Sum(nil))

	if calculatedHash != hash {
		return 0, fmt.Errorf("invalid hash")
	}

	// Check auth_date (data should be recent, within 24 hours)
	authDateStr := values.Get("auth_date")
	if authDateStr == "" {
		return 0, fmt.Errorf("missing auth_date")
	}

	var authDate int64
	fmt.Sscanf(authDateStr, "%d", &authDate)
	if time.Now().Unix()-authDate > 86400 {
		return 0, fmt.Errorf("initData is too old")
	}

	userStr := values.Get("user")
	if userStr == "" {
		return 0, fmt.Errorf("missing user data")
	}

	var userData struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(userStr), &userData); err != nil {
		return 0, fmt.Errorf("invalid user data: %w", err)
	}

	return userData.ID, nil
}

// adminMiddleware validates Mini App authentication and requires the admin
// user. In polling mode (webhookMode=false), authentication is skipped for
// easier local development.
func (hs *HTTPServer) adminMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !hs.webhookMode {
			hs.bot.logger.Debug("Skipping authentication (polling mode)",
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
			)
			next(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "tma ") {
			hs.bot.logger.Warn("Missing or invalid authorization header")
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}

		userID, err := hs.validateTelegramInitData(strings.TrimPrefix(authHeader, "tma "))
		if err != nil {
			hs.bot.logger.Warn("Failed to validate initData",
				zap.Error(err),
				zap.String("remote_addr", r.RemoteAddr),
			)
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}

		if userID != hs.bot.adminID {
			hs.bot.logger.Warn("Non-admin attempted recipe creation", zap.Int64("user_id", userID))
			http.Error(w, `{"error":"Forbidden"}`, http.StatusForbidden)
			return
		}

		next(w, r)
	}
}

// RecipeResponse is the JSON shape of a recipe
type RecipeResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	Tags         []string `json:"tags"`
}

// CreateRecipeRequest is the request body for creating a recipe
type CreateRecipeRequest struct {
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	Tags         []string `json:"tags"`
}

// handleRecipes lists (GET, optional ?q= search) or creates (POST) recipes
func (hs *HTTPServer) handleRecipes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		hs.listRecipes(w, r)
	case http.MethodPost:
		hs.adminMiddleware(hs.createRecipe)(w, r)
	default:
		http.Error(w, `{"error":"Method not allowed"}`, http.StatusMethodNotAllowed)
	}
}

func (hs *HTTPServer) listRecipes(w http.ResponseWriter, r *http.Request) {
	var (
		recipes []models.Recipe
		err     error
	)

	if term := strings.TrimSpace(r.URL.Query().Get("q")); term != "" {
		recipes, err = hs.bot.db.SearchRecipes(r.Context(), term)
	} else {
		recipes, err = hs.bot.db.ListRecipes(r.Context())
	}
	if err != nil {
		hs.bot.logger.Error("Failed to list recipes", zap.Error(err))
		http.Error(w, `{"error":"Failed to fetch recipes"}`, http.StatusInternalServerError)
		return
	}

	out := make([]RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		out = append(out, RecipeResponse{
			ID:           recipe.ID,
			Name:         recipe.Name,
			Ingredients:  recipe.Ingredients,
			Instructions: recipe.Instructions,
			Tags:         recipe.Tags,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (hs *HTTPServer) createRecipe(w http.ResponseWriter, r *http.Request) {
	var req CreateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		hs.bot.logger.Warn("Failed to decode request body", zap.Error(err))
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	id, err := hs.bot.db.CreateRecipe(r.Context(), models.Recipe{
		Name:         req.Name,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		Tags:         req.Tags,
	})
	if err != nil {
		hs.bot.logger.Warn("Failed to create recipe",
			zap.Error(err),
			zap.String("name", req.Name),
		)
		if errors.Is(err, storage.ErrValidation) {
			http.Error(w, `{"error":"Missing required fields"}`, http.StatusBadRequest)
			return
		}
		http.Error(w, `{"error":"Failed to create recipe"}`, http.StatusInternalServerError)
		return
	}

	hs.bot.logger.Info("Recipe created via API",
		zap.String("id", id),
		zap.String("name", req.Name),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

// handleFAQ returns the most frequently asked questions
func (hs *HTTPServer) handleFAQ(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"Method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	entries, err := hs.bot.db.TopFAQ(r.Context(), 20)
	if err != nil {
		hs.bot.logger.Error("Failed to list FAQ entries", zap.Error(err))
		http.Error(w, `{"error":"Failed to fetch FAQ"}`, http.StatusInternalServerError)
		return
	}

	type faqResponse struct {
		Question   string `json:"question"`
		Answer     string `json:"answer"`
		QueryCount uint64 `json:"query_count"`
	}

	out := make([]faqResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, faqResponse{
			Question:   entry.Question,
			Answer:     entry.Answer,
			QueryCount: entry.QueryCount,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
