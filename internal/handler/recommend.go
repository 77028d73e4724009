// internal/handler/recommend.go
package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cardwise/internal/domain"
	"cardwise/internal/limits"
	"cardwise/internal/matcher"
	"cardwise/internal/query"
	"cardwise/internal/recommend"
	"cardwise/internal/storage"

	val "cardwise/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type CombinedStorage interface {
	storage.CardStorage
	storage.PreferenceStorage
}

type RecommendHandler struct {
	store          CombinedStorage
	maxQueryLength int
}

func NewRecommendHandler(store CombinedStorage, maxQueryLength int) *RecommendHandler {
	return &RecommendHandler{store: store, maxQueryLength: maxQueryLength}
}

// Recommend godoc
// @Summary Recommend the best card for a described purchase
// @Tags recommend
// @Accept json
// @Produce json
// @Param request body QueryRequest true "Free-text purchase description"
// @Success 200 {object} domain.RecommendationResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/recommend [post]
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	if result := query.ValidateQuery(req.Query, h.maxQueryLength); result != query.QueryValid {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(result)})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cards, err := h.store.ListActiveCards(c.Request.Context(), userID)
	if err != nil {
		slog.Error("Failed to load cards", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	prefs := h.loadPreferences(c, userID)

	response := recommend.Recommend(req.Query, cards, prefs, time.Now())
	slog.Info("Recommendation served", "user_id", userID, "confidence", response.Confidence)
	c.JSON(http.StatusOK, response)
}

// ParseQuery godoc
// @Summary Parse a free-text query without running a recommendation
// @Param request body QueryRequest true "Query text"
// @Success 200 {object} domain.ParsedQuery
// @Failure 400 {object} map[string]string
// @Router /api/v1/parse [post]
func (h *RecommendHandler) ParseQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	if result := query.ValidateQuery(req.Query, h.maxQueryLength); result != query.QueryValid {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(result)})
		return
	}

	c.JSON(http.StatusOK, query.Parse(req.Query))
}

// RecordSpend godoc
// @Summary Record category spending against a card's limit
// @Param request body RecordSpendRequest true "Spend data"
// @Success 200 {object} domain.Card
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/spend [post]
func (h *RecommendHandler) RecordSpend(c *gin.Context) {
	var req RecordSpendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := domain.Category(req.Category)
	if req.Category == "" {
		// Resolve the category from free text when not given directly.
		resolved, ok := matcher.MatchCategory(req.Query)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category could not be resolved from query"})
			return
		}
		category = resolved
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	card, err := h.store.RecordSpend(c.Request.Context(), userID, req.CardID, category, req.Amount, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, limits.ErrCardNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		case errors.Is(err, limits.ErrCategoryLimitNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "no spending limit configured for category"})
		default:
			slog.Error("RecordSpend failed", "error", err, "user_id", userID, "card_id", req.CardID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		}
		return
	}

	slog.Info("Spend recorded", "user_id", userID, "card_id", req.CardID, "category", category, "amount", req.Amount)
	c.JSON(http.StatusOK, card)
}

// ListCards godoc
// @Summary List the caller's cards
// @Success 200 {array} domain.Card
// @Router /api/v1/cards [get]
func (h *RecommendHandler) ListCards(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cards, err := h.store.ListCards(c.Request.Context(), userID)
	if err != nil {
		slog.Error("ListCards failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	if cards == nil {
		cards = []domain.Card{}
	}
	c.JSON(http.StatusOK, cards)
}

// SaveCard godoc
// @Summary Create or update a card
// @Param request body SaveCardRequest true "Card data"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/v1/cards [post]
func (h *RecommendHandler) SaveCard(c *gin.Context) {
	var req SaveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	card := req.toDomain()
	if err := h.store.SaveCard(c.Request.Context(), userID, card); err != nil {
		slog.Error("SaveCard failed", "error", err, "user_id", userID, "card_id", card.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save card"})
		return
	}

	slog.Info("Card saved", "user_id", userID, "card_id", card.ID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DeleteCard godoc
// @Summary Delete a card
// @Param id path string true "Card id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/cards/{id} [delete]
func (h *RecommendHandler) DeleteCard(c *gin.Context) {
	cardID := c.Param("id")
	if cardID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card id required"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.store.DeleteCard(c.Request.Context(), userID, cardID); err != nil {
		if errors.Is(err, limits.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
			return
		}
		slog.Error("DeleteCard failed", "error", err, "user_id", userID, "card_id", cardID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetPreferences godoc
// @Summary Get the caller's preferences
// @Success 200 {object} domain.UserPreferences
// @Router /api/v1/preferences [get]
func (h *RecommendHandler) GetPreferences(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.loadPreferences(c, userID))
}

// SavePreferences godoc
// @Summary Save the caller's preferences
// @Param request body PreferencesRequest true "Preferences"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/v1/preferences [put]
func (h *RecommendHandler) SavePreferences(c *gin.Context) {
	var req PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	prefs := domain.UserPreferences{
		PreferredPointSystem: domain.PointType(req.PreferredPointSystem),
		AlertThreshold:       req.AlertThreshold,
		Language:             req.Language,
		NotificationsEnabled: req.NotificationsEnabled,
		AutoUpdateEnabled:    req.AutoUpdateEnabled,
	}
	if err := h.store.SavePreferences(c.Request.Context(), userID, prefs); err != nil {
		slog.Error("SavePreferences failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *RecommendHandler) loadPreferences(c *gin.Context, userID int64) domain.UserPreferences {
	prefs, err := h.store.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		slog.Error("Failed to load preferences, using defaults", "error", err, "user_id", userID)
		return domain.DefaultPreferences()
	}
	if prefs == nil {
		return domain.DefaultPreferences()
	}
	return *prefs
}

func currentUserID(c *gin.Context) (int64, bool) {
	userIDVal, ok := c.Get("user_id")
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "user_id missing"})
		return 0, false
	}
	userID, ok := userIDVal.(int64)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "invalid user_id"})
		return 0, false
	}
	return userID, true
}

func validationMessage(result query.ValidationResult) string {
	switch result {
	case query.QueryEmpty:
		return "query must not be empty"
	case query.QueryTooLong:
		return "query is too long"
	default:
		return "invalid query"
	}
}

// === DTO ===

type QueryRequest struct {
	Query string `json:"query"`
}

type RecordSpendRequest struct {
	CardID   string  `json:"card_id" validate:"required,notblank"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Category string  `json:"category" validate:"omitempty,category"`
	Query    string  `json:"query" validate:"required_without=Category"`
}

type SaveCardRequest struct {
	ID               string `json:"id" validate:"required,notblank"`
	Name             string `json:"name" validate:"required,notblank"`
	Issuer           string `json:"issuer"`
	IsActive         bool   `json:"is_active"`
	RewardCategories []struct {
		Category   string  `json:"category" validate:"required,category"`
		Multiplier float64 `json:"multiplier" validate:"required,gt=0"`
		PointType  string  `json:"point_type" validate:"required,pointsystem"`
		IsActive   bool    `json:"is_active"`
	} `json:"reward_categories" validate:"dive"`
	QuarterlyBonus *struct {
		Category   string  `json:"category" validate:"required,category"`
		Multiplier float64 `json:"multiplier" validate:"required,gt=0"`
		PointType  string  `json:"point_type" validate:"required,pointsystem"`
		SpendLimit float64 `json:"spend_limit" validate:"required,gt=0"`
		Quarter    int     `json:"quarter" validate:"required,gte=1,lte=4"`
		Year       int     `json:"year" validate:"required,gte=2000"`
	} `json:"quarterly_bonus"`
	SpendingLimits []struct {
		Category  string    `json:"category" validate:"required,category"`
		Limit     float64   `json:"limit" validate:"required,gt=0"`
		ResetDate time.Time `json:"reset_date" validate:"required"`
		ResetType string    `json:"reset_type" validate:"required,cadence"`
	} `json:"spending_limits" validate:"dive"`
}

func (r SaveCardRequest) toDomain() domain.Card {
	card := domain.Card{
		ID:       r.ID,
		Name:     r.Name,
		Issuer:   r.Issuer,
		IsActive: r.IsActive,
	}
	for _, rc := range r.RewardCategories {
		card.RewardCategories = append(card.RewardCategories, domain.RewardCategory{
			Category:   domain.Category(rc.Category),
			Multiplier: rc.Multiplier,
			PointType:  domain.PointType(rc.PointType),
			IsActive:   rc.IsActive,
		})
	}
	if r.QuarterlyBonus != nil {
		card.QuarterlyBonus = &domain.QuarterlyBonus{
			Category:   domain.Category(r.QuarterlyBonus.Category),
			Multiplier: r.QuarterlyBonus.Multiplier,
			PointType:  domain.PointType(r.QuarterlyBonus.PointType),
			SpendLimit: r.QuarterlyBonus.SpendLimit,
			Quarter:    r.QuarterlyBonus.Quarter,
			Year:       r.QuarterlyBonus.Year,
		}
	}
	for _, sl := range r.SpendingLimits {
		card.SpendingLimits = append(card.SpendingLimits, domain.SpendingLimit{
			Category:  domain.Category(sl.Category),
			Limit:     sl.Limit,
			ResetDate: sl.ResetDate,
			ResetType: domain.ResetCadence(sl.ResetType),
		})
	}
	return card
}

type PreferencesRequest struct {
	PreferredPointSystem string  `json:"preferred_point_system" validate:"required,pointsystem"`
	AlertThreshold       float64 `json:"alert_threshold" validate:"gte=0,lte=1"`
	Language             string  `json:"language"`
	NotificationsEnabled bool    `json:"notifications_enabled"`
	AutoUpdateEnabled    bool    `json:"auto_update_enabled"`
}

func validateStruct(v any) error {
	if err := val.Validate.Struct(v); err != nil {
		var errs []string
		for _, e := range err.(validator.ValidationErrors) {
			errs = append(errs, fieldErrorToString(e))
		}
		return fmt.Errorf("invalid input: %s", strings.Join(errs, "; "))
	}
	return nil
}

func fieldErrorToString(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "required_without":
		return fmt.Sprintf("%s is required when %s is missing", e.Field(), e.Param())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", e.Field())
	case "category":
		return fmt.Sprintf("%s is not a known spending category", e.Field())
	case "pointsystem":
		return fmt.Sprintf("%s is not a known point system", e.Field())
	case "cadence":
		return fmt.Sprintf("%s must be monthly, quarterly, or annually", e.Field())
	case "gt", "gte", "lte":
		return fmt.Sprintf("%s is out of range", e.Field())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}
