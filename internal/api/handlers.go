// Package api exposes BOQ classification over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rozpoctar/boq-classifier/internal/classifier"
	"github.com/rozpoctar/boq-classifier/internal/config"
	"github.com/rozpoctar/boq-classifier/internal/database"
	"github.com/rozpoctar/boq-classifier/internal/domain"
	"github.com/rozpoctar/boq-classifier/internal/processor"
)

// maxBatchItems caps the number of rows accepted per request.
const maxBatchItems = 10000

// Logger defines the logging interface
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Handler handles HTTP requests for the classifier API.
type Handler struct {
	rows         *classifier.RowClassifier
	orchestrator *classifier.Orchestrator
	scorer       *classifier.WorkGroupScorer
	batch        *processor.RateLimitedProcessor
	rulesRepo    *database.RulesRepository // nil when the rule store is disabled
	defaults     config.ClassificationConfig
	logger       Logger
}

// NewHandler creates a new API handler. rulesRepo may be nil when the rule
// store is disabled; rule management endpoints then return 503.
func NewHandler(
	rows *classifier.RowClassifier,
	orchestrator *classifier.Orchestrator,
	scorer *classifier.WorkGroupScorer,
	batch *processor.RateLimitedProcessor,
	rulesRepo *database.RulesRepository,
	defaults config.ClassificationConfig,
	logger Logger,
) *Handler {
	return &Handler{
		rows:         rows,
		orchestrator: orchestrator,
		scorer:       scorer,
		batch:        batch,
		rulesRepo:    rulesRepo,
		defaults:     defaults,
		logger:       logger,
	}
}

// ItemsRequest carries the rows of one document.
type ItemsRequest struct {
	Items []*domain.Item `json:"items" binding:"required,min=1"`
}

// ClassifyRowsResponse is the result of the row-role pass.
type ClassifyRowsResponse struct {
	Items []*domain.Item   `json:"items"`
	Stats *domain.RowStats `json:"stats"`
}

// ClassifyGroupsRequest carries rows plus group-pass options.
type ClassifyGroupsRequest struct {
	Items         []*domain.Item `json:"items" binding:"required,min=1"`
	Overwrite     bool           `json:"overwrite"`
	MinConfidence int            `json:"min_confidence"`
}

// SuggestRequest carries rows plus the candidate confidence threshold.
type SuggestRequest struct {
	Items     []*domain.Item `json:"items" binding:"required,min=1"`
	Threshold int            `json:"threshold"`
}

// SuggestResponse lists ranked group candidates for unassigned main items.
type SuggestResponse struct {
	Suggestions []domain.Suggestion `json:"suggestions"`
	Total       int                 `json:"total"`
}

// ClassifyRows handles POST /api/v1/classify/rows
func (h *Handler) ClassifyRows(c *gin.Context) {
	var req ItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid row classification request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Items) > maxBatchItems {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many items"})
		return
	}

	items, stats := h.rows.ClassifyRows(req.Items)

	h.logger.Info("Rows classified",
		"total", stats.Total,
		"main", stats.MainCount,
	)

	c.JSON(http.StatusOK, ClassifyRowsResponse{Items: items, Stats: stats})
}

// ClassifyGroups handles POST /api/v1/classify/groups. It runs the full
// pipeline: row roles first, then work groups for the main items.
func (h *Handler) ClassifyGroups(c *gin.Context) {
	var req ClassifyGroupsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid group classification request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Items) > maxBatchItems {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many items"})
		return
	}

	opts := classifier.ApplyOptions{
		Overwrite:     req.Overwrite,
		MinConfidence: req.MinConfidence,
	}
	if opts.MinConfidence <= 0 {
		opts.MinConfidence = h.defaults.MinConfidence
	}

	result, err := h.batch.Process(c.Request.Context(), req.Items, opts)
	if err != nil {
		h.logger.Error("Group classification failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Suggest handles POST /api/v1/classify/suggest. Read-only: candidates are
// returned for review, nothing is committed.
func (h *Handler) Suggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid suggestion request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	threshold := req.Threshold
	if threshold <= 0 {
		threshold = h.defaults.SuggestThreshold
	}

	items, _ := h.rows.ClassifyRows(req.Items)
	suggestions := h.orchestrator.Suggest(c.Request.Context(), items, threshold)

	c.JSON(http.StatusOK, SuggestResponse{
		Suggestions: suggestions,
		Total:       len(suggestions),
	})
}

// Stats handles POST /api/v1/stats.
func (h *Handler) Stats(c *gin.Context) {
	var req ItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid stats request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, _ := h.rows.ClassifyRows(req.Items)
	c.JSON(http.StatusOK, h.orchestrator.Stats(items))
}

// ListRules handles GET /api/v1/rules
func (h *Handler) ListRules(c *gin.Context) {
	if h.rulesRepo == nil {
		h.ruleStoreDisabled(c)
		return
	}

	rules, err := h.rulesRepo.List(c.Request.Context(), false)
	if err != nil {
		h.logger.Error("Failed to list rules", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response := make([]RuleResponse, len(rules))
	for i := range rules {
		response[i] = toRuleResponse(&rules[i])
	}

	c.JSON(http.StatusOK, RulesListResponse{Rules: response, Total: len(response)})
}

// CreateRule handles POST /api/v1/rules
func (h *Handler) CreateRule(c *gin.Context) {
	if h.rulesRepo == nil {
		h.ruleStoreDisabled(c)
		return
	}

	var req RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid rule creation request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule, err := req.toDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.rulesRepo.Create(c.Request.Context(), rule); err != nil {
		h.logger.Error("Failed to create rule", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.reloadRules(c.Request.Context())
	h.logger.Info("Rule created successfully", "id", rule.ID, "work_group", rule.Group)

	c.JSON(http.StatusCreated, toRuleResponse(rule))
}

// UpdateRule handles PUT /api/v1/rules/:id
func (h *Handler) UpdateRule(c *gin.Context) {
	if h.rulesRepo == nil {
		h.ruleStoreDisabled(c)
		return
	}

	ruleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule id"})
		return
	}

	var req RuleRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid rule update request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule, err := req.toDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rule.ID = ruleID

	if err = h.rulesRepo.Update(c.Request.Context(), rule); err != nil {
		if errors.Is(err, database.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
			return
		}
		h.logger.Error("Failed to update rule", "id", ruleID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.reloadRules(c.Request.Context())
	h.logger.Info("Rule updated successfully", "id", ruleID, "work_group", rule.Group)

	c.JSON(http.StatusOK, toRuleResponse(rule))
}

// DeleteRule handles DELETE /api/v1/rules/:id
func (h *Handler) DeleteRule(c *gin.Context) {
	if h.rulesRepo == nil {
		h.ruleStoreDisabled(c)
		return
	}

	ruleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule id"})
		return
	}

	if err = h.rulesRepo.Delete(c.Request.Context(), ruleID); err != nil {
		if errors.Is(err, database.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
			return
		}
		h.logger.Error("Failed to delete rule", "id", ruleID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.reloadRules(c.Request.Context())
	h.logger.Info("Rule deleted successfully", "id", ruleID)

	c.JSON(http.StatusOK, gin.H{"deleted": ruleID})
}

// reloadRules hot-swaps the scorer's rule table from the store after a
// mutation. A reload failure keeps the previous table and logs the error.
func (h *Handler) reloadRules(ctx context.Context) {
	rules, err := h.rulesRepo.List(ctx, true)
	if err != nil {
		h.logger.Error("Failed to reload rules after mutation", "error", err)
		return
	}
	h.scorer.UpdateRules(rules)
}

func (h *Handler) ruleStoreDisabled(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "rule store is disabled"})
}
