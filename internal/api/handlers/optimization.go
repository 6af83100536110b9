package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-optimizer/internal/cache"
	"github.com/stitts-dev/fpl-optimizer/internal/models"
	"github.com/stitts-dev/fpl-optimizer/internal/optimizer"
	"github.com/stitts-dev/fpl-optimizer/pkg/config"
	"github.com/stitts-dev/fpl-optimizer/pkg/logger"
	"github.com/stitts-dev/fpl-optimizer/pkg/utils"
)

// SnapshotSource loads the data one engine call runs against
type SnapshotSource interface {
	Snapshot(ctx context.Context, startGameweek, window int) (*optimizer.Snapshot, error)
}

// OptimizationHandler handles squad optimization and the per-squad helpers
type OptimizationHandler struct {
	source SnapshotSource
	engine *optimizer.Engine
	cache  *cache.OptimizationCache
	config *config.Config
	logger *logrus.Logger
}

// NewOptimizationHandler creates a new optimization handler
func NewOptimizationHandler(
	source SnapshotSource,
	engine *optimizer.Engine,
	cache *cache.OptimizationCache,
	config *config.Config,
	logger *logrus.Logger,
) *OptimizationHandler {
	return &OptimizationHandler{
		source: source,
		engine: engine,
		cache:  cache,
		config: config,
		logger: logger,
	}
}

// optimizeRequest is the wire form of models.OptimizationRequest. Budget and
// club cap are pointers so an omitted field takes the configured default while
// an explicit zero is rejected.
type optimizeRequest struct {
	Budget             *float64          `json:"budget" binding:"omitempty,gt=0"`
	Formation          *models.Formation `json:"formation"`
	PreferredPlayerIDs []int             `json:"preferred_player_ids"`
	ExcludedPlayerIDs  []int             `json:"excluded_player_ids"`
	MaxPlayersPerClub  *int              `json:"max_players_per_club" binding:"omitempty,min=1"`
	ExistingSquad      []int             `json:"existing_squad"`
	MaxTransfers       *int              `json:"max_transfers" binding:"omitempty,min=0"`
	StartGameweek      int               `json:"start_gameweek" binding:"min=0"`
	HorizonGameweeks   int               `json:"horizon_gameweeks" binding:"min=0"`
}

func (r optimizeRequest) toModel(cfg *config.Config) models.OptimizationRequest {
	req := models.OptimizationRequest{
		Budget:             cfg.DefaultBudget,
		Formation:          r.Formation,
		PreferredPlayerIDs: r.PreferredPlayerIDs,
		ExcludedPlayerIDs:  r.ExcludedPlayerIDs,
		MaxPlayersPerClub:  cfg.MaxPlayersPerClub,
		ExistingSquad:      r.ExistingSquad,
		MaxTransfers:       r.MaxTransfers,
		StartGameweek:      r.StartGameweek,
		HorizonGameweeks:   r.HorizonGameweeks,
	}
	if r.Budget != nil {
		req.Budget = *r.Budget
	}
	if r.MaxPlayersPerClub != nil {
		req.MaxPlayersPerClub = *r.MaxPlayersPerClub
	}
	return req
}

// OptimizeSquad selects squad, starting XI and captaincy
func (h *OptimizationHandler) OptimizeSquad(c *gin.Context) {
	var body optimizeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	req := body.toModel(h.config)

	ctx := c.Request.Context()
	window := req.HorizonGameweeks
	if window < 1 {
		window = 1
	}
	snap, err := h.source.Snapshot(ctx, req.StartGameweek, window)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load data snapshot")
		utils.SendEngineError(c, err)
		return
	}
	if req.StartGameweek == 0 {
		req.StartGameweek = snap.Gameweek
	}

	cacheKey, err := cache.Key(req, snap.Version)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to build cache key")
	}
	if cacheKey != "" {
		cached, err := h.cache.Get(ctx, cacheKey)
		if err != nil {
			h.logger.WithError(err).Warn("Failed to read optimization cache")
		}
		if cached != nil {
			logger.WithOptimizationContext(cacheKey, cached.Gameweek).Debug("Serving cached optimization result")
			utils.SendSuccessWithMeta(c, cached, &utils.Meta{Cached: true, DataVersion: snap.Version, Gameweek: cached.Gameweek})
			return
		}
	}

	result, err := h.engine.Optimize(ctx, snap, req)
	if err != nil {
		utils.SendEngineError(c, err)
		return
	}

	if cacheKey != "" {
		if err := h.cache.Set(ctx, cacheKey, result); err != nil {
			h.logger.WithError(err).Warn("Failed to cache optimization result")
		}
	}

	utils.SendSuccessWithMeta(c, result, &utils.Meta{DataVersion: snap.Version, Gameweek: result.Gameweek})
}

type lineupRequest struct {
	Squad              []int  `json:"squad" binding:"required,len=15"`
	Formation          string `json:"formation"`
	PreferredPlayerIDs []int  `json:"preferred_player_ids"`
	Gameweek           int    `json:"gameweek" binding:"min=0"`
}

type lineupResponse struct {
	Lineup    *models.Lineup          `json:"lineup"`
	Captaincy *models.CaptaincyChoice `json:"captaincy"`
}

// SelectLineup picks the starting XI and captaincy for a given squad
func (h *OptimizationHandler) SelectLineup(c *gin.Context) {
	var req lineupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	var formation *models.Formation
	if req.Formation != "" {
		parsed, err := models.ParseFormation(req.Formation)
		if err != nil {
			utils.SendValidationError(c, "Invalid formation", err.Error())
			return
		}
		formation = &parsed
	}

	snap, err := h.source.Snapshot(c.Request.Context(), req.Gameweek, 1)
	if err != nil {
		utils.SendEngineError(c, err)
		return
	}

	lineup, captaincy, err := h.engine.SelectLineup(snap, snap.Gameweek, req.Squad, formation, req.PreferredPlayerIDs)
	if err != nil {
		utils.SendEngineError(c, err)
		return
	}

	utils.SendSuccessWithMeta(c, lineupResponse{Lineup: lineup, Captaincy: captaincy}, &utils.Meta{DataVersion: snap.Version, Gameweek: snap.Gameweek})
}

type captainRequest struct {
	Starters []int `json:"starters" binding:"required,min=1"`
	Gameweek int   `json:"gameweek" binding:"min=0"`
}

// SelectCaptain picks captain and vice-captain among the given starters
func (h *OptimizationHandler) SelectCaptain(c *gin.Context) {
	var req captainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	snap, err := h.source.Snapshot(c.Request.Context(), req.Gameweek, 1)
	if err != nil {
		utils.SendEngineError(c, err)
		return
	}

	choice, err := h.engine.SelectCaptaincy(snap, snap.Gameweek, req.Starters)
	if err != nil {
		utils.SendEngineError(c, err)
		return
	}

	utils.SendSuccessWithMeta(c, choice, &utils.Meta{DataVersion: snap.Version, Gameweek: snap.Gameweek})
}

type transferRequest struct {
	Squad          []int   `json:"squad" binding:"required,min=1"`
	BudgetHeadroom float64 `json:"budget_headroom" binding:"min=0"`
	MaxSuggestions int     `json:"max_suggestions" binding:"min=0"`
	Gameweek       int     `json:"gameweek" binding:"min=0"`
}

// SuggestTransfers proposes single-player swaps for an existing squad
func (h *OptimizationHandler) SuggestTransfers(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if req.MaxSuggestions == 0 {
		req.MaxSuggestions = h.config.TransferMaxSuggestions
	}

	snap, err := h.source.Snapshot(c.Request.Context(), req.Gameweek, 1)
	if err != nil {
		utils.SendEngineError(c, err)
		return
	}

	suggestions, err := h.engine.SuggestTransfers(snap, snap.Gameweek, req.Squad, req.BudgetHeadroom, req.MaxSuggestions)
	if err != nil {
		utils.SendEngineError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"gameweek":    snap.Gameweek,
		"suggestions": len(suggestions),
	}).Debug("Transfer suggestions generated")

	utils.SendSuccessWithMeta(c, suggestions, &utils.Meta{DataVersion: snap.Version, Gameweek: snap.Gameweek})
}
