package optimizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-optimizer/internal/models"
)

// Snapshot is the read-only data one engine call works against
type Snapshot struct {
	Players  []models.Player
	Oracle   ValuationOracle
	Schedule models.FixtureSchedule
	Gameweek int
	// Version identifies the data load; it feeds cache keys only
	Version string
}

// EngineConfig bundles the engine's tunables
type EngineConfig struct {
	Scoring            ScoringConfig
	Transfers          TransferWeights
	Timeout            time.Duration
	MaxHorizon         int
	MaxTransferResults int
}

// DefaultEngineConfig returns stock engine settings
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Scoring:            DefaultScoringConfig(),
		Transfers:          DefaultTransferWeights(),
		Timeout:            30 * time.Second,
		MaxHorizon:         8,
		MaxTransferResults: 10,
	}
}

// Engine runs the squad, lineup and captaincy pipeline and the transfer advisor.
// It holds only immutable configuration and is safe for concurrent use.
type Engine struct {
	config   EngineConfig
	squad    *SquadSelector
	lineup   *LineupSelector
	captain  *CaptainSelector
	horizon  *HorizonScorer
	transfer *TransferAdvisor
	logger   *logrus.Entry
}

// NewEngine wires the engine components
func NewEngine(config EngineConfig, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{
		config:   config,
		squad:    NewSquadSelector(logger),
		lineup:   NewLineupSelector(logger),
		captain:  NewCaptainSelector(config.Scoring, logger),
		horizon:  NewHorizonScorer(config.Scoring, logger),
		transfer: NewTransferAdvisor(config.Transfers, logger),
		logger:   logger.WithField("component", "engine"),
	}
}

// Config returns the engine configuration
func (e *Engine) Config() EngineConfig {
	return e.config
}

// Optimize selects squad, starting XI and captaincy for one request
func (e *Engine) Optimize(ctx context.Context, snap *Snapshot, req models.OptimizationRequest) (*models.OptimizationResult, error) {
	if snap == nil || len(snap.Players) == 0 {
		return nil, fmt.Errorf("%w: empty player snapshot", ErrNoData)
	}
	if snap.Oracle == nil {
		return nil, fmt.Errorf("%w: snapshot has no valuations", ErrNoData)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	gw := req.StartGameweek
	if gw == 0 {
		gw = snap.Gameweek
	}
	req.StartGameweek = gw
	window := req.HorizonGameweeks
	if window < 0 {
		return nil, fmt.Errorf("%w: horizon gameweeks must not be negative", ErrInvalidRequest)
	}
	if e.config.MaxHorizon > 0 && window > e.config.MaxHorizon {
		return nil, fmt.Errorf("%w: horizon of %d gameweeks exceeds limit of %d", ErrInvalidRequest, window, e.config.MaxHorizon)
	}

	log := e.logger.WithFields(logrus.Fields{
		"optimization_id": uuid.New().String(),
		"gameweek":        gw,
		"horizon":         window,
	})
	startTime := time.Now()

	var (
		squad     *models.Squad
		displayed models.Valuations
		err       error
	)
	base := e.valuationsFor(snap, gw)
	if window > 1 {
		var values *HorizonValues
		squad, values, err = e.horizon.SelectSquadForHorizon(ctx, e.squad, snap.Players, snap.Oracle, snap.Schedule, req)
		if values != nil {
			displayed = values.Current
		}
	} else {
		squad, err = e.squad.SelectSquad(ctx, snap.Players, base, req)
		displayed = base
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
			err = fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		log.WithError(err).Warn("Squad optimization failed")
		return nil, err
	}

	index := models.IndexPlayers(snap.Players)
	lineup, err := e.lineup.SelectLineup(squad.PlayerIDs, index, displayed, req.Formation, req.PreferredPlayerIDs)
	if err != nil {
		return nil, err
	}

	contexts := snap.Schedule.PlayerContexts(snap.Players, gw)
	captaincy, err := e.captain.SelectCaptaincy(lineup, base, contexts)
	if err != nil {
		return nil, err
	}

	result := &models.OptimizationResult{
		Squad:           *squad,
		Lineup:          *lineup,
		Captaincy:       *captaincy,
		TotalCost:       models.Round1(models.CostToMillions(squad.TotalCost)),
		BudgetRemaining: models.Round1(models.CostToMillions(models.BudgetToCost(req.Budget) - squad.TotalCost)),
		ObjectiveValue:  models.Round2(squad.ProjectedValue),
		Gameweek:        gw,
		FixtureAnalysis: models.AnalyzeFixtures(squad.PlayerIDs, contexts),
	}
	if window > 1 {
		result.HorizonGameweeks = window
	}

	for _, id := range lineup.Starters {
		result.ExpectedPoints += displayed.Get(id)
	}
	// captain scores double
	result.ExpectedPoints += displayed.Get(captaincy.CaptainID)
	for _, id := range squad.PlayerIDs {
		result.SquadExpectedPoints += displayed.Get(id)
	}
	result.ExpectedPoints = models.Round2(result.ExpectedPoints)
	result.SquadExpectedPoints = models.Round2(result.SquadExpectedPoints)

	log.WithFields(logrus.Fields{
		"total_cost":      result.TotalCost,
		"expected_points": result.ExpectedPoints,
		"captain_id":      captaincy.CaptainID,
		"duration":        time.Since(startTime),
	}).Info("Optimization completed")

	return result, nil
}

// SelectLineup picks starting XI and captaincy for an existing 15-player squad
func (e *Engine) SelectLineup(snap *Snapshot, gameweek int, squad []int, formation *models.Formation, preferredIDs []int) (*models.Lineup, *models.CaptaincyChoice, error) {
	if snap == nil || snap.Oracle == nil {
		return nil, nil, fmt.Errorf("%w: snapshot has no valuations", ErrNoData)
	}
	if len(squad) == 0 {
		return nil, nil, fmt.Errorf("%w: squad is empty", ErrInvalidRequest)
	}
	if gameweek == 0 {
		gameweek = snap.Gameweek
	}

	base := e.valuationsFor(snap, gameweek)
	lineup, err := e.lineup.SelectLineup(squad, models.IndexPlayers(snap.Players), base, formation, preferredIDs)
	if err != nil {
		return nil, nil, err
	}
	captaincy, err := e.captain.SelectCaptaincy(lineup, base, snap.Schedule.PlayerContexts(snap.Players, gameweek))
	if err != nil {
		return nil, nil, err
	}
	return lineup, captaincy, nil
}

// SelectCaptaincy picks captain and vice-captain among the given starters
func (e *Engine) SelectCaptaincy(snap *Snapshot, gameweek int, starters []int) (*models.CaptaincyChoice, error) {
	if snap == nil || snap.Oracle == nil {
		return nil, fmt.Errorf("%w: snapshot has no valuations", ErrNoData)
	}
	if gameweek == 0 {
		gameweek = snap.Gameweek
	}
	lineup := &models.Lineup{Starters: starters}
	return e.captain.SelectCaptaincy(lineup, e.valuationsFor(snap, gameweek), snap.Schedule.PlayerContexts(snap.Players, gameweek))
}

// SuggestTransfers runs the transfer advisor over an existing squad.
// maxSuggestions <= 0 uses the configured limit.
func (e *Engine) SuggestTransfers(snap *Snapshot, gameweek int, squad []int, budgetHeadroom float64, maxSuggestions int) ([]models.TransferSuggestion, error) {
	if snap == nil || snap.Oracle == nil {
		return nil, fmt.Errorf("%w: snapshot has no valuations", ErrNoData)
	}
	if len(squad) == 0 {
		return nil, fmt.Errorf("%w: existing squad is empty", ErrInvalidRequest)
	}
	if budgetHeadroom < 0 {
		return nil, fmt.Errorf("%w: budget headroom must not be negative", ErrInvalidRequest)
	}
	if gameweek == 0 {
		gameweek = snap.Gameweek
	}
	if maxSuggestions <= 0 {
		maxSuggestions = e.config.MaxTransferResults
	}

	return e.transfer.SuggestTransfers(TransferInput{
		Squad:          squad,
		Players:        snap.Players,
		Valuations:     e.valuationsFor(snap, gameweek),
		Fixtures:       snap.Schedule.PlayerContexts(snap.Players, gameweek),
		BudgetHeadroom: models.BudgetToCost(budgetHeadroom),
		MaxSuggestions: maxSuggestions,
	}), nil
}

// valuationsFor materialises the oracle for one gameweek
func (e *Engine) valuationsFor(snap *Snapshot, gameweek int) models.Valuations {
	if v, ok := snap.Oracle.(models.Valuations); ok {
		return v
	}
	values := make(models.Valuations, len(snap.Players))
	for _, p := range snap.Players {
		values[p.ID] = snap.Oracle.Value(p.ID, gameweek)
	}
	return values
}
