package optimizer

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/stitts-dev/fpl-optimizer/internal/models"
)

// ValuationOracle supplies projected points per player and gameweek
type ValuationOracle interface {
	Value(playerID, gameweek int) float64
}

// HorizonValues carries both coefficient sets produced for one window
type HorizonValues struct {
	// Objective is the weighted multi-gameweek value used to choose the squad
	Objective models.Valuations
	// Current is the fixture-adjusted value of the opening gameweek only
	Current       models.Valuations
	StartGameweek int
	Window        int
}

// HorizonScorer turns per-gameweek projections into horizon coefficients
type HorizonScorer struct {
	scoring ScoringConfig
	logger  *logrus.Entry
}

// NewHorizonScorer creates a horizon scorer
func NewHorizonScorer(scoring ScoringConfig, logger *logrus.Logger) *HorizonScorer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &HorizonScorer{
		scoring: scoring,
		logger:  logger.WithField("component", "horizon_scorer"),
	}
}

// Weights returns the per-gameweek weights of a window
func (h *HorizonScorer) Weights(startGW, window int) []float64 {
	weights := make([]float64, window)
	for i := range weights {
		weights[i] = h.scoring.WeekWeight(startGW, startGW+i)
	}
	return weights
}

// Score computes horizon and current-week values for every player
func (h *HorizonScorer) Score(players []models.Player, oracle ValuationOracle, schedule models.FixtureSchedule, startGW, window int) (*HorizonValues, error) {
	if oracle == nil {
		return nil, fmt.Errorf("%w: no valuation oracle", ErrNoData)
	}
	if window < 1 {
		return nil, fmt.Errorf("%w: horizon must cover at least one gameweek, got %d", ErrInvalidRequest, window)
	}
	if startGW < 1 {
		return nil, fmt.Errorf("%w: start gameweek must be positive, got %d", ErrInvalidRequest, startGW)
	}

	weights := h.Weights(startGW, window)
	adjusted := make([]float64, window)
	values := &HorizonValues{
		Objective:     make(models.Valuations, len(players)),
		Current:       make(models.Valuations, len(players)),
		StartGameweek: startGW,
		Window:        window,
	}

	for _, p := range players {
		for i := range adjusted {
			adjusted[i] = h.adjust(p, oracle, schedule, startGW+i)
		}
		values.Objective[p.ID] = floats.Dot(weights, adjusted)
		values.Current[p.ID] = adjusted[0]
	}

	h.logger.WithFields(logrus.Fields{
		"players":        len(players),
		"start_gameweek": startGW,
		"window":         window,
		"weight_total":   floats.Sum(weights),
	}).Debug("Horizon values computed")

	return values, nil
}

// adjust sums fixture-adjusted projections over every fixture the club plays
// in the gameweek; a bye contributes nothing
func (h *HorizonScorer) adjust(p models.Player, oracle ValuationOracle, schedule models.FixtureSchedule, gw int) float64 {
	fixtures := schedule.For(p.ClubID, gw)
	if len(fixtures) == 0 {
		return 0
	}
	base := oracle.Value(p.ID, gw)
	if base < 0 || math.IsNaN(base) {
		return 0
	}
	total := 0.0
	for _, f := range fixtures {
		total += base * h.scoring.FixtureMultiplier(f)
	}
	return total
}

// SelectSquadForHorizon solves the squad program with horizon coefficients.
// Constraints are the same as a single-gameweek solve.
func (h *HorizonScorer) SelectSquadForHorizon(ctx context.Context, selector *SquadSelector, players []models.Player, oracle ValuationOracle, schedule models.FixtureSchedule, req models.OptimizationRequest) (*models.Squad, *HorizonValues, error) {
	window := req.HorizonGameweeks
	if window < 1 {
		window = 1
	}
	values, err := h.Score(players, oracle, schedule, req.StartGameweek, window)
	if err != nil {
		return nil, nil, err
	}
	squad, err := selector.SelectSquad(ctx, players, values.Objective, req)
	if err != nil {
		return nil, nil, err
	}
	return squad, values, nil
}
