package valuation

import (
	"math"

	"github.com/stitts-dev/fpl-optimizer/internal/models"
)

// Oracle resolves projected points per player and gameweek. Lookups fall
// through a stored fixture prediction, then a general prediction, then the
// closed-form estimate from the player's season record.
type Oracle struct {
	players    map[int]models.Player
	general    map[int]float64
	byGameweek map[int]map[int]float64
}

// NewOracle builds an oracle over read-only prediction snapshots; either map may be nil
func NewOracle(players []models.Player, general map[int]float64, byGameweek map[int]map[int]float64) *Oracle {
	return &Oracle{
		players:    models.IndexPlayers(players),
		general:    general,
		byGameweek: byGameweek,
	}
}

// Value returns projected points for one gameweek; unknown players are worth nothing
func (o *Oracle) Value(playerID, gameweek int) float64 {
	if v, ok := o.byGameweek[gameweek][playerID]; ok && valid(v) {
		return v
	}
	if v, ok := o.general[playerID]; ok && valid(v) {
		return v
	}
	p, ok := o.players[playerID]
	if !ok {
		return 0
	}
	return EstimateExpectedPoints(p)
}

// Valuations materialises the oracle for one gameweek
func (o *Oracle) Valuations(gameweek int) models.Valuations {
	values := make(models.Valuations, len(o.players))
	for id := range o.players {
		values[id] = o.Value(id, gameweek)
	}
	return values
}

func valid(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

var positionBase = map[models.Position]float64{
	models.PositionGoalkeeper: 4.0,
	models.PositionDefender:   4.5,
	models.PositionMidfielder: 5.5,
	models.PositionForward:    6.0,
}

// EstimateExpectedPoints scores a player with no stored prediction from
// position, form, season points and price. Result is within [1, 12].
func EstimateExpectedPoints(p models.Player) float64 {
	base, ok := positionBase[p.Position]
	if !ok {
		base = 4.0
	}

	expected := base * formMultiplier(p.Form) * seasonMultiplier(p.TotalPoints) * priceMultiplier(p.CostMillions())
	return math.Max(1.0, math.Min(12.0, models.Round1(expected)))
}

func formMultiplier(form float64) float64 {
	switch {
	case form >= 8.0:
		return 1.5
	case form >= 6.0:
		return 1.3
	case form >= 4.0:
		return 1.1
	case form >= 2.0:
		return 0.9
	}
	return 0.6
}

func seasonMultiplier(totalPoints int) float64 {
	switch {
	case totalPoints >= 250:
		return 1.6
	case totalPoints >= 200:
		return 1.4
	case totalPoints >= 150:
		return 1.2
	case totalPoints >= 100:
		return 1.0
	case totalPoints >= 50:
		return 0.8
	}
	return 0.5
}

func priceMultiplier(cost float64) float64 {
	switch {
	case cost >= 13.0:
		return 1.4
	case cost >= 10.0:
		return 1.2
	case cost >= 7.0:
		return 1.0
	case cost >= 5.0:
		return 0.9
	}
	return 0.7
}
