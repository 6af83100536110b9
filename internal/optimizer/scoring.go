package optimizer

import "github.com/stitts-dev/fpl-optimizer/internal/models"

// ScoringConfig holds the fixture and horizon constants. They are hand-tuned
// heuristics, so every one of them can be overridden from configuration.
type ScoringConfig struct {
	HomeBonus         float64 `json:"home_bonus"`
	NeutralDifficulty int     `json:"neutral_difficulty"`
	DifficultyStep    float64 `json:"difficulty_step"`
	FirstWeekWeight   float64 `json:"first_week_weight"`
	WeeklyDecay       float64 `json:"weekly_decay"`
	MinWeekWeight     float64 `json:"min_week_weight"`
}

// DefaultScoringConfig returns the stock constants
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		HomeBonus:         1.05,
		NeutralDifficulty: 3,
		DifficultyStep:    0.1,
		FirstWeekWeight:   1.5,
		WeeklyDecay:       0.1,
		MinWeekWeight:     0.5,
	}
}

// FixtureMultiplier scales a projection for venue and opponent difficulty.
// Easier opponents give a multiplier above one.
func (c ScoringConfig) FixtureMultiplier(f models.FixtureContext) float64 {
	multiplier := 1.0
	if f.IsHome {
		multiplier *= c.HomeBonus
	}
	multiplier *= 1 + float64(c.NeutralDifficulty-f.NormalizedDifficulty())*c.DifficultyStep
	if multiplier < 0 {
		return 0
	}
	return multiplier
}

// WeekWeight returns the horizon weight of gameweek gw in a window opening at start
func (c ScoringConfig) WeekWeight(start, gw int) float64 {
	if gw == start {
		return c.FirstWeekWeight
	}
	w := 1 - c.WeeklyDecay*float64(gw-start)
	if w < c.MinWeekWeight {
		return c.MinWeekWeight
	}
	return w
}
