package optimizer

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-optimizer/internal/models"
)

// CaptainSelector ranks starters by fixture-adjusted projection
type CaptainSelector struct {
	scoring ScoringConfig
	logger  *logrus.Entry
}

// NewCaptainSelector creates a captain selector
func NewCaptainSelector(scoring ScoringConfig, logger *logrus.Logger) *CaptainSelector {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CaptainSelector{
		scoring: scoring,
		logger:  logger.WithField("component", "captain_selector"),
	}
}

type rankedStarter struct {
	id    int
	score float64
}

// SelectCaptaincy picks captain and vice-captain. fixtures may be nil; a
// starter without an entry keeps its unadjusted valuation.
func (c *CaptainSelector) SelectCaptaincy(lineup *models.Lineup, valuations models.Valuations, fixtures map[int]models.FixtureContext) (*models.CaptaincyChoice, error) {
	if lineup == nil || len(lineup.Starters) == 0 {
		return nil, fmt.Errorf("%w: lineup has no starters", ErrInvalidRequest)
	}

	ranked := make([]rankedStarter, 0, len(lineup.Starters))
	for _, id := range lineup.Starters {
		ranked = append(ranked, rankedStarter{id: id, score: c.AdjustedValue(id, valuations, fixtures)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].id < ranked[j].id
	})

	captain := ranked[0]
	vice := captain
	if len(ranked) > 1 {
		vice = ranked[1]
	}

	choice := &models.CaptaincyChoice{
		CaptainID:             captain.id,
		ViceCaptainID:         vice.id,
		CaptainScore:          captain.score,
		ViceCaptainScore:      vice.score,
		CaptainExpectedPoints: models.Round2(captain.score * 2),
	}

	c.logger.WithFields(logrus.Fields{
		"captain_id":      choice.CaptainID,
		"vice_captain_id": choice.ViceCaptainID,
		"captain_points":  choice.CaptainExpectedPoints,
	}).Debug("Captaincy selected")

	return choice, nil
}

// AdjustedValue applies the fixture multiplier to a player's valuation
func (c *CaptainSelector) AdjustedValue(id int, valuations models.Valuations, fixtures map[int]models.FixtureContext) float64 {
	value := valuations.Get(id)
	if f, ok := fixtures[id]; ok {
		value *= c.scoring.FixtureMultiplier(f)
	}
	return value
}
