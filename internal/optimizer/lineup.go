package optimizer

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-optimizer/internal/models"
)

// PreferredBonus lifts preferred players above any realistic valuation spread
const PreferredBonus = 1000.0

// LineupSelector picks the starting XI from a squad
type LineupSelector struct {
	logger *logrus.Entry
}

// NewLineupSelector creates a lineup selector
func NewLineupSelector(logger *logrus.Logger) *LineupSelector {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LineupSelector{logger: logger.WithField("component", "lineup_selector")}
}

// SelectLineup takes the best players per position for the formation, always
// one goalkeeper. A nil or invalid formation falls back to 3-4-3.
func (l *LineupSelector) SelectLineup(squad []int, players map[int]models.Player, valuations models.Valuations, formation *models.Formation, preferredIDs []int) (*models.Lineup, error) {
	chosen := models.DefaultFormation
	if formation != nil {
		if err := formation.Validate(); err != nil {
			l.logger.WithError(err).Warn("Invalid formation, using 3-4-3")
		} else {
			chosen = *formation
		}
	}

	preferred := make(map[int]bool, len(preferredIDs))
	for _, id := range preferredIDs {
		preferred[id] = true
	}

	byPosition := make(map[models.Position][]int)
	for _, id := range squad {
		p, ok := players[id]
		if !ok {
			return nil, fmt.Errorf("%w: squad player %d not in player pool", ErrInvalidRequest, id)
		}
		byPosition[p.Position] = append(byPosition[p.Position], id)
	}

	effective := func(id int) float64 {
		score := valuations.Get(id)
		if preferred[id] {
			score += PreferredBonus
		}
		return score
	}

	needs := chosen.Needs()
	starting := make(map[int]bool, 11)
	starters := make([]int, 0, 11)
	for _, pos := range models.AllPositions {
		group := byPosition[pos]
		sort.Slice(group, func(i, j int) bool {
			si, sj := effective(group[i]), effective(group[j])
			if si != sj {
				return si > sj
			}
			return group[i] < group[j]
		})
		if len(group) < needs[pos] {
			return nil, fmt.Errorf("%w: need %d %s in squad for %s, have %d", ErrInsufficientPosition, needs[pos], pos, chosen, len(group))
		}
		for _, id := range group[:needs[pos]] {
			starters = append(starters, id)
			starting[id] = true
		}
	}

	bench := make([]int, 0, len(squad)-len(starters))
	for _, id := range squad {
		if !starting[id] {
			bench = append(bench, id)
		}
	}
	// outfield bench ordered by value, reserve keeper first
	sort.SliceStable(bench, func(i, j int) bool {
		gi := players[bench[i]].Position == models.PositionGoalkeeper
		gj := players[bench[j]].Position == models.PositionGoalkeeper
		if gi != gj {
			return gi
		}
		vi, vj := valuations.Get(bench[i]), valuations.Get(bench[j])
		if vi != vj {
			return vi > vj
		}
		return bench[i] < bench[j]
	})

	l.logger.WithFields(logrus.Fields{
		"formation": chosen.String(),
		"starters":  len(starters),
		"bench":     len(bench),
	}).Debug("Starting XI selected")

	return &models.Lineup{Starters: starters, Bench: bench, Formation: chosen}, nil
}
