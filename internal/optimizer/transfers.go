package optimizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-optimizer/internal/models"
)

// TransferWeights holds the weakness and improvement heuristics.
// Defaults reproduce the stock advisor; all values are tunable.
type TransferWeights struct {
	LowFormThreshold    float64 `json:"low_form_threshold"`
	LowFormWeight       float64 `json:"low_form_weight"`
	HardFixtureMin      int     `json:"hard_fixture_min"`
	HardFixtureWeight   float64 `json:"hard_fixture_weight"`
	LowValueThreshold   float64 `json:"low_value_threshold"`
	LowValueWeight      float64 `json:"low_value_weight"`
	ValuePerCostFloor   float64 `json:"value_per_cost_floor"`
	ValuePerCostWeight  float64 `json:"value_per_cost_weight"`
	WeakestPerPosition  int     `json:"weakest_per_position"`
	CandidatesPerPlayer int     `json:"candidates_per_player"`

	MinValueGainRatio float64 `json:"min_value_gain_ratio"`
	MinFormGain       float64 `json:"min_form_gain"`
	MaxAcceptableFDR  int     `json:"max_acceptable_fdr"`

	ValueCap       float64 `json:"value_cap"`
	FormScale      float64 `json:"form_scale"`
	FormCap        float64 `json:"form_cap"`
	FixtureScale   float64 `json:"fixture_scale"`
	FixtureCap     float64 `json:"fixture_cap"`
	CostNeutralBon float64 `json:"cost_neutral_bonus"`

	PriorityThresholds [4]float64 `json:"priority_thresholds"`
}

// DefaultTransferWeights returns the stock advisor constants
func DefaultTransferWeights() TransferWeights {
	return TransferWeights{
		LowFormThreshold:    3.0,
		LowFormWeight:       3.0,
		HardFixtureMin:      4,
		HardFixtureWeight:   2.0,
		LowValueThreshold:   3.5,
		LowValueWeight:      2.0,
		ValuePerCostFloor:   0.5,
		ValuePerCostWeight:  1.0,
		WeakestPerPosition:  2,
		CandidatesPerPlayer: 3,

		MinValueGainRatio: 1.10,
		MinFormGain:       2.0,
		MaxAcceptableFDR:  3,

		ValueCap:       4.0,
		FormScale:      0.5,
		FormCap:        3.0,
		FixtureScale:   0.5,
		FixtureCap:     2.0,
		CostNeutralBon: 1.0,

		// score thresholds for priorities 2, 3, 4 and 5
		PriorityThresholds: [4]float64{2.0, 4.0, 6.0, 8.0},
	}
}

// TransferInput is the read-only snapshot for one advisory call
type TransferInput struct {
	Squad          []int
	Players        []models.Player
	Valuations     models.Valuations
	Fixtures       map[int]models.FixtureContext
	BudgetHeadroom int
	MaxSuggestions int
}

// TransferAdvisor proposes like-for-like replacements for the weakest squad members
type TransferAdvisor struct {
	weights TransferWeights
	logger  *logrus.Entry
}

// NewTransferAdvisor creates a transfer advisor
func NewTransferAdvisor(weights TransferWeights, logger *logrus.Logger) *TransferAdvisor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TransferAdvisor{
		weights: weights,
		logger:  logger.WithField("component", "transfer_advisor"),
	}
}

type weakPlayer struct {
	player   models.Player
	value    float64
	weakness float64
	reasons  []string
}

// SuggestTransfers never fails: no improvement yields an empty list
func (a *TransferAdvisor) SuggestTransfers(in TransferInput) []models.TransferSuggestion {
	owned := make(map[int]bool, len(in.Squad))
	for _, id := range in.Squad {
		owned[id] = true
	}
	index := models.IndexPlayers(in.Players)

	suggestions := make([]models.TransferSuggestion, 0)
	for _, pos := range models.AllPositions {
		incumbents := make([]weakPlayer, 0, 5)
		for _, id := range in.Squad {
			p, ok := index[id]
			if !ok || p.Position != pos {
				continue
			}
			incumbents = append(incumbents, a.weakness(p, in))
		}
		sort.Slice(incumbents, func(i, j int) bool {
			if incumbents[i].weakness != incumbents[j].weakness {
				return incumbents[i].weakness > incumbents[j].weakness
			}
			if incumbents[i].value != incumbents[j].value {
				return incumbents[i].value < incumbents[j].value
			}
			return incumbents[i].player.ID < incumbents[j].player.ID
		})
		if len(incumbents) > a.weights.WeakestPerPosition {
			incumbents = incumbents[:a.weights.WeakestPerPosition]
		}

		pool := a.candidatePool(pos, in, owned)
		for _, inc := range incumbents {
			suggestions = append(suggestions, a.replacements(inc, pool, in)...)
		}
	}

	suggestions = dedupeByIncoming(suggestions)
	sort.Slice(suggestions, func(i, j int) bool {
		return suggestionLess(suggestions[j], suggestions[i])
	})
	if in.MaxSuggestions >= 0 && len(suggestions) > in.MaxSuggestions {
		suggestions = suggestions[:in.MaxSuggestions]
	}

	a.logger.WithFields(logrus.Fields{
		"squad_size":  len(in.Squad),
		"suggestions": len(suggestions),
		"headroom":    models.CostToMillions(in.BudgetHeadroom),
	}).Debug("Transfer suggestions generated")

	return suggestions
}

func (a *TransferAdvisor) weakness(p models.Player, in TransferInput) weakPlayer {
	w := weakPlayer{player: p, value: in.Valuations.Get(p.ID)}

	if p.Form < a.weights.LowFormThreshold {
		w.weakness += a.weights.LowFormWeight
		w.reasons = append(w.reasons, fmt.Sprintf("poor form (%.1f)", p.Form))
	}
	if d := fixtureDifficulty(in.Fixtures, p.ID); d >= a.weights.HardFixtureMin {
		w.weakness += a.weights.HardFixtureWeight
		if _, ok := in.Fixtures[p.ID]; ok {
			w.reasons = append(w.reasons, fmt.Sprintf("hard fixture (FDR %d)", d))
		} else {
			w.reasons = append(w.reasons, "no fixture")
		}
	}
	if w.value < a.weights.LowValueThreshold {
		w.weakness += a.weights.LowValueWeight
		w.reasons = append(w.reasons, fmt.Sprintf("low projection (%.1f pts)", w.value))
	}
	if w.value/p.CostMillions() < a.weights.ValuePerCostFloor {
		w.weakness += a.weights.ValuePerCostWeight
		w.reasons = append(w.reasons, "poor value for money")
	}
	return w
}

// candidatePool lists unowned available players of a position, best first
func (a *TransferAdvisor) candidatePool(pos models.Position, in TransferInput, owned map[int]bool) []models.Player {
	pool := make([]models.Player, 0)
	for _, p := range in.Players {
		if p.Position != pos || owned[p.ID] || !p.Available() || p.Cost <= 0 {
			continue
		}
		pool = append(pool, p)
	}
	sort.Slice(pool, func(i, j int) bool {
		vi, vj := in.Valuations.Get(pool[i].ID), in.Valuations.Get(pool[j].ID)
		if vi != vj {
			return vi > vj
		}
		if pool[i].Form != pool[j].Form {
			return pool[i].Form > pool[j].Form
		}
		return pool[i].ID < pool[j].ID
	})
	return pool
}

func (a *TransferAdvisor) replacements(inc weakPlayer, pool []models.Player, in TransferInput) []models.TransferSuggestion {
	out := make([]models.TransferSuggestion, 0, a.weights.CandidatesPerPlayer)
	maxCost := inc.player.Cost + in.BudgetHeadroom
	incDifficulty := fixtureDifficulty(in.Fixtures, inc.player.ID)

	for _, cand := range pool {
		if len(out) >= a.weights.CandidatesPerPlayer {
			break
		}
		if cand.Cost > maxCost {
			continue
		}

		candValue := in.Valuations.Get(cand.ID)
		candDifficulty := fixtureDifficulty(in.Fixtures, cand.ID)
		_, candHasFixture := in.Fixtures[cand.ID]
		acceptableFixture := candHasFixture && candDifficulty <= a.weights.MaxAcceptableFDR

		valueBetter := candValue >= inc.value*a.weights.MinValueGainRatio && candValue > inc.value
		formBetter := cand.Form >= inc.player.Form+a.weights.MinFormGain && acceptableFixture
		if !valueBetter && !formBetter {
			continue
		}

		valueDelta := candValue - inc.value
		formDelta := cand.Form - inc.player.Form
		fixtureDelta := float64(incDifficulty - candDifficulty)
		costDelta := cand.Cost - inc.player.Cost

		score := clamp(valueDelta, 0, a.weights.ValueCap) +
			clamp(formDelta*a.weights.FormScale, 0, a.weights.FormCap) +
			clamp(fixtureDelta*a.weights.FixtureScale, 0, a.weights.FixtureCap)
		if costDelta <= 0 {
			score += a.weights.CostNeutralBon
		}
		score = models.Round2(score)
		if score <= 0 {
			continue
		}

		reasons := append([]string{}, inc.reasons...)
		if valueDelta > 0 {
			reasons = append(reasons, fmt.Sprintf("+%.1f projected points", valueDelta))
		}
		if formDelta > 0 {
			reasons = append(reasons, fmt.Sprintf("form %.1f vs %.1f", cand.Form, inc.player.Form))
		}
		if fixtureDelta > 0 {
			reasons = append(reasons, fmt.Sprintf("easier fixture (FDR %d vs %d)", candDifficulty, incDifficulty))
		}
		if costDelta < 0 {
			reasons = append(reasons, fmt.Sprintf("saves £%.1fm", models.CostToMillions(-costDelta)))
		}

		out = append(out, models.TransferSuggestion{
			OutPlayerID:      inc.player.ID,
			InPlayerID:       cand.ID,
			Position:         cand.Position,
			CostDelta:        costDelta,
			ValueDelta:       models.Round2(valueDelta),
			FormDelta:        models.Round2(formDelta),
			ImprovementScore: score,
			Priority:         a.priority(score),
			Reasons:          reasons,
		})
	}
	return out
}

func (a *TransferAdvisor) priority(score float64) int {
	tier := 1
	for _, threshold := range a.weights.PriorityThresholds {
		if score >= threshold {
			tier++
		}
	}
	return tier
}

// fixtureDifficulty treats a blank gameweek as the hardest fixture
func fixtureDifficulty(fixtures map[int]models.FixtureContext, id int) int {
	f, ok := fixtures[id]
	if !ok {
		return 5
	}
	return f.NormalizedDifficulty()
}

// suggestionLess orders by priority, score, then ids descending so the
// ascending-id pair ranks first after the reversed sort
func suggestionLess(a, b models.TransferSuggestion) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	if a.ImprovementScore != b.ImprovementScore {
		return a.ImprovementScore < b.ImprovementScore
	}
	if a.OutPlayerID != b.OutPlayerID {
		return a.OutPlayerID > b.OutPlayerID
	}
	return a.InPlayerID > b.InPlayerID
}

func dedupeByIncoming(suggestions []models.TransferSuggestion) []models.TransferSuggestion {
	best := make(map[int]models.TransferSuggestion, len(suggestions))
	for _, s := range suggestions {
		current, ok := best[s.InPlayerID]
		if !ok || suggestionLess(current, s) {
			best[s.InPlayerID] = s
		}
	}
	out := make([]models.TransferSuggestion, 0, len(best))
	for _, s := range best {
		out = append(out, s)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
