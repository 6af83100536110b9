package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/fpl-optimizer/internal/models"
)

// transferFixture builds a healthy 15-player squad: form 5, neutral fixtures,
// valuation 5.0 at cost 5.0
func transferFixture() TransferInput {
	in := TransferInput{
		Valuations:     models.Valuations{},
		Fixtures:       map[int]models.FixtureContext{},
		MaxSuggestions: 10,
	}
	id := 1
	for _, pos := range models.AllPositions {
		for i := 0; i < models.SquadQuota[pos]; i++ {
			in.Players = append(in.Players, models.Player{ID: id, Position: pos, ClubID: id, Cost: 50, Form: 5.0})
			in.Squad = append(in.Squad, id)
			in.Valuations[id] = 5.0
			in.Fixtures[id] = models.FixtureContext{ClubID: id, Difficulty: 3}
			id++
		}
	}
	return in
}

func TestSuggestTransfers_ReplacesStrugglingDefender(t *testing.T) {
	in := transferFixture()
	weak := 3
	in.Players[weak-1].Form = 1.0
	in.Valuations[weak] = 2.0
	in.Fixtures[weak] = models.FixtureContext{ClubID: weak, Difficulty: 5}

	alt := 40
	in.Players = append(in.Players, models.Player{ID: alt, Position: models.PositionDefender, ClubID: 40, Cost: 45, Form: 7.0, Status: models.StatusAvailable})
	in.Valuations[alt] = 6.0
	in.Fixtures[alt] = models.FixtureContext{ClubID: 40, Difficulty: 2, IsHome: true}

	advisor := NewTransferAdvisor(DefaultTransferWeights(), testLogger())
	suggestions := advisor.SuggestTransfers(in)

	require.Len(t, suggestions, 1)
	s := suggestions[0]
	assert.Equal(t, weak, s.OutPlayerID)
	assert.Equal(t, alt, s.InPlayerID)
	assert.Equal(t, models.PositionDefender, s.Position)
	assert.Equal(t, -5, s.CostDelta)
	assert.Equal(t, 4.0, s.ValueDelta)
	assert.Equal(t, 6.0, s.FormDelta)
	// 4 (value, capped) + 3 (form, capped) + 1.5 (fixture) + 1 (cheaper)
	assert.Equal(t, 9.5, s.ImprovementScore)
	assert.Equal(t, 5, s.Priority)
	assert.GreaterOrEqual(t, s.Priority, 3)
	assert.NotEmpty(t, s.Reasons)
}

func TestSuggestTransfers_HealthySquadHasNoSuggestions(t *testing.T) {
	in := transferFixture()
	// outsiders no better than the incumbents
	for i, pos := range models.AllPositions {
		id := 50 + i
		in.Players = append(in.Players, models.Player{ID: id, Position: pos, ClubID: id, Cost: 40, Form: 5.5})
		in.Valuations[id] = 5.2
		in.Fixtures[id] = models.FixtureContext{ClubID: id, Difficulty: 2}
	}

	advisor := NewTransferAdvisor(DefaultTransferWeights(), testLogger())
	suggestions := advisor.SuggestTransfers(in)

	assert.NotNil(t, suggestions)
	assert.Empty(t, suggestions)
}

func TestSuggestTransfers_RespectsBudgetHeadroom(t *testing.T) {
	in := transferFixture()
	in.Valuations[13] = 1.0

	pricey := 70
	in.Players = append(in.Players, models.Player{ID: pricey, Position: models.PositionForward, ClubID: 70, Cost: 60})
	in.Valuations[pricey] = 8.0
	in.Fixtures[pricey] = models.FixtureContext{ClubID: 70, Difficulty: 3}

	advisor := NewTransferAdvisor(DefaultTransferWeights(), testLogger())

	in.BudgetHeadroom = 5
	assert.Empty(t, advisor.SuggestTransfers(in))

	in.BudgetHeadroom = 10
	suggestions := advisor.SuggestTransfers(in)
	require.Len(t, suggestions, 1)
	assert.Equal(t, 13, suggestions[0].OutPlayerID)
	assert.Equal(t, pricey, suggestions[0].InPlayerID)
	assert.Equal(t, 10, suggestions[0].CostDelta)
}

func TestSuggestTransfers_FormRouteNeedsAcceptableFixture(t *testing.T) {
	in := transferFixture()
	in.Players[7].Form = 1.0 // midfielder 8

	inForm := 80
	in.Players = append(in.Players, models.Player{ID: inForm, Position: models.PositionMidfielder, ClubID: 80, Cost: 50, Form: 8.0})
	in.Valuations[inForm] = 5.0
	in.Fixtures[inForm] = models.FixtureContext{ClubID: 80, Difficulty: 4}

	advisor := NewTransferAdvisor(DefaultTransferWeights(), testLogger())
	assert.Empty(t, advisor.SuggestTransfers(in), "hard fixture blocks the form route")

	in.Fixtures[inForm] = models.FixtureContext{ClubID: 80, Difficulty: 3}
	suggestions := advisor.SuggestTransfers(in)
	require.Len(t, suggestions, 1)
	assert.Equal(t, 8, suggestions[0].OutPlayerID)
	// form 7*0.5 capped at 3, plus cost neutral bonus
	assert.Equal(t, 4.0, suggestions[0].ImprovementScore)
	assert.Equal(t, 3, suggestions[0].Priority)
}

func TestSuggestTransfers_OrderingAndTruncation(t *testing.T) {
	in := transferFixture()
	// weak keeper and weak forward, each with one clear upgrade
	in.Valuations[1] = 2.0
	in.Valuations[13] = 4.0
	in.Players = append(in.Players,
		models.Player{ID: 91, Position: models.PositionGoalkeeper, ClubID: 91, Cost: 50, Form: 5.0},
		models.Player{ID: 93, Position: models.PositionForward, ClubID: 93, Cost: 50, Form: 5.0},
	)
	in.Valuations[91] = 6.0
	in.Valuations[93] = 5.0
	in.Fixtures[91] = models.FixtureContext{ClubID: 91, Difficulty: 3}
	in.Fixtures[93] = models.FixtureContext{ClubID: 93, Difficulty: 3}

	advisor := NewTransferAdvisor(DefaultTransferWeights(), testLogger())
	suggestions := advisor.SuggestTransfers(in)
	require.Len(t, suggestions, 2)
	assert.Equal(t, 91, suggestions[0].InPlayerID)
	assert.Equal(t, 93, suggestions[1].InPlayerID)
	assert.GreaterOrEqual(t, suggestions[0].ImprovementScore, suggestions[1].ImprovementScore)

	in.MaxSuggestions = 1
	truncated := advisor.SuggestTransfers(in)
	require.Len(t, truncated, 1)
	assert.Equal(t, 91, truncated[0].InPlayerID)
}

func TestSuggestTransfers_EachIncomingPlayerOnce(t *testing.T) {
	in := transferFixture()
	in.Valuations[3] = 2.0
	in.Valuations[4] = 3.0

	star := 45
	in.Players = append(in.Players, models.Player{ID: star, Position: models.PositionDefender, ClubID: 45, Cost: 50, Form: 5.0})
	in.Valuations[star] = 7.0
	in.Fixtures[star] = models.FixtureContext{ClubID: 45, Difficulty: 3}

	advisor := NewTransferAdvisor(DefaultTransferWeights(), testLogger())
	suggestions := advisor.SuggestTransfers(in)

	require.Len(t, suggestions, 1)
	assert.Equal(t, star, suggestions[0].InPlayerID)
	assert.Equal(t, 3, suggestions[0].OutPlayerID, "weakest incumbent keeps the upgrade")
}

func TestSuggestTransfers_SkipsUnavailableAndOwned(t *testing.T) {
	in := transferFixture()
	in.Valuations[3] = 1.0
	in.Players = append(in.Players, models.Player{ID: 46, Position: models.PositionDefender, ClubID: 46, Cost: 50, Status: models.StatusInjured})
	in.Valuations[46] = 9.0
	in.Fixtures[46] = models.FixtureContext{ClubID: 46, Difficulty: 1}

	advisor := NewTransferAdvisor(DefaultTransferWeights(), testLogger())
	assert.Empty(t, advisor.SuggestTransfers(in))
}

func TestTransferPriority(t *testing.T) {
	advisor := NewTransferAdvisor(DefaultTransferWeights(), testLogger())

	tests := []struct {
		score float64
		want  int
	}{
		{0.5, 1},
		{2.0, 2},
		{3.99, 2},
		{4.0, 3},
		{6.5, 4},
		{8.0, 5},
		{10.0, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, advisor.priority(tt.score), "score %.2f", tt.score)
	}
}
