package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/fpl-optimizer/internal/models"
)

func TestFixtureMultiplier(t *testing.T) {
	scoring := DefaultScoringConfig()

	tests := []struct {
		name    string
		fixture models.FixtureContext
		want    float64
	}{
		{"neutral away", models.FixtureContext{Difficulty: 3}, 1.0},
		{"neutral home", models.FixtureContext{Difficulty: 3, IsHome: true}, 1.05},
		{"easiest home", models.FixtureContext{Difficulty: 1, IsHome: true}, 1.05 * 1.2},
		{"hardest away", models.FixtureContext{Difficulty: 5}, 0.8},
		{"unrated counts as neutral", models.FixtureContext{Difficulty: 0}, 1.0},
		{"out of range clamps", models.FixtureContext{Difficulty: 9}, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, scoring.FixtureMultiplier(tt.fixture), 1e-9)
		})
	}
}

func TestSelectCaptaincy_FixtureAdjusted(t *testing.T) {
	selector := NewCaptainSelector(DefaultScoringConfig(), testLogger())
	lineup := &models.Lineup{Starters: []int{1, 2, 3}}
	values := models.Valuations{1: 6.0, 2: 5.0, 3: 4.0}
	fixtures := map[int]models.FixtureContext{
		1: {Difficulty: 5},
		2: {Difficulty: 2, IsHome: true},
		3: {Difficulty: 3},
	}

	choice, err := selector.SelectCaptaincy(lineup, values, fixtures)
	require.NoError(t, err)

	// 5.0 * 1.05 * 1.1 beats 6.0 * 0.8
	assert.Equal(t, 2, choice.CaptainID)
	assert.Equal(t, 1, choice.ViceCaptainID)
	assert.InDelta(t, 5.775, choice.CaptainScore, 1e-9)
	assert.InDelta(t, 4.8, choice.ViceCaptainScore, 1e-9)
	assert.Equal(t, 11.55, choice.CaptainExpectedPoints)
}

func TestSelectCaptaincy_CaptainBeatsEveryStarter(t *testing.T) {
	squad, players, values := lineupSquad()
	lineup, err := NewLineupSelector(testLogger()).SelectLineup(squad, players, values, nil, nil)
	require.NoError(t, err)

	fixtures := make(map[int]models.FixtureContext)
	for i, id := range lineup.Starters {
		fixtures[id] = models.FixtureContext{Difficulty: 1 + i%5, IsHome: i%2 == 0}
	}

	selector := NewCaptainSelector(DefaultScoringConfig(), testLogger())
	choice, err := selector.SelectCaptaincy(lineup, values, fixtures)
	require.NoError(t, err)

	assert.NotEqual(t, choice.CaptainID, choice.ViceCaptainID)
	assert.Contains(t, lineup.Starters, choice.CaptainID)
	assert.Contains(t, lineup.Starters, choice.ViceCaptainID)
	for _, id := range lineup.Starters {
		assert.GreaterOrEqual(t, choice.CaptainScore, selector.AdjustedValue(id, values, fixtures))
	}
}

func TestSelectCaptaincy_TieBreaksOnLowerID(t *testing.T) {
	selector := NewCaptainSelector(DefaultScoringConfig(), testLogger())
	lineup := &models.Lineup{Starters: []int{9, 4, 7}}
	values := models.Valuations{9: 5.0, 4: 5.0, 7: 5.0}

	choice, err := selector.SelectCaptaincy(lineup, values, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, choice.CaptainID)
	assert.Equal(t, 7, choice.ViceCaptainID)
}

func TestSelectCaptaincy_MissingFixtureKeepsValuation(t *testing.T) {
	selector := NewCaptainSelector(DefaultScoringConfig(), testLogger())
	values := models.Valuations{1: 4.0}

	assert.Equal(t, 4.0, selector.AdjustedValue(1, values, map[int]models.FixtureContext{}))
	assert.Equal(t, 0.0, selector.AdjustedValue(2, values, nil))
}

func TestSelectCaptaincy_EmptyLineup(t *testing.T) {
	selector := NewCaptainSelector(DefaultScoringConfig(), testLogger())

	_, err := selector.SelectCaptaincy(&models.Lineup{}, models.Valuations{}, nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = selector.SelectCaptaincy(nil, models.Valuations{}, nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
