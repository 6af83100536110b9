package optimizer

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/fpl-optimizer/internal/models"
)

// seasonPool is roughly the size of a real FPL player list
var seasonPool = map[models.Position]int{
	models.PositionGoalkeeper: 30,
	models.PositionDefender:   100,
	models.PositionMidfielder: 120,
	models.PositionForward:    50,
}

// clubFreeOptimum solves the squad program with club caps lifted: an exact
// count knapsack per position, merged over positions by budget
func clubFreeOptimum(players []models.Player, values models.Valuations, budget int) float64 {
	total := make([]float64, budget+1)
	for _, pos := range models.AllPositions {
		need := models.SquadQuota[pos]
		table := make([][]float64, need+1)
		for k := range table {
			table[k] = make([]float64, budget+1)
			if k > 0 {
				for b := range table[k] {
					table[k][b] = math.Inf(-1)
				}
			}
		}
		for _, p := range players {
			if p.Position != pos {
				continue
			}
			v := values.Get(p.ID)
			for k := need; k >= 1; k-- {
				for b := budget; b >= p.Cost; b-- {
					if c := table[k-1][b-p.Cost] + v; c > table[k][b] {
						table[k][b] = c
					}
				}
			}
		}

		merged := make([]float64, budget+1)
		for b := range merged {
			merged[b] = math.Inf(-1)
			for x := 0; x <= b; x++ {
				if c := table[need][x] + total[b-x]; c > merged[b] {
					merged[b] = c
				}
			}
		}
		total = merged
	}
	return total[budget]
}

func TestSelectSquad_SeasonSizedPoolsFinishQuickly(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping season-sized pools in short mode")
	}
	selector := NewSquadSelector(testLogger())
	req := models.OptimizationRequest{Budget: 100, MaxPlayersPerClub: 3}

	for seed := int64(1); seed <= 5; seed++ {
		players, values := generatePool(seed, seasonPool, 20)
		require.Len(t, players, 300)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		start := time.Now()
		squad, stats, err := selector.SelectSquadWithStats(ctx, players, values, req)
		duration := time.Since(start)
		cancel()

		require.NoError(t, err, "seed %d", seed)
		assertValidSquad(t, squad, players, req)
		assert.LessOrEqual(t, squad.ProjectedValue, stats.RootBound+1e-6, "seed %d", seed)
		assert.Less(t, duration, 10*time.Second, "seed %d took %v", seed, duration)

		t.Logf("seed %d: %d players, %d nodes, %v, value %.1f, bound %.2f",
			seed, len(players), stats.NodesExplored, duration, squad.ProjectedValue, stats.RootBound)
	}
}

func TestSelectSquad_DoubledPoolFinishesQuickly(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping doubled pool in short mode")
	}
	counts := make(map[models.Position]int, len(seasonPool))
	for pos, n := range seasonPool {
		counts[pos] = 2*n - 5
	}
	players, values := generatePool(11, counts, 20)
	require.Len(t, players, 580)

	req := models.OptimizationRequest{Budget: 100, MaxPlayersPerClub: 3}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start := time.Now()
	squad, stats, err := NewSquadSelector(testLogger()).SelectSquadWithStats(ctx, players, values, req)
	duration := time.Since(start)

	require.NoError(t, err)
	assertValidSquad(t, squad, players, req)
	assert.Less(t, duration, 10*time.Second)
	t.Logf("580 players: %d nodes, %v", stats.NodesExplored, duration)
}

func TestSelectSquad_UncappedClubsMatchKnapsack(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping season-sized pools in short mode")
	}
	selector := NewSquadSelector(testLogger())

	for seed := int64(21); seed <= 23; seed++ {
		players, values := generatePool(seed, seasonPool, 20)
		for _, budget := range []float64{83.7, 100} {
			req := models.OptimizationRequest{Budget: budget, MaxPlayersPerClub: models.SquadSize}
			want := clubFreeOptimum(players, values, models.BudgetToCost(budget))

			squad, err := selector.SelectSquad(context.Background(), players, values, req)
			require.NoError(t, err, "seed %d budget %.1f", seed, budget)
			assertValidSquad(t, squad, players, req)
			assert.InDelta(t, want, squad.ProjectedValue, 1e-6, "seed %d budget %.1f", seed, budget)
		}
	}
}

func TestSelectSquad_SeasonSizedPoolWithTransferLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping season-sized pools in short mode")
	}
	players, values := generatePool(4, seasonPool, 20)
	selector := NewSquadSelector(testLogger())

	// the cheapest legal squad is a weak starting point that wants many changes
	inverse := make(models.Valuations, len(players))
	for _, p := range players {
		inverse[p.ID] = float64(1000 - p.Cost)
	}
	current, err := selector.SelectSquad(context.Background(), players, inverse, models.OptimizationRequest{Budget: 100, MaxPlayersPerClub: 3})
	require.NoError(t, err)

	previous := 0.0
	for _, limit := range []int{0, 1, 2, 3, 5} {
		req := models.OptimizationRequest{
			Budget:            100,
			MaxPlayersPerClub: 3,
			ExistingSquad:     current.PlayerIDs,
			MaxTransfers:      intPtr(limit),
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		start := time.Now()
		squad, err := selector.SelectSquad(ctx, players, values, req)
		duration := time.Since(start)
		cancel()

		require.NoError(t, err, "limit %d", limit)
		assertValidSquad(t, squad, players, req)
		assert.LessOrEqual(t, len(squad.TransfersOut), limit)
		assert.Len(t, squad.TransfersIn, len(squad.TransfersOut))
		assert.GreaterOrEqual(t, squad.ProjectedValue, previous-1e-9, "limit %d", limit)
		assert.Less(t, duration, 10*time.Second, "limit %d took %v", limit, duration)
		previous = squad.ProjectedValue
	}
}

func BenchmarkSelectSquad_SeasonSizedPool(b *testing.B) {
	players, values := generatePool(1, seasonPool, 20)
	selector := NewSquadSelector(testLogger())
	req := models.OptimizationRequest{Budget: 100, MaxPlayersPerClub: 3}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := selector.SelectSquad(context.Background(), players, values, req); err != nil {
			b.Fatal(err)
		}
	}
}
