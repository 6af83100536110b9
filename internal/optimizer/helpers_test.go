package optimizer

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/fpl-optimizer/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

// generatePool builds a deterministic pool with count players per position
func generatePool(seed int64, counts map[models.Position]int, clubs int) ([]models.Player, models.Valuations) {
	r := rand.New(rand.NewSource(seed))
	players := make([]models.Player, 0)
	values := make(models.Valuations)
	costRange := map[models.Position][2]int{
		models.PositionGoalkeeper: {40, 16},
		models.PositionDefender:   {40, 26},
		models.PositionMidfielder: {45, 80},
		models.PositionForward:    {45, 75},
	}

	id := 1
	for _, pos := range models.AllPositions {
		for i := 0; i < counts[pos]; i++ {
			cost := costRange[pos][0] + r.Intn(costRange[pos][1])
			players = append(players, models.Player{
				ID:       id,
				Name:     fmt.Sprintf("%s-%d", pos, id),
				Position: pos,
				ClubID:   1 + r.Intn(clubs),
				Cost:     cost,
				Status:   models.StatusAvailable,
				Form:     float64(r.Intn(90)) / 10,
			})
			values[id] = models.Round1(float64(cost) / 10 * (0.4 + 0.6*r.Float64()))
			id++
		}
	}
	return players, values
}

func standardPool(seed int64) ([]models.Player, models.Valuations) {
	return generatePool(seed, map[models.Position]int{
		models.PositionGoalkeeper: 5,
		models.PositionDefender:   12,
		models.PositionMidfielder: 12,
		models.PositionForward:    8,
	}, 12)
}

// cheapestBudget returns the cost of the cheapest feasible squad in millions
func cheapestBudget(t *testing.T, players []models.Player, clubCap int) float64 {
	t.Helper()
	inverse := make(models.Valuations, len(players))
	for _, p := range players {
		inverse[p.ID] = float64(1000 - p.Cost)
	}
	squad, err := NewSquadSelector(testLogger()).SelectSquad(context.Background(), players, inverse, models.OptimizationRequest{
		Budget:            1000,
		MaxPlayersPerClub: clubCap,
	})
	require.NoError(t, err)
	return models.CostToMillions(squad.TotalCost)
}

func intPtr(n int) *int {
	return &n
}

// assertValidSquad checks every hard squad constraint for a request
func assertValidSquad(t *testing.T, squad *models.Squad, players []models.Player, req models.OptimizationRequest) {
	t.Helper()
	require.NotNil(t, squad)
	require.Len(t, squad.PlayerIDs, models.SquadSize)

	index := models.IndexPlayers(players)
	seen := make(map[int]bool)
	positions := make(map[models.Position]int)
	clubs := make(map[int]int)
	total := 0
	for _, id := range squad.PlayerIDs {
		require.False(t, seen[id], "duplicate player %d", id)
		seen[id] = true
		p, ok := index[id]
		require.True(t, ok, "unknown player %d", id)
		positions[p.Position]++
		clubs[p.ClubID]++
		total += p.Cost
	}

	require.LessOrEqual(t, total, models.BudgetToCost(req.Budget))
	require.LessOrEqual(t, models.CostToMillions(total), req.Budget+1e-9)
	require.Equal(t, total, squad.TotalCost)
	for _, pos := range models.AllPositions {
		require.Equal(t, models.SquadQuota[pos], positions[pos], "position %s", pos)
	}
	for club, n := range clubs {
		require.LessOrEqual(t, n, req.MaxPlayersPerClub, "club %d", club)
	}
	for _, id := range req.PreferredPlayerIDs {
		require.True(t, seen[id], "preferred player %d missing", id)
	}
	for _, id := range req.ExcludedPlayerIDs {
		require.False(t, seen[id], "excluded player %d present", id)
	}
}

func combinations(ids []int, k int) [][]int {
	var out [][]int
	var rec func(start int, cur []int)
	rec = func(start int, cur []int) {
		if len(cur) == k {
			out = append(out, append([]int{}, cur...))
			return
		}
		for i := start; i < len(ids); i++ {
			rec(i+1, append(cur, ids[i]))
		}
	}
	rec(0, nil)
	return out
}

// bruteForceBest enumerates every squad of a small pool and returns the best value
func bruteForceBest(players []models.Player, values models.Valuations, budget, clubCap int, existing map[int]bool, maxDrops int) (float64, bool) {
	byPos := make(map[models.Position][]int)
	index := models.IndexPlayers(players)
	for _, p := range players {
		if p.Available() {
			byPos[p.Position] = append(byPos[p.Position], p.ID)
		}
	}
	groups := make([][][]int, len(models.AllPositions))
	for i, pos := range models.AllPositions {
		groups[i] = combinations(byPos[pos], models.SquadQuota[pos])
	}

	best := math.Inf(-1)
	found := false
	picked := make([]int, 0, models.SquadSize)
	var rec func(level int)
	rec = func(level int) {
		if level == len(groups) {
			cost := 0
			value := 0.0
			clubs := make(map[int]int)
			chosen := make(map[int]bool)
			for _, id := range picked {
				p := index[id]
				cost += p.Cost
				value += values.Get(id)
				clubs[p.ClubID]++
				if clubs[p.ClubID] > clubCap {
					return
				}
				chosen[id] = true
			}
			if cost > budget {
				return
			}
			if maxDrops >= 0 {
				drops := 0
				for id := range existing {
					if !chosen[id] {
						drops++
					}
				}
				if drops > maxDrops {
					return
				}
			}
			if value > best {
				best = value
				found = true
			}
			return
		}
		for _, combo := range groups[level] {
			n := len(picked)
			picked = append(picked, combo...)
			rec(level + 1)
			picked = picked[:n]
		}
	}
	rec(0)
	return best, found
}
