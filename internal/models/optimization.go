package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Formation is the outfield split of a starting XI; the goalkeeper is implied
type Formation struct {
	Defenders   int `json:"defenders"`
	Midfielders int `json:"midfielders"`
	Forwards    int `json:"forwards"`
}

// DefaultFormation is used when none or an invalid one is requested
var DefaultFormation = Formation{Defenders: 3, Midfielders: 4, Forwards: 3}

// ParseFormation parses "4-4-2" style strings
func ParseFormation(raw string) (Formation, error) {
	parts := strings.Split(strings.TrimSpace(raw), "-")
	if len(parts) != 3 {
		return Formation{}, fmt.Errorf("invalid formation %q: expected DEF-MID-FWD", raw)
	}
	counts := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Formation{}, fmt.Errorf("invalid formation %q: %w", raw, err)
		}
		counts[i] = n
	}
	f := Formation{Defenders: counts[0], Midfielders: counts[1], Forwards: counts[2]}
	if err := f.Validate(); err != nil {
		return Formation{}, err
	}
	return f, nil
}

// Validate checks the formation sums to ten outfield players within the squad quota
func (f Formation) Validate() error {
	if f.Defenders+f.Midfielders+f.Forwards != 10 {
		return fmt.Errorf("invalid formation %s: outfield players must sum to 10", f)
	}
	if f.Defenders < 3 || f.Defenders > SquadQuota[PositionDefender] {
		return fmt.Errorf("invalid formation %s: defenders must be between 3 and %d", f, SquadQuota[PositionDefender])
	}
	if f.Midfielders < 2 || f.Midfielders > SquadQuota[PositionMidfielder] {
		return fmt.Errorf("invalid formation %s: midfielders must be between 2 and %d", f, SquadQuota[PositionMidfielder])
	}
	if f.Forwards < 1 || f.Forwards > SquadQuota[PositionForward] {
		return fmt.Errorf("invalid formation %s: forwards must be between 1 and %d", f, SquadQuota[PositionForward])
	}
	return nil
}

// Needs returns starters required per position
func (f Formation) Needs() map[Position]int {
	return map[Position]int{
		PositionGoalkeeper: 1,
		PositionDefender:   f.Defenders,
		PositionMidfielder: f.Midfielders,
		PositionForward:    f.Forwards,
	}
}

func (f Formation) String() string {
	return fmt.Sprintf("%d-%d-%d", f.Defenders, f.Midfielders, f.Forwards)
}

// OptimizationRequest carries the user's constraints for one squad optimization
type OptimizationRequest struct {
	Budget             float64    `json:"budget"`
	Formation          *Formation `json:"formation,omitempty"`
	PreferredPlayerIDs []int      `json:"preferred_player_ids,omitempty"`
	ExcludedPlayerIDs  []int      `json:"excluded_player_ids,omitempty"`
	MaxPlayersPerClub  int        `json:"max_players_per_club"`
	ExistingSquad      []int      `json:"existing_squad,omitempty"`
	MaxTransfers       *int       `json:"max_transfers,omitempty"`
	StartGameweek      int        `json:"start_gameweek,omitempty"`
	HorizonGameweeks   int        `json:"horizon_gameweeks,omitempty"`
}

// Squad is an immutable 15-player optimization result
type Squad struct {
	PlayerIDs      []int   `json:"player_ids"`
	TotalCost      int     `json:"total_cost"`
	ProjectedValue float64 `json:"projected_value"`
	TransfersIn    []int   `json:"transfers_in,omitempty"`
	TransfersOut   []int   `json:"transfers_out,omitempty"`
}

// Contains reports whether id is in the squad
func (s *Squad) Contains(id int) bool {
	for _, pid := range s.PlayerIDs {
		if pid == id {
			return true
		}
	}
	return false
}

// Lineup is the starting XI and bench derived from a squad
type Lineup struct {
	Starters  []int     `json:"starters"`
	Bench     []int     `json:"bench"`
	Formation Formation `json:"formation"`
}

// CaptaincyChoice names the captain and vice-captain among the starters
type CaptaincyChoice struct {
	CaptainID             int     `json:"captain_id"`
	ViceCaptainID         int     `json:"vice_captain_id"`
	CaptainScore          float64 `json:"captain_score"`
	ViceCaptainScore      float64 `json:"vice_captain_score"`
	CaptainExpectedPoints float64 `json:"captain_expected_points"`
}

// TransferSuggestion proposes swapping one squad member for an outside player
type TransferSuggestion struct {
	OutPlayerID      int      `json:"out_player_id"`
	InPlayerID       int      `json:"in_player_id"`
	Position         Position `json:"position"`
	CostDelta        int      `json:"cost_delta"`
	ValueDelta       float64  `json:"value_delta"`
	FormDelta        float64  `json:"form_delta"`
	ImprovementScore float64  `json:"improvement_score"`
	Priority         int      `json:"priority"`
	Reasons          []string `json:"reasons,omitempty"`
}

// OptimizationResult is the full pipeline output for one request
type OptimizationResult struct {
	Squad               Squad            `json:"squad"`
	Lineup              Lineup           `json:"lineup"`
	Captaincy           CaptaincyChoice  `json:"captaincy"`
	TotalCost           float64          `json:"total_cost"`
	BudgetRemaining     float64          `json:"budget_remaining"`
	ExpectedPoints      float64          `json:"expected_points"`
	SquadExpectedPoints float64          `json:"squad_expected_points"`
	ObjectiveValue      float64          `json:"objective_value"`
	Gameweek            int              `json:"gameweek,omitempty"`
	HorizonGameweeks    int              `json:"horizon_gameweeks,omitempty"`
	FixtureAnalysis     *FixtureAnalysis `json:"fixture_analysis,omitempty"`
}
