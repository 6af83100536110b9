package models

import (
	"fmt"
	"math"
	"strings"
)

// Position is a player's squad role
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

// AllPositions lists positions in squad order
var AllPositions = []Position{PositionGoalkeeper, PositionDefender, PositionMidfielder, PositionForward}

// SquadQuota is the fixed full-roster composition
var SquadQuota = map[Position]int{
	PositionGoalkeeper: 2,
	PositionDefender:   5,
	PositionMidfielder: 5,
	PositionForward:    3,
}

// SquadSize is the number of players in a full squad
const SquadSize = 15

// ParsePosition accepts the engine codes plus the "GKP" spelling used by the FPL API
func ParsePosition(raw string) (Position, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "GK", "GKP":
		return PositionGoalkeeper, nil
	case "DEF":
		return PositionDefender, nil
	case "MID":
		return PositionMidfielder, nil
	case "FWD":
		return PositionForward, nil
	}
	return "", fmt.Errorf("unknown player position: %q", raw)
}

// Order returns the position's index in squad order
func (p Position) Order() int {
	for i, pos := range AllPositions {
		if pos == p {
			return i
		}
	}
	return len(AllPositions)
}

// Valid reports whether p is one of the four squad positions
func (p Position) Valid() bool {
	return p.Order() < len(AllPositions)
}

// Player availability codes as published by the FPL API
const (
	StatusAvailable   = "a"
	StatusDoubtful    = "d"
	StatusInjured     = "i"
	StatusSuspended   = "s"
	StatusUnavailable = "u"
)

// Player is the per-request view of a selectable player.
// Cost is held in tenths of a million (95 = £9.5m) so budget checks stay exact.
type Player struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Position    Position `json:"position"`
	ClubID      int      `json:"club_id"`
	Cost        int      `json:"cost"`
	Status      string   `json:"status"`
	Form        float64  `json:"form"`
	TotalPoints int      `json:"total_points"`
}

// Available reports whether the player may be selected
func (p Player) Available() bool {
	return p.Status == "" || p.Status == StatusAvailable
}

// CostMillions returns the player's cost in millions
func (p Player) CostMillions() float64 {
	return CostToMillions(p.Cost)
}

// Validate checks the record invariants
func (p Player) Validate() error {
	if !p.Position.Valid() {
		return fmt.Errorf("player %d: unknown position %q", p.ID, p.Position)
	}
	if p.Cost <= 0 {
		return fmt.Errorf("player %d: cost must be greater than zero", p.ID)
	}
	return nil
}

// Valuations maps player id to projected points; values are read-only snapshots
type Valuations map[int]float64

// Get returns the valuation for id, clamping negative or missing values to zero
func (v Valuations) Get(id int) float64 {
	value, ok := v[id]
	if !ok || value < 0 || math.IsNaN(value) {
		return 0
	}
	return value
}

// Value ignores the gameweek so a flat valuation map can stand in for a per-gameweek oracle
func (v Valuations) Value(playerID, _ int) float64 {
	return v.Get(playerID)
}

// CostToMillions converts tenths to millions
func CostToMillions(tenths int) float64 {
	return float64(tenths) / 10.0
}

// BudgetToCost converts a spending cap in millions to tenths. It rounds down so
// a squad within the converted cap never costs more than the cap itself.
func BudgetToCost(millions float64) int {
	return int(math.Floor(millions*10 + 1e-9))
}

// Round1 rounds to one decimal place for reporting
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places for reporting
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// IndexPlayers builds an id lookup
func IndexPlayers(players []Player) map[int]Player {
	index := make(map[int]Player, len(players))
	for _, p := range players {
		index[p.ID] = p
	}
	return index
}
