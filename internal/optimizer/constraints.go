package optimizer

import (
	"fmt"
	"sort"

	"github.com/stitts-dev/fpl-optimizer/internal/models"
)

// SquadConstraints holds the hard constraints of one squad optimization
type SquadConstraints struct {
	Budget            int
	PositionQuota     map[models.Position]int
	MaxPlayersPerClub int
	Preferred         map[int]bool
	Excluded          map[int]bool
	Existing          map[int]bool
	MaxTransfers      int // -1 when no transfer limit applies
}

// NewSquadConstraints validates the request and converts it to integer constraints
func NewSquadConstraints(req models.OptimizationRequest) (*SquadConstraints, error) {
	if req.Budget <= 0 {
		return nil, fmt.Errorf("%w: budget must be greater than zero, got %.1f", ErrInvalidRequest, req.Budget)
	}
	if req.MaxPlayersPerClub < 1 {
		return nil, fmt.Errorf("%w: max players per club must be at least 1, got %d", ErrInvalidRequest, req.MaxPlayersPerClub)
	}
	if req.Formation != nil {
		if err := req.Formation.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}

	sc := &SquadConstraints{
		Budget:            models.BudgetToCost(req.Budget),
		PositionQuota:     models.SquadQuota,
		MaxPlayersPerClub: req.MaxPlayersPerClub,
		Preferred:         make(map[int]bool, len(req.PreferredPlayerIDs)),
		Excluded:          make(map[int]bool, len(req.ExcludedPlayerIDs)),
		Existing:          make(map[int]bool, len(req.ExistingSquad)),
		MaxTransfers:      -1,
	}

	for _, id := range req.PreferredPlayerIDs {
		sc.Preferred[id] = true
	}
	if len(sc.Preferred) > models.SquadSize {
		return nil, fmt.Errorf("%w: at most %d preferred players allowed, got %d", ErrInvalidRequest, models.SquadSize, len(sc.Preferred))
	}
	for _, id := range req.ExcludedPlayerIDs {
		if sc.Preferred[id] {
			return nil, fmt.Errorf("%w: player %d is both preferred and excluded", ErrInvalidRequest, id)
		}
		sc.Excluded[id] = true
	}

	if len(req.ExistingSquad) > 0 {
		for _, id := range req.ExistingSquad {
			sc.Existing[id] = true
		}
		if len(sc.Existing) != models.SquadSize {
			return nil, fmt.Errorf("%w: existing squad must contain %d unique players, got %d", ErrInvalidRequest, models.SquadSize, len(sc.Existing))
		}
	}
	if req.MaxTransfers != nil {
		if *req.MaxTransfers < 0 {
			return nil, fmt.Errorf("%w: max transfers must not be negative", ErrInvalidRequest)
		}
		if len(sc.Existing) > 0 {
			sc.MaxTransfers = *req.MaxTransfers
		}
	}

	return sc, nil
}

// ValidateSquad checks a finished squad against every hard constraint
func (sc *SquadConstraints) ValidateSquad(squad *models.Squad, players map[int]models.Player) error {
	if len(squad.PlayerIDs) != models.SquadSize {
		return fmt.Errorf("squad must contain %d players, got %d", models.SquadSize, len(squad.PlayerIDs))
	}

	seen := make(map[int]bool, len(squad.PlayerIDs))
	selected := make([]models.Player, 0, len(squad.PlayerIDs))
	for _, id := range squad.PlayerIDs {
		if seen[id] {
			return fmt.Errorf("duplicate player in squad: %d", id)
		}
		seen[id] = true
		p, ok := players[id]
		if !ok {
			return fmt.Errorf("unknown player in squad: %d", id)
		}
		selected = append(selected, p)
	}

	if err := sc.validateBudget(selected); err != nil {
		return err
	}
	if err := sc.validatePositions(selected); err != nil {
		return err
	}
	if err := sc.validateClubs(selected); err != nil {
		return err
	}
	return sc.validateSelection(seen)
}

func (sc *SquadConstraints) validateBudget(selected []models.Player) error {
	total := 0
	for _, p := range selected {
		total += p.Cost
	}
	if total > sc.Budget {
		return fmt.Errorf("squad exceeds budget: %.1f > %.1f", models.CostToMillions(total), models.CostToMillions(sc.Budget))
	}
	return nil
}

func (sc *SquadConstraints) validatePositions(selected []models.Player) error {
	counts := make(map[models.Position]int)
	for _, p := range selected {
		counts[p.Position]++
	}
	for _, pos := range models.AllPositions {
		if counts[pos] != sc.PositionQuota[pos] {
			return fmt.Errorf("position %s requires exactly %d players, got %d", pos, sc.PositionQuota[pos], counts[pos])
		}
	}
	return nil
}

func (sc *SquadConstraints) validateClubs(selected []models.Player) error {
	counts := make(map[int]int)
	for _, p := range selected {
		counts[p.ClubID]++
		if counts[p.ClubID] > sc.MaxPlayersPerClub {
			return fmt.Errorf("too many players from club %d: more than %d", p.ClubID, sc.MaxPlayersPerClub)
		}
	}
	return nil
}

func (sc *SquadConstraints) validateSelection(selected map[int]bool) error {
	for id := range sc.Preferred {
		if !selected[id] {
			return fmt.Errorf("preferred player %d missing from squad", id)
		}
	}
	for id := range sc.Excluded {
		if selected[id] {
			return fmt.Errorf("excluded player %d present in squad", id)
		}
	}
	if sc.MaxTransfers >= 0 {
		dropped := 0
		for id := range sc.Existing {
			if !selected[id] {
				dropped++
			}
		}
		if dropped > sc.MaxTransfers {
			return fmt.Errorf("squad drops %d existing players, limit is %d", dropped, sc.MaxTransfers)
		}
	}
	return nil
}

// sortedIDs returns the keys of a set in ascending order
func sortedIDs(set map[int]bool) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
