package models

// FixtureContext describes one club fixture in a gameweek from that club's point of view
type FixtureContext struct {
	Gameweek   int  `json:"gameweek"`
	ClubID     int  `json:"club_id"`
	OpponentID int  `json:"opponent_id"`
	Difficulty int  `json:"difficulty"`
	IsHome     bool `json:"is_home"`
}

// NormalizedDifficulty clamps the rating into [1,5]; unrated fixtures count as 3
func (f FixtureContext) NormalizedDifficulty() int {
	switch {
	case f.Difficulty == 0:
		return 3
	case f.Difficulty < 1:
		return 1
	case f.Difficulty > 5:
		return 5
	}
	return f.Difficulty
}

// FixtureSchedule indexes fixtures by gameweek then club.
// A club missing from a gameweek has a bye; more than one entry is a double gameweek.
type FixtureSchedule map[int]map[int][]FixtureContext

// NewFixtureSchedule builds a schedule from a flat fixture list
func NewFixtureSchedule(fixtures []FixtureContext) FixtureSchedule {
	schedule := make(FixtureSchedule)
	for _, f := range fixtures {
		byClub, ok := schedule[f.Gameweek]
		if !ok {
			byClub = make(map[int][]FixtureContext)
			schedule[f.Gameweek] = byClub
		}
		byClub[f.ClubID] = append(byClub[f.ClubID], f)
	}
	return schedule
}

// For returns the club's fixtures in a gameweek
func (s FixtureSchedule) For(clubID, gameweek int) []FixtureContext {
	if s == nil {
		return nil
	}
	return s[gameweek][clubID]
}

// PlayerContexts resolves the first fixture of each player's club in a gameweek,
// the shape captaincy and transfer scoring consume
func (s FixtureSchedule) PlayerContexts(players []Player, gameweek int) map[int]FixtureContext {
	contexts := make(map[int]FixtureContext)
	for _, p := range players {
		fixtures := s.For(p.ClubID, gameweek)
		if len(fixtures) > 0 {
			contexts[p.ID] = fixtures[0]
		}
	}
	return contexts
}

// FixtureAnalysis summarises fixture difficulty across a set of players
type FixtureAnalysis struct {
	AverageDifficulty float64 `json:"average_fixture_difficulty"`
	HomePlayers       int     `json:"home_players"`
	AwayPlayers       int     `json:"away_players"`
	EasyFixtures      int     `json:"easy_fixtures"`
	HardFixtures      int     `json:"hard_fixtures"`
	Blanks            int     `json:"blank_players"`
}

// AnalyzeFixtures summarises the fixtures of the given players
func AnalyzeFixtures(playerIDs []int, contexts map[int]FixtureContext) *FixtureAnalysis {
	if len(playerIDs) == 0 || len(contexts) == 0 {
		return nil
	}

	analysis := &FixtureAnalysis{}
	total := 0
	for _, id := range playerIDs {
		ctx, ok := contexts[id]
		if !ok {
			analysis.Blanks++
			continue
		}
		d := ctx.NormalizedDifficulty()
		total += d
		if ctx.IsHome {
			analysis.HomePlayers++
		} else {
			analysis.AwayPlayers++
		}
		if d <= 2 {
			analysis.EasyFixtures++
		}
		if d >= 4 {
			analysis.HardFixtures++
		}
	}

	counted := analysis.HomePlayers + analysis.AwayPlayers
	if counted > 0 {
		analysis.AverageDifficulty = Round2(float64(total) / float64(counted))
	}
	return analysis
}
