package store

import (
	"time"

	"github.com/stitts-dev/fpl-optimizer/internal/models"
)

// PlayerRecord is a row of the players table. Costs are stored in tenths.
type PlayerRecord struct {
	PlayerID    int       `gorm:"column:player_id;primaryKey;autoIncrement:false" json:"player_id"`
	WebName     string    `gorm:"not null" json:"web_name"`
	TeamID      int       `gorm:"not null;index" json:"team_id"`
	Position    string    `gorm:"size:3;not null" json:"position"`
	NowCost     int       `gorm:"not null" json:"now_cost"`
	Form        float64   `gorm:"default:0" json:"form"`
	TotalPoints int       `gorm:"default:0" json:"total_points"`
	Status      string    `gorm:"size:1;default:a" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PlayerRecord) TableName() string {
	return "players"
}

// ToPlayer converts the row into the engine's player view
func (r PlayerRecord) ToPlayer() (models.Player, error) {
	position, err := models.ParsePosition(r.Position)
	if err != nil {
		return models.Player{}, err
	}
	p := models.Player{
		ID:          r.PlayerID,
		Name:        r.WebName,
		Position:    position,
		ClubID:      r.TeamID,
		Cost:        r.NowCost,
		Status:      r.Status,
		Form:        r.Form,
		TotalPoints: r.TotalPoints,
	}
	return p, p.Validate()
}

// FixtureRecord is a row of the fixtures table
type FixtureRecord struct {
	FixtureID      int        `gorm:"column:fixture_id;primaryKey;autoIncrement:false" json:"fixture_id"`
	Gameweek       int        `gorm:"not null;index" json:"gameweek"`
	HomeTeamID     int        `gorm:"not null" json:"home_team_id"`
	AwayTeamID     int        `gorm:"not null" json:"away_team_id"`
	HomeDifficulty int        `gorm:"default:3" json:"home_difficulty"`
	AwayDifficulty int        `gorm:"default:3" json:"away_difficulty"`
	KickoffTime    *time.Time `json:"kickoff_time,omitempty"`
	Finished       bool       `gorm:"default:false" json:"finished"`
}

// TableName specifies the table name for GORM
func (FixtureRecord) TableName() string {
	return "fixtures"
}

// Contexts expands the fixture into one view per club
func (r FixtureRecord) Contexts() []models.FixtureContext {
	return []models.FixtureContext{
		{
			Gameweek:   r.Gameweek,
			ClubID:     r.HomeTeamID,
			OpponentID: r.AwayTeamID,
			Difficulty: r.HomeDifficulty,
			IsHome:     true,
		},
		{
			Gameweek:   r.Gameweek,
			ClubID:     r.AwayTeamID,
			OpponentID: r.HomeTeamID,
			Difficulty: r.AwayDifficulty,
		},
	}
}

// PredictionRecord is a row of the player_predictions table.
// A nil FixtureID marks a general prediction not tied to a fixture.
type PredictionRecord struct {
	PredictionID    uint      `gorm:"column:prediction_id;primaryKey" json:"prediction_id"`
	PlayerID        int       `gorm:"not null;index" json:"player_id"`
	FixtureID       *int      `gorm:"index" json:"fixture_id,omitempty"`
	ExpectedPoints  float64   `gorm:"not null" json:"expected_points"`
	ModelVersion    string    `gorm:"size:50" json:"model_version"`
	ConfidenceScore float64   `json:"confidence_score"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PredictionRecord) TableName() string {
	return "player_predictions"
}
