package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stitts-dev/fpl-optimizer/internal/models"
	"github.com/stitts-dev/fpl-optimizer/internal/optimizer"
	"github.com/stitts-dev/fpl-optimizer/internal/valuation"
	"github.com/stitts-dev/fpl-optimizer/pkg/database"
)

// Repository loads the player, fixture and prediction tables into engine snapshots
type Repository struct {
	db     *gorm.DB
	logger *logrus.Entry
}

// NewRepository creates a repository over an open connection
func NewRepository(db *database.DB, logger *logrus.Logger) *Repository {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Repository{
		db:     db.DB,
		logger: logger.WithField("component", "store"),
	}
}

// AutoMigrate creates or updates the tables the engine reads
func (r *Repository) AutoMigrate() error {
	if err := r.db.AutoMigrate(&PlayerRecord{}, &FixtureRecord{}, &PredictionRecord{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// SavePlayers upserts player rows by player_id
func (r *Repository) SavePlayers(ctx context.Context, records []PlayerRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&records).Error; err != nil {
		return fmt.Errorf("failed to save players: %w", err)
	}
	return nil
}

// SaveFixtures upserts fixture rows by fixture_id
func (r *Repository) SaveFixtures(ctx context.Context, records []FixtureRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&records).Error; err != nil {
		return fmt.Errorf("failed to save fixtures: %w", err)
	}
	return nil
}

// SavePredictions appends prediction rows
func (r *Repository) SavePredictions(ctx context.Context, records []PredictionRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&records).Error; err != nil {
		return fmt.Errorf("failed to save predictions: %w", err)
	}
	return nil
}

// LoadPlayers returns every valid player ordered by id. Rows with an unknown
// position or a non-positive cost are skipped.
func (r *Repository) LoadPlayers(ctx context.Context) ([]models.Player, error) {
	var records []PlayerRecord
	if err := r.db.WithContext(ctx).Order("player_id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}

	players := make([]models.Player, 0, len(records))
	for _, rec := range records {
		p, err := rec.ToPlayer()
		if err != nil {
			r.logger.WithError(err).WithField("player_id", rec.PlayerID).Warn("Skipping invalid player record")
			continue
		}
		players = append(players, p)
	}
	return players, nil
}

// LoadFixtures returns club fixture views for gameweeks from..to inclusive
func (r *Repository) LoadFixtures(ctx context.Context, from, to int) ([]models.FixtureContext, error) {
	var records []FixtureRecord
	err := r.db.WithContext(ctx).
		Where("gameweek BETWEEN ? AND ?", from, to).
		Order("gameweek, fixture_id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load fixtures: %w", err)
	}

	fixtures := make([]models.FixtureContext, 0, 2*len(records))
	for _, rec := range records {
		fixtures = append(fixtures, rec.Contexts()...)
	}
	return fixtures, nil
}

type predictionRow struct {
	Gameweek       int
	PlayerID       int
	ExpectedPoints float64
}

// LoadPredictions returns the mean fixture prediction per player for one gameweek
func (r *Repository) LoadPredictions(ctx context.Context, gameweek int) (map[int]float64, error) {
	byGameweek, err := r.loadFixturePredictions(ctx, gameweek, gameweek)
	if err != nil {
		return nil, err
	}
	if values, ok := byGameweek[gameweek]; ok {
		return values, nil
	}
	return map[int]float64{}, nil
}

func (r *Repository) loadFixturePredictions(ctx context.Context, from, to int) (map[int]map[int]float64, error) {
	var rows []predictionRow
	err := r.db.WithContext(ctx).
		Table("player_predictions").
		Select("fixtures.gameweek AS gameweek, player_predictions.player_id AS player_id, AVG(player_predictions.expected_points) AS expected_points").
		Joins("JOIN fixtures ON fixtures.fixture_id = player_predictions.fixture_id").
		Where("fixtures.gameweek BETWEEN ? AND ?", from, to).
		Group("fixtures.gameweek, player_predictions.player_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load fixture predictions: %w", err)
	}

	byGameweek := make(map[int]map[int]float64)
	for _, row := range rows {
		values, ok := byGameweek[row.Gameweek]
		if !ok {
			values = make(map[int]float64)
			byGameweek[row.Gameweek] = values
		}
		values[row.PlayerID] = row.ExpectedPoints
	}
	return byGameweek, nil
}

// LoadGeneralPredictions returns the mean prediction per player across rows not tied to a fixture
func (r *Repository) LoadGeneralPredictions(ctx context.Context) (map[int]float64, error) {
	var rows []predictionRow
	err := r.db.WithContext(ctx).
		Model(&PredictionRecord{}).
		Select("player_id, AVG(expected_points) AS expected_points").
		Where("fixture_id IS NULL").
		Group("player_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load general predictions: %w", err)
	}

	values := make(map[int]float64, len(rows))
	for _, row := range rows {
		values[row.PlayerID] = row.ExpectedPoints
	}
	return values, nil
}

// CurrentGameweek is the earliest gameweek with an unfinished fixture, or 1 when none is scheduled
func (r *Repository) CurrentGameweek(ctx context.Context) (int, error) {
	var result struct {
		Gameweek *int
	}
	err := r.db.WithContext(ctx).
		Model(&FixtureRecord{}).
		Select("MIN(gameweek) AS gameweek").
		Where("finished = ?", false).
		Scan(&result).Error
	if err != nil {
		return 0, fmt.Errorf("failed to resolve current gameweek: %w", err)
	}
	if result.Gameweek == nil || *result.Gameweek < 1 {
		return 1, nil
	}
	return *result.Gameweek, nil
}

// Snapshot loads everything one engine call needs for gameweeks
// start..start+window-1. A start below 1 resolves to the current gameweek.
func (r *Repository) Snapshot(ctx context.Context, start, window int) (*optimizer.Snapshot, error) {
	if window < 1 {
		window = 1
	}
	if start < 1 {
		current, err := r.CurrentGameweek(ctx)
		if err != nil {
			return nil, err
		}
		start = current
	}
	end := start + window - 1

	players, err := r.LoadPlayers(ctx)
	if err != nil {
		return nil, err
	}
	fixtures, err := r.LoadFixtures(ctx, start, end)
	if err != nil {
		return nil, err
	}
	byGameweek, err := r.loadFixturePredictions(ctx, start, end)
	if err != nil {
		return nil, err
	}
	general, err := r.LoadGeneralPredictions(ctx)
	if err != nil {
		return nil, err
	}

	version, err := snapshotVersion(players, fixtures, general, byGameweek)
	if err != nil {
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"start_gameweek": start,
		"window":         window,
		"players":        len(players),
		"fixtures":       len(fixtures),
		"version":        version,
	}).Debug("Loaded data snapshot")

	return &optimizer.Snapshot{
		Players:  players,
		Oracle:   valuation.NewOracle(players, general, byGameweek),
		Schedule: models.NewFixtureSchedule(fixtures),
		Gameweek: start,
		Version:  version,
	}, nil
}

// snapshotVersion hashes the loaded content so cached results are keyed to the data they came from
func snapshotVersion(players []models.Player, fixtures []models.FixtureContext, general map[int]float64, byGameweek map[int]map[int]float64) (string, error) {
	payload, err := json.Marshal(struct {
		Players    []models.Player         `json:"players"`
		Fixtures   []models.FixtureContext `json:"fixtures"`
		General    map[int]float64         `json:"general"`
		ByGameweek map[int]map[int]float64 `json:"by_gameweek"`
	}{players, fixtures, general, byGameweek})
	if err != nil {
		return "", fmt.Errorf("failed to hash snapshot: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:8]), nil
}
