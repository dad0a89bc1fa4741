// internal/repositories/game_record_repository.go
// Game record data access layer (MySQL)

package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/benchbalancer/rotation-engine/internal/models"
)

// GameRecordRepository handles per-game metadata: identity, team names, and
// final scoring counters. The rotation engine itself never reads these
// rows; they exist so an operator can look a game up after the process
// that ran it has exited.
type GameRecordRepository struct {
	db *sql.DB
}

// NewGameRecordRepository creates a new game record repository.
func NewGameRecordRepository(db *sql.DB) *GameRecordRepository {
	return &GameRecordRepository{db: db}
}

// Create inserts a new game record.
func (r *GameRecordRepository) Create(ctx context.Context, rec *models.GameRecord) error {
	query := `
		INSERT INTO game_records (
			id, roster_id, home_team, away_team, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.RosterID,
		rec.HomeTeam,
		rec.AwayTeam,
		rec.Status,
		rec.CreatedAt,
		rec.UpdatedAt,
	)

	return err
}

// GetByID retrieves a game record by ID.
func (r *GameRecordRepository) GetByID(ctx context.Context, id string) (*models.GameRecord, error) {
	query := `
		SELECT
			id, roster_id, home_team, away_team, score1, score2, status,
			started_at, completed_at, created_at, updated_at
		FROM game_records
		WHERE id = ?
	`

	var rec models.GameRecord
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID,
		&rec.RosterID,
		&rec.HomeTeam,
		&rec.AwayTeam,
		&rec.Score1,
		&rec.Score2,
		&rec.Status,
		&rec.StartedAt,
		&rec.CompletedAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("game record not found")
	}

	return &rec, err
}

// MarkStarted transitions a game record to in_progress and stamps the
// start time.
func (r *GameRecordRepository) MarkStarted(ctx context.Context, id string) error {
	query := `UPDATE game_records SET status = ?, started_at = ?, updated_at = ? WHERE id = ?`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query, models.GameInProgress, now, now, id)
	return err
}

// MarkCompleted transitions a game record to completed, stamps the
// completion time, and records the final scoring counters.
func (r *GameRecordRepository) MarkCompleted(ctx context.Context, id string, score1, score2 int) error {
	query := `
		UPDATE game_records SET
			status = ?, score1 = ?, score2 = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query, models.GameCompleted, score1, score2, now, now, id)
	return err
}

// List retrieves game records with pagination, most recent first.
func (r *GameRecordRepository) List(ctx context.Context, page, limit int) ([]*models.GameRecord, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM game_records").Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT
			id, roster_id, home_team, away_team, score1, score2, status,
			started_at, completed_at, created_at, updated_at
		FROM game_records
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	records := make([]*models.GameRecord, 0)
	for rows.Next() {
		var rec models.GameRecord
		if err := rows.Scan(
			&rec.ID, &rec.RosterID, &rec.HomeTeam, &rec.AwayTeam,
			&rec.Score1, &rec.Score2, &rec.Status,
			&rec.StartedAt, &rec.CompletedAt, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		records = append(records, &rec)
	}

	return records, total, nil
}
