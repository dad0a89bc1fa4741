// internal/repositories/roster_repository.go
// Roster catalog data access layer (MySQL)

package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/benchbalancer/rotation-engine/internal/models"
)

// RosterRepository handles saved team roster data access.
type RosterRepository struct {
	db *sql.DB
}

// NewRosterRepository creates a new roster repository.
func NewRosterRepository(db *sql.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// Create inserts a new saved roster.
func (r *RosterRepository) Create(ctx context.Context, roster *models.TeamRoster) error {
	query := `
		INSERT INTO rosters (
			id, owner_id, name, field_size, players, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		roster.ID,
		roster.OwnerID,
		roster.Name,
		roster.FieldSize,
		roster.Players,
		roster.CreatedAt,
		roster.UpdatedAt,
	)

	return err
}

// GetByID retrieves a saved roster by ID.
func (r *RosterRepository) GetByID(ctx context.Context, id string) (*models.TeamRoster, error) {
	query := `
		SELECT id, owner_id, name, field_size, players, created_at, updated_at
		FROM rosters
		WHERE id = ?
	`

	var roster models.TeamRoster
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&roster.ID,
		&roster.OwnerID,
		&roster.Name,
		&roster.FieldSize,
		&roster.Players,
		&roster.CreatedAt,
		&roster.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("roster not found")
	}

	return &roster, err
}

// Update updates a saved roster's name and player list.
func (r *RosterRepository) Update(ctx context.Context, roster *models.TeamRoster) error {
	query := `
		UPDATE rosters SET
			name = ?, field_size = ?, players = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		roster.Name,
		roster.FieldSize,
		roster.Players,
		time.Now(),
		roster.ID,
	)

	return err
}

// Delete removes a saved roster.
func (r *RosterRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM rosters WHERE id = ?", id)
	return err
}

// RosterListFilter defines filtering options for roster catalog queries.
type RosterListFilter struct {
	Page    int
	Limit   int
	OwnerID string
	Search  string
}

// List retrieves saved rosters with pagination and filters.
func (r *RosterRepository) List(ctx context.Context, filter RosterListFilter) ([]*models.TeamRoster, int, error) {
	var conditions []string
	var args []interface{}

	baseQuery := "FROM rosters WHERE 1=1"

	if filter.OwnerID != "" {
		conditions = append(conditions, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.Search != "" {
		conditions = append(conditions, "name LIKE ?")
		args = append(args, "%"+filter.Search+"%")
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) " + baseQuery
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	selectQuery := `
		SELECT id, owner_id, name, field_size, players, created_at, updated_at
	` + baseQuery + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.QueryContext(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	rosters := make([]*models.TeamRoster, 0)
	for rows.Next() {
		var roster models.TeamRoster
		if err := rows.Scan(
			&roster.ID, &roster.OwnerID, &roster.Name, &roster.FieldSize,
			&roster.Players, &roster.CreatedAt, &roster.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		rosters = append(rosters, &roster)
	}

	return rosters, total, nil
}
