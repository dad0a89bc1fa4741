// internal/repositories/container.go
// Repository container for dependency injection

package repositories

import (
	"context"
	"database/sql"

	"github.com/benchbalancer/rotation-engine/internal/database"
)

// Container holds all repository instances
type Container struct {
	Roster     *RosterRepository
	GameRecord *GameRecordRepository
	Snapshot   *SnapshotRepository
	db         *sql.DB
}

// NewContainer creates a new repository container
func NewContainer(conn *database.Connections) *Container {
	return &Container{
		Roster:     NewRosterRepository(conn.MySQL),
		GameRecord: NewGameRecordRepository(conn.MySQL),
		Snapshot:   NewSnapshotRepository(conn.MongoDB),
		db:         conn.MySQL,
	}
}

// BeginTx starts a new database transaction
func (c *Container) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return c.db.BeginTx(ctx, nil)
}
