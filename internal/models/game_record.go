// internal/models/game_record.go
// Durable catalog records: saved rosters and per-game metadata. These sit
// beside the in-memory engine state (rotation.go, plan.go) and are the
// persistence-collaborator surface spec.md §1 names but leaves external.

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TeamRoster is a named, durable roster that setup payloads are built from.
// Distinct from the in-memory Roster the engine freezes at initialize: this
// is catalog data that outlives any single game.
type TeamRoster struct {
	ID        string             `json:"id" db:"id"`
	OwnerID   string             `json:"owner_id" db:"owner_id"`
	Name      string             `json:"name" db:"name"`
	FieldSize int                `json:"field_size" db:"field_size"`
	Players   RosterPlayerList   `json:"players" db:"players"`
	CreatedAt time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" db:"updated_at"`
}

// RosterPlayerEntry is one catalog player with optional metadata.
type RosterPlayerEntry struct {
	ID       PlayerID `json:"id"`
	Name     string   `json:"name"`
	Position string   `json:"position,omitempty"`
	Jersey   int      `json:"jersey,omitempty"`
	Exempt   bool     `json:"exempt,omitempty"`
}

// RosterPlayerList is a JSON column of RosterPlayerEntry.
type RosterPlayerList []RosterPlayerEntry

func (l *RosterPlayerList) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into RosterPlayerList", value)
	}
	return json.Unmarshal(bytes, l)
}

func (l RosterPlayerList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// GameStatus tracks a persisted game record's lifecycle, independent of the
// in-memory EngineState (a record can exist in "scheduled" status before an
// engine has ever been constructed for it).
type GameStatus string

const (
	GameScheduled  GameStatus = "scheduled"
	GameInProgress GameStatus = "in_progress"
	GameCompleted  GameStatus = "completed"
	GameAbandoned  GameStatus = "abandoned"
)

// GameRecord is the durable row tracking one game's identity, the two
// team names it opaquely carries, and its final scoring counters. The
// rotation engine itself never reads Score1/Score2 — they exist purely so
// an operator can look a finished game up after the process that ran it
// has exited.
type GameRecord struct {
	ID          string     `json:"id" db:"id"`
	RosterID    string     `json:"roster_id" db:"roster_id"`
	HomeTeam    string     `json:"home_team" db:"home_team"`
	AwayTeam    string     `json:"away_team" db:"away_team"`
	Score1      *int       `json:"score1,omitempty" db:"score1"`
	Score2      *int       `json:"score2,omitempty" db:"score2"`
	Status      GameStatus `json:"status" db:"status"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
