// internal/repositories/snapshot_repository.go
// Game snapshot history data access (MongoDB)

package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/benchbalancer/rotation-engine/internal/models"
)

// SnapshotRecord is one append-only history entry: a game snapshot plus the
// reason it was captured.
type SnapshotRecord struct {
	GameID     string          `bson:"game_id"`
	Reason     string          `bson:"reason"`
	Snapshot   models.Snapshot `bson:"snapshot"`
	RecordedAt time.Time       `bson:"recorded_at"`
}

// SnapshotRepository handles append-only game snapshot history in MongoDB.
// Writes are fire-and-forget from the caller's perspective: a failed write
// here must never block a tick or a mutation response.
type SnapshotRepository struct {
	collection *mongo.Collection
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(db *mongo.Database) *SnapshotRepository {
	return &SnapshotRepository{
		collection: db.Collection("game_snapshots"),
	}
}

// Append records a snapshot for a game after a significant transition
// (start, confirmed rotation, period end, game over).
func (r *SnapshotRepository) Append(ctx context.Context, gameID, reason string, snap models.Snapshot) error {
	_, err := r.collection.InsertOne(ctx, SnapshotRecord{
		GameID:     gameID,
		Reason:     reason,
		Snapshot:   snap,
		RecordedAt: time.Now(),
	})
	return err
}

// History returns a game's recorded snapshots in chronological order.
func (r *SnapshotRepository) History(ctx context.Context, gameID string) ([]SnapshotRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"game_id": gameID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []SnapshotRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Latest returns the most recently recorded snapshot for a game, or
// mongo.ErrNoDocuments if none exist.
func (r *SnapshotRepository) Latest(ctx context.Context, gameID string) (*SnapshotRecord, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "recorded_at", Value: -1}})
	var record SnapshotRecord
	err := r.collection.FindOne(ctx, bson.M{"game_id": gameID}, opts).Decode(&record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteHistory removes all recorded snapshots for a game.
func (r *SnapshotRepository) DeleteHistory(ctx context.Context, gameID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"game_id": gameID})
	return err
}
