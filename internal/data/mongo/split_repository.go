package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taxiops-finance-core/internal/domain/split"
)

const (
	// SplitCollectionName is the name of the splits collection in MongoDB
	SplitCollectionName = "split_records"
)

// SplitRepository implements the split.Repository interface for MongoDB
type SplitRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewSplitRepository creates a new MongoDB split repository
func NewSplitRepository(logger *slog.Logger, db *mongo.Database) split.Repository {
	return &SplitRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new split record
func (r *SplitRepository) Create(ctx context.Context, rec *split.Record) error {
	collection := r.db.Collection(SplitCollectionName)

	if _, err := collection.InsertOne(ctx, toSplitDoc(rec)); err != nil {
		r.logger.Error("Failed to create split record",
			"split_id", rec.ID.String(),
			"error", err)
		return fmt.Errorf("failed to create split record: %w", err)
	}

	return nil
}

// GetByID retrieves a split record by its ID.
// Returns ErrSplitNotFound if no record exists.
func (r *SplitRepository) GetByID(ctx context.Context, id uuid.UUID) (*split.Record, error) {
	collection := r.db.Collection(SplitCollectionName)

	var doc splitDoc
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, split.ErrSplitNotFound{SplitID: id}
		}
		r.logger.Error("Failed to get split record",
			"split_id", id.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get split record: %w", err)
	}

	return doc.toDomain()
}

// Update replaces the whole split document
func (r *SplitRepository) Update(ctx context.Context, rec *split.Record) error {
	collection := r.db.Collection(SplitCollectionName)

	result, err := collection.ReplaceOne(ctx, bson.M{"_id": rec.ID}, toSplitDoc(rec))
	if err != nil {
		r.logger.Error("Failed to update split record",
			"split_id", rec.ID.String(),
			"error", err)
		return fmt.Errorf("failed to update split record: %w", err)
	}

	if result.MatchedCount == 0 {
		return split.ErrSplitNotFound{SplitID: rec.ID}
	}

	return nil
}

// Delete removes a split record
func (r *SplitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	collection := r.db.Collection(SplitCollectionName)

	result, err := collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete split record",
			"split_id", id.String(),
			"error", err)
		return fmt.Errorf("failed to delete split record: %w", err)
	}

	if result.DeletedCount == 0 {
		return split.ErrSplitNotFound{SplitID: id}
	}

	return nil
}

// ListOverlapping retrieves splits whose closed window overlaps the given
// one: not (end < window.start or start > window.end).
func (r *SplitRepository) ListOverlapping(ctx context.Context, window split.Window) ([]*split.Record, error) {
	filter := bson.M{
		"window_start": bson.M{"$lte": window.End},
		"window_end":   bson.M{"$gte": window.Start},
	}
	return r.list(ctx, filter)
}

// ListAll retrieves every split record, newest window first
func (r *SplitRepository) ListAll(ctx context.Context) ([]*split.Record, error) {
	return r.list(ctx, bson.M{})
}

func (r *SplitRepository) list(ctx context.Context, filter bson.M) ([]*split.Record, error) {
	collection := r.db.Collection(SplitCollectionName)

	opts := options.Find().SetSort(bson.D{{Key: "window_start", Value: -1}})
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list split records", "error", err)
		return nil, fmt.Errorf("failed to list split records: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []splitDoc
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode split records", "error", err)
		return nil, fmt.Errorf("failed to decode split records: %w", err)
	}

	records := make([]*split.Record, 0, len(docs))
	for _, doc := range docs {
		rec, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}
