// Package mongo provides MongoDB implementations of the document-shaped
// repositories: payable records with embedded payments, petty cash entries
// and profit-split records.
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

	"github.com/taxiops-finance-core/internal/domain/payable"
)

const (
	// PayableCollectionName is the name of the payables collection in MongoDB
	PayableCollectionName = "payable_records"
)

// PayableRepository implements the payable.Repository interface for MongoDB
type PayableRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewPayableRepository creates a new MongoDB payable repository
func NewPayableRepository(logger *slog.Logger, db *mongo.Database) payable.Repository {
	return &PayableRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new payable record with its (usually empty) payments list
func (r *PayableRepository) Create(ctx context.Context, rec *payable.Record) error {
	collection := r.db.Collection(PayableCollectionName)

	if _, err := collection.InsertOne(ctx, toPayableDoc(rec)); err != nil {
		r.logger.Error("Failed to create payable record",
			"record_id", rec.ID.String(),
			"error", err)
		return fmt.Errorf("failed to create payable record: %w", err)
	}

	return nil
}

// GetByID retrieves a payable record by its ID.
// Returns ErrRecordNotFound if no record exists.
func (r *PayableRepository) GetByID(ctx context.Context, id uuid.UUID) (*payable.Record, error) {
	collection := r.db.Collection(PayableCollectionName)

	var doc payableDoc
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, payable.ErrRecordNotFound{RecordID: id}
		}
		r.logger.Error("Failed to get payable record",
			"record_id", id.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get payable record: %w", err)
	}

	return doc.toDomain()
}

// Update replaces the whole record document, including the recomputed
// payments list and derived fields.
func (r *PayableRepository) Update(ctx context.Context, rec *payable.Record) error {
	collection := r.db.Collection(PayableCollectionName)

	result, err := collection.ReplaceOne(ctx, bson.M{"_id": rec.ID}, toPayableDoc(rec))
	if err != nil {
		r.logger.Error("Failed to update payable record",
			"record_id", rec.ID.String(),
			"error", err)
		return fmt.Errorf("failed to update payable record: %w", err)
	}

	if result.MatchedCount == 0 {
		return payable.ErrRecordNotFound{RecordID: rec.ID}
	}

	return nil
}

// Delete removes a payable record
func (r *PayableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	collection := r.db.Collection(PayableCollectionName)

	result, err := collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete payable record",
			"record_id", id.String(),
			"error", err)
		return fmt.Errorf("failed to delete payable record: %w", err)
	}

	if result.DeletedCount == 0 {
		return payable.ErrRecordNotFound{RecordID: id}
	}

	return nil
}

// ListByKind retrieves paginated payable records of one kind, newest first
func (r *PayableRepository) ListByKind(ctx context.Context, kind payable.Kind, limit, offset int) ([]*payable.Record, error) {
	collection := r.db.Collection(PayableCollectionName)

	filter := bson.M{"kind": kind}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list payable records", "kind", string(kind), "error", err)
		return nil, fmt.Errorf("failed to list payable records: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []payableDoc
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode payable records", "error", err)
		return nil, fmt.Errorf("failed to decode payable records: %w", err)
	}

	records := make([]*payable.Record, 0, len(docs))
	for _, doc := range docs {
		rec, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// CountByKind counts payable records of one kind
func (r *PayableRepository) CountByKind(ctx context.Context, kind payable.Kind) (int64, error) {
	collection := r.db.Collection(PayableCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{"kind": kind})
	if err != nil {
		r.logger.Error("Failed to count payable records", "kind", string(kind), "error", err)
		return 0, fmt.Errorf("failed to count payable records: %w", err)
	}

	return count, nil
}
