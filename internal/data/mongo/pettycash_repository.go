package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taxiops-finance-core/internal/domain/ledgerbook"
)

const (
	// PettyCashCollectionName is the name of the petty cash collection in MongoDB
	PettyCashCollectionName = "petty_cash_entries"
)

// PettyCashRepository implements the ledgerbook.Repository interface for
// MongoDB. Entries are stored raw; running balances are derived by the
// projector on read.
type PettyCashRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewPettyCashRepository creates a new MongoDB petty cash repository
func NewPettyCashRepository(logger *slog.Logger, db *mongo.Database) ledgerbook.Repository {
	return &PettyCashRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new petty cash entry
func (r *PettyCashRepository) Create(ctx context.Context, entry *ledgerbook.Entry) error {
	collection := r.db.Collection(PettyCashCollectionName)

	if _, err := collection.InsertOne(ctx, toEntryDoc(entry)); err != nil {
		r.logger.Error("Failed to create petty cash entry",
			"entry_id", entry.ID.String(),
			"error", err)
		return fmt.Errorf("failed to create petty cash entry: %w", err)
	}

	return nil
}

// GetByID retrieves an entry by its ID.
// Returns ErrEntryNotFound if no entry exists.
func (r *PettyCashRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledgerbook.Entry, error) {
	collection := r.db.Collection(PettyCashCollectionName)

	var doc entryDoc
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledgerbook.ErrEntryNotFound{EntryID: id}
		}
		r.logger.Error("Failed to get petty cash entry",
			"entry_id", id.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get petty cash entry: %w", err)
	}

	entry, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Delete removes an entry; subsequent projections rebuild the running
// balances without it.
func (r *PettyCashRepository) Delete(ctx context.Context, id uuid.UUID) error {
	collection := r.db.Collection(PettyCashCollectionName)

	result, err := collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete petty cash entry",
			"entry_id", id.String(),
			"error", err)
		return fmt.Errorf("failed to delete petty cash entry: %w", err)
	}

	if result.DeletedCount == 0 {
		return ledgerbook.ErrEntryNotFound{EntryID: id}
	}

	return nil
}

// ListAll retrieves every entry in chronological storage order. Callers run
// the projector for the total order and running balances.
func (r *PettyCashRepository) ListAll(ctx context.Context) ([]ledgerbook.Entry, error) {
	return r.list(ctx, bson.M{})
}

// ListByDateRange retrieves entries inside a closed date window
func (r *PettyCashRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]ledgerbook.Entry, error) {
	return r.list(ctx, bson.M{"date": bson.M{"$gte": start, "$lte": end}})
}

func (r *PettyCashRepository) list(ctx context.Context, filter bson.M) ([]ledgerbook.Entry, error) {
	collection := r.db.Collection(PettyCashCollectionName)

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "created_at", Value: 1}})
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list petty cash entries", "error", err)
		return nil, fmt.Errorf("failed to list petty cash entries: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []entryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode petty cash entries", "error", err)
		return nil, fmt.Errorf("failed to decode petty cash entries: %w", err)
	}

	entries := make([]ledgerbook.Entry, 0, len(docs))
	for _, doc := range docs {
		entry, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
