package split

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages split record persistence
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListOverlapping(ctx context.Context, window Window) ([]*Record, error)
	ListAll(ctx context.Context) ([]*Record, error)
}

// ErrSplitNotFound indicates missing split record
type ErrSplitNotFound struct {
	SplitID uuid.UUID
}

func (e ErrSplitNotFound) Error() string {
	return "split record not found: " + e.SplitID.String()
}

// Is matches any ErrSplitNotFound when the target carries a nil ID
func (e ErrSplitNotFound) Is(target error) bool {
	t, ok := target.(ErrSplitNotFound)
	if !ok {
		return false
	}
	if t.SplitID == uuid.Nil {
		return true
	}
	return e.SplitID == t.SplitID
}
