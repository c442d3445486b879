package repository

import (
	"context"
	"time"

	"promo-raffle/internal/domain/model"
)

// CodeRepository is the port for the raffle_codes table.
type CodeRepository interface {
	// Exists reports whether any code (used or not) has this value.
	Exists(ctx context.Context, tx Tx, value string) (bool, error)
	// Create inserts a new code. Returns domain.ErrAlreadyExists on a duplicate value.
	Create(ctx context.Context, tx Tx, code *model.Code) error
	// FindByValue returns a code regardless of its used flag.
	FindByValue(ctx context.Context, tx Tx, value string) (*model.Code, error)
	// FindUnused returns the code only while used = false, locking the row when tx is set.
	FindUnused(ctx context.Context, tx Tx, value string) (*model.Code, error)
	// MarkUsed flips used to true only if it was false; reports whether a row changed.
	MarkUsed(ctx context.Context, tx Tx, value string, at time.Time) (bool, error)
	// DeleteAll removes every code and returns the number of rows deleted.
	DeleteAll(ctx context.Context, tx Tx) (int64, error)
	// Stats counts codes by used flag.
	Stats(ctx context.Context, tx Tx) (*model.CodeStats, error)
}
