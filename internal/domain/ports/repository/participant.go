package repository

import (
	"context"

	"promo-raffle/internal/domain/model"
)

// ParticipantRepository is the port for the participants table.
type ParticipantRepository interface {
	// ExistsByCode reports whether a participant already references the code.
	ExistsByCode(ctx context.Context, tx Tx, code string) (bool, error)
	// Create inserts a participant. Returns domain.ErrAlreadyExists when the code is already referenced.
	Create(ctx context.Context, tx Tx, p *model.Participant) error
	// ListAll returns every participant, newest first.
	ListAll(ctx context.Context, tx Tx) ([]*model.Participant, error)
	// Count returns the number of participants.
	Count(ctx context.Context, tx Tx) (int, error)
}
