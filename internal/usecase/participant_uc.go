// File: internal/usecase/participant_uc.go
package usecase

import (
	"context"

	"promo-raffle/internal/domain/model"
	"promo-raffle/internal/domain/ports/repository"
	"promo-raffle/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ParticipantUseCase = (*participantUC)(nil)

// ParticipantUseCase is the read side used by the admin console and exports.
type ParticipantUseCase interface {
	List(ctx context.Context) ([]*model.Participant, error)
	Count(ctx context.Context) (int, error)
}

type participantUC struct {
	participants repository.ParticipantRepository
	log          *zerolog.Logger
}

func NewParticipantUseCase(participants repository.ParticipantRepository, logger *zerolog.Logger) *participantUC {
	return &participantUC{participants: participants, log: logging.OrNop(logger)}
}

// List returns every participant, newest first.
func (u *participantUC) List(ctx context.Context) ([]*model.Participant, error) {
	defer logging.TraceDuration(u.log, "ParticipantUC.List")()
	return u.participants.ListAll(ctx, repository.NoTX)
}

func (u *participantUC) Count(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "ParticipantUC.Count")()
	return u.participants.Count(ctx, repository.NoTX)
}
