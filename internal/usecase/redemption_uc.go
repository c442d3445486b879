// File: internal/usecase/redemption_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"promo-raffle/internal/clock"
	"promo-raffle/internal/domain"
	"promo-raffle/internal/domain/model"
	"promo-raffle/internal/domain/ports/repository"
	"promo-raffle/internal/infra/logging"
	"promo-raffle/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ RedemptionUseCase = (*redemptionUC)(nil)

// RedemptionUseCase registers participants against issued codes.
type RedemptionUseCase interface {
	// Redeem validates reg, records the participant and consumes the code atomically.
	Redeem(ctx context.Context, reg model.Registration) (*model.Participant, error)
	// Status describes the campaign as of now.
	Status(ctx context.Context) CampaignStatus
}

// CampaignStatus is the public view of the running campaign.
type CampaignStatus struct {
	Campaign  model.Campaign
	Remaining time.Duration
	Closed    bool
}

// cacheInvalidator is implemented by cached participant repositories.
type cacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type redemptionUC struct {
	codes        repository.CodeRepository
	participants repository.ParticipantRepository
	tm           repository.TransactionManager
	campaign     model.Campaign
	clock        clock.Clock
	log          *zerolog.Logger
}

func NewRedemptionUseCase(
	codes repository.CodeRepository,
	participants repository.ParticipantRepository,
	tm repository.TransactionManager,
	campaign model.Campaign,
	clk clock.Clock,
	logger *zerolog.Logger,
) *redemptionUC {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &redemptionUC{
		codes:        codes,
		participants: participants,
		tm:           tm,
		campaign:     campaign,
		clock:        clk,
		log:          logging.OrNop(logger),
	}
}

func (u *redemptionUC) Redeem(ctx context.Context, reg model.Registration) (*model.Participant, error) {
	defer logging.TraceDuration(u.log, "RedemptionUC.Redeem")()

	p, err := u.redeem(ctx, reg)
	metrics.IncRedemption(redemptionOutcome(err))
	log := logging.With(ctx, u.log)
	if err != nil {
		ev := log.Info()
		if redemptionOutcome(err) == "error" {
			ev = log.Error()
		}
		ev.Err(err).Str("code", reg.Code).Msg("redemption rejected")
		return nil, err
	}
	log.Info().Str("code", p.Code).Str("participant", p.ID).Msg("code redeemed")
	return p, nil
}

func (u *redemptionUC) redeem(ctx context.Context, reg model.Registration) (*model.Participant, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	now := u.clock.Now()
	if u.campaign.Closed(now) {
		return nil, domain.ErrCampaignClosed
	}
	reg = reg.Normalized()
	if !model.IsWellFormedCode(reg.Code) {
		return nil, domain.ErrInvalidCode
	}

	var created *model.Participant
	err := u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := u.codes.FindUnused(ctx, tx, reg.Code); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrInvalidCode
			}
			return fmt.Errorf("find code: %w", err)
		}

		claimed, err := u.participants.ExistsByCode(ctx, tx, reg.Code)
		if err != nil {
			return fmt.Errorf("check claim: %w", err)
		}
		if claimed {
			return domain.ErrDuplicateClaim
		}

		p := model.NewParticipant(reg, now)
		if err := u.participants.Create(ctx, tx, p); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return domain.ErrDuplicateClaim
			}
			return fmt.Errorf("create participant: %w", err)
		}

		ok, err := u.codes.MarkUsed(ctx, tx, reg.Code, now)
		if err != nil {
			return fmt.Errorf("mark code used: %w", err)
		}
		if !ok {
			return domain.ErrInvalidCode
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if inv, ok := u.participants.(cacheInvalidator); ok {
		if err := inv.Invalidate(ctx); err != nil {
			u.log.Warn().Err(err).Msg("invalidate participant cache")
		}
	}
	return created, nil
}

func (u *redemptionUC) Status(ctx context.Context) CampaignStatus {
	now := u.clock.Now()
	return CampaignStatus{
		Campaign:  u.campaign,
		Remaining: u.campaign.Remaining(now),
		Closed:    u.campaign.Closed(now),
	}
}

func redemptionOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCode):
		return "invalid_code"
	case errors.Is(err, domain.ErrDuplicateClaim):
		return "duplicate_claim"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrCampaignClosed):
		return "closed"
	default:
		return "error"
	}
}
