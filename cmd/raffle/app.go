// File: cmd/raffle/app.go
package main

import (
	"context"
	"fmt"

	"promo-raffle/internal/clock"
	"promo-raffle/internal/config"
	"promo-raffle/internal/domain/model"
	"promo-raffle/internal/domain/ports/adapter"
	"promo-raffle/internal/domain/ports/repository"
	pg "promo-raffle/internal/infra/db/postgres"
	red "promo-raffle/internal/infra/redis"
	"promo-raffle/internal/usecase"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

// app holds the wired dependencies shared by every subcommand.
type app struct {
	cfg      *config.Config
	log      *zerolog.Logger
	clock    clock.Clock
	campaign model.Campaign

	pool  *pgxpool.Pool
	redis *red.Client // nil when redis is not configured

	issuer       usecase.IssuerUseCase
	redemption   usecase.RedemptionUseCase
	participants usecase.ParticipantUseCase
	limiter      adapter.RateLimiter
}

func newApp(ctx context.Context, cfg *config.Config, log *zerolog.Logger) (*app, error) {
	campaign, err := cfg.Campaign.Build()
	if err != nil {
		return nil, err
	}

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, clock: clock.NewSystem(), campaign: campaign, pool: pool}

	// ---- Redis (optional) ----
	var locker adapter.Locker
	if cfg.Redis.URL != "" {
		rc, err := red.NewClient(ctx, cfg.Redis)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.redis = rc
		locker = red.NewLocker(rc)
		a.limiter = red.NewRateLimiter(rc)
	} else {
		log.Info().Msg("redis not configured: issue lock is process-local, no registration rate limit, no participant cache")
	}

	// ---- Repositories ----
	codes := pg.NewCodeRepo(pool)
	var participants repository.ParticipantRepository = pg.NewParticipantRepo(pool)
	if a.redis != nil {
		participants = pg.NewParticipantRepoCacheDecorator(participants, a.redis, cfg.Redis.TTL)
	}
	tm := pg.NewTxManager(pool)

	// ---- Use cases ----
	a.issuer = usecase.NewIssuerUseCase(codes, nil, locker, a.clock, issuePolicy(cfg.Codes), log)
	a.redemption = usecase.NewRedemptionUseCase(codes, participants, tm, campaign, a.clock, log)
	a.participants = usecase.NewParticipantUseCase(participants, log)
	return a, nil
}

func issuePolicy(c config.CodesConfig) usecase.IssuePolicy {
	return usecase.IssuePolicy{
		Length:      c.Length,
		MaxLength:   c.MaxLength,
		LengthStep:  c.LengthStep,
		MaxAttempts: c.MaxAttempts,
		MaxBatch:    c.MaxBatch,
		LockTTL:     c.IssueLockTTL,
	}
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn().Err(err).Msg("close redis")
		}
	}
	a.pool.Close()
}
