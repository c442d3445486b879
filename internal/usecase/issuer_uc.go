// File: internal/usecase/issuer_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"promo-raffle/internal/clock"
	"promo-raffle/internal/domain"
	"promo-raffle/internal/domain/model"
	"promo-raffle/internal/domain/ports/adapter"
	"promo-raffle/internal/domain/ports/repository"
	"promo-raffle/internal/infra/logging"
	"promo-raffle/internal/infra/metrics"

	"github.com/rs/zerolog"
)

const (
	// PurgeConfirmation must be typed verbatim to delete every code.
	PurgeConfirmation = "DELETE ALL CODES"

	// IssueLockKey serializes batch issuing and purging across instances.
	IssueLockKey = "issue:lock"
)

// Compile-time check
var _ IssuerUseCase = (*issuerUC)(nil)

// IssuerUseCase generates and manages raffle entry codes.
type IssuerUseCase interface {
	// Issue persists n new unique codes and returns them in generation order.
	// On a store failure mid-batch the codes persisted so far are returned with the error.
	Issue(ctx context.Context, n int) ([]*model.Code, error)
	// PurgeAll deletes every code once confirm equals PurgeConfirmation.
	PurgeAll(ctx context.Context, confirm string) (int64, error)
	Stats(ctx context.Context) (*model.CodeStats, error)
	Lookup(ctx context.Context, value string) (*model.Code, error)
}

// IssuePolicy bounds the retry loop of a single code slot.
type IssuePolicy struct {
	Length      int // starting code length
	MaxLength   int // widest length tried before giving up
	LengthStep  int // growth once MaxAttempts draws collided; 0 never widens
	MaxAttempts int // draws per length
	MaxBatch    int // largest accepted n; 0 means unbounded
	LockTTL     time.Duration
}

// DefaultIssuePolicy matches the shipped configuration defaults.
func DefaultIssuePolicy() IssuePolicy {
	return IssuePolicy{
		Length:      8,
		MaxLength:   16,
		LengthStep:  2,
		MaxAttempts: 16,
		MaxBatch:    1000,
		LockTTL:     2 * time.Minute,
	}
}

type issuerUC struct {
	codes  repository.CodeRepository
	gen    CodeGenerator
	locker adapter.Locker // optional; nil keeps the lock in-process
	clock  clock.Clock
	policy IssuePolicy
	local  sync.Mutex
	log    *zerolog.Logger
}

// NewIssuerUseCase wires the issuer. locker and logger may be nil.
func NewIssuerUseCase(
	codes repository.CodeRepository,
	gen CodeGenerator,
	locker adapter.Locker,
	clk clock.Clock,
	policy IssuePolicy,
	logger *zerolog.Logger,
) *issuerUC {
	if gen == nil {
		gen = NewRandomCodeGenerator()
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	if policy.Length <= 0 {
		policy.Length = DefaultIssuePolicy().Length
	}
	if policy.MaxLength < policy.Length {
		policy.MaxLength = policy.Length
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if policy.LockTTL <= 0 {
		policy.LockTTL = DefaultIssuePolicy().LockTTL
	}
	return &issuerUC{
		codes:  codes,
		gen:    gen,
		locker: locker,
		clock:  clk,
		policy: policy,
		log:    logging.OrNop(logger),
	}
}

func (u *issuerUC) Issue(ctx context.Context, n int) ([]*model.Code, error) {
	defer logging.TraceDuration(u.log, "IssuerUC.Issue")()

	if n <= 0 || (u.policy.MaxBatch > 0 && n > u.policy.MaxBatch) {
		metrics.IncIssueBatch("rejected")
		if u.policy.MaxBatch > 0 {
			return nil, fmt.Errorf("%w: %d (allowed 1..%d)", domain.ErrInvalidBatchSize, n, u.policy.MaxBatch)
		}
		return nil, fmt.Errorf("%w: %d (must be positive)", domain.ErrInvalidBatchSize, n)
	}

	lease, err := u.acquire(ctx)
	if err != nil {
		metrics.IncIssueBatch("locked")
		return nil, err
	}
	defer lease.release(ctx)

	log := logging.With(ctx, u.log)
	seen := make(map[string]struct{}, n)
	out := make([]*model.Code, 0, n)
	length := u.policy.Length
	for len(out) < n {
		c, l, err := u.issueOne(ctx, seen, length)
		length = l
		if err != nil {
			metrics.IncIssueBatch("failed")
			log.Error().Err(err).Int("requested", n).Int("issued", len(out)).Msg("code batch aborted")
			return out, fmt.Errorf("issue code %d of %d: %w", len(out)+1, n, err)
		}
		seen[c.Value] = struct{}{}
		out = append(out, c)
		metrics.IncCodesIssued()

		if err := lease.keepAlive(ctx); err != nil {
			metrics.IncIssueBatch("failed")
			log.Error().Err(err).Int("requested", n).Int("issued", len(out)).Msg("issue lock lost")
			return out, fmt.Errorf("keep issue lock after %d of %d: %w", len(out), n, err)
		}
	}

	metrics.IncIssueBatch("ok")
	log.Info().Int("issued", len(out)).Int("length", length).Msg("code batch issued")
	return out, nil
}

// issueOne draws until a value is unique in the batch and the store, then
// persists it. It returns the length in effect so later slots start there.
func (u *issuerUC) issueOne(ctx context.Context, seen map[string]struct{}, length int) (*model.Code, int, error) {
	for {
		for attempt := 0; attempt < u.policy.MaxAttempts; attempt++ {
			if err := ctx.Err(); err != nil {
				return nil, length, err
			}
			value, err := u.gen.Generate(length)
			if err != nil {
				return nil, length, fmt.Errorf("generate code: %w", err)
			}
			if _, dup := seen[value]; dup {
				metrics.IncCodeCollision("batch")
				continue
			}
			exists, err := u.codes.Exists(ctx, repository.NoTX, value)
			if err != nil {
				return nil, length, fmt.Errorf("check code: %w", err)
			}
			if exists {
				metrics.IncCodeCollision("store")
				continue
			}
			c, err := model.NewCode(value, u.clock.Now())
			if err != nil {
				return nil, length, fmt.Errorf("build code: %w", err)
			}
			if err := u.codes.Create(ctx, repository.NoTX, c); err != nil {
				if errors.Is(err, domain.ErrAlreadyExists) {
					// Lost an insert race with another writer.
					metrics.IncCodeCollision("insert")
					continue
				}
				return nil, length, fmt.Errorf("persist code: %w", err)
			}
			return c, length, nil
		}

		next := min(length+u.policy.LengthStep, u.policy.MaxLength)
		if next <= length {
			return nil, length, domain.ErrCodeSpaceExhausted
		}
		u.log.Warn().Int("from", length).Int("to", next).Msg("code space congested, widening length")
		metrics.IncCodeLengthWidened()
		length = next
	}
}

func (u *issuerUC) PurgeAll(ctx context.Context, confirm string) (int64, error) {
	defer logging.TraceDuration(u.log, "IssuerUC.PurgeAll")()

	if confirm != PurgeConfirmation {
		return 0, domain.ErrConfirmationRequired
	}
	lease, err := u.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer lease.release(ctx)

	n, err := u.codes.DeleteAll(ctx, repository.NoTX)
	if err != nil {
		return 0, fmt.Errorf("purge codes: %w", err)
	}
	metrics.AddCodesPurged(n)
	logging.With(ctx, u.log).Warn().Int64("deleted", n).Msg("all codes purged")
	return n, nil
}

func (u *issuerUC) Stats(ctx context.Context) (*model.CodeStats, error) {
	defer logging.TraceDuration(u.log, "IssuerUC.Stats")()
	return u.codes.Stats(ctx, repository.NoTX)
}

func (u *issuerUC) Lookup(ctx context.Context, value string) (*model.Code, error) {
	v := model.NormalizeCode(value)
	if !model.IsWellFormedCode(v) {
		return nil, domain.ErrNotFound
	}
	return u.codes.FindByValue(ctx, repository.NoTX, v)
}

// issueLease is the held issue lock. The shared key is extended once a third
// of its ttl has gone by, so a slow batch keeps it until release.
type issueLease struct {
	u        *issuerUC
	token    string // empty when only the in-process guard is held
	extended time.Time
}

// acquire takes the in-process guard and, when configured, the shared lock.
func (u *issuerUC) acquire(ctx context.Context) (*issueLease, error) {
	if !u.local.TryLock() {
		return nil, domain.ErrIssueInProgress
	}
	lease := &issueLease{u: u, extended: u.clock.Now()}
	if u.locker == nil {
		return lease, nil
	}
	token, err := u.locker.TryLock(ctx, IssueLockKey, u.policy.LockTTL)
	if err != nil {
		u.local.Unlock()
		return nil, err
	}
	lease.token = token
	return lease, nil
}

// keepAlive extends the shared lock when due. Only losing the key is fatal;
// a failed round trip is retried on the next slot.
func (l *issueLease) keepAlive(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	now := l.u.clock.Now()
	if now.Sub(l.extended) < l.u.policy.LockTTL/3 {
		return nil
	}
	if err := l.u.locker.Extend(ctx, IssueLockKey, l.token, l.u.policy.LockTTL); err != nil {
		if errors.Is(err, domain.ErrIssueInProgress) {
			return err
		}
		l.u.log.Warn().Err(err).Msg("extend issue lock")
		return nil
	}
	l.extended = now
	return nil
}

func (l *issueLease) release(ctx context.Context) {
	if l.token != "" {
		if err := l.u.locker.Unlock(context.WithoutCancel(ctx), IssueLockKey, l.token); err != nil {
			l.u.log.Warn().Err(err).Msg("release issue lock")
		}
	}
	l.u.local.Unlock()
}
