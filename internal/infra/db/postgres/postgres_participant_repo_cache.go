package postgres

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"promo-raffle/internal/domain/model"
	"promo-raffle/internal/domain/ports/repository"
	"promo-raffle/internal/infra/metrics"
	red "promo-raffle/internal/infra/redis"
)

const (
	participantsListKey  = "participants:all"
	participantsCountKey = "participants:count"
)

var _ repository.ParticipantRepository = (*participantRepoCacheDecorator)(nil)

// participantRepoCacheDecorator caches the admin listing. Reads inside a
// transaction always go to the store.
type participantRepoCacheDecorator struct {
	inner repository.ParticipantRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewParticipantRepoCacheDecorator(inner repository.ParticipantRepository, cache red.RedisClient, ttl time.Duration) *participantRepoCacheDecorator {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &participantRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func (d *participantRepoCacheDecorator) ExistsByCode(ctx context.Context, tx repository.Tx, code string) (bool, error) {
	return d.inner.ExistsByCode(ctx, tx, code)
}

// Create writes through without touching the cache: inside a transaction the
// row is not visible yet, so callers Invalidate once the write has committed.
func (d *participantRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, p *model.Participant) error {
	return d.inner.Create(ctx, tx, p)
}

func (d *participantRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Participant, error) {
	if tx != nil {
		return d.inner.ListAll(ctx, tx)
	}
	val, err := d.cache.Get(ctx, participantsListKey)
	if err == nil {
		var list []*model.Participant
		if json.Unmarshal([]byte(val), &list) == nil {
			metrics.IncCacheRequest("participant_list", "hit")
			return list, nil
		}
	} else if !red.IsNil(err) {
		metrics.IncCacheRequest("participant_list", "error")
	}

	metrics.IncCacheRequest("participant_list", "miss")
	list, err := d.inner.ListAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(list); err == nil {
		_ = d.cache.Set(ctx, participantsListKey, b, d.ttl)
	}
	return list, nil
}

func (d *participantRepoCacheDecorator) Count(ctx context.Context, tx repository.Tx) (int, error) {
	if tx != nil {
		return d.inner.Count(ctx, tx)
	}
	if val, err := d.cache.Get(ctx, participantsCountKey); err == nil {
		if n, err := strconv.Atoi(val); err == nil {
			metrics.IncCacheRequest("participant_count", "hit")
			return n, nil
		}
	}
	metrics.IncCacheRequest("participant_count", "miss")
	n, err := d.inner.Count(ctx, tx)
	if err != nil {
		return 0, err
	}
	_ = d.cache.Set(ctx, participantsCountKey, strconv.Itoa(n), d.ttl)
	return n, nil
}

// Invalidate drops every cached participant view.
func (d *participantRepoCacheDecorator) Invalidate(ctx context.Context) error {
	return d.cache.Del(ctx, participantsListKey, participantsCountKey)
}
