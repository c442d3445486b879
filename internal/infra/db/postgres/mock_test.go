//go:build !integration

package postgres

import (
	"context"
	"time"

	"promo-raffle/internal/domain/model"
	"promo-raffle/internal/domain/ports/repository"
	red "promo-raffle/internal/infra/redis"

	"github.com/go-redis/redis/v8"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerParticipantRepo mocks the database repository that the decorator wraps.
type mockInnerParticipantRepo struct {
	ExistsByCodeFunc func(ctx context.Context, tx repository.Tx, code string) (bool, error)
	CreateFunc       func(ctx context.Context, tx repository.Tx, p *model.Participant) error
	ListAllFunc      func(ctx context.Context, tx repository.Tx) ([]*model.Participant, error)
	CountFunc        func(ctx context.Context, tx repository.Tx) (int, error)
}

func (m *mockInnerParticipantRepo) ExistsByCode(ctx context.Context, tx repository.Tx, code string) (bool, error) {
	return m.ExistsByCodeFunc(ctx, tx, code)
}
func (m *mockInnerParticipantRepo) Create(ctx context.Context, tx repository.Tx, p *model.Participant) error {
	return m.CreateFunc(ctx, tx, p)
}
func (m *mockInnerParticipantRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Participant, error) {
	return m.ListAllFunc(ctx, tx)
}
func (m *mockInnerParticipantRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	return m.CountFunc(ctx, tx)
}

// mockRedisClient mocks our Redis client wrapper. Unset funcs behave like an
// empty cache.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	PingFunc   func(ctx context.Context) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
	CloseFunc  func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc == nil {
		return "", redis.Nil
	}
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc == nil {
		return nil
	}
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error {
	if m.PingFunc == nil {
		return nil
	}
	return m.PingFunc(ctx)
}
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	if m.IncrFunc == nil {
		return 1, nil
	}
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	if m.ExpireFunc == nil {
		return nil
	}
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) Close() error {
	if m.CloseFunc == nil {
		return nil
	}
	return m.CloseFunc()
}
