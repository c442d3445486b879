//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"promo-raffle/internal/domain"
	"promo-raffle/internal/domain/model"
	"promo-raffle/internal/domain/ports/adapter"
	"promo-raffle/internal/domain/ports/repository"
)

// -----------------------------
// Utilities: tiny helpers
// -----------------------------

var testNow = time.Date(2024, 11, 20, 15, 0, 0, 0, time.UTC)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// =============================
// In-memory store
// =============================

// MemStore backs MockCodeRepo and MockParticipantRepo with shared state so
// MockTxManager can snapshot and restore both tables on rollback.
type MemStore struct {
	mu           sync.Mutex
	txMu         sync.Mutex // serializes transactions like a row lock would
	codes        map[string]*model.Code
	participants map[string]*model.Participant // keyed by code
	calls        atomic.Int64
}

func NewMemStore() *MemStore {
	return &MemStore{
		codes:        map[string]*model.Code{},
		participants: map[string]*model.Participant{},
	}
}

// Calls reports how many repository or transaction calls reached the store.
func (s *MemStore) Calls() int64 { return s.calls.Load() }

func (s *MemStore) SeedCode(value string, used bool) *model.Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &model.Code{ID: uuid.NewString(), Value: value, Used: used, CreatedAt: testNow}
	s.codes[value] = c
	cp := *c
	return &cp
}

func (s *MemStore) SeedParticipant(p *model.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.participants[p.Code] = &cp
}

func (s *MemStore) Code(value string) (*model.Code, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[value]
	if !ok {
		return nil, false
	}
	cp := *c
	return &cp, true
}

func (s *MemStore) ParticipantCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.participants)
}

func (s *MemStore) snapshot() (map[string]model.Code, map[string]model.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	codes := make(map[string]model.Code, len(s.codes))
	for k, v := range s.codes {
		codes[k] = *v
	}
	parts := make(map[string]model.Participant, len(s.participants))
	for k, v := range s.participants {
		parts[k] = *v
	}
	return codes, parts
}

func (s *MemStore) restore(codes map[string]model.Code, parts map[string]model.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = make(map[string]*model.Code, len(codes))
	for k, v := range codes {
		c := v
		s.codes[k] = &c
	}
	s.participants = make(map[string]*model.Participant, len(parts))
	for k, v := range parts {
		p := v
		s.participants[k] = &p
	}
}

// ---- MockTxManager ----

type MockTxManager struct {
	store      *MemStore
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager(store *MemStore) *MockTxManager {
	return &MockTxManager{store: store}
}

// WithTx runs fn under the store's transaction mutex and rolls every table
// back to its prior state when fn fails.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	m.store.calls.Add(1)
	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	codes, parts := m.store.snapshot()
	if err := fn(ctx, "mem-tx"); err != nil {
		m.store.restore(codes, parts)
		return err
	}
	return nil
}

// =============================
// Repositories
// =============================

// ---- MockCodeRepo ----

type MockCodeRepo struct {
	store *MemStore

	// Optional overrides for failure injection.
	ExistsFunc   func(ctx context.Context, value string) (bool, error)
	CreateFunc   func(ctx context.Context, c *model.Code) error
	MarkUsedFunc func(ctx context.Context, value string) (bool, error)
}

var _ repository.CodeRepository = (*MockCodeRepo)(nil)

func NewMockCodeRepo(store *MemStore) *MockCodeRepo {
	return &MockCodeRepo{store: store}
}

func (r *MockCodeRepo) Exists(ctx context.Context, _ repository.Tx, value string) (bool, error) {
	r.store.calls.Add(1)
	if r.ExistsFunc != nil {
		return r.ExistsFunc(ctx, value)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.codes[value]
	return ok, nil
}

func (r *MockCodeRepo) Create(ctx context.Context, _ repository.Tx, c *model.Code) error {
	r.store.calls.Add(1)
	if r.CreateFunc != nil {
		if err := r.CreateFunc(ctx, c); err != nil {
			return err
		}
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.codes[c.Value]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *c
	r.store.codes[c.Value] = &cp
	return nil
}

func (r *MockCodeRepo) FindByValue(ctx context.Context, _ repository.Tx, value string) (*model.Code, error) {
	r.store.calls.Add(1)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.codes[value]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *MockCodeRepo) FindUnused(ctx context.Context, _ repository.Tx, value string) (*model.Code, error) {
	r.store.calls.Add(1)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.codes[value]
	if !ok || c.Used {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *MockCodeRepo) MarkUsed(ctx context.Context, _ repository.Tx, value string, at time.Time) (bool, error) {
	r.store.calls.Add(1)
	if r.MarkUsedFunc != nil {
		return r.MarkUsedFunc(ctx, value)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.codes[value]
	if !ok || c.Used {
		return false, nil
	}
	c.Used = true
	t := at
	c.UsedAt = &t
	return true, nil
}

func (r *MockCodeRepo) DeleteAll(ctx context.Context, _ repository.Tx) (int64, error) {
	r.store.calls.Add(1)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	// participants.code references raffle_codes.code
	if len(r.store.participants) > 0 {
		return 0, domain.ErrCodesInUse
	}
	n := int64(len(r.store.codes))
	r.store.codes = map[string]*model.Code{}
	return n, nil
}

func (r *MockCodeRepo) Stats(ctx context.Context, _ repository.Tx) (*model.CodeStats, error) {
	r.store.calls.Add(1)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	st := &model.CodeStats{Total: len(r.store.codes)}
	for _, c := range r.store.codes {
		if c.Used {
			st.Used++
		}
	}
	st.Unused = st.Total - st.Used
	return st, nil
}

// ---- MockParticipantRepo ----

type MockParticipantRepo struct {
	store *MemStore

	ExistsByCodeFunc func(ctx context.Context, code string) (bool, error)
	InvalidateFunc   func(ctx context.Context) error
	invalidations    atomic.Int64
}

var _ repository.ParticipantRepository = (*MockParticipantRepo)(nil)

func NewMockParticipantRepo(store *MemStore) *MockParticipantRepo {
	return &MockParticipantRepo{store: store}
}

func (r *MockParticipantRepo) ExistsByCode(ctx context.Context, _ repository.Tx, code string) (bool, error) {
	r.store.calls.Add(1)
	if r.ExistsByCodeFunc != nil {
		return r.ExistsByCodeFunc(ctx, code)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.participants[code]
	return ok, nil
}

func (r *MockParticipantRepo) Create(ctx context.Context, _ repository.Tx, p *model.Participant) error {
	r.store.calls.Add(1)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.participants[p.Code]; ok {
		return domain.ErrAlreadyExists
	}
	if _, ok := r.store.codes[p.Code]; !ok {
		return errors.New("foreign key violation: unknown code")
	}
	cp := *p
	r.store.participants[p.Code] = &cp
	return nil
}

func (r *MockParticipantRepo) ListAll(ctx context.Context, _ repository.Tx) ([]*model.Participant, error) {
	r.store.calls.Add(1)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*model.Participant, 0, len(r.store.participants))
	for _, p := range r.store.participants {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MockParticipantRepo) Count(ctx context.Context, _ repository.Tx) (int, error) {
	r.store.calls.Add(1)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return len(r.store.participants), nil
}

// Invalidate mimics the cached repository decorator.
func (r *MockParticipantRepo) Invalidate(ctx context.Context) error {
	r.invalidations.Add(1)
	if r.InvalidateFunc != nil {
		return r.InvalidateFunc(ctx)
	}
	return nil
}

// =============================
// Adapters
// =============================

// ---- MockGenerator ----

// MockGenerator replays Values in order, then falls back to Fallback.
type MockGenerator struct {
	mu       sync.Mutex
	Values   []string
	Fallback func(length int) (string, error)
	Lengths  []int
}

func (g *MockGenerator) Generate(length int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Lengths = append(g.Lengths, length)
	if len(g.Values) > 0 {
		v := g.Values[0]
		g.Values = g.Values[1:]
		return v, nil
	}
	if g.Fallback != nil {
		return g.Fallback(length)
	}
	return strings.Repeat("A", length), nil
}

func (g *MockGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Lengths)
}

// ---- MockLocker ----

type MockLocker struct {
	mu       sync.Mutex
	held     map[string]string
	ErrOn    map[string]error
	Unlocked []string
	Extended []time.Duration
}

var _ adapter.Locker = (*MockLocker)(nil)

func NewMockLocker() *MockLocker {
	return &MockLocker{held: map[string]string{}, ErrOn: map[string]error{}}
}

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err, bad := l.ErrOn[key]; bad {
		return "", err
	}
	if _, ok := l.held[key]; ok {
		return "", domain.ErrIssueInProgress
	}
	tok := uuid.NewString()
	l.held[key] = tok
	return tok, nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		l.Unlocked = append(l.Unlocked, key)
	}
	return nil
}

func (l *MockLocker) Extend(ctx context.Context, key, token string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] != token {
		return domain.ErrIssueInProgress
	}
	l.Extended = append(l.Extended, ttl)
	return nil
}

func (l *MockLocker) Hold(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held[key] = "someone-else"
}

func (l *MockLocker) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[key]
	return ok
}
