//go:build !integration

package web_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"promo-raffle/internal/clock"
	"promo-raffle/internal/domain"
	"promo-raffle/internal/domain/model"
	"promo-raffle/internal/infra/coupon"
	"promo-raffle/internal/infra/i18n"
	"promo-raffle/internal/infra/web"
	"promo-raffle/internal/usecase"
)

var (
	testNow  = time.Date(2024, 11, 20, 15, 0, 0, 0, time.UTC)
	testZone = time.FixedZone("BRT", -3*60*60)
)

const (
	testSecret = "test-admin-jwt-secret-please-change"
	testAdmin  = "admin@example.com"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func testCampaign() model.Campaign {
	return model.Campaign{
		Brand:     "ALFA PRIME",
		Instagram: "@alfa.prime_",
		BaseURL:   "https://raffle.example",
		DrawAt:    testNow.Add(72 * time.Hour),
		Location:  testZone,
	}
}

//
// -------------------- use case mocks --------------------
//

type MockIssuer struct {
	IssueFunc    func(ctx context.Context, n int) ([]*model.Code, error)
	PurgeAllFunc func(ctx context.Context, confirm string) (int64, error)
	StatsFunc    func(ctx context.Context) (*model.CodeStats, error)
	LookupFunc   func(ctx context.Context, value string) (*model.Code, error)
}

var _ usecase.IssuerUseCase = (*MockIssuer)(nil)

func (m *MockIssuer) Issue(ctx context.Context, n int) ([]*model.Code, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, n)
	}
	return nil, nil
}

func (m *MockIssuer) PurgeAll(ctx context.Context, confirm string) (int64, error) {
	if m.PurgeAllFunc != nil {
		return m.PurgeAllFunc(ctx, confirm)
	}
	return 0, nil
}

func (m *MockIssuer) Stats(ctx context.Context) (*model.CodeStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &model.CodeStats{}, nil
}

func (m *MockIssuer) Lookup(ctx context.Context, value string) (*model.Code, error) {
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, value)
	}
	return nil, domain.ErrNotFound
}

type MockRedemption struct {
	RedeemFunc func(ctx context.Context, reg model.Registration) (*model.Participant, error)
	StatusFunc func(ctx context.Context) usecase.CampaignStatus
}

var _ usecase.RedemptionUseCase = (*MockRedemption)(nil)

func (m *MockRedemption) Redeem(ctx context.Context, reg model.Registration) (*model.Participant, error) {
	if m.RedeemFunc != nil {
		return m.RedeemFunc(ctx, reg)
	}
	return nil, domain.ErrInvalidCode
}

func (m *MockRedemption) Status(ctx context.Context) usecase.CampaignStatus {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx)
	}
	c := testCampaign()
	return usecase.CampaignStatus{Campaign: c, Remaining: c.Remaining(testNow), Closed: false}
}

type MockParticipants struct {
	ListFunc  func(ctx context.Context) ([]*model.Participant, error)
	CountFunc func(ctx context.Context) (int, error)
}

var _ usecase.ParticipantUseCase = (*MockParticipants)(nil)

func (m *MockParticipants) List(ctx context.Context) ([]*model.Participant, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockParticipants) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

type MockAdminAuth struct {
	AuthenticateFunc func(ctx context.Context, email, password string) error
}

var _ usecase.AdminAuthUseCase = (*MockAdminAuth)(nil)

func (m *MockAdminAuth) Authenticate(ctx context.Context, email, password string) error {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, email, password)
	}
	return domain.ErrUnauthorized
}

type MockLimiter struct {
	AllowFunc func(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Keys      []string
}

func (m *MockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	m.Keys = append(m.Keys, key)
	if m.AllowFunc != nil {
		return m.AllowFunc(ctx, key, limit, window)
	}
	return true, nil
}

//
// -------------------- test helpers --------------------
//

type testEnv struct {
	issuer       *MockIssuer
	redemption   *MockRedemption
	participants *MockParticipants
	adminAuth    *MockAdminAuth
	limiter      *MockLimiter
	clock        *clock.Fixed
	auth         *web.AuthManager
	server       *web.Server
	handler      http.Handler
}

func newTestEnv(t *testing.T, tweak ...func(*web.Options)) *testEnv {
	t.Helper()
	return newTestEnvLang(t, "en", tweak...)
}

func newTestEnvLang(t *testing.T, lang string, tweak ...func(*web.Options)) *testEnv {
	t.Helper()
	msgs, err := i18n.NewTranslator(i18n.LocalesFS, lang)
	if err != nil {
		t.Fatalf("load %s messages: %v", lang, err)
	}
	env := &testEnv{
		issuer:       &MockIssuer{},
		redemption:   &MockRedemption{},
		participants: &MockParticipants{},
		adminAuth:    &MockAdminAuth{},
		limiter:      &MockLimiter{},
		clock:        clock.NewFixed(testNow),
	}
	env.auth = web.NewAuthManager(testSecret, false, "", time.Hour, env.clock)

	opts := web.Options{
		Addr:           "127.0.0.1:0",
		RequestTimeout: 5 * time.Second,
		RegisterLimit:  5,
		RegisterWindow: time.Minute,
	}
	for _, f := range tweak {
		f(&opts)
	}
	env.server = web.NewServer(web.Deps{
		Issuer:       env.issuer,
		Redemption:   env.redemption,
		Participants: env.participants,
		AdminAuth:    env.adminAuth,
		Auth:         env.auth,
		Coupons:      coupon.NewRenderer(testCampaign()),
		Limiter:      env.limiter,
		Messages:     msgs,
		Clock:        env.clock,
	}, opts, newTestLogger())
	env.handler = env.server.Routes()
	return env
}

// adminToken mints a session the way a successful login would.
func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	tok, _, err := e.auth.Mint(httptest.NewRecorder(), testAdmin)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return tok
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doAdmin(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+e.adminToken(t))
	return e.do(req)
}
