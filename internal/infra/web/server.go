package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"promo-raffle/internal/clock"
	"promo-raffle/internal/domain/ports/adapter"
	"promo-raffle/internal/infra/coupon"
	"promo-raffle/internal/infra/i18n"
	"promo-raffle/internal/infra/logging"
	"promo-raffle/internal/infra/metrics"
	red "promo-raffle/internal/infra/redis"
	"promo-raffle/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Options tune the HTTP surface; zero values disable the optional parts.
type Options struct {
	Addr           string
	RequestTimeout time.Duration
	CORSOrigin     string
	TrustProxy     bool
	RegisterLimit  int
	RegisterWindow time.Duration
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Issuer       usecase.IssuerUseCase
	Redemption   usecase.RedemptionUseCase
	Participants usecase.ParticipantUseCase
	AdminAuth    usecase.AdminAuthUseCase
	Auth         *AuthManager
	Coupons      *coupon.Renderer
	Limiter      adapter.RateLimiter // nil disables the registration limit
	Messages     *i18n.Translator
	Clock        clock.Clock
}

type Server struct {
	issuer       usecase.IssuerUseCase
	redemption   usecase.RedemptionUseCase
	participants usecase.ParticipantUseCase
	adminAuth    usecase.AdminAuthUseCase
	auth         *AuthManager
	coupons      *coupon.Renderer
	limiter      adapter.RateLimiter
	msgs         *i18n.Translator
	clock        clock.Clock
	opts         Options
	log          *zerolog.Logger
	srv          *http.Server
}

func NewServer(deps Deps, opts Options, logger *zerolog.Logger) *Server {
	if deps.Clock == nil {
		deps.Clock = clock.NewSystem()
	}
	s := &Server{
		issuer:       deps.Issuer,
		redemption:   deps.Redemption,
		participants: deps.Participants,
		adminAuth:    deps.AdminAuth,
		auth:         deps.Auth,
		coupons:      deps.Coupons,
		limiter:      deps.Limiter,
		msgs:         deps.Messages,
		clock:        deps.Clock,
		opts:         opts,
		log:          logging.OrNop(logger),
	}
	s.srv = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Routes builds the full router. Exposed for tests.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	if s.opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(
		TraceID(),
		RequestLog(s.log),
		Recover(s.log, s.msgs),
		Timeout(s.opts.RequestTimeout),
	)
	if s.opts.CORSOrigin != "" {
		r.Use(CORS(s.opts.CORSOrigin))
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, s.msgs.T("error.route_not_found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, s.msgs.T("error.method_not_allowed"))
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/campaign", s.handleCampaign)
		r.With(RateLimit(s.limiter, s.opts.RegisterLimit, s.opts.RegisterWindow, registrationKey, s.log, s.msgs)).
			Post("/register", s.handleRegister)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin(s.auth, s.msgs))
				r.Get("/session", s.handleSession)

				r.Post("/codes", s.handleIssueCodes)
				r.Delete("/codes", s.handlePurgeCodes)
				r.Get("/codes/stats", s.handleCodeStats)
				r.Get("/codes/{code}/coupon", s.handleCoupon)
				r.Get("/codes/{code}/qr.png", s.handleQR)

				r.Get("/participants", s.handleParticipants)
				r.Get("/participants.csv", s.handleParticipantsCSV)
			})
		})
	})
	return r
}

func registrationKey(r *http.Request) string {
	return red.RegistrationKey(clientIP(r))
}

// Start listens on the configured address and blocks until Shutdown.
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Serve accepts connections on l until Shutdown. A clean shutdown returns nil.
func (s *Server) Serve(l net.Listener) error {
	s.log.Info().Str("addr", l.Addr().String()).Msg("http server listening")
	if err := s.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
