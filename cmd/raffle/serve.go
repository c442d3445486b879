// File: cmd/raffle/serve.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promo-raffle/internal/infra/coupon"
	"promo-raffle/internal/infra/db/migrations"
	pg "promo-raffle/internal/infra/db/postgres"
	"promo-raffle/internal/infra/i18n"
	"promo-raffle/internal/infra/web"
	"promo-raffle/internal/usecase"

	"github.com/spf13/cobra"
)

func serveCommand() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func serveRun(parent context.Context, migrate bool) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if migrate {
		applied, err := migrations.Apply(ctx, a.pool, logger)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info().Strs("applied", applied).Msg("migrations applied")
	}

	msgs, err := i18n.NewTranslator(i18n.LocalesFS, cfg.HTTP.Locale)
	if err != nil {
		return fmt.Errorf("load %s messages: %w", cfg.HTTP.Locale, err)
	}

	go pg.ReportPoolStats(ctx, a.pool, 15*time.Second)

	srv := web.NewServer(web.Deps{
		Issuer:       a.issuer,
		Redemption:   a.redemption,
		Participants: a.participants,
		AdminAuth:    usecase.NewAdminAuthUseCase(cfg.Admin.Email, cfg.Admin.PasswordHash, logger),
		Auth:         web.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.SecureCookie, cfg.Admin.CookieDomain, cfg.Admin.SessionTTL, a.clock),
		Coupons:      coupon.NewRenderer(a.campaign),
		Limiter:      a.limiter,
		Messages:     msgs,
		Clock:        a.clock,
	}, web.Options{
		Addr:           cfg.HTTP.Addr,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		CORSOrigin:     cfg.HTTP.CORSOrigin,
		TrustProxy:     cfg.HTTP.TrustProxy,
		RegisterLimit:  cfg.RateLimit.Registrations,
		RegisterWindow: cfg.RateLimit.Window,
	}, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
