// File: internal/usecase/admin_auth_uc.go
package usecase

import (
	"context"
	"crypto/subtle"
	"strings"

	"promo-raffle/internal/domain"
	"promo-raffle/internal/infra/logging"
	"promo-raffle/internal/infra/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Compile-time check
var _ AdminAuthUseCase = (*adminAuthUC)(nil)

// AdminAuthUseCase checks the single admin account configured for the console.
type AdminAuthUseCase interface {
	// Authenticate returns domain.ErrUnauthorized unless both email and password match.
	Authenticate(ctx context.Context, email, password string) error
}

type adminAuthUC struct {
	email string
	hash  []byte
	log   *zerolog.Logger
}

// NewAdminAuthUseCase takes the admin email and its bcrypt password hash.
func NewAdminAuthUseCase(email, passwordHash string, logger *zerolog.Logger) *adminAuthUC {
	return &adminAuthUC{
		email: normalizeEmail(email),
		hash:  []byte(passwordHash),
		log:   logging.OrNop(logger),
	}
}

func (u *adminAuthUC) Authenticate(ctx context.Context, email, password string) error {
	// bcrypt always runs so a wrong email costs the same as a wrong password.
	emailOK := subtle.ConstantTimeCompare([]byte(normalizeEmail(email)), []byte(u.email)) == 1
	passErr := bcrypt.CompareHashAndPassword(u.hash, []byte(password))
	if !emailOK || passErr != nil || u.email == "" {
		metrics.IncAdminLogin("denied")
		logging.With(ctx, u.log).Warn().Str("email", logging.Redact(email, false)).Msg("admin login denied")
		return domain.ErrUnauthorized
	}
	metrics.IncAdminLogin("ok")
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
