package model

import (
	"strings"
	"time"

	"promo-raffle/internal/domain"

	"github.com/google/uuid"
)

// CodeAlphabet is the character set entry codes are drawn from.
const CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Code is a single-use raffle entry code handed out with a purchase.
type Code struct {
	ID        string
	Value     string
	Used      bool
	CreatedAt time.Time
	UsedAt    *time.Time // nil until redeemed
}

// NewCode validates the value and constructs an unused code.
func NewCode(value string, now time.Time) (*Code, error) {
	if !IsWellFormedCode(value) {
		return nil, domain.ErrInvalidArgument
	}
	return &Code{
		ID:        uuid.NewString(),
		Value:     value,
		Used:      false,
		CreatedAt: now,
	}, nil
}

// IsWellFormedCode reports whether s is non-empty and only uses CodeAlphabet.
func IsWellFormedCode(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(CodeAlphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}

// NormalizeCode trims whitespace and upper-cases a code typed by a participant.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// CodeStats summarises the code table for the admin console.
type CodeStats struct {
	Total  int
	Used   int
	Unused int
}
