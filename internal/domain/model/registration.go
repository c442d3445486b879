package model

import (
	"fmt"
	"strings"

	"promo-raffle/internal/domain"
)

// Registration is the participant form submission.
type Registration struct {
	FullName  string
	Email     string
	Phone     string
	Instagram string
	Code      string

	IsFollowing bool // follows the brand account
	HasTagged   bool // tagged three friends on the raffle post
	HasShared   bool // shared the post in stories
}

// Validate checks the form-level preconditions. It never touches the store.
func (r Registration) Validate() error {
	if !r.IsFollowing || !r.HasTagged || !r.HasShared {
		return fmt.Errorf("%w: all participation steps must be confirmed", domain.ErrValidation)
	}
	required := []struct {
		name, value string
	}{
		{"full_name", r.FullName},
		{"email", r.Email},
		{"phone", r.Phone},
		{"instagram", r.Instagram},
		{"code", r.Code},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", domain.ErrValidation, f.name)
		}
	}
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("%w: email is malformed", domain.ErrValidation)
	}
	return nil
}

// Normalized returns a copy with trimmed fields, an "@"-prefixed Instagram
// handle and an upper-cased code.
func (r Registration) Normalized() Registration {
	out := r
	out.FullName = strings.TrimSpace(r.FullName)
	out.Email = strings.TrimSpace(r.Email)
	out.Phone = strings.TrimSpace(r.Phone)
	out.Instagram = NormalizeInstagram(r.Instagram)
	out.Code = NormalizeCode(r.Code)
	return out
}

// NormalizeInstagram prefixes the handle with "@" when missing.
func NormalizeInstagram(handle string) string {
	h := strings.TrimSpace(handle)
	if h == "" || strings.HasPrefix(h, "@") {
		return h
	}
	return "@" + h
}
