package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Participant is a registrant who redeemed exactly one code.
type Participant struct {
	ID        string
	FullName  string
	Email     string
	Phone     string
	Instagram string
	Code      string
	CreatedAt time.Time
}

// NewParticipant builds a participant from an already validated registration.
// The ID is a ULID so that IDs sort by registration time.
func NewParticipant(reg Registration, now time.Time) *Participant {
	return &Participant{
		ID:        ulid.Make().String(),
		FullName:  reg.FullName,
		Email:     reg.Email,
		Phone:     reg.Phone,
		Instagram: reg.Instagram,
		Code:      reg.Code,
		CreatedAt: now,
	}
}
