package model

import (
	"strings"
	"time"
)

// Campaign holds the static facts about the running raffle.
type Campaign struct {
	Brand     string
	Instagram string
	BaseURL   string
	DrawAt    time.Time
	Location  *time.Location
}

// Closed reports whether the draw date has passed.
func (c Campaign) Closed(now time.Time) bool {
	return !c.DrawAt.IsZero() && !now.Before(c.DrawAt)
}

// Remaining is the time left until the draw, never negative.
func (c Campaign) Remaining(now time.Time) time.Duration {
	if c.DrawAt.IsZero() {
		return 0
	}
	d := c.DrawAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// RegisterURL is the link a printed coupon points at.
func (c Campaign) RegisterURL(code string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/register/" + code
}

// Local converts t into the campaign's time zone (UTC when unset).
func (c Campaign) Local(t time.Time) time.Time {
	if c.Location == nil {
		return t.UTC()
	}
	return t.In(c.Location)
}
