// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/dmitrijs2005/timecapsule/internal/common"
)

// Capsule is a message that can only be read after UnlockAt, with the
// matching UnlockCode, and until it retires.
type Capsule struct {
	ID      string
	OwnerID string
	Message string
	// UnlockAt is the instant before which the content is inaccessible.
	UnlockAt time.Time
	// UnlockCode is generated once at creation and only ever returned by Create.
	UnlockCode string
	// Retired is set by the expiration sweep and never cleared.
	Retired bool
	// AttachmentKey is the object-storage key of an optional attachment.
	AttachmentKey *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// State is the logical phase of a capsule at a given instant.
type State int

const (
	StateLocked State = iota
	StateUnlocked
	StateRetired
)

func (s State) String() string {
	switch s {
	case StateLocked:
		return "locked"
	case StateUnlocked:
		return "unlocked"
	case StateRetired:
		return "retired"
	default:
		return "unknown"
	}
}

// RetiresAt is the instant from which the capsule counts as retired even if
// the sweep has not flagged it yet.
func (c *Capsule) RetiresAt() time.Time {
	return c.UnlockAt.Add(common.RetentionWindow)
}

// IsRetired recomputes retirement from the flag and the retention window.
func (c *Capsule) IsRetired(now time.Time) bool {
	return c.Retired || !now.Before(c.RetiresAt())
}

// IsLocked reports whether now is still before UnlockAt.
func (c *Capsule) IsLocked(now time.Time) bool {
	return now.Before(c.UnlockAt)
}

// State derives the lifecycle phase at now. Retirement wins over the
// lock state.
func (c *Capsule) State(now time.Time) State {
	switch {
	case c.IsRetired(now):
		return StateRetired
	case c.IsLocked(now):
		return StateLocked
	default:
		return StateUnlocked
	}
}

// CapsuleSummary is the listing projection of a capsule. Message is nil
// unless the capsule was unlocked and not retired when the listing was built.
type CapsuleSummary struct {
	ID        string
	Message   *string
	UnlockAt  time.Time
	Retired   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summarize projects c for a listing at now.
func (c *Capsule) Summarize(now time.Time) CapsuleSummary {
	s := CapsuleSummary{
		ID:        c.ID,
		UnlockAt:  c.UnlockAt,
		Retired:   c.IsRetired(now),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.State(now) == StateUnlocked {
		msg := c.Message
		s.Message = &msg
	}
	return s
}

// OpenedCapsule is what a successful read reveals. It never carries the
// unlock code.
type OpenedCapsule struct {
	ID            string
	Message       string
	UnlockAt      time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	AttachmentURL string
}

// CapsulePage is one page of an owner's capsule listing.
type CapsulePage struct {
	Capsules   []CapsuleSummary
	Total      int
	Page       int
	Limit      int
	TotalPages int
}
