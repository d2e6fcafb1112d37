package models

import (
	"time"
)

// PayoutRecord marks that reward settlement ran for a session. The record
// is written at most once per session; the amounts themselves live with the
// reward service.
type PayoutRecord struct {
	// SessionID is the session the payout belongs to
	SessionID string

	// GuildID is the Discord server the session ran in
	GuildID string

	// WinnerID is the player the payout went to
	WinnerID string

	// PaidAt is when the payout was recorded
	PaidAt time.Time
}
