package models

import (
	"time"
)

// PlayerStatus represents the current state of a player within a session
type PlayerStatus string

const (
	// PlayerStatusWaiting indicates a player is seated in the lobby
	PlayerStatusWaiting PlayerStatus = "waiting"

	// PlayerStatusPlaying indicates a player is in an active game
	PlayerStatusPlaying PlayerStatus = "playing"

	// PlayerStatusWinner indicates a player won the game
	PlayerStatusWinner PlayerStatus = "winner"
)

// Player represents one participant's seat in a session
type Player struct {
	// ID is the Discord user ID of the player
	ID string

	// Name is the display name of the player
	Name string

	// AvatarURL is the player's avatar image reference
	AvatarURL string

	// Slot is the 1-based seat index; 0 in open lobbies
	Slot int

	// Status is the player's state within the session
	Status PlayerStatus

	// PerkIDs lists perk items the player holds for this game
	PerkIDs []string

	// JoinedAt is when the player joined the session
	JoinedAt time.Time
}

// Clone returns a deep copy of the player record
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}

	out := *p
	if p.PerkIDs != nil {
		out.PerkIDs = make([]string, len(p.PerkIDs))
		copy(out.PerkIDs, p.PerkIDs)
	}

	return &out
}
