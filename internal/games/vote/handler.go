// Package vote implements a majority vote round. Many players click within
// the same instant, so the handler declares the queue strategy: every ballot
// is processed, strictly in arrival order, and none are dropped.
package vote

import (
	"context"
	"encoding/json"

	"gametable/internal/games"
	"gametable/internal/models"
)

const (
	// GameType is the registered tag for this game
	GameType = "vote"

	// ActionBallot is the vote button action name; the control payload
	// carries the chosen option
	ActionBallot = "ballot"

	phaseClosed = "closed"
)

// state is the handler-owned blob stored in Session.GameState
type state struct {
	// Ballots maps player ID to the option they chose
	Ballots map[string]string `json:"ballots"`
}

// Handler implements games.Handler for the vote round
type Handler struct{}

// New creates a new vote handler
func New() *Handler {
	return &Handler{}
}

// GameType returns the registered tag for this game
func (h *Handler) GameType() string {
	return GameType
}

// LobbySettings returns the lobby configuration for new sessions
func (h *Handler) LobbySettings() models.Settings {
	return models.Settings{
		MinPlayers:       2,
		MaxPlayers:       20,
		LobbyType:        models.LobbyTypeSlotted,
		CountdownSeconds: 60,
	}
}

// Concurrency declares the serialisation strategy for this game
func (h *Handler) Concurrency() games.ConcurrencyMode {
	return games.ConcurrencyQueue
}

// OnAction records one ballot. The first ballot per player counts; later
// ones are ignored. When every player has voted the round closes.
func (h *Handler) OnAction(ctx context.Context, action *games.ActionContext) error {
	if action.Action != ActionBallot {
		return nil
	}

	session := action.Session
	if session.Phase == phaseClosed {
		return nil
	}

	if !session.HasPlayer(action.ActorID) || action.Payload == "" {
		return nil
	}

	var st state
	if len(session.GameState) > 0 {
		if err := json.Unmarshal(session.GameState, &st); err != nil {
			return err
		}
	}
	if st.Ballots == nil {
		st.Ballots = make(map[string]string)
	}

	if _, voted := st.Ballots[action.ActorID]; voted {
		return nil
	}

	st.Ballots[action.ActorID] = action.Payload

	// The phase holds steady while ballots trickle in so controls rendered
	// at round start keep matching. Only the close moves it.
	if len(st.Ballots) == len(session.Players) {
		session.Phase = phaseClosed
	}

	blob, err := json.Marshal(&st)
	if err != nil {
		return err
	}
	session.GameState = blob

	return action.Commit(ctx)
}

// Finished reports whether every player has voted
func (h *Handler) Finished(session *models.Session) bool {
	return session.Phase == phaseClosed
}

var _ games.Handler = (*Handler)(nil)
