// Package highroll implements a simple dice duel: every player rolls once,
// highest roll wins. Rolls are rare, latency-sensitive clicks, so the game
// runs under the router's lock-with-drop strategy.
package highroll

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"gametable/internal/games"
	"gametable/internal/models"
)

const (
	// GameType is the registered tag for this game
	GameType = "highroll"

	// ActionRoll is the roll button action name
	ActionRoll = "roll"

	phaseShowdown = "showdown"

	diceSides = 100
)

// state is the handler-owned blob stored in Session.GameState
type state struct {
	// Rolls maps player ID to their single roll
	Rolls map[string]int `json:"rolls"`
}

// Config for the highroll handler
type Config struct {
	// Optional seed for testing
	Seed int64
}

// Handler implements games.Handler for the dice duel
type Handler struct {
	mu     sync.Mutex
	random *rand.Rand
}

// New creates a new highroll handler
func New(cfg *Config) *Handler {
	var seed int64
	if cfg != nil && cfg.Seed != 0 {
		seed = cfg.Seed
	} else {
		seed = time.Now().UnixNano()
	}

	return &Handler{
		random: rand.New(rand.NewSource(seed)),
	}
}

// GameType returns the registered tag for this game
func (h *Handler) GameType() string {
	return GameType
}

// LobbySettings returns the lobby configuration for new sessions
func (h *Handler) LobbySettings() models.Settings {
	return models.Settings{
		MinPlayers:       2,
		MaxPlayers:       6,
		LobbyType:        models.LobbyTypeOpen,
		CountdownSeconds: 30,
	}
}

// Concurrency declares the serialisation strategy for this game
func (h *Handler) Concurrency() games.ConcurrencyMode {
	return games.ConcurrencyLockDrop
}

// OnAction processes one roll click. A player rolls at most once; repeated
// clicks are ignored without a commit so the rendered controls stay valid.
func (h *Handler) OnAction(ctx context.Context, action *games.ActionContext) error {
	if action.Action != ActionRoll {
		return nil
	}

	session := action.Session
	if !session.HasPlayer(action.ActorID) {
		return nil
	}

	var st state
	if len(session.GameState) > 0 {
		if err := json.Unmarshal(session.GameState, &st); err != nil {
			return err
		}
	}
	if st.Rolls == nil {
		st.Rolls = make(map[string]int)
	}

	if _, rolled := st.Rolls[action.ActorID]; rolled {
		return nil
	}

	st.Rolls[action.ActorID] = h.roll()

	if len(st.Rolls) == len(session.Players) {
		session.Phase = phaseShowdown
		session.WinnerID = winner(st.Rolls)
	}

	blob, err := json.Marshal(&st)
	if err != nil {
		return err
	}
	session.GameState = blob

	return action.Commit(ctx)
}

// Finished reports whether every player has rolled
func (h *Handler) Finished(session *models.Session) bool {
	return session.Phase == phaseShowdown
}

func (h *Handler) roll() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.random.Intn(diceSides) + 1
}

// winner picks the highest roller; ties go to the earlier roller only by
// map iteration accident, so break them deterministically on player ID.
func winner(rolls map[string]int) string {
	best := ""
	bestRoll := -1
	for playerID, roll := range rolls {
		if roll > bestRoll || (roll == bestRoll && playerID < best) {
			best = playerID
			bestRoll = roll
		}
	}
	return best
}
