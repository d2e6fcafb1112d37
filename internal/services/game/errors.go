package game

// GameError is a custom error type for game session errors
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrSessionNotFound    GameError = "session not found"
	ErrChannelHasGame     GameError = "channel already has a game"
	ErrInvalidGameType    GameError = "unknown game type"
	ErrGameAlreadyStarted GameError = "game has already started"
	ErrGameFull           GameError = "game is at maximum capacity"
	ErrAlreadyInGame      GameError = "player is already in this game"
	ErrPlayerInOtherGame  GameError = "player is already in another game"
	ErrNotInGame          GameError = "player is not in this game"
	ErrNotEnoughPlayers   GameError = "not enough players to start"
	ErrBusyTryAgain       GameError = "session is busy, try again"
	ErrNilConfig          GameError = "config cannot be nil"
	ErrNilSessionRepo     GameError = "session repository cannot be nil"
	ErrNilLockManager     GameError = "lock manager cannot be nil"
	ErrNilRegistry        GameError = "handler registry cannot be nil"
	ErrNilScheduler       GameError = "scheduler cannot be nil"
	ErrNilRewardLedger    GameError = "reward ledger repository cannot be nil"
	ErrNilClock           GameError = "clock cannot be nil"
	ErrNilUUIDGenerator   GameError = "UUID generator cannot be nil"
)
