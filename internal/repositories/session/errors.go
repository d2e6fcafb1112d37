package session

// StoreError is a custom error type for session store errors
type StoreError string

// Error implements the error interface
func (e StoreError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrSessionNotFound  StoreError = "session not found"
	ErrChannelConflict  StoreError = "channel already has a live session"
	ErrPlayerConflict   StoreError = "player already belongs to another live session"
	ErrNotTerminal      StoreError = "only terminal sessions can be archived"
	ErrTerminalSave     StoreError = "terminal sessions must be archived, not saved"
	ErrNilConfig        StoreError = "config cannot be nil"
	ErrNilClock         StoreError = "clock cannot be nil"
	ErrNilSession       StoreError = "input and session cannot be nil"
	ErrEmptySessionID   StoreError = "session ID cannot be empty"
)
