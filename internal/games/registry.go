package games

import (
	"sort"
)

// RegistryError is a custom error type for handler registration errors
type RegistryError string

// Error implements the error interface
func (e RegistryError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNilHandler       RegistryError = "handler cannot be nil"
	ErrEmptyGameType    RegistryError = "handler game type cannot be empty"
	ErrDuplicateHandler RegistryError = "game type already registered"
)

// Registry is the closed set of game handlers, populated once at startup.
// A missing or duplicate registration fails at boot, not at first dispatch.
// It is read-only after startup and therefore safe for concurrent reads.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry creates an empty handler registry
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register adds a handler for its game type
func (r *Registry) Register(h Handler) error {
	if h == nil {
		return ErrNilHandler
	}

	gameType := h.GameType()
	if gameType == "" {
		return ErrEmptyGameType
	}

	if _, exists := r.handlers[gameType]; exists {
		return ErrDuplicateHandler
	}

	r.handlers[gameType] = h
	return nil
}

// Get returns the handler for a game type
func (r *Registry) Get(gameType string) (Handler, bool) {
	h, ok := r.handlers[gameType]
	return h, ok
}

// Has reports whether a game type is registered
func (r *Registry) Has(gameType string) bool {
	_, ok := r.handlers[gameType]
	return ok
}

// GameTypes returns the registered tags in stable order
func (r *Registry) GameTypes() []string {
	out := make([]string, 0, len(r.handlers))
	for gameType := range r.handlers {
		out = append(out, gameType)
	}
	sort.Strings(out)
	return out
}
