package models

import (
	"fmt"
)

// sessionTransitions is the closed set of legal status edges. Terminal
// statuses have no entry and therefore no outgoing edges.
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionStatusWaiting: {SessionStatusActive, SessionStatusCancelled},
	SessionStatusActive:  {SessionStatusCompleted, SessionStatusCancelled},
}

// InvalidTransitionError is returned when a requested status change is not
// in the transition table. It carries both endpoints for diagnostics.
type InvalidTransitionError struct {
	From SessionStatus
	To   SessionStatus
}

// Error implements the error interface
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid session transition from %q to %q", e.From, e.To)
}

// CanTransition reports whether from -> to is a legal status change
func CanTransition(from, to SessionStatus) bool {
	for _, next := range sessionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves the session to the requested status, or returns an
// InvalidTransitionError and leaves the session unchanged.
func (s *Session) Transition(to SessionStatus) error {
	if !CanTransition(s.Status, to) {
		return &InvalidTransitionError{From: s.Status, To: to}
	}

	s.Status = to
	return nil
}

// EndReason describes why a session ended
type EndReason string

const (
	// EndReasonFinished indicates the game ran to its normal conclusion
	EndReasonFinished EndReason = "finished"

	// EndReasonNotEnoughPlayers indicates the lobby countdown elapsed short of the minimum
	EndReasonNotEnoughPlayers EndReason = "not_enough_players"

	// EndReasonHostLeft indicates the host abandoned the lobby
	EndReasonHostLeft EndReason = "host_left"

	// EndReasonStopped indicates an explicit stop request
	EndReasonStopped EndReason = "stopped"

	// EndReasonNotImplemented indicates no handler exists for the game type
	EndReasonNotImplemented EndReason = "game_not_implemented"

	// EndReasonRuntimeError indicates the game handler failed irrecoverably
	EndReasonRuntimeError EndReason = "runtime_error"
)

// TerminalStatus returns the terminal status a session ending for this
// reason should land on. Abnormal reasons cancel; everything else completes.
func (r EndReason) TerminalStatus() SessionStatus {
	switch r {
	case EndReasonNotEnoughPlayers, EndReasonHostLeft, EndReasonStopped,
		EndReasonNotImplemented, EndReasonRuntimeError:
		return SessionStatusCancelled
	default:
		return SessionStatusCompleted
	}
}
