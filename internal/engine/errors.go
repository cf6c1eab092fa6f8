package engine

import (
	"errors"
	"fmt"
	"strings"
)

// All engine errors are recoverable and reported to the caller with
// enough context to relay a user-facing message. Nothing is retried
// internally.
var (
	ErrInvalidPhase      = errors.New("engine: operation not valid in current phase")
	ErrInsufficientFunds = errors.New("engine: insufficient liquid balance")
	ErrCannotAffordBlind = errors.New("engine: cannot afford blind")
	ErrNoActivePlayers   = errors.New("engine: no active players")
	ErrPlayerNotFound    = errors.New("engine: player not found")
	ErrNotYourTurn       = errors.New("engine: not your turn")
	ErrSeatOccupied      = errors.New("engine: seat already occupied")
)

// IllegalActionError names the offending action and the set that was
// legal at the time.
type IllegalActionError struct {
	Action Action
	Legal  []Action
	Reason string
}

func (e *IllegalActionError) Error() string {
	legal := make([]string, len(e.Legal))
	for i, a := range e.Legal {
		legal[i] = a.String()
	}
	msg := fmt.Sprintf("engine: illegal action %s, legal: [%s]", e.Action, strings.Join(legal, " "))
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// phaseError wraps ErrInvalidPhase with the phase that was current.
func phaseError(current Phase, op string) error {
	return fmt.Errorf("%w: %s during %s", ErrInvalidPhase, op, current)
}
