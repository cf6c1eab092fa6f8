package engine

import (
	"fmt"

	"github.com/checkraise/checkraise/internal/deck"
)

// Position of a seat within the current hand. Heads-up, one seat is
// the dealer (and small blind), the other the big blind; positions
// swap every hand.
type Position int

const (
	NoPosition Position = iota
	Dealer
	BigBlind
)

func (p Position) String() string {
	switch p {
	case Dealer:
		return "dealer"
	case BigBlind:
		return "big_blind"
	default:
		return "none"
	}
}

// MarshalText makes positions readable on the wire.
func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses the wire form.
func (p *Position) UnmarshalText(text []byte) error {
	switch string(text) {
	case "dealer":
		*p = Dealer
	case "big_blind":
		*p = BigBlind
	case "none":
		*p = NoPosition
	default:
		return fmt.Errorf("unknown position %q", text)
	}
	return nil
}

// Seat is the per-team mutable state within a hand. Seats are created
// when a team joins and cleared, never destroyed, between hands.
type Seat struct {
	Team          Team
	Name          string
	Hand          []deck.Card
	Position      Position
	CurrentBet    int // chips committed this betting round
	TotalBet      int // chips committed this hand
	Folded        bool
	AllIn         bool
	HasActed      bool
	ThirdHoleCard bool // granted by a deal-time control-zone effect
}

// resetForHand clears everything that does not survive a hand.
// Position is assigned separately by the rotation.
func (s *Seat) resetForHand() {
	s.Hand = s.Hand[:0]
	s.CurrentBet = 0
	s.TotalBet = 0
	s.Folded = false
	s.AllIn = false
	s.HasActed = false
	s.ThirdHoleCard = false
}

// resetForRound clears the per-betting-round flags.
func (s *Seat) resetForRound() {
	s.CurrentBet = 0
	s.HasActed = false
}

// canAct reports whether the seat still owes betting decisions.
func (s *Seat) canAct() bool {
	return !s.Folded && !s.AllIn
}
