package engine

import "fmt"

// Phase is the per-hand state machine. The flow is linear:
// waiting → pre_hand → dealing → pre_flop → flop → turn → river →
// showdown → hand_complete → waiting_for_ready → pre_hand...
type Phase int

const (
	Waiting Phase = iota
	PreHand
	Dealing
	PreFlop
	Flop
	Turn
	River
	Showdown
	HandComplete
	WaitingForReady
)

func (p Phase) String() string {
	switch p {
	case Waiting:
		return "waiting"
	case PreHand:
		return "pre_hand"
	case Dealing:
		return "dealing"
	case PreFlop:
		return "pre_flop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case Showdown:
		return "showdown"
	case HandComplete:
		return "hand_complete"
	case WaitingForReady:
		return "waiting_for_ready"
	default:
		return "unknown"
	}
}

// MarshalText makes phases readable on the wire.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses the wire form.
func (p *Phase) UnmarshalText(text []byte) error {
	for ph := Waiting; ph <= WaitingForReady; ph++ {
		if ph.String() == string(text) {
			*p = ph
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// isBetting reports whether players act during this phase.
func (p Phase) isBetting() bool {
	return p >= PreFlop && p <= River
}
