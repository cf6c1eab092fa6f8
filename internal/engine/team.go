package engine

import "fmt"

// Team identifies a side of the board. Exactly two seats exist per
// match, one per team.
type Team int

const (
	NoTeam Team = iota
	White
	Black
)

func (t Team) String() string {
	switch t {
	case White:
		return "white"
	case Black:
		return "black"
	case NoTeam:
		return "none"
	default:
		return "unknown"
	}
}

// MarshalText makes teams readable on the wire.
func (t Team) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses the wire form. "none" round-trips for views
// where no seat is on turn.
func (t *Team) UnmarshalText(text []byte) error {
	if string(text) == "none" {
		*t = NoTeam
		return nil
	}
	parsed, err := ParseTeam(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Other returns the opposing team.
func (t Team) Other() Team {
	switch t {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoTeam
	}
}

// ParseTeam parses a wire-form team name.
func ParseTeam(s string) (Team, error) {
	switch s {
	case "white":
		return White, nil
	case "black":
		return Black, nil
	default:
		return NoTeam, fmt.Errorf("unknown team %q", s)
	}
}
