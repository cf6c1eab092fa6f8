package engine

// Blinds is one level of the external blind schedule.
type Blinds struct {
	Small int `json:"small"`
	Big   int `json:"big"`
}

// BlindSchedule is consumed from the match layer: level → blind sizes.
type BlindSchedule interface {
	Blinds(level int) Blinds
}

// Ledger is the team economy seam. The engine only ever reads a
// team's liquid balance and debits chips committed to the pot; payouts
// are credited by the match layer after the hand resolves.
type Ledger interface {
	Balance(team Team) int
	Debit(team Team, amount int) error
}

// DealModifiers carries the deal-time control-zone effects as plain
// data. The engine consumes them once when dealing hole cards and
// again on UpdateControlZoneEffects when an earlier grant may have
// lapsed. No behavior is injected here; the effect dispatch lives in
// the match layer.
type DealModifiers struct {
	ThirdCardWhite bool
	ThirdCardBlack bool
}

func (m DealModifiers) thirdCard(t Team) bool {
	switch t {
	case White:
		return m.ThirdCardWhite
	case Black:
		return m.ThirdCardBlack
	default:
		return false
	}
}
