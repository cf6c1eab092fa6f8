package match

import "github.com/checkraise/checkraise/internal/engine"

// EffectKind tags a control-zone effect. Effects are plain data — a
// kind plus a numeric parameter — dispatched here rather than behavior
// objects injected into the engine.
type EffectKind int

const (
	// EffectThirdHoleCard grants the holding team a third hole card at
	// deal time for as long as the granting zone is held.
	EffectThirdHoleCard EffectKind = iota
	// EffectPotBonus multiplies the winner's payout share by
	// Param percent at pot-distribution time.
	EffectPotBonus
)

// Effect is one control-zone effect held by a team.
type Effect struct {
	Kind  EffectKind `json:"kind"`
	Param int        `json:"param,omitempty"`
}

// EffectSet is the current control-zone ownership per team, as
// reported by the external match layer.
type EffectSet map[engine.Team][]Effect

// dealModifiers collapses deal-time effects to the tagged data the
// engine consumes.
func (s EffectSet) dealModifiers() engine.DealModifiers {
	var mods engine.DealModifiers
	for team, effects := range s {
		for _, e := range effects {
			if e.Kind != EffectThirdHoleCard {
				continue
			}
			switch team {
			case engine.White:
				mods.ThirdCardWhite = true
			case engine.Black:
				mods.ThirdCardBlack = true
			}
		}
	}
	return mods
}

// potBonusPercent returns the team's pot-time bonus percentage, 0 when
// none is held.
func (s EffectSet) potBonusPercent(team engine.Team) int {
	for _, e := range s[team] {
		if e.Kind == EffectPotBonus {
			return e.Param
		}
	}
	return 0
}
