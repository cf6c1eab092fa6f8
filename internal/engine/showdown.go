package engine

import (
	"fmt"

	"github.com/checkraise/checkraise/internal/evaluator"
)

// EvaluateShowdown finds each unfolded seat's best five-card hand and
// collects every seat tied with the strongest as a winner (split pots
// are the caller's floor-division split). Valid only during showdown.
func (e *Engine) EvaluateShowdown() (*Result, error) {
	if e.phase != Showdown {
		return nil, phaseError(e.phase, "evaluate showdown")
	}

	type contender struct {
		team Team
		hand evaluator.Hand
	}

	var contenders []contender
	for _, s := range []*Seat{e.white, e.black} {
		if s == nil || s.Folded {
			continue
		}
		hand, err := evaluator.FindBestHand(s.Hand, e.community)
		if err != nil {
			return nil, fmt.Errorf("evaluating %s: %w", s.Team, err)
		}
		contenders = append(contenders, contender{team: s.Team, hand: hand})
	}

	if len(contenders) == 0 {
		return nil, ErrNoActivePlayers
	}

	best := contenders[0]
	winners := []Team{best.team}
	for _, c := range contenders[1:] {
		switch cmp := evaluator.Compare(c.hand, best.hand); {
		case cmp > 0:
			best = c
			winners = []Team{c.team}
		case cmp == 0:
			winners = append(winners, c.team)
		}
	}

	hands := make(map[Team]HandInfo, len(contenders))
	for _, c := range contenders {
		hands[c.team] = HandInfo{
			Description: c.hand.String(),
			Cards:       c.hand.Cards,
		}
	}

	e.lastResult = &Result{
		Winners:     winners,
		WinReason:   "showdown",
		WinningHand: best.hand.String(),
		Hands:       hands,
		Pot:         e.pot,
	}
	e.phase = HandComplete
	e.turn = NoTeam

	e.logger.Info("showdown evaluated",
		"winners", fmt.Sprintf("%v", winners),
		"hand", best.hand.String(),
		"pot", e.pot)

	return e.lastResult, nil
}

// FinishHand moves hand_complete → waiting_for_ready once the match
// layer has applied the payout. Ready flags are cleared for the
// rendezvous.
func (e *Engine) FinishHand() (Event, error) {
	if e.phase != HandComplete {
		return Event{}, phaseError(e.phase, "finish hand")
	}
	e.phase = WaitingForReady
	e.whiteReady = false
	e.blackReady = false
	return e.event(), nil
}

// SetPlayerReady records a seat's readiness for the next hand and
// reports whether both seats are now ready. Only valid while waiting
// for the rendezvous.
func (e *Engine) SetPlayerReady(team Team, ready bool) (bool, error) {
	if e.phase != WaitingForReady {
		return false, phaseError(e.phase, "set ready")
	}
	if _, err := e.seat(team); err != nil {
		return false, err
	}

	if team == White {
		e.whiteReady = ready
	} else {
		e.blackReady = ready
	}
	return e.whiteReady && e.blackReady, nil
}

// Ready reports a team's rendezvous flag.
func (e *Engine) Ready(team Team) bool {
	if team == White {
		return e.whiteReady
	}
	return e.blackReady
}
