package engine

import (
	"fmt"
	"time"
)

// minBet returns the configured minimum opening bet, defaulting to
// the big blind.
func (e *Engine) minBet() int {
	if e.cfg.MinBet > 0 {
		return e.cfg.MinBet
	}
	return e.blinds.Big
}

// MinRaise returns the minimum raise increment: max(big blind,
// current table bet).
func (e *Engine) MinRaise() int {
	if e.currentBet > e.blinds.Big {
		return e.currentBet
	}
	return e.blinds.Big
}

// LegalActions computes the legal action set for a team. Empty unless
// it is that seat's turn in a betting phase.
func (e *Engine) LegalActions(team Team) []Action {
	s, err := e.seat(team)
	if err != nil {
		return nil
	}
	if !e.phase.isBetting() || e.turn != team || !s.canAct() {
		return nil
	}

	balance := e.cfg.Ledger.Balance(team)
	toCall := e.currentBet - s.CurrentBet

	legal := []Action{Fold}
	if toCall == 0 {
		legal = append(legal, Check)
	}
	if e.currentBet == 0 && balance > 0 {
		legal = append(legal, Bet)
	}
	if e.currentBet > 0 && toCall > 0 && balance >= toCall {
		legal = append(legal, Call)
	}
	if e.currentBet > 0 && toCall > 0 && balance >= toCall+e.MinRaise() {
		legal = append(legal, Raise)
	}
	if balance > 0 {
		legal = append(legal, AllIn)
	}
	return legal
}

// Act validates and applies a betting action for a team. Either the
// whole action applies, including any phase transition, or validation
// fails with no mutation. For Bet the amount is the opening bet; for
// Raise it is the raise increment above the call.
func (e *Engine) Act(team Team, action Action, amount int) (Event, error) {
	if !e.phase.isBetting() {
		return Event{}, phaseError(e.phase, "betting action")
	}
	s, err := e.seat(team)
	if err != nil {
		return Event{}, err
	}
	if e.turn != team {
		return Event{}, fmt.Errorf("%w: turn is %s", ErrNotYourTurn, e.turn)
	}

	legal := e.LegalActions(team)
	if !containsAction(legal, action) {
		return Event{}, &IllegalActionError{Action: action, Legal: legal}
	}

	balance := e.cfg.Ledger.Balance(team)
	toCall := e.currentBet - s.CurrentBet
	paid := 0

	switch action {
	case Fold:
		s.Folded = true

	case Check:
		// nothing to pay

	case Bet:
		if amount < e.minBet() {
			return Event{}, &IllegalActionError{
				Action: Bet,
				Legal:  legal,
				Reason: fmt.Sprintf("bet %d below minimum %d", amount, e.minBet()),
			}
		}
		if amount > balance {
			return Event{}, fmt.Errorf("%w: bet %d, balance %d", ErrInsufficientFunds, amount, balance)
		}
		if err := e.commit(s, amount); err != nil {
			return Event{}, err
		}
		paid = amount
		e.currentBet = s.CurrentBet
		e.other(team).HasActed = false

	case Call:
		if toCall > balance {
			return Event{}, fmt.Errorf("%w: call %d, balance %d", ErrInsufficientFunds, toCall, balance)
		}
		if err := e.commit(s, toCall); err != nil {
			return Event{}, err
		}
		paid = toCall

	case Raise:
		if amount < e.MinRaise() {
			return Event{}, &IllegalActionError{
				Action: Raise,
				Legal:  legal,
				Reason: fmt.Sprintf("raise %d below minimum %d", amount, e.MinRaise()),
			}
		}
		total := toCall + amount
		if total > balance {
			return Event{}, fmt.Errorf("%w: raise needs %d, balance %d", ErrInsufficientFunds, total, balance)
		}
		if err := e.commit(s, total); err != nil {
			return Event{}, err
		}
		paid = total
		e.currentBet = s.CurrentBet
		e.other(team).HasActed = false

	case AllIn:
		if err := e.commit(s, balance); err != nil {
			return Event{}, err
		}
		paid = balance
		s.AllIn = true
		if s.CurrentBet > e.currentBet {
			e.currentBet = s.CurrentBet
			e.other(team).HasActed = false
		}
	}

	s.HasActed = true
	e.history = append(e.history, HistoryEntry{
		Team:   team,
		Action: action,
		Amount: paid,
		Time:   time.Now(),
	})
	e.logger.Debug("action applied", "team", team, "action", action, "amount", paid)

	return e.afterAction()
}

// commit moves chips from a team's liquid balance into the pot. A
// seat whose balance reaches zero is all-in regardless of the action
// that emptied it.
func (e *Engine) commit(s *Seat, amount int) error {
	if amount == 0 {
		return nil
	}
	if err := e.cfg.Ledger.Debit(s.Team, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrInsufficientFunds, err)
	}
	s.CurrentBet += amount
	s.TotalBet += amount
	e.pot += amount
	if e.cfg.Ledger.Balance(s.Team) == 0 {
		s.AllIn = true
	}
	return nil
}

// afterAction resolves the consequences of an applied action: fold
// wins, round completion, street advancement and turn passing.
func (e *Engine) afterAction() (Event, error) {
	if e.unfoldedCount() <= 1 {
		return e.finishByFold(), nil
	}

	if e.roundComplete() {
		if e.phase == River {
			e.phase = Showdown
			e.turn = NoTeam
			ev := e.event()
			ev.RoundComplete = true
			ev.ShowdownEntered = true
			return ev, nil
		}

		if e.ShouldAutoProgress() {
			// Caller schedules AdvanceStreet after the reveal delay so
			// a fully committed hand still resolves without input.
			e.turn = NoTeam
			ev := e.event()
			ev.RoundComplete = true
			ev.AutoAdvance = true
			ev.AdvanceDelay = e.cfg.AdvanceDelay
			return ev, nil
		}

		ev, err := e.advanceStreet()
		if err != nil {
			return Event{}, err
		}
		ev.RoundComplete = true
		return ev, nil
	}

	e.turn = e.nextToAct(e.turn.Other())
	return e.event(), nil
}

// finishByFold ends the hand for the last unfolded seat without
// consulting the evaluator.
func (e *Engine) finishByFold() Event {
	var winner Team
	for _, s := range []*Seat{e.white, e.black} {
		if s != nil && !s.Folded {
			winner = s.Team
		}
	}

	e.lastResult = &Result{
		Winners:   []Team{winner},
		WinReason: "fold",
		Pot:       e.pot,
	}
	e.phase = HandComplete
	e.turn = NoTeam
	e.logger.Info("hand won by fold", "winner", winner, "pot", e.pot)

	ev := e.event()
	ev.HandComplete = true
	return ev
}

// roundComplete reports betting-round completion: at most one unfolded seat, or
// every unfolded non-all-in seat has acted and matches the table bet.
func (e *Engine) roundComplete() bool {
	if e.unfoldedCount() <= 1 {
		return true
	}
	for _, s := range []*Seat{e.white, e.black} {
		if s.canAct() && (!s.HasActed || s.CurrentBet != e.currentBet) {
			return false
		}
	}
	return true
}

// IsHandComplete reports whether the hand has resolved: one seat left
// unfolded, or showdown reached.
func (e *Engine) IsHandComplete() bool {
	return e.phase == Showdown || e.phase == HandComplete || e.unfoldedCount() <= 1
}

// ShouldAutoProgress reports whether the engine should advance without
// further player input: at least one seat all-in and at most one seat
// still able to act.
func (e *Engine) ShouldAutoProgress() bool {
	allIn, actors := 0, 0
	for _, s := range []*Seat{e.white, e.black} {
		if s == nil || s.Folded {
			continue
		}
		if s.AllIn {
			allIn++
		} else if s.canAct() {
			actors++
		}
	}
	return allIn >= 1 && actors <= 1
}

// AdvanceStreet deals the next street (or enters showdown from the
// river). Called by the match scheduler during auto-progression; only
// valid once the current round is complete or auto-progression holds.
func (e *Engine) AdvanceStreet() (Event, error) {
	if !e.phase.isBetting() {
		return Event{}, phaseError(e.phase, "advance street")
	}
	// Auto-progression may advance past unacted seats, but never past
	// an unmatched bet.
	if !e.roundComplete() && !(e.ShouldAutoProgress() && e.betsMatched()) {
		return Event{}, phaseError(e.phase, "advance with betting open")
	}

	if e.phase == River {
		e.phase = Showdown
		e.turn = NoTeam
		ev := e.event()
		ev.ShowdownEntered = true
		return ev, nil
	}
	return e.advanceStreet()
}

// advanceStreet burns one card, deals the street's community cards,
// resets the per-round flags and hands the turn to the non-dealer
// (post-flop order is reversed from pre-flop heads-up).
func (e *Engine) advanceStreet() (Event, error) {
	if err := e.deck.Burn(1); err != nil {
		return Event{}, err
	}

	n := 1
	if e.phase == PreFlop {
		n = 3
	}
	cards, err := e.deck.Deal(n)
	if err != nil {
		return Event{}, err
	}
	e.community = append(e.community, cards...)

	switch e.phase {
	case PreFlop:
		e.phase = Flop
	case Flop:
		e.phase = Turn
	case Turn:
		e.phase = River
	}

	e.white.resetForRound()
	e.black.resetForRound()
	e.currentBet = 0
	e.turn = e.nextToAct(e.dealer.Other())

	e.logger.Debug("street dealt", "phase", e.phase, "community", len(e.community))

	ev := e.event()
	if e.ShouldAutoProgress() {
		// Fully committed hand: nobody is expected to act again.
		e.turn = NoTeam
		ev.Turn = NoTeam
		ev.AutoAdvance = true
		ev.AdvanceDelay = e.cfg.AdvanceDelay
	}
	return ev, nil
}

// nextToAct returns the first seat able to act starting from the
// given team, or NoTeam when no seat can.
func (e *Engine) nextToAct(from Team) Team {
	for _, team := range []Team{from, from.Other()} {
		if s, err := e.seat(team); err == nil && s.canAct() {
			return team
		}
	}
	return NoTeam
}

// betsMatched reports whether every seat still able to act has
// matched the table bet.
func (e *Engine) betsMatched() bool {
	for _, s := range []*Seat{e.white, e.black} {
		if s.canAct() && s.CurrentBet != e.currentBet {
			return false
		}
	}
	return true
}

func (e *Engine) unfoldedCount() int {
	n := 0
	for _, s := range []*Seat{e.white, e.black} {
		if s != nil && !s.Folded {
			n++
		}
	}
	return n
}

func containsAction(actions []Action, a Action) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}
