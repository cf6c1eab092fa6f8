package engine

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/checkraise/checkraise/internal/deck"
)

// HistoryEntry is one appended betting action.
type HistoryEntry struct {
	Team   Team      `json:"team"`
	Action Action    `json:"action"`
	Amount int       `json:"amount"`
	Time   time.Time `json:"time"`
}

// Result describes how a hand ended. Payout is not performed here:
// the match layer distributes the pot (floor split on ties, remainder
// undistributed) informed by Pot and Winners.
type Result struct {
	Winners     []Team            `json:"winners"`
	WinReason   string            `json:"win_reason"` // "showdown" or "fold"
	WinningHand string            `json:"winning_hand,omitempty"`
	Hands       map[Team]HandInfo `json:"hands,omitempty"`
	Pot         int               `json:"pot"`
}

// HandInfo describes one seat's evaluated showdown hand.
type HandInfo struct {
	Description string      `json:"description"`
	Cards       []deck.Card `json:"cards"`
}

// Event is returned from every mutating call so the caller can relay
// state changes and schedule auto-progression.
type Event struct {
	Phase           Phase         `json:"phase"`
	Pot             int           `json:"pot"`
	CurrentBet      int           `json:"current_bet"`
	Turn            Team          `json:"turn"`
	RoundComplete   bool          `json:"round_complete"`
	HandComplete    bool          `json:"hand_complete"`
	ShowdownEntered bool          `json:"showdown_entered"`
	AutoAdvance     bool          `json:"auto_advance"`
	AdvanceDelay    time.Duration `json:"advance_delay"`
}

// Config wires the engine's collaborators. Schedule and Ledger are
// required; the rest have defaults.
type Config struct {
	Logger       *log.Logger
	Schedule     BlindSchedule
	Ledger       Ledger
	MinBet       int           // minimum opening bet; defaults to the big blind
	AdvanceDelay time.Duration // per-street reveal delay under auto-progression
	Deck         *deck.Deck    // optional, for deterministic tests
}

// Engine is the per-match poker orchestrator. It owns the deck, both
// seats, the phase machine, the pot and the betting history. It is
// deliberately unsynchronized: the match layer serializes all calls
// (one writer per match, matches independent).
type Engine struct {
	logger *log.Logger
	cfg    Config

	deck  *deck.Deck
	white *Seat
	black *Seat

	phase      Phase
	community  []deck.Card
	pot        int
	currentBet int
	blindLevel int
	blinds     Blinds
	dealer     Team
	turn       Team
	handNumber int
	history    []HistoryEntry
	lastResult *Result

	whiteReady bool
	blackReady bool
}

// New creates an engine in the waiting phase with both seats empty.
func New(cfg Config) (*Engine, error) {
	if cfg.Schedule == nil {
		return nil, fmt.Errorf("engine: blind schedule is required")
	}
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("engine: ledger is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}

	d := cfg.Deck
	if d == nil {
		d = deck.New()
	}

	return &Engine{
		logger: cfg.Logger.WithPrefix("engine"),
		cfg:    cfg,
		deck:   d,
		phase:  Waiting,
		dealer: Black, // first rotation puts the dealer on white
	}, nil
}

// Sit occupies a seat for a team. Seats are created once and reset
// between hands, never destroyed.
func (e *Engine) Sit(team Team, name string) error {
	s, err := e.seatFor(team)
	if err != nil {
		return err
	}
	if s != nil {
		return fmt.Errorf("%w: %s", ErrSeatOccupied, team)
	}

	seat := &Seat{Team: team, Name: name}
	if team == White {
		e.white = seat
	} else {
		e.black = seat
	}
	e.logger.Info("seat occupied", "team", team, "name", name)
	return nil
}

// seatFor maps a team to its seat pointer (possibly nil). Only White
// and Black are addressable.
func (e *Engine) seatFor(team Team) (*Seat, error) {
	switch team {
	case White:
		return e.white, nil
	case Black:
		return e.black, nil
	default:
		return nil, fmt.Errorf("%w: team %s", ErrPlayerNotFound, team)
	}
}

// seat returns the occupied seat for a team or ErrPlayerNotFound.
func (e *Engine) seat(team Team) (*Seat, error) {
	s, err := e.seatFor(team)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: %s seat is empty", ErrPlayerNotFound, team)
	}
	return s, nil
}

// other returns the opposing seat. Callers guarantee both seats exist.
func (e *Engine) other(team Team) *Seat {
	if team == White {
		return e.black
	}
	return e.white
}

// SetBlindLevel sets the level used for the next blind lookup.
func (e *Engine) SetBlindLevel(level int) {
	e.blindLevel = level
}

// StartNewHand runs the pre_hand and dealing phases: resets the deck
// and seats, rotates positions, posts blinds and deals hole cards
// (three to a seat holding the deal-time effect), finishing in
// pre_flop with the dealer to act.
func (e *Engine) StartNewHand(mods DealModifiers) (Event, error) {
	switch e.phase {
	case Waiting:
		// first hand
	case WaitingForReady:
		if !e.whiteReady || !e.blackReady {
			return Event{}, phaseError(e.phase, "start before both seats ready")
		}
	default:
		return Event{}, phaseError(e.phase, "start new hand")
	}

	if e.white == nil || e.black == nil {
		return Event{}, fmt.Errorf("%w: both seats must be occupied", ErrPlayerNotFound)
	}

	// Both blinds must be affordable before anything mutates. A short
	// seat leaves the engine exactly where it was, ready flags
	// included, so the caller can fund the team and start again.
	nextDealer := e.dealer.Other()
	blinds := e.cfg.Schedule.Blinds(e.blindLevel)
	if e.cfg.Ledger.Balance(nextDealer) < blinds.Small {
		return Event{}, fmt.Errorf("%w: %s needs %d", ErrCannotAffordBlind, nextDealer, blinds.Small)
	}
	if e.cfg.Ledger.Balance(nextDealer.Other()) < blinds.Big {
		return Event{}, fmt.Errorf("%w: %s needs %d", ErrCannotAffordBlind, nextDealer.Other(), blinds.Big)
	}

	e.phase = PreHand
	e.handNumber++
	e.deck.Reset()
	e.deck.Shuffle()
	e.community = e.community[:0]
	e.pot = 0
	e.currentBet = 0
	e.history = e.history[:0]
	e.white.resetForHand()
	e.black.resetForHand()
	e.whiteReady = false
	e.blackReady = false

	// Heads-up rotation: dealer and big blind swap every hand.
	e.dealer = e.dealer.Other()
	dealerSeat := mustSeat(e, e.dealer)
	bbSeat := e.other(e.dealer)
	dealerSeat.Position = Dealer
	bbSeat.Position = BigBlind

	e.blinds = blinds
	if err := e.postBlind(dealerSeat, e.blinds.Small); err != nil {
		return Event{}, err
	}
	if err := e.postBlind(bbSeat, e.blinds.Big); err != nil {
		return Event{}, err
	}
	e.currentBet = e.blinds.Big

	// The big blind has already paid the table bet; the dealer (small
	// blind) still owes an action pre-flop.
	bbSeat.HasActed = true

	e.phase = Dealing
	if err := e.dealHoleCards(mods); err != nil {
		return Event{}, err
	}

	e.phase = PreFlop
	e.turn = e.dealer

	e.logger.Info("hand started",
		"hand", e.handNumber,
		"dealer", e.dealer,
		"blinds", fmt.Sprintf("%d/%d", e.blinds.Small, e.blinds.Big))

	return e.event(), nil
}

// postBlind debits a blind from the team economy into the pot.
func (e *Engine) postBlind(s *Seat, amount int) error {
	if e.cfg.Ledger.Balance(s.Team) < amount {
		return fmt.Errorf("%w: %s needs %d", ErrCannotAffordBlind, s.Team, amount)
	}
	if err := e.cfg.Ledger.Debit(s.Team, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrCannotAffordBlind, err)
	}
	s.CurrentBet = amount
	s.TotalBet = amount
	e.pot += amount
	if e.cfg.Ledger.Balance(s.Team) == 0 {
		s.AllIn = true
	}
	return nil
}

// dealHoleCards deals two cards per seat, or three where a deal-time
// effect grants the extra card. Dealer receives first.
func (e *Engine) dealHoleCards(mods DealModifiers) error {
	for _, s := range []*Seat{mustSeat(e, e.dealer), e.other(e.dealer)} {
		n := 2
		if mods.thirdCard(s.Team) {
			n = 3
			s.ThirdHoleCard = true
		}
		cards, err := e.deck.Deal(n)
		if err != nil {
			return err
		}
		s.Hand = append(s.Hand, cards...)
	}
	return nil
}

// UpdateControlZoneEffects re-checks a previously granted third hole
// card against current control-zone ownership. A lapsed grant forces
// the extra card into the discard pile mid-hand.
func (e *Engine) UpdateControlZoneEffects(mods DealModifiers) {
	for _, team := range []Team{White, Black} {
		s, err := e.seat(team)
		if err != nil {
			continue
		}
		if s.ThirdHoleCard && !mods.thirdCard(team) && len(s.Hand) == 3 {
			revoked := s.Hand[len(s.Hand)-1]
			s.Hand = s.Hand[:len(s.Hand)-1]
			s.ThirdHoleCard = false
			e.deck.Discard(revoked)
			e.logger.Info("third hole card revoked", "team", team)
		}
	}
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase { return e.phase }

// Pot returns the current pot total.
func (e *Engine) Pot() int { return e.pot }

// CurrentBet returns the table's high-water bet this round.
func (e *Engine) CurrentBet() int { return e.currentBet }

// Turn returns whose turn it is, or NoTeam.
func (e *Engine) Turn() Team { return e.turn }

// HandNumber returns the monotonic hand counter.
func (e *Engine) HandNumber() int { return e.handNumber }

// Community returns the community cards dealt so far.
func (e *Engine) Community() []deck.Card { return e.community }

// LastResult returns the most recent hand result, if any.
func (e *Engine) LastResult() *Result { return e.lastResult }

// History returns the betting history for the current hand.
func (e *Engine) History() []HistoryEntry { return e.history }

// event snapshots the common fields of a mutation event.
func (e *Engine) event() Event {
	return Event{
		Phase:      e.phase,
		Pot:        e.pot,
		CurrentBet: e.currentBet,
		Turn:       e.turn,
	}
}

// mustSeat is for internal paths where the seat is known occupied.
func mustSeat(e *Engine, team Team) *Seat {
	s, err := e.seat(team)
	if err != nil {
		panic(err)
	}
	return s
}
