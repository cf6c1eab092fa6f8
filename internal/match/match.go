package match

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/checkraise/checkraise/internal/engine"
	"github.com/coder/quartz"
)

// Config wires one match.
type Config struct {
	ID           string
	Logger       *log.Logger
	Clock        quartz.Clock
	Ledger       Ledger
	Schedule     engine.BlindSchedule
	MinBet       int
	AdvanceDelay time.Duration
}

// Match owns one poker engine and serializes every mutation behind a
// single mutex: concurrent actions from the two seats apply one at a
// time in arrival order, and an action either fully applies (phase
// transitions included) or fails validation untouched. Matches are
// independent of each other.
type Match struct {
	id     string
	logger *log.Logger
	clock  quartz.Clock
	ledger Ledger

	mu      sync.Mutex
	eng     *engine.Engine
	effects EffectSet

	// OnEvent, when set, receives every state-changing event including
	// those produced by scheduled auto-progression. Called without the
	// match lock held.
	OnEvent func(engine.Event)
}

// New creates a match with both seats empty.
func New(cfg Config) (*Match, error) {
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	logger := cfg.Logger.WithPrefix("match").With("match", cfg.ID)

	eng, err := engine.New(engine.Config{
		Logger:       logger,
		Schedule:     cfg.Schedule,
		Ledger:       cfg.Ledger,
		MinBet:       cfg.MinBet,
		AdvanceDelay: cfg.AdvanceDelay,
	})
	if err != nil {
		return nil, err
	}

	return &Match{
		id:      cfg.ID,
		logger:  logger,
		clock:   cfg.Clock,
		ledger:  cfg.Ledger,
		eng:     eng,
		effects: EffectSet{},
	}, nil
}

// ID returns the match identifier.
func (m *Match) ID() string { return m.id }

// Join seats a team.
func (m *Match) Join(team engine.Team, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eng.Sit(team, name)
}

// Start deals the first hand using the current control-zone effects.
func (m *Match) Start() (engine.Event, error) {
	m.mu.Lock()
	ev, err := m.eng.StartNewHand(m.effects.dealModifiers())
	m.mu.Unlock()
	if err != nil {
		return ev, err
	}
	m.emit(ev)
	return ev, nil
}

// Act applies a betting action and resolves its consequences: payout
// on hand completion, showdown evaluation, or scheduling of
// auto-progression.
func (m *Match) Act(team engine.Team, action engine.Action, amount int) (engine.Event, error) {
	m.mu.Lock()
	ev, err := m.eng.Act(team, action, amount)
	if err != nil {
		m.mu.Unlock()
		return ev, err
	}
	ev = m.resolveLocked(ev)
	m.mu.Unlock()

	m.emit(ev)
	return ev, nil
}

// Ready records a seat's rendezvous flag; when both seats are ready
// the next hand starts immediately. Returns the event of the started
// hand when one was started.
func (m *Match) Ready(team engine.Team, ready bool) (started bool, ev engine.Event, err error) {
	m.mu.Lock()
	both, err := m.eng.SetPlayerReady(team, ready)
	if err != nil {
		m.mu.Unlock()
		return false, engine.Event{}, err
	}

	if !both {
		m.mu.Unlock()
		return false, engine.Event{}, nil
	}

	ev, err = m.eng.StartNewHand(m.effects.dealModifiers())
	m.mu.Unlock()
	if err != nil {
		return false, engine.Event{}, err
	}
	m.emit(ev)
	return true, ev, nil
}

// UpdateEffects replaces the control-zone effect set and lets the
// engine revoke a third hole card whose grant has lapsed.
func (m *Match) UpdateEffects(set EffectSet) {
	m.mu.Lock()
	m.effects = set
	m.eng.UpdateControlZoneEffects(set.dealModifiers())
	m.mu.Unlock()
}

// TeamView returns one team's view of the match.
func (m *Match) TeamView(team engine.Team) (engine.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eng.TeamView(team)
}

// PublicView returns the spectator view of the match.
func (m *Match) PublicView() engine.View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eng.PublicView()
}

// resolveLocked follows up an engine event while holding the lock:
// showdown evaluation, payout and the ready rendezvous transition, or
// scheduling the next auto-progression step.
func (m *Match) resolveLocked(ev engine.Event) engine.Event {
	if ev.ShowdownEntered {
		if _, err := m.eng.EvaluateShowdown(); err != nil {
			m.logger.Error("showdown evaluation failed", "error", err)
			return ev
		}
		ev.HandComplete = true
	}

	if ev.HandComplete || m.eng.Phase() == engine.HandComplete {
		m.settleLocked()
		if fin, err := m.eng.FinishHand(); err == nil {
			ev.Phase = fin.Phase
		}
		return ev
	}

	if ev.AutoAdvance {
		m.scheduleAdvance(ev.AdvanceDelay)
	}
	return ev
}

// settleLocked distributes the pot: floor division among winners,
// remainder undistributed, pot-time bonus percentages applied per the
// effect dispatch table.
func (m *Match) settleLocked() {
	result := m.eng.LastResult()
	if result == nil || len(result.Winners) == 0 {
		return
	}

	share := potShare(result.Pot, len(result.Winners))
	for _, team := range result.Winners {
		payout := share
		if pct := m.effects.potBonusPercent(team); pct > 0 {
			payout += share * pct / 100
		}
		m.ledger.Credit(team, payout)
		m.logger.Info("pot paid", "team", team, "amount", payout, "reason", result.WinReason)
	}
}

// potShare is the per-winner floor split; the remainder of an uneven
// split stays undistributed.
func potShare(pot, winners int) int {
	if winners == 0 {
		return 0
	}
	return pot / winners
}

// scheduleAdvance arms the reveal timer for the next street. Timer
// callbacks re-enter the engine as ordinary calls.
func (m *Match) scheduleAdvance(delay time.Duration) {
	m.clock.AfterFunc(delay, func() {
		m.mu.Lock()
		ev, err := m.eng.AdvanceStreet()
		if err != nil {
			m.mu.Unlock()
			m.logger.Error("auto-advance failed", "error", err)
			return
		}
		ev = m.resolveLocked(ev)
		m.mu.Unlock()
		m.emit(ev)
	})
}

func (m *Match) emit(ev engine.Event) {
	if m.OnEvent != nil {
		m.OnEvent(ev)
	}
}
