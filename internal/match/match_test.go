package match

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/checkraise/checkraise/internal/engine"
	"github.com/checkraise/checkraise/internal/matchid"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

type fixedSchedule struct{}

func (fixedSchedule) Blinds(level int) engine.Blinds {
	return engine.Blinds{Small: 5, Big: 10}
}

func newTestMatch(t *testing.T, clock quartz.Clock, white, black int) (*Match, *MemoryLedger) {
	t.Helper()

	ledger := NewMemoryLedger(white, black)
	m, err := New(Config{
		ID:           "m1",
		Clock:        clock,
		Ledger:       ledger,
		Schedule:     fixedSchedule{},
		AdvanceDelay: 250 * time.Millisecond,
	})
	require.NoError(t, err)
	require.NoError(t, m.Join(engine.White, "alice"))
	require.NoError(t, m.Join(engine.Black, "bob"))
	return m, ledger
}

func TestFoldPaysPotToWinner(t *testing.T) {
	m, ledger := newTestMatch(t, quartz.NewReal(), 1000, 1000)

	_, err := m.Start()
	require.NoError(t, err)

	view := m.PublicView()
	dealer := view.Dealer
	winner := dealer.Other()

	ev, err := m.Act(dealer, engine.Fold, 0)
	require.NoError(t, err)
	assert.True(t, ev.HandComplete)

	// Dealer posted 5, winner posted 10 and collected the 15-chip pot.
	assert.Equal(t, 995, ledger.Balance(dealer))
	assert.Equal(t, 1005, ledger.Balance(winner))

	// Hand settled straight into the ready rendezvous.
	assert.Equal(t, engine.WaitingForReady, m.PublicView().Phase)
}

func TestReadyRendezvousStartsNextHand(t *testing.T) {
	m, _ := newTestMatch(t, quartz.NewReal(), 1000, 1000)

	_, err := m.Start()
	require.NoError(t, err)
	firstDealer := m.PublicView().Dealer

	_, err = m.Act(firstDealer, engine.Fold, 0)
	require.NoError(t, err)

	started, _, err := m.Ready(engine.White, true)
	require.NoError(t, err)
	assert.False(t, started)

	started, ev, err := m.Ready(engine.Black, true)
	require.NoError(t, err)
	assert.True(t, started)
	assert.Equal(t, engine.PreFlop, ev.Phase)

	view := m.PublicView()
	assert.Equal(t, 2, view.HandNumber)
	assert.Equal(t, firstDealer.Other(), view.Dealer, "positions rotate between hands")
}

func TestAutoProgressionResolvesAllInHand(t *testing.T) {
	clock := quartz.NewMock(t)
	m, ledger := newTestMatch(t, clock, 30, 500)

	_, err := m.Start()
	require.NoError(t, err)

	view := m.PublicView()
	shortStack := view.Dealer // posted the 5-chip small blind from a 30 stack

	events := make(chan engine.Event, 16)
	m.OnEvent = func(ev engine.Event) { events <- ev }

	_, err = m.Act(shortStack, engine.AllIn, 0)
	require.NoError(t, err)

	ev, err := m.Act(shortStack.Other(), engine.Call, 0)
	require.NoError(t, err)
	assert.True(t, ev.AutoAdvance)

	// Walk the timers: flop, turn, river, then showdown resolution.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := 0; i < 4; i++ {
		clock.Advance(250 * time.Millisecond).MustWait(ctx)
	}

	view = m.PublicView()
	assert.Equal(t, engine.WaitingForReady, view.Phase, "hand must resolve without further input")
	require.NotNil(t, view.LastResult)
	assert.Equal(t, "showdown", view.LastResult.WinReason)
	assert.Len(t, view.Community, 5)

	// All 60 pot chips went somewhere; none were minted or lost.
	total := ledger.Balance(engine.White) + ledger.Balance(engine.Black)
	assert.Equal(t, 530, total)

	// Every scheduled advance surfaced through the event hook.
	assert.GreaterOrEqual(t, len(events), 4)
}

func TestPotBonusEffectAppliesAtPayout(t *testing.T) {
	m, ledger := newTestMatch(t, quartz.NewReal(), 1000, 1000)

	_, err := m.Start()
	require.NoError(t, err)

	dealer := m.PublicView().Dealer
	winner := dealer.Other()
	m.UpdateEffects(EffectSet{
		winner: {{Kind: EffectPotBonus, Param: 50}},
	})

	_, err = m.Act(dealer, engine.Fold, 0)
	require.NoError(t, err)

	// 15-chip pot plus a 50% winner-side bonus: 15 + 7.
	assert.Equal(t, 1012, ledger.Balance(winner))
}

func TestThirdHoleCardEffectLifecycle(t *testing.T) {
	m, _ := newTestMatch(t, quartz.NewReal(), 1000, 1000)
	m.UpdateEffects(EffectSet{
		engine.White: {{Kind: EffectThirdHoleCard}},
	})

	_, err := m.Start()
	require.NoError(t, err)

	view, err := m.TeamView(engine.White)
	require.NoError(t, err)
	assert.Len(t, view.You.Cards, 3)
	assert.True(t, view.You.ThirdHoleCard)

	// Losing the zone mid-hand forcibly discards the extra card.
	m.UpdateEffects(EffectSet{})
	view, err = m.TeamView(engine.White)
	require.NoError(t, err)
	assert.Len(t, view.You.Cards, 2)
	assert.False(t, view.You.ThirdHoleCard)
	assert.Equal(t, 1, view.Deck.Discarded)
}

func TestPotShareFloorDivision(t *testing.T) {
	assert.Equal(t, 7, potShare(15, 2), "remainder stays undistributed")
	assert.Equal(t, 15, potShare(15, 1))
	assert.Equal(t, 0, potShare(15, 0))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(testLogger())

	cfg := Config{
		ID:       "match-1",
		Ledger:   NewMemoryLedger(100, 100),
		Schedule: fixedSchedule{},
	}
	m, err := r.Create(cfg)
	require.NoError(t, err)
	assert.Equal(t, "match-1", m.ID())

	_, err = r.Create(cfg)
	assert.Error(t, err, "duplicate ids are rejected")

	got, ok := r.Get("match-1")
	require.True(t, ok)
	assert.Same(t, m, got)

	assert.Equal(t, []string{"match-1"}, r.IDs())

	removed, ok := r.Remove("match-1")
	require.True(t, ok)
	assert.Same(t, m, removed)
	_, ok = r.Get("match-1")
	assert.False(t, ok)
}

func TestRegistryGeneratesIDs(t *testing.T) {
	r := NewRegistry(testLogger())

	m, err := r.Create(Config{
		Ledger:   NewMemoryLedger(100, 100),
		Schedule: fixedSchedule{},
	})
	require.NoError(t, err)
	require.NoError(t, matchid.Validate(m.ID()))

	got, ok := r.Get(m.ID())
	require.True(t, ok)
	assert.Same(t, m, got)
}
