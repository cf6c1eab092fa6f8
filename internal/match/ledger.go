package match

import (
	"fmt"
	"sync"

	"github.com/checkraise/checkraise/internal/engine"
)

// Ledger extends the engine's debit-only seam with the credit side
// used for payouts.
type Ledger interface {
	engine.Ledger
	Credit(team engine.Team, amount int)
}

// MemoryLedger is an in-memory team economy, one per match. The real
// game backs this with the shared team economy service; the interface
// is what the engine sees either way.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[engine.Team]int
}

// NewMemoryLedger seeds both teams with a starting liquid balance.
func NewMemoryLedger(white, black int) *MemoryLedger {
	return &MemoryLedger{
		balances: map[engine.Team]int{
			engine.White: white,
			engine.Black: black,
		},
	}
}

// Balance returns a team's liquid balance.
func (l *MemoryLedger) Balance(team engine.Team) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[team]
}

// Debit removes chips from a team's balance.
func (l *MemoryLedger) Debit(team engine.Team, amount int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[team] < amount {
		return fmt.Errorf("ledger: %s balance %d below %d", team, l.balances[team], amount)
	}
	l.balances[team] -= amount
	return nil
}

// Credit adds chips to a team's balance.
func (l *MemoryLedger) Credit(team engine.Team, amount int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[team] += amount
}
