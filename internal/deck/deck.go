package deck

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/checkraise/checkraise/internal/randutil"
)

// ErrInsufficientCards is returned when a deal or burn asks for more
// cards than remain in the live deck. Unreachable with a standard
// 52-card hand, but a defined failure rather than a crash.
var ErrInsufficientCards = fmt.Errorf("deck: insufficient cards")

// Deck represents a 52-card deck with burn and discard piles. A card is
// in exactly one of: the live deck, the burn pile, the discard pile, or
// out with a player.
type Deck struct {
	cards   []Card
	burned  []Card
	discard []Card
	rng     *rand.Rand
}

// New creates a full, unshuffled deck with a non-deterministic rng.
func New() *Deck {
	return NewWithRNG(randutil.NewNondeterministic())
}

// NewWithRNG creates a full, unshuffled deck using the provided rng.
// Tests pass a seeded rng for reproducible orders.
func NewWithRNG(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	d.Reset()
	return d
}

// Reset rebuilds the full 52-card deck and clears the burn and discard
// piles. No other side effects.
func (d *Deck) Reset() {
	d.cards = d.cards[:0]
	d.burned = d.burned[:0]
	d.discard = d.discard[:0]

	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}
}

// Shuffle randomizes the order of the live deck (Fisher-Yates).
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns n cards from the top of the deck.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n > len(d.cards) {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrInsufficientCards, n, len(d.cards))
	}

	cards := make([]Card, n)
	copy(cards, d.cards[:n])
	d.cards = d.cards[n:]
	return cards, nil
}

// Burn moves n cards from the top of the deck to the burn pile. Burned
// cards are never revealed and never return to play within a hand.
func (d *Deck) Burn(n int) error {
	cards, err := d.Deal(n)
	if err != nil {
		return err
	}
	d.burned = append(d.burned, cards...)
	return nil
}

// Discard accepts cards back into the discard pile, e.g. a forcibly
// revoked third hole card.
func (d *Deck) Discard(cards ...Card) {
	d.discard = append(d.discard, cards...)
}

// CardsRemaining returns the number of cards left in the live deck.
func (d *Deck) CardsRemaining() int {
	return len(d.cards)
}

// BurnCount returns the number of burned cards without revealing them.
func (d *Deck) BurnCount() int {
	return len(d.burned)
}

// DiscardCount returns the number of discarded cards without revealing them.
func (d *Deck) DiscardCount() int {
	return len(d.discard)
}
