package evaluator

import (
	"fmt"
	"sort"

	"github.com/checkraise/checkraise/internal/deck"
)

// HandRank is a hand category. Higher values beat lower ones.
type HandRank int

const (
	HighCard HandRank = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns the readable name of the hand category
func (r HandRank) String() string {
	switch r {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// ErrWrongCardCount is returned when Evaluate is given anything other
// than exactly five cards.
var ErrWrongCardCount = fmt.Errorf("evaluator: exactly 5 cards required")

// Hand is an evaluated 5-card hand. Tiebreakers is the ordered rank
// sequence compared lexicographically within a category: e.g. for two
// pair it is [higher pair, lower pair, kicker]; for a straight it is
// just the high card (5 for the wheel).
type Hand struct {
	Rank        HandRank
	Tiebreakers []deck.Rank
	Cards       []deck.Card
}

// String describes the hand, e.g. "Full House (A over K)"
func (h Hand) String() string {
	if len(h.Tiebreakers) == 0 {
		return h.Rank.String()
	}
	return fmt.Sprintf("%s (%s high)", h.Rank, h.Tiebreakers[0])
}

// Evaluate ranks exactly five cards into a Hand.
func Evaluate(cards []deck.Card) (Hand, error) {
	if len(cards) != 5 {
		return Hand{}, fmt.Errorf("%w: got %d", ErrWrongCardCount, len(cards))
	}

	sorted := make([]deck.Card, 5)
	copy(sorted, cards)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Rank > sorted[j].Rank
	})

	flush := isFlush(sorted)
	straightHigh, straight := straightHighCard(sorted)

	if flush && straight {
		rank := StraightFlush
		if straightHigh == deck.Ace {
			rank = RoyalFlush
		}
		return Hand{Rank: rank, Tiebreakers: []deck.Rank{straightHigh}, Cards: sorted}, nil
	}

	groups := groupByRank(sorted)

	switch {
	case groups[0].count == 4:
		return Hand{
			Rank:        FourOfAKind,
			Tiebreakers: []deck.Rank{groups[0].rank, groups[1].rank},
			Cards:       sorted,
		}, nil

	case groups[0].count == 3 && groups[1].count == 2:
		return Hand{
			Rank:        FullHouse,
			Tiebreakers: []deck.Rank{groups[0].rank, groups[1].rank},
			Cards:       sorted,
		}, nil

	case flush:
		return Hand{Rank: Flush, Tiebreakers: ranksOf(sorted), Cards: sorted}, nil

	case straight:
		return Hand{Rank: Straight, Tiebreakers: []deck.Rank{straightHigh}, Cards: sorted}, nil

	case groups[0].count == 3:
		return Hand{
			Rank:        ThreeOfAKind,
			Tiebreakers: []deck.Rank{groups[0].rank, groups[1].rank, groups[2].rank},
			Cards:       sorted,
		}, nil

	case groups[0].count == 2 && groups[1].count == 2:
		return Hand{
			Rank:        TwoPair,
			Tiebreakers: []deck.Rank{groups[0].rank, groups[1].rank, groups[2].rank},
			Cards:       sorted,
		}, nil

	case groups[0].count == 2:
		return Hand{
			Rank: Pair,
			Tiebreakers: []deck.Rank{
				groups[0].rank, groups[1].rank, groups[2].rank, groups[3].rank,
			},
			Cards: sorted,
		}, nil

	default:
		return Hand{Rank: HighCard, Tiebreakers: ranksOf(sorted), Cards: sorted}, nil
	}
}

// FindBestHand returns the strongest 5-card hand among all C(n,5)
// subsets of the hole and community cards combined. Deterministic: on
// ties the first combination in lexicographic index order wins.
func FindBestHand(hole, community []deck.Card) (Hand, error) {
	pool := make([]deck.Card, 0, len(hole)+len(community))
	pool = append(pool, hole...)
	pool = append(pool, community...)

	n := len(pool)
	if n < 5 {
		return Hand{}, fmt.Errorf("%w: only %d cards available", ErrWrongCardCount, n)
	}

	var best Hand
	have := false

	idx := []int{0, 1, 2, 3, 4}
	combo := make([]deck.Card, 5)
	for {
		for i, j := range idx {
			combo[i] = pool[j]
		}
		hand, err := Evaluate(combo)
		if err != nil {
			return Hand{}, err
		}
		if !have || Compare(hand, best) > 0 {
			best = hand
			have = true
		}
		if !nextCombination(idx, n) {
			break
		}
	}

	return best, nil
}

// Compare returns >0 if a beats b, <0 if b beats a and 0 on a complete
// tie. Categories order first; within a category the tiebreaker
// sequences compare lexicographically.
func Compare(a, b Hand) int {
	if a.Rank != b.Rank {
		return int(a.Rank) - int(b.Rank)
	}
	for i := 0; i < len(a.Tiebreakers) && i < len(b.Tiebreakers); i++ {
		if a.Tiebreakers[i] != b.Tiebreakers[i] {
			return int(a.Tiebreakers[i]) - int(b.Tiebreakers[i])
		}
	}
	return 0
}

// nextCombination advances idx to the next k-combination of [0,n) in
// lexicographic order, returning false when exhausted.
func nextCombination(idx []int, n int) bool {
	k := len(idx)
	for i := k - 1; i >= 0; i-- {
		if idx[i] != i+n-k {
			idx[i]++
			for j := i + 1; j < k; j++ {
				idx[j] = idx[j-1] + 1
			}
			return true
		}
	}
	return false
}

func isFlush(cards []deck.Card) bool {
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			return false
		}
	}
	return true
}

// straightHighCard expects cards sorted by rank descending. Returns
// the straight's high card and whether a straight exists. The wheel
// (A-5-4-3-2) reports 5 as its high card.
func straightHighCard(cards []deck.Card) (deck.Rank, bool) {
	run := true
	for i := 1; i < 5; i++ {
		if cards[i-1].Rank != cards[i].Rank+1 {
			run = false
			break
		}
	}
	if run {
		return cards[0].Rank, true
	}

	// Wheel: ace plays low below 5-4-3-2.
	if cards[0].Rank == deck.Ace &&
		cards[1].Rank == deck.Five &&
		cards[2].Rank == deck.Four &&
		cards[3].Rank == deck.Three &&
		cards[4].Rank == deck.Two {
		return deck.Five, true
	}

	return 0, false
}

type rankGroup struct {
	rank  deck.Rank
	count int
}

// groupByRank returns rank groups sorted by count descending then rank
// descending, which is exactly the tiebreaker order for paired hands.
func groupByRank(cards []deck.Card) []rankGroup {
	counts := make(map[deck.Rank]int)
	for _, c := range cards {
		counts[c.Rank]++
	}

	groups := make([]rankGroup, 0, len(counts))
	for r, n := range counts {
		groups = append(groups, rankGroup{rank: r, count: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})
	return groups
}

func ranksOf(cards []deck.Card) []deck.Rank {
	ranks := make([]deck.Rank, len(cards))
	for i, c := range cards {
		ranks[i] = c.Rank
	}
	return ranks
}
