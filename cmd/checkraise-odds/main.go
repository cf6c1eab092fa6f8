package main

import (
	"fmt"
	rand "math/rand/v2"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"

	"github.com/checkraise/checkraise/internal/deck"
	"github.com/checkraise/checkraise/internal/evaluator"
	"github.com/checkraise/checkraise/internal/randutil"
)

type CLI struct {
	Hands         []string `arg:"" help:"Player hands in format 'AcKd' (two or three cards each)" required:"true"`
	Board         string   `short:"b" help:"Community board cards (e.g., 'Td7s8h')"`
	Possibilities bool     `short:"p" help:"Show detailed hand type probabilities"`
	Iterations    int      `short:"i" help:"Number of Monte Carlo iterations" default:"100000"`
	Seed          *int64   `help:"Random seed for reproducible results"`
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	handStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	tieStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	percentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

func main() {
	var cli CLI
	ctx := kong.Parse(&cli)

	var rng *rand.Rand
	if cli.Seed != nil {
		rng = randutil.New(*cli.Seed)
	} else {
		rng = randutil.NewNondeterministic()
	}

	hands, err := parseHands(cli.Hands)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing hands: %v\n", err)
		ctx.Exit(1)
	}

	var board []deck.Card
	if cli.Board != "" {
		board, err = evaluator.ParseCards(cli.Board)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing board: %v\n", err)
			ctx.Exit(1)
		}
		if len(board) > 5 {
			fmt.Fprintln(os.Stderr, "Board cannot have more than 5 cards")
			ctx.Exit(1)
		}
	}

	if err := validateNoDuplicates(hands, board); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		ctx.Exit(1)
	}

	startTime := time.Now()
	results := calculateMonteCarlo(hands, board, cli.Iterations, rng)
	duration := time.Since(startTime)

	displayResults(results, board, cli.Possibilities, cli.Iterations, duration)
}

type PlayerResult struct {
	Hand          []deck.Card
	Wins          int
	Ties          int
	Total         int
	Possibilities map[string]int
}

// parseHands accepts two or three hole cards per player: an extra
// third card is legal under control-zone effects.
func parseHands(handStrings []string) ([][]deck.Card, error) {
	var hands [][]deck.Card

	for i, handStr := range handStrings {
		handStr = strings.ReplaceAll(strings.TrimSpace(handStr), " ", "")
		hand, err := evaluator.ParseCards(handStr)
		if err != nil {
			return nil, fmt.Errorf("hand %d: %v", i+1, err)
		}
		if len(hand) != 2 && len(hand) != 3 {
			return nil, fmt.Errorf("hand %d: must contain 2 or 3 cards, got %d", i+1, len(hand))
		}
		hands = append(hands, hand)
	}

	return hands, nil
}

func validateNoDuplicates(hands [][]deck.Card, board []deck.Card) error {
	seen := make(map[deck.Card]bool)

	for _, card := range board {
		if seen[card] {
			return fmt.Errorf("duplicate card found: %s", card)
		}
		seen[card] = true
	}

	for i, hand := range hands {
		for _, card := range hand {
			if seen[card] {
				return fmt.Errorf("duplicate card found in hand %d: %s", i+1, card)
			}
			seen[card] = true
		}
	}

	return nil
}

func calculateMonteCarlo(hands [][]deck.Card, board []deck.Card, iterations int, rng *rand.Rand) []PlayerResult {
	numPlayers := len(hands)
	results := make([]PlayerResult, numPlayers)

	for i := range results {
		results[i].Hand = hands[i]
		results[i].Total = iterations
		results[i].Possibilities = make(map[string]int)
	}

	used := make(map[deck.Card]bool)
	for _, card := range board {
		used[card] = true
	}
	for _, hand := range hands {
		for _, card := range hand {
			used[card] = true
		}
	}

	var available []deck.Card
	for suit := deck.Hearts; suit <= deck.Spades; suit++ {
		for rank := deck.Two; rank <= deck.Ace; rank++ {
			card := deck.Card{Suit: suit, Rank: rank}
			if !used[card] {
				available = append(available, card)
			}
		}
	}

	for iter := 0; iter < iterations; iter++ {
		fullBoard := make([]deck.Card, len(board), 5)
		copy(fullBoard, board)

		if needed := 5 - len(board); needed > 0 {
			for _, idx := range selectRandomIndices(len(available), needed, rng) {
				fullBoard = append(fullBoard, available[idx])
			}
		}

		best := make([]evaluator.Hand, numPlayers)
		for i, hand := range hands {
			h, err := evaluator.FindBestHand(hand, fullBoard)
			if err != nil {
				continue
			}
			best[i] = h
			results[i].Possibilities[h.Rank.String()]++
		}

		top := best[0]
		for i := 1; i < numPlayers; i++ {
			if evaluator.Compare(best[i], top) > 0 {
				top = best[i]
			}
		}

		winners := 0
		for _, h := range best {
			if evaluator.Compare(h, top) == 0 {
				winners++
			}
		}

		for i, h := range best {
			if evaluator.Compare(h, top) == 0 {
				if winners == 1 {
					results[i].Wins++
				} else {
					results[i].Ties++
				}
			}
		}
	}

	return results
}

func selectRandomIndices(max, count int, rng *rand.Rand) []int {
	if count >= max {
		indices := make([]int, max)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	indices := make([]int, count)
	used := make(map[int]bool)

	for i := 0; i < count; i++ {
		for {
			idx := rng.IntN(max)
			if !used[idx] {
				indices[i] = idx
				used[idx] = true
				break
			}
		}
	}

	return indices
}

func displayResults(results []PlayerResult, board []deck.Card, showPossibilities bool, iterations int, duration time.Duration) {
	if len(board) > 0 {
		fmt.Printf("%s\n", headerStyle.Render("board"))
		fmt.Printf("%s\n\n", formatCards(board))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s\t%s\t%s\n",
		headerStyle.Render("hand"),
		headerStyle.Render("win"),
		headerStyle.Render("tie"))

	for _, result := range results {
		winPct := float64(result.Wins) / float64(result.Total) * 100
		tiePct := float64(result.Ties) / float64(result.Total) * 100

		fmt.Fprintf(w, "%s\t%s\t%s\n",
			handStyle.Render(formatCards(result.Hand)),
			winStyle.Render(fmt.Sprintf("%.1f%%", winPct)),
			tieStyle.Render(fmt.Sprintf("%.1f%%", tiePct)))
	}

	w.Flush()

	if showPossibilities && len(results) > 0 {
		fmt.Printf("\n")
		displayPossibilities(results)
	}

	fmt.Printf("\n")
	fmt.Printf("%d iterations in %v\n", iterations, duration.Truncate(time.Millisecond))
}

func displayPossibilities(results []PlayerResult) {
	allTypes := make(map[string]bool)
	for _, result := range results {
		for handType := range result.Possibilities {
			allTypes[handType] = true
		}
	}

	orderedTypes := []string{
		"Royal Flush", "Straight Flush", "Four of a Kind", "Full House",
		"Flush", "Straight", "Three of a Kind", "Two Pair", "Pair", "High Card",
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s", categoryStyle.Render("hand"))
	for i := range results {
		fmt.Fprintf(w, "\t%s", handStyle.Render(formatCards(results[i].Hand)))
	}
	fmt.Fprintf(w, "\n")

	for _, handType := range orderedTypes {
		if !allTypes[handType] {
			continue
		}

		fmt.Fprintf(w, "%s", categoryStyle.Render(handType))
		for _, result := range results {
			count := result.Possibilities[handType]
			pct := float64(count) / float64(result.Total) * 100
			if count > 0 {
				fmt.Fprintf(w, "\t%s", percentStyle.Render(fmt.Sprintf("%.1f%%", pct)))
			} else {
				fmt.Fprintf(w, "\t%s", percentStyle.Render("."))
			}
		}
		fmt.Fprintf(w, "\n")
	}

	w.Flush()
}

func formatCards(cards []deck.Card) string {
	parts := make([]string, 0, len(cards))
	for _, card := range cards {
		parts = append(parts, card.String())
	}
	return strings.Join(parts, " ")
}
