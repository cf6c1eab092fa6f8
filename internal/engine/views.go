package engine

import "github.com/checkraise/checkraise/internal/deck"

// SeatView is the externally visible slice of a seat. Cards is only
// populated for the viewing team's own seat.
type SeatView struct {
	Team          Team        `json:"team"`
	Name          string      `json:"name"`
	Position      Position    `json:"position"`
	CurrentBet    int         `json:"current_bet"`
	TotalBet      int         `json:"total_bet"`
	Folded        bool        `json:"folded"`
	AllIn         bool        `json:"all_in"`
	HasActed      bool        `json:"has_acted"`
	CardCount     int         `json:"card_count"`
	Cards         []deck.Card `json:"cards,omitempty"`
	ThirdHoleCard bool        `json:"third_hole_card"`
	Ready         bool        `json:"ready"`
}

// DeckCounts exposes deck pile sizes without revealing identities.
type DeckCounts struct {
	Remaining int `json:"remaining"`
	Burned    int `json:"burned"`
	Discarded int `json:"discarded"`
}

// View is a per-team or spectator snapshot of the match.
type View struct {
	Phase        Phase          `json:"phase"`
	HandNumber   int            `json:"hand_number"`
	Pot          int            `json:"pot"`
	CurrentBet   int            `json:"current_bet"`
	MinRaise     int            `json:"min_raise"`
	Turn         Team           `json:"turn"`
	Dealer       Team           `json:"dealer"`
	Blinds       Blinds         `json:"blinds"`
	Community    []deck.Card    `json:"community"`
	You          *SeatView      `json:"you,omitempty"`
	Opponent     *SeatView      `json:"opponent,omitempty"`
	Seats        []SeatView     `json:"seats,omitempty"` // spectator form
	LegalActions []Action       `json:"legal_actions,omitempty"`
	Deck         DeckCounts     `json:"deck"`
	History      []HistoryEntry `json:"history"`
	LastResult   *Result        `json:"last_result,omitempty"`
}

// TeamView returns the game state as seen by one team: own hole cards
// included, opponent reduced to public info.
func (e *Engine) TeamView(team Team) (View, error) {
	s, err := e.seat(team)
	if err != nil {
		return View{}, err
	}

	v := e.baseView()
	you := e.seatView(s, true)
	v.You = &you

	if opp := e.other(team); opp != nil {
		ov := e.seatView(opp, false)
		v.Opponent = &ov
	}
	v.LegalActions = e.LegalActions(team)
	return v, nil
}

// PublicView returns the spectator form: both seats, no hole cards.
func (e *Engine) PublicView() View {
	v := e.baseView()
	for _, s := range []*Seat{e.white, e.black} {
		if s != nil {
			v.Seats = append(v.Seats, e.seatView(s, false))
		}
	}
	return v
}

func (e *Engine) baseView() View {
	return View{
		Phase:      e.phase,
		HandNumber: e.handNumber,
		Pot:        e.pot,
		CurrentBet: e.currentBet,
		MinRaise:   e.MinRaise(),
		Turn:       e.turn,
		Dealer:     e.dealer,
		Blinds:     e.blinds,
		Community:  e.community,
		Deck: DeckCounts{
			Remaining: e.deck.CardsRemaining(),
			Burned:    e.deck.BurnCount(),
			Discarded: e.deck.DiscardCount(),
		},
		History:    e.history,
		LastResult: e.lastResult,
	}
}

func (e *Engine) seatView(s *Seat, withCards bool) SeatView {
	v := SeatView{
		Team:          s.Team,
		Name:          s.Name,
		Position:      s.Position,
		CurrentBet:    s.CurrentBet,
		TotalBet:      s.TotalBet,
		Folded:        s.Folded,
		AllIn:         s.AllIn,
		HasActed:      s.HasActed,
		CardCount:     len(s.Hand),
		ThirdHoleCard: s.ThirdHoleCard,
		Ready:         e.Ready(s.Team),
	}
	if withCards {
		v.Cards = s.Hand
	}
	return v
}
