// Package watch renders a live read-only view of a match over its
// websocket feed.
package watch

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/checkraise/checkraise/internal/deck"
	"github.com/checkraise/checkraise/internal/engine"
	"github.com/checkraise/checkraise/internal/server"
)

// Messages delivered from the websocket read loop.
type (
	// EventMsg carries a match event with the spectator view attached.
	EventMsg struct{ Data server.EventData }
	// ViewMsg carries a full state snapshot.
	ViewMsg struct{ Data server.ViewData }
	// ErrorMsg carries a server-side failure.
	ErrorMsg struct{ Data server.ErrorData }
	// DisconnectedMsg ends the session.
	DisconnectedMsg struct{ Err error }
)

// Model is the Bubble Tea model for the spectator screen.
type Model struct {
	matchID string
	logger  *log.Logger

	logViewport viewport.Model
	eventLog    []string
	view        engine.View
	haveView    bool
	lastError   string

	width       int
	height      int
	initialized bool
	quitting    bool
}

// NewModel builds the spectator model for one match.
func NewModel(matchID string, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	return &Model{
		matchID:     matchID,
		logger:      logger.WithPrefix("watch"),
		logViewport: vp,
		eventLog:    []string{},
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "up", "k":
			m.logViewport.ScrollUp(1)
		case "down", "j":
			m.logViewport.ScrollDown(1)
		case "pgup", "b":
			m.logViewport.HalfPageUp()
		case "pgdown", "f":
			m.logViewport.HalfPageDown()
		case "home", "g":
			m.logViewport.GotoTop()
		case "end", "G":
			m.logViewport.GotoBottom()
		}

	case ViewMsg:
		m.view = msg.Data.View
		m.haveView = true

	case EventMsg:
		m.view = msg.Data.View
		m.haveView = true
		m.lastError = ""
		m.appendLog(describeEvent(msg.Data.Event, msg.Data.View))

	case ErrorMsg:
		m.lastError = msg.Data.Message

	case DisconnectedMsg:
		if msg.Err != nil {
			m.lastError = fmt.Sprintf("disconnected: %v", msg.Err)
		}
		m.quitting = true
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Connecting..."
	}

	header := HeaderStyle.Render(fmt.Sprintf(" CheckRaise — watching %s ", m.matchID))
	headerHeight := lipgloss.Height(header)

	sidebar := m.renderSidebar()
	sidebarWidth := 30
	if w := lipgloss.Width(sidebar); w > sidebarWidth {
		sidebarWidth = w
	}

	logWidth := m.width - sidebarWidth - 4
	logHeight := m.height - headerHeight - 2
	if logWidth < 1 {
		logWidth = 1
	}
	if logHeight < 1 {
		logHeight = 1
	}

	m.logViewport.SetContent(strings.Join(m.eventLog, "\n"))
	m.logViewport.Width = logWidth
	m.logViewport.Height = logHeight
	if !m.initialized && logWidth > 1 && logHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262"))

	logPane := border.Width(logWidth).Height(logHeight).Render(m.logViewport.View())
	sidebarPane := border.Width(sidebarWidth).Height(logHeight).Render(sidebar)

	body := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, header, body)
}

func (m *Model) renderSidebar() string {
	var b strings.Builder

	if !m.haveView {
		b.WriteString(InfoStyle.Render("waiting for state..."))
		return b.String()
	}

	b.WriteString(PhaseStyle.Render(m.view.Phase.String()))
	b.WriteString("\n")
	b.WriteString(PotStyle.Render(fmt.Sprintf("Pot: %d", m.view.Pot)))
	if m.view.CurrentBet > 0 {
		b.WriteString(PotStyle.Render(fmt.Sprintf("  Bet: %d", m.view.CurrentBet)))
	}
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(fmt.Sprintf("Hand #%d  Blinds %d/%d",
		m.view.HandNumber, m.view.Blinds.Small, m.view.Blinds.Big)))
	b.WriteString("\n\n")

	if len(m.view.Community) > 0 {
		b.WriteString(InfoStyle.Render("board"))
		b.WriteString("\n")
		b.WriteString(FormatCards(m.view.Community))
		b.WriteString("\n\n")
	}

	for _, seat := range m.view.Seats {
		style := SeatStyle
		if seat.Team == m.view.Turn {
			style = TurnStyle
		}
		marker := " "
		switch {
		case seat.Folded:
			marker = "✗"
		case seat.AllIn:
			marker = "∎"
		case seat.Position == engine.Dealer:
			marker = "D"
		}
		b.WriteString(style.Render(fmt.Sprintf("%s %s (%s)", marker, seat.Name, seat.Team)))
		b.WriteString("\n")
		b.WriteString(InfoStyle.Render(fmt.Sprintf("  bet %d  cards %d", seat.CurrentBet, seat.CardCount)))
		b.WriteString("\n")
	}

	if m.lastError != "" {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render(m.lastError))
	}
	return b.String()
}

func (m *Model) appendLog(line string) {
	if line == "" {
		return
	}
	m.eventLog = append(m.eventLog, line)
	m.logViewport.GotoBottom()
}

// EventLog exposes the rendered lines for tests.
func (m *Model) EventLog() []string { return m.eventLog }

// describeEvent turns an event into a log line readable at a glance.
func describeEvent(ev engine.Event, view engine.View) string {
	switch {
	case ev.HandComplete:
		if view.LastResult != nil {
			names := make([]string, 0, len(view.LastResult.Winners))
			for _, w := range view.LastResult.Winners {
				names = append(names, w.String())
			}
			return fmt.Sprintf("hand over: %s wins %d (%s)",
				strings.Join(names, " and "), view.LastResult.Pot, view.LastResult.WinReason)
		}
		return "hand over"
	case ev.ShowdownEntered:
		return "showdown"
	case ev.AutoAdvance:
		return fmt.Sprintf("%s — betting closed, board runs out", ev.Phase)
	case len(view.History) > 0:
		last := view.History[len(view.History)-1]
		verb := last.Action.String() + "s"
		if last.Action == engine.AllIn {
			verb = "is all in for"
		}
		if last.Amount > 0 {
			return fmt.Sprintf("%s %s %d (pot %d)", last.Team, verb, last.Amount, ev.Pot)
		}
		return fmt.Sprintf("%s %s (pot %d)", last.Team, verb, ev.Pot)
	default:
		return fmt.Sprintf("%s (pot %d)", ev.Phase, ev.Pot)
	}
}

// FormatCards renders cards with suit-colored glyphs.
func FormatCards(cards []deck.Card) string {
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		style := BlackCardStyle
		if c.Suit == deck.Hearts || c.Suit == deck.Diamonds {
			style = RedCardStyle
		}
		parts = append(parts, style.Render(c.String()))
	}
	return strings.Join(parts, " ")
}

// Decode translates a wire message into the tea.Msg the model
// understands. Unknown message types map to nil.
func Decode(msg *server.Message) (tea.Msg, error) {
	switch msg.Type {
	case server.MessageTypeEvent:
		var data server.EventData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil, err
		}
		return EventMsg{Data: data}, nil
	case server.MessageTypeView:
		var data server.ViewData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil, err
		}
		return ViewMsg{Data: data}, nil
	case server.MessageTypeError:
		var data server.ErrorData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil, err
		}
		return ErrorMsg{Data: data}, nil
	default:
		return nil, nil
	}
}
