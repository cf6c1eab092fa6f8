package watch

import (
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/checkraise/checkraise/internal/engine"
	"github.com/checkraise/checkraise/internal/evaluator"
	"github.com/checkraise/checkraise/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestModelLogsEvents(t *testing.T) {
	m := NewModel("m1", testLogger())

	updated, _ := m.Update(EventMsg{Data: server.EventData{
		MatchID: "m1",
		Event:   engine.Event{Phase: engine.PreFlop, Pot: 15},
		View: engine.View{
			Phase: engine.PreFlop,
			Pot:   15,
			History: []engine.HistoryEntry{
				{Team: engine.White, Action: engine.Call, Amount: 5, Time: time.Now()},
			},
		},
	}})

	model := updated.(*Model)
	require.Len(t, model.EventLog(), 1)
	assert.Contains(t, model.EventLog()[0], "white calls 5")
	assert.True(t, model.haveView)
}

func TestModelDescribesHandCompletion(t *testing.T) {
	m := NewModel("m1", testLogger())

	updated, _ := m.Update(EventMsg{Data: server.EventData{
		Event: engine.Event{Phase: engine.WaitingForReady, HandComplete: true},
		View: engine.View{
			LastResult: &engine.Result{
				Winners:   []engine.Team{engine.Black},
				WinReason: "fold",
				Pot:       30,
			},
		},
	}})

	model := updated.(*Model)
	require.Len(t, model.EventLog(), 1)
	assert.Contains(t, model.EventLog()[0], "black wins 30")
	assert.Contains(t, model.EventLog()[0], "fold")
}

func TestModelQuitsOnKey(t *testing.T) {
	m := NewModel("m1", testLogger())

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	assert.True(t, updated.(*Model).quitting)
	assert.NotNil(t, cmd)
}

func TestModelSidebarShowsBoardAndSeats(t *testing.T) {
	m := NewModel("m1", testLogger())
	m.width = 100
	m.height = 30

	_, _ = m.Update(ViewMsg{Data: server.ViewData{View: engine.View{
		Phase:     engine.Flop,
		Pot:       40,
		Community: evaluator.MustParseCards("Ah7d2c"),
		Blinds:    engine.Blinds{Small: 5, Big: 10},
		Seats: []engine.SeatView{
			{Team: engine.White, Name: "alice", CardCount: 2},
			{Team: engine.Black, Name: "bob", CardCount: 2, Folded: true},
		},
	}}})

	out := m.renderSidebar()
	assert.Contains(t, out, "flop")
	assert.Contains(t, out, "Pot: 40")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "bob")
}

func TestDecodeRoutesMessageTypes(t *testing.T) {
	evMsg, err := server.NewMessage(server.MessageTypeEvent, server.EventData{MatchID: "m1"})
	require.NoError(t, err)
	decoded, err := Decode(evMsg)
	require.NoError(t, err)
	assert.IsType(t, EventMsg{}, decoded)

	errMsg, err := server.NewMessage(server.MessageTypeError, server.ErrorData{Message: "boom"})
	require.NoError(t, err)
	decoded, err = Decode(errMsg)
	require.NoError(t, err)
	require.IsType(t, ErrorMsg{}, decoded)
	assert.Equal(t, "boom", decoded.(ErrorMsg).Data.Message)

	unknown, err := server.NewMessage(server.MessageTypeJoined, nil)
	require.NoError(t, err)
	decoded, err = Decode(unknown)
	require.NoError(t, err)
	assert.Nil(t, decoded)
}
