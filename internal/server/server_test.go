package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/checkraise/checkraise/internal/engine"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

type fixedSchedule struct{ small, big int }

func (s fixedSchedule) Blinds(level int) engine.Blinds {
	return engine.Blinds{Small: s.small, Big: s.big}
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	srv := NewServer(Options{
		Logger:          testLogger(),
		Schedule:        fixedSchedule{small: 5, big: 10},
		StartingBalance: 1000,
		AdvanceDelay:    50 * time.Millisecond,
	})
	go srv.run(srv.ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.handleWebSocket)
	mux.HandleFunc("/health", srv.handleHealth)
	ts := httptest.NewServer(mux)

	t.Cleanup(func() {
		srv.Stop()
		ts.Close()
	})
	return srv, ts
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendMessage(t *testing.T, conn *websocket.Conn, mt MessageType, data interface{}) {
	t.Helper()

	msg, err := NewMessage(mt, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

// awaitMessage reads until a message of the wanted type arrives,
// failing the test if none does within the deadline.
func awaitMessage(t *testing.T, conn *websocket.Conn, want MessageType) *Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == want {
			return &msg
		}
	}
}

func decodeData(t *testing.T, msg *Message, into interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(msg.Data, into))
}

func TestServerHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.handleHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJoinStartsHandWhenBothSeated(t *testing.T) {
	_, ts := newTestServer(t)

	white := dialWS(t, ts)
	black := dialWS(t, ts)

	sendMessage(t, white, MessageTypeJoin, JoinData{MatchID: "m1", Team: "white", Name: "alice"})
	joined := awaitMessage(t, white, MessageTypeJoined)
	var jd JoinedData
	decodeData(t, joined, &jd)
	assert.Equal(t, "m1", jd.MatchID)
	assert.Equal(t, "white", jd.Team)

	sendMessage(t, black, MessageTypeJoin, JoinData{MatchID: "m1", Team: "black", Name: "bob"})
	awaitMessage(t, black, MessageTypeJoined)

	// Both seats taken: the first hand deals and every subscriber
	// hears about it.
	var whiteEv, blackEv EventData
	decodeData(t, awaitMessage(t, white, MessageTypeEvent), &whiteEv)
	decodeData(t, awaitMessage(t, black, MessageTypeEvent), &blackEv)

	assert.Equal(t, engine.PreFlop, whiteEv.Event.Phase)
	assert.Equal(t, 15, whiteEv.Event.Pot)

	// Each seat sees its own hole cards and only a count for the
	// opponent.
	require.NotNil(t, whiteEv.View.You)
	assert.Len(t, whiteEv.View.You.Cards, 2)
	assert.Empty(t, whiteEv.View.Opponent.Cards)
	assert.Equal(t, 2, whiteEv.View.Opponent.CardCount)
	require.NotNil(t, blackEv.View.You)
	assert.Len(t, blackEv.View.You.Cards, 2)
}

func TestJoinRejectsOccupiedSeat(t *testing.T) {
	_, ts := newTestServer(t)

	first := dialWS(t, ts)
	sendMessage(t, first, MessageTypeJoin, JoinData{MatchID: "m1", Team: "white", Name: "alice"})
	awaitMessage(t, first, MessageTypeJoined)

	second := dialWS(t, ts)
	sendMessage(t, second, MessageTypeJoin, JoinData{MatchID: "m1", Team: "white", Name: "mallory"})
	errMsg := awaitMessage(t, second, MessageTypeError)

	var ed ErrorData
	decodeData(t, errMsg, &ed)
	assert.Contains(t, ed.Message, "occupied")
}

func TestActFlowsThroughMatch(t *testing.T) {
	srv, ts := newTestServer(t)

	white := dialWS(t, ts)
	black := dialWS(t, ts)
	sendMessage(t, white, MessageTypeJoin, JoinData{MatchID: "m1", Team: "white", Name: "alice"})
	awaitMessage(t, white, MessageTypeJoined)
	sendMessage(t, black, MessageTypeJoin, JoinData{MatchID: "m1", Team: "black", Name: "bob"})
	awaitMessage(t, black, MessageTypeJoined)

	var ev EventData
	decodeData(t, awaitMessage(t, white, MessageTypeEvent), &ev)
	require.Equal(t, engine.PreFlop, ev.Event.Phase)

	// The seat on turn folds; the hand resolves and subscribers hear
	// the terminal event.
	actor := white
	if ev.Event.Turn == engine.Black {
		actor = black
	}
	sendMessage(t, actor, MessageTypeAct, ActData{Action: "fold"})

	for {
		decodeData(t, awaitMessage(t, white, MessageTypeEvent), &ev)
		if ev.Event.HandComplete {
			break
		}
	}
	assert.Equal(t, engine.WaitingForReady, ev.View.Phase)

	// The folder's blind moved across the table.
	m, ok := srv.Registry().Get("m1")
	require.True(t, ok)
	view := m.PublicView()
	assert.Equal(t, 0, view.Pot)
}

func TestActOutOfTurnReturnsStructuredError(t *testing.T) {
	_, ts := newTestServer(t)

	white := dialWS(t, ts)
	black := dialWS(t, ts)
	sendMessage(t, white, MessageTypeJoin, JoinData{MatchID: "m1", Team: "white", Name: "alice"})
	awaitMessage(t, white, MessageTypeJoined)
	sendMessage(t, black, MessageTypeJoin, JoinData{MatchID: "m1", Team: "black", Name: "bob"})
	awaitMessage(t, black, MessageTypeJoined)

	var ev EventData
	decodeData(t, awaitMessage(t, white, MessageTypeEvent), &ev)

	waiter := white
	if ev.Event.Turn == engine.White {
		waiter = black
	}
	sendMessage(t, waiter, MessageTypeAct, ActData{Action: "fold"})

	errMsg := awaitMessage(t, waiter, MessageTypeError)
	var ed ErrorData
	decodeData(t, errMsg, &ed)
	assert.Contains(t, ed.Message, "not your turn")
}

func TestSpectatorSeesPublicViewOnly(t *testing.T) {
	_, ts := newTestServer(t)

	white := dialWS(t, ts)
	black := dialWS(t, ts)
	sendMessage(t, white, MessageTypeJoin, JoinData{MatchID: "m1", Team: "white", Name: "alice"})
	awaitMessage(t, white, MessageTypeJoined)
	sendMessage(t, black, MessageTypeJoin, JoinData{MatchID: "m1", Team: "black", Name: "bob"})
	awaitMessage(t, black, MessageTypeJoined)
	awaitMessage(t, white, MessageTypeEvent)

	viewer := dialWS(t, ts)
	sendMessage(t, viewer, MessageTypeSpectate, SpectateData{MatchID: "m1"})

	var jd JoinedData
	decodeData(t, awaitMessage(t, viewer, MessageTypeJoined), &jd)
	assert.True(t, jd.Spectator)

	var vd ViewData
	decodeData(t, awaitMessage(t, viewer, MessageTypeView), &vd)
	assert.Nil(t, vd.View.You)
	for _, seat := range vd.View.Seats {
		assert.Empty(t, seat.Cards)
		assert.Equal(t, 2, seat.CardCount)
	}
}

func TestSpectateUnknownMatchFails(t *testing.T) {
	_, ts := newTestServer(t)

	conn := dialWS(t, ts)
	sendMessage(t, conn, MessageTypeSpectate, SpectateData{MatchID: "missing"})

	errMsg := awaitMessage(t, conn, MessageTypeError)
	var ed ErrorData
	decodeData(t, errMsg, &ed)
	assert.Contains(t, ed.Message, "not found")
}

func TestActBeforeJoinFails(t *testing.T) {
	_, ts := newTestServer(t)

	conn := dialWS(t, ts)
	sendMessage(t, conn, MessageTypeAct, ActData{Action: "fold"})

	errMsg := awaitMessage(t, conn, MessageTypeError)
	var ed ErrorData
	decodeData(t, errMsg, &ed)
	assert.Contains(t, ed.Message, "not seated")
}

func TestStateQueryReturnsTeamView(t *testing.T) {
	_, ts := newTestServer(t)

	white := dialWS(t, ts)
	black := dialWS(t, ts)
	sendMessage(t, white, MessageTypeJoin, JoinData{MatchID: "m1", Team: "white", Name: "alice"})
	awaitMessage(t, white, MessageTypeJoined)
	sendMessage(t, black, MessageTypeJoin, JoinData{MatchID: "m1", Team: "black", Name: "bob"})
	awaitMessage(t, black, MessageTypeJoined)
	awaitMessage(t, white, MessageTypeEvent)

	sendMessage(t, white, MessageTypeState, nil)
	var vd ViewData
	decodeData(t, awaitMessage(t, white, MessageTypeView), &vd)

	require.NotNil(t, vd.View.You)
	assert.Len(t, vd.View.You.Cards, 2)
}

func TestMalformedMessageKeepsConnectionAlive(t *testing.T) {
	_, ts := newTestServer(t)

	conn := dialWS(t, ts)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	errMsg := awaitMessage(t, conn, MessageTypeError)
	var ed ErrorData
	decodeData(t, errMsg, &ed)
	assert.Contains(t, ed.Message, "malformed")

	// Still usable afterwards.
	sendMessage(t, conn, MessageTypeJoin, JoinData{MatchID: "m2", Team: "white", Name: "carol"})
	awaitMessage(t, conn, MessageTypeJoined)
}
