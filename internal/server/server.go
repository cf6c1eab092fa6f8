package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/checkraise/checkraise/internal/engine"
	"github.com/checkraise/checkraise/internal/match"
	"github.com/checkraise/checkraise/internal/matchid"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// Options configures the websocket service.
type Options struct {
	Addr            string
	Logger          *log.Logger
	Clock           quartz.Clock
	Schedule        engine.BlindSchedule
	MinBet          int
	StartingBalance int
	AdvanceDelay    time.Duration
}

// Server exposes matches over websockets. Players join a seat,
// spectators subscribe read-only, and every engine event fans out to
// the match's subscribers as a per-receiver view.
type Server struct {
	opts     Options
	upgrader websocket.Upgrader
	registry *match.Registry
	logger   *log.Logger

	mu          sync.RWMutex
	connections map[*Connection]struct{}
	subscribers map[string]map[*Connection]struct{}

	register   chan *Connection
	unregister chan *Connection

	ctx    context.Context
	cancel context.CancelFunc
	httpd  *http.Server
}

// NewServer builds a server; matches are created lazily on first join.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		opts: opts,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		registry:    match.NewRegistry(opts.Logger),
		logger:      opts.Logger.WithPrefix("server"),
		connections: make(map[*Connection]struct{}),
		subscribers: make(map[string]map[*Connection]struct{}),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Registry returns the server's match registry.
func (s *Server) Registry() *match.Registry { return s.registry }

// Start serves until Stop is called or the listener fails.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpd = &http.Server{Addr: s.opts.Addr, Handler: mux}

	g, ctx := errgroup.WithContext(s.ctx)
	g.Go(func() error {
		s.run(ctx)
		return nil
	})
	g.Go(func() error {
		s.logger.Info("listening", "addr", s.opts.Addr)
		if err := s.httpd.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpd.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Stop closes every connection and shuts the listener down.
func (s *Server) Stop() {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()
}

func (s *Server) run(ctx context.Context) {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = struct{}{}
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.connections[conn]; ok {
				delete(s.connections, conn)
				if matchID, _, _ := conn.binding(); matchID != "" {
					if subs, ok := s.subscribers[matchID]; ok {
						delete(subs, conn)
						if len(subs) == 0 {
							delete(s.subscribers, matchID)
						}
					}
				}
			}
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("client disconnected", "total", total)

		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade failed", "error", err)
		return
	}

	client := newConnection(conn, s)
	s.register <- client
	client.start()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

// handleJoin seats a client, creating the match on first contact. An
// omitted match_id opens a fresh match with a generated identifier.
// The hand starts as soon as both seats are taken.
func (s *Server) handleJoin(c *Connection, data JoinData) {
	if data.MatchID == "" {
		data.MatchID = matchid.New()
	}
	team, err := engine.ParseTeam(data.Team)
	if err != nil {
		c.sendError("", err)
		return
	}

	m, err := s.matchFor(data.MatchID)
	if err != nil {
		c.sendError("", err)
		return
	}

	if err := m.Join(team, data.Name); err != nil {
		c.sendError("", err)
		return
	}

	c.setBinding(data.MatchID, team, false)
	s.subscribe(data.MatchID, c)
	c.logger.Info("player joined", "match", data.MatchID, "team", team, "name", data.Name)

	s.reply(c, MessageTypeJoined, JoinedData{MatchID: data.MatchID, Team: team.String()})

	if s.seatedCount(data.MatchID) == 2 {
		if _, err := m.Start(); err != nil {
			c.sendError("", err)
		}
	}
}

func (s *Server) handleSpectate(c *Connection, data SpectateData) {
	m, ok := s.registry.Get(data.MatchID)
	if !ok {
		c.sendError(fmt.Sprintf("match %q not found", data.MatchID), nil)
		return
	}

	c.setBinding(data.MatchID, engine.NoTeam, true)
	s.subscribe(data.MatchID, c)

	s.reply(c, MessageTypeJoined, JoinedData{MatchID: data.MatchID, Spectator: true})
	s.reply(c, MessageTypeView, ViewData{MatchID: data.MatchID, View: m.PublicView()})
}

func (s *Server) handleAct(c *Connection, data ActData) {
	matchID, team, spectator := c.binding()
	if matchID == "" || spectator {
		c.sendError("not seated at a match", nil)
		return
	}
	m, ok := s.registry.Get(matchID)
	if !ok {
		c.sendError(fmt.Sprintf("match %q not found", matchID), nil)
		return
	}

	action, err := engine.ParseAction(data.Action)
	if err != nil {
		c.sendError("", err)
		return
	}

	if _, err := m.Act(team, action, data.Amount); err != nil {
		c.sendError("", err)
		return
	}
	// The resulting event reaches every subscriber via the match's
	// OnEvent broadcast.
}

func (s *Server) handleReady(c *Connection, data ReadyData) {
	matchID, team, spectator := c.binding()
	if matchID == "" || spectator {
		c.sendError("not seated at a match", nil)
		return
	}
	m, ok := s.registry.Get(matchID)
	if !ok {
		c.sendError(fmt.Sprintf("match %q not found", matchID), nil)
		return
	}

	if _, _, err := m.Ready(team, data.Ready); err != nil {
		c.sendError("", err)
	}
}

func (s *Server) handleState(c *Connection) {
	matchID, team, spectator := c.binding()
	if matchID == "" {
		c.sendError("not joined to a match", nil)
		return
	}
	m, ok := s.registry.Get(matchID)
	if !ok {
		c.sendError(fmt.Sprintf("match %q not found", matchID), nil)
		return
	}

	view := m.PublicView()
	if !spectator {
		v, err := m.TeamView(team)
		if err != nil {
			c.sendError("", err)
			return
		}
		view = v
	}
	s.reply(c, MessageTypeView, ViewData{MatchID: matchID, View: view})
}

// matchFor returns the named match, creating it with the server's
// defaults on first contact.
func (s *Server) matchFor(id string) (*match.Match, error) {
	if m, ok := s.registry.Get(id); ok {
		return m, nil
	}

	m, err := s.registry.Create(match.Config{
		ID:           id,
		Logger:       s.opts.Logger,
		Clock:        s.opts.Clock,
		Ledger:       match.NewMemoryLedger(s.opts.StartingBalance, s.opts.StartingBalance),
		Schedule:     s.opts.Schedule,
		MinBet:       s.opts.MinBet,
		AdvanceDelay: s.opts.AdvanceDelay,
	})
	if err != nil {
		return nil, err
	}
	m.OnEvent = func(ev engine.Event) { s.broadcastEvent(m, ev) }
	return m, nil
}

func (s *Server) subscribe(matchID string, c *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs, ok := s.subscribers[matchID]
	if !ok {
		subs = make(map[*Connection]struct{})
		s.subscribers[matchID] = subs
	}
	subs[c] = struct{}{}
}

func (s *Server) seatedCount(matchID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for conn := range s.subscribers[matchID] {
		if _, _, spectator := conn.binding(); !spectator {
			count++
		}
	}
	return count
}

// broadcastEvent fans an engine event out to the match's subscribers,
// rendering a team view for each seated player and the public view
// for spectators. Hole cards never cross a seat boundary.
func (s *Server) broadcastEvent(m *match.Match, ev engine.Event) {
	s.mu.RLock()
	subs := make([]*Connection, 0, len(s.subscribers[m.ID()]))
	for conn := range s.subscribers[m.ID()] {
		subs = append(subs, conn)
	}
	s.mu.RUnlock()

	public := m.PublicView()
	for _, conn := range subs {
		_, team, spectator := conn.binding()
		view := public
		if !spectator {
			if v, err := m.TeamView(team); err == nil {
				view = v
			}
		}
		msg, err := NewMessage(MessageTypeEvent, EventData{MatchID: m.ID(), Event: ev, View: view})
		if err != nil {
			s.logger.Error("failed to encode event", "error", err)
			continue
		}
		_ = conn.Send(msg)
	}
}

func (s *Server) reply(c *Connection, mt MessageType, data interface{}) {
	msg, err := NewMessage(mt, data)
	if err != nil {
		s.logger.Error("failed to encode message", "type", mt, "error", err)
		return
	}
	_ = c.Send(msg)
}
