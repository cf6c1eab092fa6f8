package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/checkraise/checkraise/internal/engine"
	"github.com/gorilla/websocket"
)

// ErrConnectionClosed is returned when sending on a closed connection.
var ErrConnectionClosed = errors.New("server: connection closed")

// Connection wraps one websocket client: a seated player or a
// spectator.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	server    *Server
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu        sync.RWMutex
	matchID   string
	team      engine.Team
	spectator bool
}

func newConnection(conn *websocket.Conn, server *Server) *Connection {
	ctx, cancel := context.WithCancel(server.ctx)
	return &Connection{
		conn:   conn,
		send:   make(chan *Message, 64),
		server: server,
		logger: server.logger.WithPrefix("conn").With("remote", conn.RemoteAddr().String()),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Connection) start() {
	go c.writePump()
	go c.readPump()
}

// Close tears the connection down once.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// Send queues a message; a full buffer closes the connection rather
// than blocking the broadcaster.
func (c *Connection) Send(msg *Message) error {
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("send buffer full, dropping connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) setBinding(matchID string, team engine.Team, spectator bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matchID = matchID
	c.team = team
	c.spectator = spectator
}

func (c *Connection) binding() (string, engine.Team, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.matchID, c.team, c.spectator
}

func (c *Connection) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c:
		case <-c.server.ctx.Done():
		}
		_ = c.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("read error", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError("malformed message", nil)
			continue
		}
		c.handleMessage(&msg)
	}
}

func (c *Connection) writePump() {
	defer func() { _ = c.Close() }()

	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("write error", "error", err)
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) handleMessage(msg *Message) {
	switch msg.Type {
	case MessageTypeJoin:
		var data JoinData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("malformed join payload", nil)
			return
		}
		c.server.handleJoin(c, data)

	case MessageTypeSpectate:
		var data SpectateData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("malformed spectate payload", nil)
			return
		}
		c.server.handleSpectate(c, data)

	case MessageTypeAct:
		var data ActData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("malformed act payload", nil)
			return
		}
		c.server.handleAct(c, data)

	case MessageTypeReady:
		var data ReadyData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("malformed ready payload", nil)
			return
		}
		c.server.handleReady(c, data)

	case MessageTypeState:
		c.server.handleState(c)

	default:
		c.sendError("unknown message type", nil)
	}
}

// sendError relays a structured failure. Engine errors carry phase and
// legal-action context where available.
func (c *Connection) sendError(message string, err error) {
	data := ErrorData{Message: message}
	if err != nil {
		data.Message = err.Error()

		var illegal *engine.IllegalActionError
		if errors.As(err, &illegal) {
			data.LegalActions = illegal.Legal
		}
		if matchID, _, _ := c.binding(); matchID != "" {
			if m, ok := c.server.registry.Get(matchID); ok {
				data.Phase = m.PublicView().Phase.String()
			}
		}
	}

	msg, merr := NewMessage(MessageTypeError, data)
	if merr != nil {
		c.logger.Error("failed to encode error message", "error", merr)
		return
	}
	_ = c.Send(msg)
}
