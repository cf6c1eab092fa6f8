package server

import (
	"encoding/json"
	"time"

	"github.com/checkraise/checkraise/internal/engine"
)

// MessageType discriminates the JSON envelope.
type MessageType string

const (
	// Client → server
	MessageTypeJoin     MessageType = "join"
	MessageTypeSpectate MessageType = "spectate"
	MessageTypeAct      MessageType = "act"
	MessageTypeReady    MessageType = "ready"
	MessageTypeState    MessageType = "state"

	// Server → client
	MessageTypeJoined MessageType = "joined"
	MessageTypeEvent  MessageType = "event"
	MessageTypeView   MessageType = "view"
	MessageTypeError  MessageType = "error"
)

// Message is the websocket envelope.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage wraps a payload with the current timestamp.
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = encoded
	}
	return &Message{Type: messageType, Data: raw, Timestamp: time.Now()}, nil
}

// Client → server payloads

// JoinData seats the sender at a match, creating the match on first
// contact.
type JoinData struct {
	MatchID string `json:"match_id"`
	Team    string `json:"team"`
	Name    string `json:"name"`
}

// SpectateData subscribes the sender to a match's public view.
type SpectateData struct {
	MatchID string `json:"match_id"`
}

// ActData is a betting action from a seated player.
type ActData struct {
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

// ReadyData signals the next-hand rendezvous.
type ReadyData struct {
	Ready bool `json:"ready"`
}

// Server → client payloads

// JoinedData confirms a seat or spectator subscription.
type JoinedData struct {
	MatchID   string `json:"match_id"`
	Team      string `json:"team,omitempty"`
	Spectator bool   `json:"spectator,omitempty"`
}

// EventData relays an engine event alongside the receiver's view.
type EventData struct {
	MatchID string       `json:"match_id"`
	Event   engine.Event `json:"event"`
	View    engine.View  `json:"view"`
}

// ViewData answers a state query.
type ViewData struct {
	MatchID string      `json:"match_id"`
	View    engine.View `json:"view"`
}

// ErrorData carries a structured failure back to the client with
// enough context for a user-facing message.
type ErrorData struct {
	Message      string          `json:"message"`
	Phase        string          `json:"phase,omitempty"`
	LegalActions []engine.Action `json:"legal_actions,omitempty"`
}
