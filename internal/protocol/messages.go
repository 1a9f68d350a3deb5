package protocol

import (
	"encoding/json"
	"time"

	"github.com/lox/withoutx/internal/deck"
	"github.com/lox/withoutx/internal/game"
)

// MessageType identifies the type of message
type MessageType string

const (
	// Client -> Server
	TypeCreateRoom      MessageType = "create_room"
	TypeJoinRoom        MessageType = "join_room"
	TypePlay            MessageType = "play"
	TypeSetTrump        MessageType = "set_trump"
	TypeSolitaireFinish MessageType = "solitaire_finish"
	TypeChat            MessageType = "chat"

	// Server -> Client messages carry the game.EventType of the event they
	// wrap; TypeError is the only one defined here.
	TypeError MessageType = MessageType(game.EventTypeRejected)
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Message is the envelope of every frame in both directions.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Client -> Server Messages

// CreateRoom asks for the room with the given code, creating it if needed.
// An empty Room asks the server to generate a code.
type CreateRoom struct {
	Room string `json:"room,omitempty"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// JoinRoom joins an existing room only.
type JoinRoom struct {
	Room string `json:"room"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Play plays a card onto the current trick. Card is required.
type Play struct {
	Card *deck.Card `json:"card"`
}

// SetTrump chooses trump during the trump round. Suit is required.
type SetTrump struct {
	Suit *deck.Suit `json:"suit"`
}

// SolitaireFinish reports an emptied hand in a solitaire round.
type SolitaireFinish struct{}

// Chat is a chat line.
type Chat struct {
	Text string `json:"text"`
}

// RoomRequest is a decoded create_room or join_room.
type RoomRequest struct {
	Create   bool
	Room     string
	Identity game.PlayerID
	Name     string
}

// Inbound is a decoded client message: exactly one of Room or Intent is set.
type Inbound struct {
	Type   MessageType
	Room   *RoomRequest
	Intent game.Intent
}
