package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lox/withoutx/internal/game"
)

var (
	ErrMalformed   = errors.New("protocol: malformed message")
	ErrUnknownType = errors.New("protocol: unknown message type")
)

// Pool of buffers to avoid allocation and ensure thread safety
var bufferPool = sync.Pool{
	New: func() interface{} {
		return &bytes.Buffer{}
	},
}

// Marshal wraps data in an envelope of the given type.
func Marshal(t MessageType, data any, now time.Time) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	if err := json.NewEncoder(buf).Encode(data); err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", t, err)
	}
	raw := bytes.TrimRight(buf.Bytes(), "\n")

	return json.Marshal(Message{
		Type:      t,
		Data:      json.RawMessage(raw),
		Timestamp: now.UTC(),
	})
}

// EncodeEvent turns a room event into a wire frame.
func EncodeEvent(ev game.Event, now time.Time) ([]byte, error) {
	return Marshal(MessageType(ev.EventType()), ev, now)
}

// Unmarshal parses an envelope without decoding its payload.
func Unmarshal(raw []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return &msg, nil
}

// Decode parses a client frame into a room request or a game intent.
func Decode(raw []byte) (*Inbound, error) {
	msg, err := Unmarshal(raw)
	if err != nil {
		return nil, err
	}

	in := &Inbound{Type: msg.Type}
	switch msg.Type {
	case TypeCreateRoom:
		var d CreateRoom
		if err := decodeData(msg, &d); err != nil {
			return nil, err
		}
		in.Room = &RoomRequest{Create: true, Room: d.Room, Identity: game.PlayerID(d.ID), Name: d.Name}
	case TypeJoinRoom:
		var d JoinRoom
		if err := decodeData(msg, &d); err != nil {
			return nil, err
		}
		if d.Room == "" {
			return nil, fmt.Errorf("%w: join_room needs a room", ErrMalformed)
		}
		in.Room = &RoomRequest{Room: d.Room, Identity: game.PlayerID(d.ID), Name: d.Name}
	case TypePlay:
		var d Play
		if err := decodeData(msg, &d); err != nil {
			return nil, err
		}
		if d.Card == nil {
			return nil, fmt.Errorf("%w: play needs a card", ErrMalformed)
		}
		in.Intent = game.PlayCard{Card: *d.Card}
	case TypeSetTrump:
		var d SetTrump
		if err := decodeData(msg, &d); err != nil {
			return nil, err
		}
		if d.Suit == nil {
			return nil, fmt.Errorf("%w: set_trump needs a suit", ErrMalformed)
		}
		in.Intent = game.SetTrump{Suit: *d.Suit}
	case TypeSolitaireFinish:
		in.Intent = game.SolitaireFinish{}
	case TypeChat:
		var d Chat
		if err := decodeData(msg, &d); err != nil {
			return nil, err
		}
		in.Intent = game.Chat{Text: d.Text}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}
	return in, nil
}

func decodeData(msg *Message, v any) error {
	if len(msg.Data) == 0 {
		return fmt.Errorf("%w: %s has no data", ErrMalformed, msg.Type)
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, msg.Type, err)
	}
	return nil
}

// DecodeEvent parses a server frame back into the room event it carries.
func DecodeEvent(msg *Message) (game.Event, error) {
	switch game.EventType(msg.Type) {
	case game.EventTypeJoined:
		return decodeEvent[game.Joined](msg)
	case game.EventTypeMembership:
		return decodeEvent[game.Membership](msg)
	case game.EventTypeHand:
		return decodeEvent[game.Hand](msg)
	case game.EventTypeRound:
		return decodeEvent[game.Round](msg)
	case game.EventTypeTurn:
		return decodeEvent[game.Turn](msg)
	case game.EventTypeCardPlayed:
		return decodeEvent[game.CardPlayed](msg)
	case game.EventTypeTrickWon:
		return decodeEvent[game.TrickWon](msg)
	case game.EventTypeTableCleared:
		return game.TableCleared{}, nil
	case game.EventTypeScores:
		return decodeEvent[game.Scores](msg)
	case game.EventTypeTrumpPrompt:
		return decodeEvent[game.TrumpPrompt](msg)
	case game.EventTypeTrumpChosen:
		return decodeEvent[game.TrumpChosen](msg)
	case game.EventTypeSolitaireFinished:
		return decodeEvent[game.SolitaireFinished](msg)
	case game.EventTypeGameOver:
		return decodeEvent[game.GameOver](msg)
	case game.EventTypeChat:
		return decodeEvent[game.ChatMessage](msg)
	case game.EventTypeSnapshot:
		return decodeEvent[game.Snapshot](msg)
	case game.EventTypeRejected:
		return decodeEvent[game.Rejected](msg)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
}

func decodeEvent[T game.Event](msg *Message) (game.Event, error) {
	var ev T
	if err := decodeData(msg, &ev); err != nil {
		return nil, err
	}
	return ev, nil
}
