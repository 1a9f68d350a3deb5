package protocol

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/withoutx/internal/deck"
	"github.com/lox/withoutx/internal/game"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func frame(t *testing.T, typ MessageType, data string) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"type":      typ,
		"data":      json.RawMessage(data),
		"timestamp": fixedNow,
	})
	require.NoError(t, err)
	return raw
}

func TestDecodeIntents(t *testing.T) {
	tests := []struct {
		name string
		typ  MessageType
		data string
		want game.Intent
	}{
		{"play", TypePlay, `{"card":"10♥"}`, game.PlayCard{Card: deck.NewCard(deck.Hearts, deck.Ten)}},
		{"play ascii", TypePlay, `{"card":"Qs"}`, game.PlayCard{Card: deck.NewCard(deck.Spades, deck.Queen)}},
		{"play suit first", TypePlay, `{"card":"♣A"}`, game.PlayCard{Card: deck.NewCard(deck.Clubs, deck.Ace)}},
		{"set trump", TypeSetTrump, `{"suit":"♦"}`, game.SetTrump{Suit: deck.Diamonds}},
		{"finish", TypeSolitaireFinish, `{}`, game.SolitaireFinish{}},
		{"chat", TypeChat, `{"text":"здрасти"}`, game.Chat{Text: "здрасти"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := Decode(frame(t, tt.typ, tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.typ, in.Type)
			assert.Nil(t, in.Room)
			assert.Equal(t, tt.want, in.Intent)
		})
	}
}

func TestDecodeSolitaireFinishWithoutData(t *testing.T) {
	in, err := Decode([]byte(`{"type":"solitaire_finish"}`))
	require.NoError(t, err)
	assert.Equal(t, game.SolitaireFinish{}, in.Intent)
}

func TestDecodeRoomRequests(t *testing.T) {
	in, err := Decode(frame(t, TypeCreateRoom, `{"room":"ABCD","id":"u1","name":"Ana"}`))
	require.NoError(t, err)
	require.NotNil(t, in.Room)
	assert.Nil(t, in.Intent)
	assert.Equal(t, RoomRequest{Create: true, Room: "ABCD", Identity: "u1", Name: "Ana"}, *in.Room)

	in, err = Decode(frame(t, TypeCreateRoom, `{"name":"Ana"}`))
	require.NoError(t, err)
	assert.Equal(t, RoomRequest{Create: true, Name: "Ana"}, *in.Room)

	in, err = Decode(frame(t, TypeJoinRoom, `{"room":"ABCD","name":"Boris"}`))
	require.NoError(t, err)
	assert.Equal(t, RoomRequest{Room: "ABCD", Name: "Boris"}, *in.Room)

	_, err = Decode(frame(t, TypeJoinRoom, `{"name":"Boris"}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want error
	}{
		{"not json", []byte(`{"type":`), ErrMalformed},
		{"no type", []byte(`{"data":{}}`), ErrMalformed},
		{"unknown type", frame(t, "bet", `{"amount":10}`), ErrUnknownType},
		{"bad card", frame(t, TypePlay, `{"card":"1♥"}`), ErrMalformed},
		{"bad suit", frame(t, TypeSetTrump, `{"suit":"X"}`), ErrMalformed},
		{"missing data", []byte(`{"type":"play"}`), ErrMalformed},
		{"missing card", frame(t, TypePlay, `{}`), ErrMalformed},
		{"null card", frame(t, TypePlay, `{"card":null}`), ErrMalformed},
		{"missing suit", frame(t, TypeSetTrump, `{}`), ErrMalformed},
		{"wrong shape", frame(t, TypeChat, `["hi"]`), ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEncodeEventEnvelope(t *testing.T) {
	raw, err := EncodeEvent(game.CardPlayed{Player: "Ana", Seat: 0, Card: deck.MustParseCard("Q♠")}, fixedNow)
	require.NoError(t, err)

	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.JSONEq(t, `"played"`, string(env["type"]))
	assert.JSONEq(t, `{"player":"Ana","seat":0,"card":"Q♠"}`, string(env["data"]))
	assert.JSONEq(t, `"2024-03-01T12:00:00Z"`, string(env["timestamp"]))
}

func TestEncodeRound(t *testing.T) {
	raw, err := EncodeEvent(game.Round{Phase: game.PhaseContract, Contract: "no-hearts", Label: "Без купи", Number: 1}, fixedNow)
	require.NoError(t, err)

	msg, err := Unmarshal(raw)
	require.NoError(t, err)
	assert.Equal(t, MessageType("round"), msg.Type)
	assert.Contains(t, string(msg.Data), `"phase":"contract"`)
	assert.Contains(t, string(msg.Data), "Без купи")
}

func TestEventsSurviveTheWire(t *testing.T) {
	hearts := deck.Hearts
	events := []game.Event{
		game.Joined{Room: "ABCD", ID: "u1", Name: "Ana", Seat: 2},
		game.Hand{Player: "Ana", Seat: 2, Cards: deck.MustParseCards("2♣ 10♥ A♠")},
		game.Round{Phase: game.PhaseTrump, Label: "Коз", Number: 1},
		game.TrickWon{Player: "Ana", Seat: 2, Points: -18, Trick: 4, Cards: deck.MustParseCards("K♥ 2♥ 3♥ 4♥")},
		game.TableCleared{},
		game.TrumpChosen{Suit: deck.Clubs, Caller: "Ana"},
		game.Rejected{Code: "rejected", Message: "game: not your turn"},
		game.Snapshot{Room: "ABCD", Phase: game.PhaseTrump, Seat: 1, Trump: &hearts, Table: []game.CardPlayed{}},
	}

	for _, ev := range events {
		t.Run(string(ev.EventType()), func(t *testing.T) {
			raw, err := EncodeEvent(ev, fixedNow)
			require.NoError(t, err)
			msg, err := Unmarshal(raw)
			require.NoError(t, err)
			got, err := DecodeEvent(msg)
			require.NoError(t, err)
			assert.Equal(t, ev, got)
		})
	}
}

func TestDecodeEventUnknownType(t *testing.T) {
	_, err := DecodeEvent(&Message{Type: "bet", Data: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestMarshalConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			raw, err := Marshal(TypeChat, Chat{Text: "hi"}, fixedNow)
			if !assert.NoError(t, err, "goroutine %d", i) {
				return
			}
			in, err := Decode(raw)
			assert.NoError(t, err)
			assert.Equal(t, game.Chat{Text: "hi"}, in.Intent)
		}(i)
	}
	wg.Wait()
}
