package game

import "github.com/lox/withoutx/internal/deck"

// EventType represents a room event type with type safety
type EventType string

// Outbound events. The values double as the wire message type.
const (
	EventTypeJoined            EventType = "joined"
	EventTypeMembership        EventType = "membership"
	EventTypeHand              EventType = "hand"
	EventTypeRound             EventType = "round"
	EventTypeTurn              EventType = "turn"
	EventTypeCardPlayed        EventType = "played"
	EventTypeTrickWon          EventType = "trick_won"
	EventTypeTableCleared      EventType = "table_cleared"
	EventTypeScores            EventType = "scores"
	EventTypeTrumpPrompt       EventType = "trump_prompt"
	EventTypeTrumpChosen       EventType = "trump_chosen"
	EventTypeSolitaireFinished EventType = "solitaire_finished"
	EventTypeGameOver          EventType = "game_over"
	EventTypeChat              EventType = "chat"
	EventTypeSnapshot          EventType = "snapshot"
	EventTypeRejected          EventType = "error"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is anything a room sends to its members.
type Event interface {
	EventType() EventType
}

// Conn is the live connection handle of a player. Send must not block; the
// room treats delivery as fire-and-forget.
type Conn interface {
	Send(Event)
}

// Joined is sent privately to a connection after it takes a seat, becomes a
// spectator, or reconnects.
type Joined struct {
	Room      string   `json:"room"`
	ID        PlayerID `json:"id"`
	Name      string   `json:"name"`
	Seat      int      `json:"seat"`
	Spectator bool     `json:"spectator"`
	Reconnect bool     `json:"reconnect,omitempty"`
}

// SeatInfo describes an occupied seat.
type SeatInfo struct {
	Seat      int    `json:"seat"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
}

// Membership is broadcast whenever seats or spectators change.
type Membership struct {
	Seated     int        `json:"count"`
	Spectators int        `json:"spectators"`
	Seats      []SeatInfo `json:"seats"`
}

// Hand carries a dealt hand. Closed hands go to their owner only; open
// hands are broadcast to the whole room.
type Hand struct {
	Player string      `json:"player"`
	Seat   int         `json:"seat"`
	Cards  []deck.Card `json:"cards"`
	Open   bool        `json:"open"`
}

// Round announces the phase or contract now being played.
type Round struct {
	Phase    Phase  `json:"phase"`
	Contract string `json:"contract,omitempty"`
	Label    string `json:"text"`
	Number   int    `json:"number"`
}

// Turn names the seat that must act.
type Turn struct {
	Player string `json:"player"`
	Seat   int    `json:"seat"`
}

// CardPlayed is broadcast for every accepted play.
type CardPlayed struct {
	Player string    `json:"player"`
	Seat   int       `json:"seat"`
	Card   deck.Card `json:"card"`
}

// TrickWon reports the resolution of a complete trick.
type TrickWon struct {
	Player string      `json:"player"`
	Seat   int         `json:"seat"`
	Points int         `json:"points"`
	Trick  int         `json:"trick"`
	Cards  []deck.Card `json:"cards"`
}

// TableCleared signals the trick area is empty again.
type TableCleared struct{}

// Score is one line of a scoreboard.
type Score struct {
	ID     PlayerID `json:"id"`
	Name   string   `json:"name"`
	Seat   int      `json:"seat"`
	Points int      `json:"points"`
}

// Scores is a scoreboard snapshot in seat order.
type Scores struct {
	Scores []Score `json:"scores"`
}

// TrumpPrompt asks the caller to choose trump.
type TrumpPrompt struct {
	Caller string `json:"caller"`
	Seat   int    `json:"seat"`
}

// TrumpChosen announces the trump suit for the round.
type TrumpChosen struct {
	Suit   deck.Suit `json:"suit"`
	Caller string    `json:"caller"`
}

// SolitaireFinished announces a player emptied their hand.
type SolitaireFinished struct {
	Player   string `json:"player"`
	Seat     int    `json:"seat"`
	Position int    `json:"position"`
	Round    int    `json:"round"`
}

// GameOver carries the final scoreboard, best score first.
type GameOver struct {
	Scores []Score `json:"scores"`
}

// ChatMessage is a chat line re-broadcast to the room.
type ChatMessage struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Snapshot is the full state visible to one member, sent on reconnect and
// to spectators joining mid-game.
type Snapshot struct {
	Room        string       `json:"room"`
	Phase       Phase        `json:"phase"`
	Contract    string       `json:"contract,omitempty"`
	Label       string       `json:"text"`
	Round       int          `json:"round"`
	Seat        int          `json:"seat"`
	Spectator   bool         `json:"spectator"`
	Hand        []deck.Card  `json:"hand,omitempty"`
	OpenHands   []Hand       `json:"open_hands,omitempty"`
	Table       []CardPlayed `json:"table"`
	Turn        *Turn        `json:"turn,omitempty"`
	Trump       *deck.Suit   `json:"trump,omitempty"`
	TrumpCaller *Turn        `json:"trump_caller,omitempty"`
	Finished    []string     `json:"finished,omitempty"`
	Tricks      int          `json:"tricks"`
	Scores      []Score      `json:"scores"`
	Seats       []SeatInfo   `json:"seats"`
}

// Rejected tells the acting connection why its intent was refused.
type Rejected struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (Joined) EventType() EventType            { return EventTypeJoined }
func (Membership) EventType() EventType        { return EventTypeMembership }
func (Hand) EventType() EventType              { return EventTypeHand }
func (Round) EventType() EventType             { return EventTypeRound }
func (Turn) EventType() EventType              { return EventTypeTurn }
func (CardPlayed) EventType() EventType        { return EventTypeCardPlayed }
func (TrickWon) EventType() EventType          { return EventTypeTrickWon }
func (TableCleared) EventType() EventType      { return EventTypeTableCleared }
func (Scores) EventType() EventType            { return EventTypeScores }
func (TrumpPrompt) EventType() EventType       { return EventTypeTrumpPrompt }
func (TrumpChosen) EventType() EventType       { return EventTypeTrumpChosen }
func (SolitaireFinished) EventType() EventType { return EventTypeSolitaireFinished }
func (GameOver) EventType() EventType          { return EventTypeGameOver }
func (ChatMessage) EventType() EventType       { return EventTypeChat }
func (Snapshot) EventType() EventType          { return EventTypeSnapshot }
func (Rejected) EventType() EventType          { return EventTypeRejected }
