package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lox/withoutx/internal/deck"
)

// Sender is the part of the websocket client the TUI drives.
type Sender interface {
	CreateRoom(room string) error
	JoinRoom(room string) error
	Play(card deck.Card) error
	SetTrump(suit deck.Suit) error
	FinishSolitaire() error
	Chat(text string) error
	Reconnect(ctx context.Context) error
}

// CommandKind enumerates what a line of input asks for.
type CommandKind int

const (
	CmdNone CommandKind = iota
	CmdCreate
	CmdJoin
	CmdPlay
	CmdTrump
	CmdDone
	CmdChat
	CmdReconnect
	CmdHelp
	CmdQuit
)

// Command is a parsed input line.
type Command struct {
	Kind CommandKind
	Room string
	Card deck.Card
	Suit deck.Suit
	Text string
}

var errUsage = errors.New("usage")

// HelpLines documents the input syntax.
var HelpLines = []string{
	"Commands:",
	"  /create [room]   create or enter a room",
	"  /join <room>     join an existing room",
	"  <card>           play a card, e.g. 10h, Qs, ♣A",
	"  /trump <suit>    choose trump (s, h, d, c)",
	"  /done            report an empty hand in solitaire",
	"  /reconnect       rejoin the last room",
	"  /quit            leave",
	"  anything else is sent as chat",
}

// ParseCommand turns a line of input into a Command. A bare card plays it;
// any other text without a leading slash is chat.
func ParseCommand(input string) (Command, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Command{Kind: CmdNone}, nil
	}

	if !strings.HasPrefix(input, "/") {
		if card, err := deck.ParseCard(input); err == nil {
			return Command{Kind: CmdPlay, Card: card}, nil
		}
		return Command{Kind: CmdChat, Text: input}, nil
	}

	fields := strings.Fields(input)
	name := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	args := fields[1:]

	switch name {
	case "create", "new":
		cmd := Command{Kind: CmdCreate}
		if len(args) > 0 {
			cmd.Room = args[0]
		}
		return cmd, nil
	case "join", "j":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("%w: /join <room>", errUsage)
		}
		return Command{Kind: CmdJoin, Room: args[0]}, nil
	case "play", "p":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("%w: /play <card>", errUsage)
		}
		card, err := deck.ParseCard(args[0])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdPlay, Card: card}, nil
	case "trump", "t":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("%w: /trump <s|h|d|c>", errUsage)
		}
		suit, err := deck.ParseSuit(args[0])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdTrump, Suit: suit}, nil
	case "done", "finish":
		return Command{Kind: CmdDone}, nil
	case "say":
		text := strings.TrimSpace(strings.TrimPrefix(input, fields[0]))
		if text == "" {
			return Command{}, fmt.Errorf("%w: /say <text>", errUsage)
		}
		return Command{Kind: CmdChat, Text: text}, nil
	case "reconnect":
		return Command{Kind: CmdReconnect}, nil
	case "help", "h", "?":
		return Command{Kind: CmdHelp}, nil
	case "quit", "q", "exit":
		return Command{Kind: CmdQuit}, nil
	}
	return Command{}, fmt.Errorf("unknown command /%s", name)
}

// Execute sends cmd through s. Local commands (help, quit, none) are no-ops.
func Execute(ctx context.Context, s Sender, cmd Command) error {
	switch cmd.Kind {
	case CmdCreate:
		return s.CreateRoom(cmd.Room)
	case CmdJoin:
		return s.JoinRoom(cmd.Room)
	case CmdPlay:
		return s.Play(cmd.Card)
	case CmdTrump:
		return s.SetTrump(cmd.Suit)
	case CmdDone:
		return s.FinishSolitaire()
	case CmdChat:
		return s.Chat(cmd.Text)
	case CmdReconnect:
		return s.Reconnect(ctx)
	}
	return nil
}
