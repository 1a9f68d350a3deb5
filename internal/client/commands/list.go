package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lox/withoutx/internal/client"
	"github.com/lox/withoutx/internal/game"
)

// ListRoomsCommand lists the rooms on the server
type ListRoomsCommand struct{}

func (cmd *ListRoomsCommand) Run(flags *GlobalFlags) error {
	cfg, err := LoadConfig(flags)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return PrintRooms(ctx, os.Stdout, cfg.Server.URL)
}

// PrintRooms writes the room listing of the server to w.
func PrintRooms(ctx context.Context, w io.Writer, serverURL string) error {
	rooms, err := client.ListRooms(ctx, serverURL)
	if err != nil {
		return err
	}

	if len(rooms) == 0 {
		_, err := fmt.Fprintln(w, "No rooms")
		return err
	}
	_, _ = fmt.Fprintln(w, "Rooms:")
	for _, r := range rooms {
		label := r.Label
		if label == "" {
			label = r.Phase.String()
		}
		_, _ = fmt.Fprintf(w, "  %s: %d/4 seated, %d watching, %d online, %s\n",
			r.Code, r.Seated, game.NumSeats, r.Spectators, r.Connected, label)
	}
	return nil
}
