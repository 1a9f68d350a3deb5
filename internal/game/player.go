package game

// PlayerID is the stable identity of a player. It survives reconnects.
type PlayerID string

// Player is a member of a room: seated (Seat 0..3) or a spectator (Seat -1).
// The connection handle is replaced on reconnect and nil while stale.
type Player struct {
	ID        PlayerID
	Name      string
	Seat      int
	Spectator bool
	conn      Conn
}

// Connected reports whether the player has a live connection.
func (p *Player) Connected() bool {
	return p.conn != nil
}

func (p *Player) send(ev Event) {
	if p.conn != nil {
		p.conn.Send(ev)
	}
}
