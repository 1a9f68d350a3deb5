package game

import "strings"

// Join seats a new identity, adds it as a spectator once all seats are
// taken, or rebinds the connection of a known identity. Reconnecting never
// touches hands, scores, turn or phase. Filling the fourth seat for the first
// time deals the first contract.
func (r *Room) Join(id PlayerID, name string, conn Conn) error {
	if id == "" {
		return ErrMissingIdentity
	}
	if name == "" {
		name = string(id)
	}

	if p := r.find(id); p != nil {
		p.conn = conn
		r.logger.Info("Player reconnected", "player", p.Name, "seat", p.Seat, "spectator", p.Spectator)
		p.send(Joined{Room: r.code, ID: p.ID, Name: p.Name, Seat: p.Seat, Spectator: p.Spectator, Reconnect: true})
		p.send(r.snapshot(p))
		r.broadcast(r.membership())
		return nil
	}

	p := &Player{ID: id, Name: name, Seat: -1, conn: conn}
	if len(r.seats) < NumSeats {
		p.Seat = len(r.seats)
		r.seats = append(r.seats, p)
		r.scores[id] = 0
		r.logger.Info("Player seated", "player", name, "seat", p.Seat, "seated", len(r.seats))
	} else {
		p.Spectator = true
		r.spectators = append(r.spectators, p)
		r.logger.Info("Spectator joined", "player", name, "spectators", len(r.spectators))
	}

	p.send(Joined{Room: r.code, ID: p.ID, Name: p.Name, Seat: p.Seat, Spectator: p.Spectator})
	if p.Spectator && r.started {
		p.send(r.snapshot(p))
	}
	r.broadcast(r.membership())

	if len(r.seats) == NumSeats && !r.started {
		r.started = true
		r.logger.Info("Room full, starting game")
		r.startContract(NoHearts)
	}
	r.checkInvariants()
	return nil
}

// Disconnect marks the player's connection stale. Seats and scores persist so
// the identity can reconnect; spectators are dropped. conn guards against a
// late disconnect from a connection that has already been replaced; pass nil
// to disconnect unconditionally.
func (r *Room) Disconnect(id PlayerID, conn Conn) error {
	p := r.find(id)
	if p == nil {
		return ErrUnknownPlayer
	}
	if conn != nil && p.conn != conn {
		r.logger.Debug("Ignoring disconnect of replaced connection", "player", p.Name)
		return nil
	}

	p.conn = nil
	if p.Spectator {
		for i, s := range r.spectators {
			if s == p {
				r.spectators = append(r.spectators[:i], r.spectators[i+1:]...)
				break
			}
		}
		r.logger.Info("Spectator left", "player", p.Name, "spectators", len(r.spectators))
	} else {
		r.logger.Info("Player disconnected", "player", p.Name, "seat", p.Seat)
	}

	r.broadcast(r.membership())
	return nil
}

// Chat re-broadcasts text verbatim with the sender's name. Spectators may
// chat, including after the game is over.
func (r *Room) Chat(id PlayerID, text string) error {
	p := r.find(id)
	if p == nil {
		return ErrUnknownPlayer
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	r.broadcast(ChatMessage{Name: p.Name, Text: text})
	return nil
}
