package room

import (
	"log"

	"sweeper-lite/apps/server/internal/codec"
	"sweeper-lite/apps/server/internal/players"
	"sweeper-lite/board"
	"sweeper-lite/replay"
	"sweeper-lite/wire"
)

func (r *Room) handleEvent(e Event) {
	switch e.Type {
	case EventReveal:
		r.handleReveal(e, replay.StepReveal)
	case EventChord:
		r.handleReveal(e, replay.StepChord)
	case EventToggleFlag:
		r.handleToggleFlag(e)
	case EventNewBoard:
		r.handleNewBoard(e)
	case EventReconfigure:
		r.handleReconfigure(e)
	case EventJoined:
		r.handleJoined(e)
	case EventStatus:
		if e.Reply != nil {
			e.Reply <- r.status()
		}
	default:
		log.Printf("[Room] Unknown event type %d", e.Type)
	}
}

func (r *Room) handleReveal(e Event, kind replay.StepKind) {
	if !r.board.InBounds(e.Coord) {
		return
	}
	p := r.touch(e.Addr)

	before := r.board.State()
	var changed []board.Coord
	if kind == replay.StepChord {
		changed = r.board.Chord(e.Coord, p.ID)
	} else {
		changed = r.board.Reveal(e.Coord, p.ID)
	}
	if len(changed) == 0 {
		return
	}
	r.tape.Record(kind, e.Coord, p.ID)
	r.participants[e.Addr] = struct{}{}
	r.broadcast(codec.SparseUpdateOf(r.board, changed))

	after := r.board.State()
	if after == before {
		return
	}
	switch after {
	case board.StateLost:
		loss := codec.LossOf(r.board, p.ID, changed)
		r.finish(loss)
		log.Printf("[Room] Board lost by player %d (%d mines hit, %d wrong flags)", p.ID, len(loss.HitMines), len(loss.WrongFlags))
		r.dispatchGameEnd(p, e.Addr)
	case board.StateWon:
		r.finish(wire.BoardWin{})
		log.Printf("[Room] Board won, cleared %d cells", r.board.Cleared())
		r.dispatchGameEnd(nil, "")
	}
}

func (r *Room) handleToggleFlag(e Event) {
	if !r.board.InBounds(e.Coord) {
		return
	}
	p := r.touch(e.Addr)
	if !r.board.ToggleFlag(e.Coord, p.ID) {
		return
	}
	r.tape.Record(replay.StepFlag, e.Coord, p.ID)
	r.participants[e.Addr] = struct{}{}
	r.broadcast(codec.SparseUpdateOf(r.board, []board.Coord{e.Coord}))
}

func (r *Room) handleNewBoard(e Event) {
	if e.Addr != "" {
		r.touch(e.Addr)
	}
	if !r.board.State().Finished() {
		return
	}
	if r.now().Sub(r.finishedAt) < MinNewBoardDelay {
		return
	}
	if err := r.resetBoard(); err != nil {
		log.Printf("[Room] New board failed: %v", err)
		return
	}
	log.Printf("[Room] New board %s (%dx%d, mines=%d)", r.gameID, r.pending.Width, r.pending.Height, r.pending.Mines)
	r.broadcast(codec.FullBoardOf(r.board))
}

func (r *Room) handleReconfigure(e Event) {
	if !board.ValidateConfig(e.Width, e.Height, e.Mines) {
		log.Printf("[Room] Rejected board config %dx%d with %d mines from %s", e.Width, e.Height, e.Mines, players.Fingerprint(e.Addr))
		return
	}
	r.touch(e.Addr)
	r.pending.Width = e.Width
	r.pending.Height = e.Height
	r.pending.Mines = e.Mines
	r.broadcast(codec.NextBoardConfigOf(r.pending))
}

func (r *Room) handleJoined(e Event) {
	out := e.Outbound
	if out == nil {
		return
	}
	p, created := r.registry.Ensure(e.Addr)
	if created {
		log.Printf("[Room] Player %d (%s) registered as %s", p.ID, players.Fingerprint(e.Addr), p.Name)
	}

	out.Send(codec.PlayerInfoOf(p, true).Encode())
	for _, other := range r.registry.Players() {
		if other != p {
			out.Send(codec.PlayerInfoOf(other, false).Encode())
		}
	}
	out.Send(codec.FullBoardOf(r.board).Encode())
	if r.terminal != nil {
		out.Send(r.terminal.Encode())
	}
	out.Send(codec.NextBoardConfigOf(r.pending).Encode())

	r.registry.Broadcast(codec.PlayerInfoOf(p, false).Encode())
	if out.Closed() {
		return
	}
	p.Attach(out)
}

// touch marks addr active, registering it first when unseen so every
// attribution names a live player.
func (r *Room) touch(addr string) *players.Player {
	p, created := r.registry.Ensure(addr)
	if created {
		log.Printf("[Room] Player %d (%s) registered as %s", p.ID, players.Fingerprint(addr), p.Name)
		r.registry.Broadcast(codec.PlayerInfoOf(p, false).Encode())
	}
	return p
}

func (r *Room) finish(notice wire.ServerPacket) {
	r.terminal = notice
	r.finishedAt = r.now()
	r.tape.FinalState = r.board.State().String()
	r.broadcast(notice)
}

func (r *Room) broadcast(p wire.ServerPacket) {
	r.registry.Broadcast(p.Encode())
}
