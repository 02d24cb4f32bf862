package room

import (
	"sweeper-lite/apps/server/internal/players"

	"github.com/samber/lo"
)

// BoardShape is a width/height/mine-count triple.
type BoardShape struct {
	Width  uint16 `json:"width"`
	Height uint16 `json:"height"`
	Mines  uint32 `json:"mines"`
}

// Status is a point-in-time view of the room for diagnostics.
type Status struct {
	GameID      string     `json:"game_id"`
	Board       BoardShape `json:"board"`
	State       string     `json:"state"`
	Cleared     uint32     `json:"cleared"`
	Players     int        `json:"players"`
	Connections int        `json:"connections"`
	Pending     BoardShape `json:"pending"`
	Queued      int        `json:"queued"`
}

func (r *Room) status() Status {
	all := r.registry.Players()
	return Status{
		GameID:      r.gameID,
		Board:       BoardShape{Width: r.board.Width(), Height: r.board.Height(), Mines: r.board.Mines()},
		State:       r.board.State().String(),
		Cleared:     r.board.Cleared(),
		Players:     len(all),
		Connections: lo.SumBy(all, func(p *players.Player) int { return p.Connections() }),
		Pending:     BoardShape{Width: r.pending.Width, Height: r.pending.Height, Mines: r.pending.Mines},
		Queued:      r.mailbox.len(),
	}
}
