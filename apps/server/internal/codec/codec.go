package codec

import (
	"sweeper-lite/apps/server/internal/players"
	"sweeper-lite/board"
	"sweeper-lite/wire"

	"github.com/samber/lo"
)

// FullBoardOf snapshots the visible board.
func FullBoardOf(b *board.Board) wire.FullBoard {
	return wire.FullBoard{
		Width:   b.Width(),
		Height:  b.Height(),
		Mines:   b.Mines(),
		State:   wire.StateOf(b.State()),
		Entries: b.VisibleLayout(),
		Owners:  b.Owners(),
	}
}

// SparseUpdateOf reports the current visible entry and owner of each changed cell.
func SparseUpdateOf(b *board.Board, changed []board.Coord) wire.SparseUpdate {
	return wire.SparseUpdate{
		Cells: lo.Map(changed, func(c board.Coord, _ int) wire.CellUpdate {
			return wire.CellUpdate{Coord: c, Entry: b.Visible(c), Player: b.Owner(c)}
		}),
	}
}

// PlayerInfoOf describes p. self selects the YourPlayerInfo tag.
func PlayerInfoOf(p *players.Player, self bool) wire.PlayerInfo {
	return wire.PlayerInfo{ID: p.ID, Color: p.Color, Name: p.Name, Self: self}
}

// LossOf builds the loss notice. hitMines are the mine cells the losing
// action uncovered.
func LossOf(b *board.Board, loser uint8, hitMines []board.Coord) wire.BoardLoss {
	return wire.BoardLoss{
		Loser:      loser,
		HitMines:   hitMines,
		WrongFlags: b.WrongFlags(),
	}
}

func NextBoardConfigOf(cfg board.Config) wire.NextBoardConfig {
	return wire.NextBoardConfig{Width: cfg.Width, Height: cfg.Height, Mines: cfg.Mines}
}
