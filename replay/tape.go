package replay

import "sweeper-lite/board"

// NewTape starts an empty tape for b. The board's effective seed is captured
// so the mine layout can be regenerated.
func NewTape(gameID string, b *board.Board) *Tape {
	cfg := b.Config()
	return &Tape{
		TapeVersion: TapeVersion,
		GameID:      gameID,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Mines:       cfg.Mines,
		Seed:        cfg.Seed,
	}
}

func (t *Tape) Record(kind StepKind, c board.Coord, player uint8) {
	if t == nil {
		return
	}
	t.Steps = append(t.Steps, Step{Kind: kind, Row: c.Row, Col: c.Col, Player: player})
}

// Clone returns a deep copy safe to hand to another goroutine.
func (t *Tape) Clone() *Tape {
	if t == nil {
		return nil
	}
	out := *t
	out.Steps = append([]Step(nil), t.Steps...)
	return &out
}
