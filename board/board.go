package board

import "math/rand"

// Board is a shared minesweeper board. It is not safe for concurrent use; a
// single owner serialises every mutation.
type Board struct {
	cfg     Config
	seed    int64
	state   State
	cleared uint32 // revealed non-mine cells

	// nil until the first reveal. Row-major, like visible and owners.
	layout  []Entry
	visible []Entry
	owners  []uint8
}

// New creates an uninitialized board. Mines are placed on the first reveal.
func New(cfg Config) (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cells := int(cfg.Cells())
	return &Board{
		cfg:     cfg,
		seed:    cfg.seedOrNow(),
		state:   StateUninitialized,
		visible: make([]Entry, cells),
		owners:  make([]uint8, cells),
	}, nil
}

func (b *Board) Width() uint16 { return b.cfg.Width }

func (b *Board) Height() uint16 { return b.cfg.Height }

func (b *Board) Mines() uint32 { return b.cfg.Mines }

func (b *Board) State() State { return b.state }

// Cleared is the number of revealed non-mine cells.
func (b *Board) Cleared() uint32 { return b.cleared }

// Seed is the RNG seed used (or to be used) for mine placement.
func (b *Board) Seed() int64 { return b.seed }

// Config returns the board's config with the effective seed filled in.
func (b *Board) Config() Config {
	cfg := b.cfg
	cfg.Seed = b.seed
	return cfg
}

func (b *Board) InBounds(c Coord) bool {
	return c.Row < b.cfg.Height && c.Col < b.cfg.Width
}

func (b *Board) index(c Coord) int {
	return int(c.Row)*int(b.cfg.Width) + int(c.Col)
}

// Visible returns the client-visible entry at c.
func (b *Board) Visible(c Coord) Entry {
	return b.visible[b.index(c)]
}

// Owner returns the id of the player credited with the cell at c.
func (b *Board) Owner(c Coord) uint8 {
	return b.owners[b.index(c)]
}

// True returns the generated entry at c; ok is false before the first reveal.
func (b *Board) True(c Coord) (Entry, bool) {
	if b.layout == nil {
		return Entry{}, false
	}
	return b.layout[b.index(c)], true
}

// VisibleLayout returns a row-major copy of the visible layout.
func (b *Board) VisibleLayout() []Entry {
	return append([]Entry(nil), b.visible...)
}

// Owners returns a row-major copy of the attribution grid.
func (b *Board) Owners() []uint8 {
	return append([]uint8(nil), b.owners...)
}

func (b *Board) winThreshold() uint32 {
	return b.cfg.Cells() - b.cfg.Mines
}

func (b *Board) generate(first Coord) {
	rng := rand.New(rand.NewSource(b.seed))
	mines := sampleMines(b.cfg, first, rng)
	b.layout = buildLayout(b.cfg.Width, b.cfg.Height, mines)
	b.state = StateOngoing
}

// Reveal uncovers c for actor and returns every coordinate whose visible entry
// changed: the clicked cell first, then cascade cells in discovery order.
// Only the clicked cell is credited to actor; cascade cells go to SystemID.
// Hitting a mine loses the board and returns just that coordinate.
func (b *Board) Reveal(c Coord, actor uint8) []Coord {
	if !b.InBounds(c) {
		return nil
	}
	switch b.state {
	case StateUninitialized:
		b.generate(c)
		return b.revealOngoing(c, actor)
	case StateOngoing:
		return b.revealOngoing(c, actor)
	default:
		return nil
	}
}

func (b *Board) revealOngoing(c Coord, actor uint8) []Coord {
	idx := b.index(c)
	if !b.visible[idx].IsHidden() {
		return nil
	}

	b.visible[idx] = b.layout[idx]
	b.owners[idx] = actor
	if b.visible[idx].IsMine() {
		b.state = StateLost
		return []Coord{c}
	}
	b.cleared++

	changed := []Coord{c}
	pending := []Coord{c}
	for len(pending) > 0 {
		cur := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if e := b.visible[b.index(cur)]; !e.IsRevealed() || e.Count != 0 {
			continue
		}
		for _, n := range Neighbors(cur, b.cfg.Width, b.cfg.Height) {
			ni := b.index(n)
			if !b.visible[ni].IsHidden() {
				continue
			}
			// a zero cell never borders a mine
			b.visible[ni] = b.layout[ni]
			b.owners[ni] = SystemID
			b.cleared++
			pending = append(pending, n)
			changed = append(changed, n)
		}
	}

	if b.cleared == b.winThreshold() {
		b.state = StateWon
	}
	return changed
}

// Chord reveals every unflagged hidden neighbour of a revealed number whose
// flag count matches it. If any mine is uncovered the result is only the mine
// coordinates, which is what loss reporting needs.
func (b *Board) Chord(c Coord, actor uint8) []Coord {
	if !b.InBounds(c) || b.state != StateOngoing {
		return nil
	}
	target := b.Visible(c)
	if !target.IsRevealed() {
		return nil
	}

	neighbors := Neighbors(c, b.cfg.Width, b.cfg.Height)
	flags := 0
	for _, n := range neighbors {
		if b.Visible(n).IsFlagged() {
			flags++
		}
	}
	if flags != int(target.Count) {
		return nil
	}

	var changed, mines []Coord
	for _, n := range neighbors {
		e := b.Visible(n)
		if !e.IsHidden() || e.Flagged {
			continue
		}
		for _, rc := range b.Reveal(n, actor) {
			if b.Visible(rc).IsMine() {
				mines = append(mines, rc)
			}
			changed = append(changed, rc)
		}
	}
	if len(mines) > 0 {
		return mines
	}
	return changed
}

// ToggleFlag flips the flag on a hidden cell. Flagging credits actor,
// unflagging clears the credit. It reports whether anything changed.
func (b *Board) ToggleFlag(c Coord, actor uint8) bool {
	if !b.InBounds(c) || b.state.Finished() {
		return false
	}
	idx := b.index(c)
	e := b.visible[idx]
	if !e.IsHidden() {
		return false
	}
	if e.Flagged {
		b.visible[idx] = Hidden(false)
		b.owners[idx] = SystemID
	} else {
		b.visible[idx] = Hidden(true)
		b.owners[idx] = actor
	}
	return true
}

// WrongFlags lists flagged cells that are not mines, in row-major order.
func (b *Board) WrongFlags() []Coord {
	if b.layout == nil {
		return nil
	}
	var out []Coord
	for r := uint16(0); r < b.cfg.Height; r++ {
		for col := uint16(0); col < b.cfg.Width; col++ {
			c := Coord{Row: r, Col: col}
			idx := b.index(c)
			if b.visible[idx].IsFlagged() && !b.layout[idx].IsMine() {
				out = append(out, c)
			}
		}
	}
	return out
}
