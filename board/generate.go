package board

import "math/rand"

// sampleMines picks mine positions for a board whose first click is safe.
// When there is room, the click and all of its neighbours stay clear so the
// first reveal opens a cascade; otherwise only the click itself is excluded.
func sampleMines(cfg Config, first Coord, rng *rand.Rand) []Coord {
	cells := cfg.Cells()
	if cfg.Mines >= cells {
		mines := make([]Coord, 0, cells)
		for r := uint16(0); r < cfg.Height; r++ {
			for c := uint16(0); c < cfg.Width; c++ {
				mines = append(mines, Coord{Row: r, Col: c})
			}
		}
		return mines
	}

	safeMargin := uint32(len(Neighbors(first, cfg.Width, cfg.Height))) + 1
	keepNeighborsClear := cfg.Mines+safeMargin <= cells

	seen := make(map[uint32]struct{}, cfg.Mines)
	mines := make([]Coord, 0, cfg.Mines)
	for uint32(len(mines)) < cfg.Mines {
		index := uint32(rng.Int63n(int64(cells)))
		c := Coord{Row: uint16(index / uint32(cfg.Width)), Col: uint16(index % uint32(cfg.Width))}
		if keepNeighborsClear {
			if Adjacent(c, first) {
				continue
			}
		} else if c == first {
			continue
		}
		if _, dup := seen[index]; dup {
			continue
		}
		seen[index] = struct{}{}
		mines = append(mines, c)
	}
	return mines
}

// buildLayout produces the true layout for the given mine positions. Counts
// are summed over a zero-padded grid so edge cells need no bounds checks.
func buildLayout(width, height uint16, mines []Coord) []Entry {
	w, h := int(width), int(height)
	padded := make([]uint8, (w+2)*(h+2))
	layout := make([]Entry, w*h)
	for _, m := range mines {
		padded[(int(m.Row)+1)*(w+2)+int(m.Col)+1] = 1
		layout[int(m.Row)*w+int(m.Col)] = Mine()
	}

	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			if layout[r*w+c].IsMine() {
				continue
			}
			var count uint8
			for k := r; k < r+3; k++ {
				for l := c; l < c+3; l++ {
					count += padded[k*(w+2)+l]
				}
			}
			layout[r*w+c] = Revealed(count)
		}
	}
	return layout
}
