package board

// Neighbors returns the 8-connected neighbours of c that lie on a width x height
// board, in row-major order. A 1x1 board has none.
func Neighbors(c Coord, width, height uint16) []Coord {
	out := make([]Coord, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		r := int(c.Row) + dr
		if r < 0 || r >= int(height) {
			continue
		}
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			col := int(c.Col) + dc
			if col < 0 || col >= int(width) {
				continue
			}
			out = append(out, Coord{Row: uint16(r), Col: uint16(col)})
		}
	}
	return out
}

// Adjacent reports whether a and b are the same cell or touch, diagonals included.
func Adjacent(a, b Coord) bool {
	return absDiff(a.Row, b.Row) <= 1 && absDiff(a.Col, b.Col) <= 1
}

func absDiff(a, b uint16) uint16 {
	if a >= b {
		return a - b
	}
	return b - a
}
