package board

import "fmt"

// SystemID attributes a cell to nobody (cascade reveals, cleared flags).
const SystemID uint8 = 0

// MaxDimension bounds width and height so boards stay renderable by clients.
const MaxDimension uint16 = 100

// State 棋盘生命周期
type State byte

const (
	StateUninitialized State = 0
	StateOngoing       State = 1
	StateLost          State = 2
	StateWon           State = 3
)

var StateDictionary = map[State]string{
	StateUninitialized: "uninitialized",
	StateOngoing:       "ongoing",
	StateLost:          "lost",
	StateWon:           "won",
}

func (s State) String() string {
	if name, ok := StateDictionary[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", byte(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for state, name := range StateDictionary {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown board state %q", text)
}

// Finished reports whether the board is in a terminal state.
func (s State) Finished() bool {
	return s == StateLost || s == StateWon
}

// Coord is a zero-indexed (row, col) position.
type Coord struct {
	Row uint16
	Col uint16
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// EntryKind 格子类型
type EntryKind byte

const (
	EntryHidden   EntryKind = 0
	EntryMine     EntryKind = 1
	EntryRevealed EntryKind = 2
)

// Entry is one cell value. Flagged only applies to hidden cells and Count
// only to revealed ones.
type Entry struct {
	Kind    EntryKind
	Flagged bool
	Count   uint8
}

func Hidden(flagged bool) Entry { return Entry{Kind: EntryHidden, Flagged: flagged} }

func Mine() Entry { return Entry{Kind: EntryMine} }

func Revealed(count uint8) Entry { return Entry{Kind: EntryRevealed, Count: count} }

func (e Entry) IsHidden() bool { return e.Kind == EntryHidden }

func (e Entry) IsFlagged() bool { return e.Kind == EntryHidden && e.Flagged }

func (e Entry) IsMine() bool { return e.Kind == EntryMine }

func (e Entry) IsRevealed() bool { return e.Kind == EntryRevealed }

func (e Entry) String() string {
	switch e.Kind {
	case EntryHidden:
		if e.Flagged {
			return "flag"
		}
		return "hidden"
	case EntryMine:
		return "mine"
	default:
		return fmt.Sprintf("%d", e.Count)
	}
}
