// Package wire encodes the little-endian binary frames exchanged with
// clients. The first byte of every frame is a message tag; the codec holds no
// state and performs no game logic.
package wire

import (
	"encoding/binary"

	"sweeper-lite/board"
)

// Client -> server tags.
const (
	TagReveal      byte = 0
	TagChord       byte = 1
	TagToggleFlag  byte = 2
	TagNewBoard    byte = 3
	TagReconfigure byte = 4
)

// Server -> client tags.
const (
	TagFullBoard       byte = 0
	TagSparseUpdate    byte = 1
	TagPlayerInfo      byte = 2
	TagYourPlayerInfo  byte = 3
	TagBoardLoss       byte = 4
	TagBoardWin        byte = 5
	TagNextBoardConfig byte = 6
)

// Entry bytes. Values 0..9 are revealed adjacent-mine counts.
const (
	EntryMaxCount byte = 9
	EntryHidden   byte = 253
	EntryFlagged  byte = 254
	EntryMine     byte = 255
)

// BoardState is the state byte of a full-board frame. Uninitialized boards
// are reported as ongoing.
type BoardState byte

const (
	StateOngoing BoardState = 1
	StateLost    BoardState = 2
	StateWon     BoardState = 3
)

var le = binary.LittleEndian

func EncodeEntry(e board.Entry) byte {
	switch e.Kind {
	case board.EntryHidden:
		if e.Flagged {
			return EntryFlagged
		}
		return EntryHidden
	case board.EntryMine:
		return EntryMine
	default:
		return e.Count
	}
}

func DecodeEntry(b byte) (board.Entry, bool) {
	switch {
	case b <= EntryMaxCount:
		return board.Revealed(b), true
	case b == EntryHidden:
		return board.Hidden(false), true
	case b == EntryFlagged:
		return board.Hidden(true), true
	case b == EntryMine:
		return board.Mine(), true
	default:
		return board.Entry{}, false
	}
}

// StateOf maps an engine state onto its wire byte.
func StateOf(s board.State) BoardState {
	switch s {
	case board.StateLost:
		return StateLost
	case board.StateWon:
		return StateWon
	default:
		return StateOngoing
	}
}

func appendCoord(buf []byte, c board.Coord) []byte {
	buf = le.AppendUint16(buf, c.Row)
	return le.AppendUint16(buf, c.Col)
}

func readCoord(b []byte) board.Coord {
	return board.Coord{Row: le.Uint16(b[0:2]), Col: le.Uint16(b[2:4])}
}
