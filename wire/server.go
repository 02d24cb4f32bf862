package wire

import (
	"unicode/utf8"

	"sweeper-lite/board"
)

// ServerPacket is a frame sent to clients.
type ServerPacket interface {
	Encode() []byte
}

// FullBoard resets the client to the given board. Entries and Owners are
// row-major and hold Width*Height values each.
type FullBoard struct {
	Width   uint16
	Height  uint16
	Mines   uint32
	State   BoardState
	Entries []board.Entry
	Owners  []uint8
}

// CellUpdate is one changed cell and the player credited with it.
type CellUpdate struct {
	Coord  board.Coord
	Entry  board.Entry
	Player uint8
}

type SparseUpdate struct {
	Cells []CellUpdate
}

// PlayerInfo announces a player. Self marks the connection's own identity.
type PlayerInfo struct {
	ID    uint8
	Color [4]byte
	Name  string
	Self  bool
}

// BoardLoss reports the losing player, the mines they uncovered and every
// flag that was not on a mine.
type BoardLoss struct {
	Loser      uint8
	HitMines   []board.Coord
	WrongFlags []board.Coord
}

type BoardWin struct{}

type NextBoardConfig struct {
	Width  uint16
	Height uint16
	Mines  uint32
}

func (p FullBoard) Encode() []byte {
	cells := int(p.Width) * int(p.Height)
	buf := make([]byte, 0, 10+2*cells)
	buf = append(buf, TagFullBoard)
	buf = le.AppendUint16(buf, p.Width)
	buf = le.AppendUint16(buf, p.Height)
	buf = le.AppendUint32(buf, p.Mines)
	buf = append(buf, byte(p.State))
	for i := 0; i < cells; i++ {
		var e board.Entry
		if i < len(p.Entries) {
			e = p.Entries[i]
		}
		buf = append(buf, EncodeEntry(e))
	}
	for i := 0; i < cells; i++ {
		var id uint8
		if i < len(p.Owners) {
			id = p.Owners[i]
		}
		buf = append(buf, id)
	}
	return buf
}

func (p SparseUpdate) Encode() []byte {
	buf := make([]byte, 0, 1+6*len(p.Cells))
	buf = append(buf, TagSparseUpdate)
	for _, u := range p.Cells {
		buf = appendCoord(buf, u.Coord)
		buf = append(buf, EncodeEntry(u.Entry), u.Player)
	}
	return buf
}

func (p PlayerInfo) Encode() []byte {
	tag := TagPlayerInfo
	if p.Self {
		tag = TagYourPlayerInfo
	}
	buf := make([]byte, 0, 6+len(p.Name))
	buf = append(buf, tag, p.ID)
	buf = append(buf, p.Color[:]...)
	return append(buf, p.Name...)
}

func (p BoardLoss) Encode() []byte {
	// a chord touches at most 8 cells, so the count byte never saturates in play
	mines := p.HitMines
	if len(mines) > 255 {
		mines = mines[:255]
	}
	buf := make([]byte, 0, 3+4*(len(mines)+len(p.WrongFlags)))
	buf = append(buf, TagBoardLoss, p.Loser, byte(len(mines)))
	for _, c := range mines {
		buf = appendCoord(buf, c)
	}
	for _, c := range p.WrongFlags {
		buf = appendCoord(buf, c)
	}
	return buf
}

func (BoardWin) Encode() []byte {
	return []byte{TagBoardWin}
}

func (p NextBoardConfig) Encode() []byte {
	buf := make([]byte, 0, 9)
	buf = append(buf, TagNextBoardConfig)
	buf = le.AppendUint16(buf, p.Width)
	buf = le.AppendUint16(buf, p.Height)
	return le.AppendUint32(buf, p.Mines)
}

// DecodeServer parses one server frame. Clients and tests use it; the server
// itself only encodes.
func DecodeServer(frame []byte) (ServerPacket, error) {
	if len(frame) == 0 {
		return nil, malformed(frame, "empty frame")
	}
	switch frame[0] {
	case TagFullBoard:
		return decodeFullBoard(frame)
	case TagSparseUpdate:
		return decodeSparseUpdate(frame)
	case TagPlayerInfo, TagYourPlayerInfo:
		if len(frame) < 6 {
			return nil, malformed(frame, "player frame shorter than 6 bytes")
		}
		name := frame[6:]
		if !utf8.Valid(name) {
			return nil, malformed(frame, "player name is not valid UTF-8")
		}
		p := PlayerInfo{ID: frame[1], Name: string(name), Self: frame[0] == TagYourPlayerInfo}
		copy(p.Color[:], frame[2:6])
		return p, nil
	case TagBoardLoss:
		return decodeBoardLoss(frame)
	case TagBoardWin:
		if len(frame) != 1 {
			return nil, malformed(frame, "win frame must be empty")
		}
		return BoardWin{}, nil
	case TagNextBoardConfig:
		if len(frame) != 9 {
			return nil, malformed(frame, "config frame must be 9 bytes")
		}
		return NextBoardConfig{
			Width:  le.Uint16(frame[1:3]),
			Height: le.Uint16(frame[3:5]),
			Mines:  le.Uint32(frame[5:9]),
		}, nil
	default:
		return nil, malformed(frame, "unknown server tag")
	}
}

func decodeFullBoard(frame []byte) (ServerPacket, error) {
	if len(frame) < 10 {
		return nil, malformed(frame, "full-board header shorter than 10 bytes")
	}
	p := FullBoard{
		Width:  le.Uint16(frame[1:3]),
		Height: le.Uint16(frame[3:5]),
		Mines:  le.Uint32(frame[5:9]),
		State:  BoardState(frame[9]),
	}
	if p.State < StateOngoing || p.State > StateWon {
		return nil, malformed(frame, "unknown board state")
	}
	cells := int(p.Width) * int(p.Height)
	if len(frame) != 10+2*cells {
		return nil, malformed(frame, "full-board body does not match dimensions")
	}
	if cells == 0 {
		return p, nil
	}
	p.Entries = make([]board.Entry, cells)
	for i, b := range frame[10 : 10+cells] {
		e, ok := DecodeEntry(b)
		if !ok {
			return nil, malformed(frame, "reserved entry byte")
		}
		p.Entries[i] = e
	}
	p.Owners = append([]uint8(nil), frame[10+cells:]...)
	return p, nil
}

func decodeSparseUpdate(frame []byte) (ServerPacket, error) {
	body := frame[1:]
	if len(body)%6 != 0 {
		return nil, malformed(frame, "sparse body is not a multiple of 6 bytes")
	}
	var p SparseUpdate
	for i := 0; i < len(body); i += 6 {
		e, ok := DecodeEntry(body[i+4])
		if !ok {
			return nil, malformed(frame, "reserved entry byte")
		}
		p.Cells = append(p.Cells, CellUpdate{Coord: readCoord(body[i : i+4]), Entry: e, Player: body[i+5]})
	}
	return p, nil
}

func decodeBoardLoss(frame []byte) (ServerPacket, error) {
	if len(frame) < 3 {
		return nil, malformed(frame, "loss frame shorter than 3 bytes")
	}
	mines := int(frame[2])
	rest := frame[3:]
	if len(rest) < 4*mines || (len(rest)-4*mines)%4 != 0 {
		return nil, malformed(frame, "loss coordinates do not fit the frame")
	}
	p := BoardLoss{Loser: frame[1]}
	for i := 0; i < len(rest); i += 4 {
		c := readCoord(rest[i : i+4])
		if i < 4*mines {
			p.HitMines = append(p.HitMines, c)
		} else {
			p.WrongFlags = append(p.WrongFlags, c)
		}
	}
	return p, nil
}
