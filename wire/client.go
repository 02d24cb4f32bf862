package wire

import "sweeper-lite/board"

// ClientPacket is an action sent by a client.
type ClientPacket interface {
	clientTag() byte
}

type Reveal struct{ Coord board.Coord }

type Chord struct{ Coord board.Coord }

type ToggleFlag struct{ Coord board.Coord }

type NewBoard struct{}

type Reconfigure struct {
	Width  uint16
	Height uint16
	Mines  uint32
}

func (Reveal) clientTag() byte      { return TagReveal }
func (Chord) clientTag() byte       { return TagChord }
func (ToggleFlag) clientTag() byte  { return TagToggleFlag }
func (NewBoard) clientTag() byte    { return TagNewBoard }
func (Reconfigure) clientTag() byte { return TagReconfigure }

// DecodeClient parses one client frame.
func DecodeClient(frame []byte) (ClientPacket, error) {
	if len(frame) == 0 {
		return nil, malformed(frame, "empty frame")
	}
	switch frame[0] {
	case TagReveal, TagChord, TagToggleFlag:
		if len(frame) != 5 {
			return nil, malformed(frame, "coordinate frame must be 5 bytes")
		}
		c := readCoord(frame[1:5])
		switch frame[0] {
		case TagReveal:
			return Reveal{Coord: c}, nil
		case TagChord:
			return Chord{Coord: c}, nil
		default:
			return ToggleFlag{Coord: c}, nil
		}
	case TagNewBoard:
		if len(frame) != 1 {
			return nil, malformed(frame, "new-board frame must be empty")
		}
		return NewBoard{}, nil
	case TagReconfigure:
		if len(frame) != 9 {
			return nil, malformed(frame, "reconfigure frame must be 9 bytes")
		}
		return Reconfigure{
			Width:  le.Uint16(frame[1:3]),
			Height: le.Uint16(frame[3:5]),
			Mines:  le.Uint32(frame[5:9]),
		}, nil
	default:
		return nil, malformed(frame, "unknown client tag")
	}
}

// EncodeClient builds the frame a client sends for p.
func EncodeClient(p ClientPacket) []byte {
	buf := []byte{p.clientTag()}
	switch v := p.(type) {
	case Reveal:
		buf = appendCoord(buf, v.Coord)
	case Chord:
		buf = appendCoord(buf, v.Coord)
	case ToggleFlag:
		buf = appendCoord(buf, v.Coord)
	case Reconfigure:
		buf = le.AppendUint16(buf, v.Width)
		buf = le.AppendUint16(buf, v.Height)
		buf = le.AppendUint32(buf, v.Mines)
	}
	return buf
}
