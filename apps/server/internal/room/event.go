package room

import (
	"sweeper-lite/apps/server/internal/players"
	"sweeper-lite/board"
	"sweeper-lite/wire"
)

// EventType 房间事件类型
type EventType int

const (
	EventReveal EventType = iota
	EventChord
	EventToggleFlag
	EventNewBoard
	EventReconfigure
	EventJoined
	EventStatus
)

var eventNames = map[EventType]string{
	EventReveal:      "reveal",
	EventChord:       "chord",
	EventToggleFlag:  "toggle_flag",
	EventNewBoard:    "new_board",
	EventReconfigure: "reconfigure",
	EventJoined:      "joined",
	EventStatus:      "status",
}

func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return "unknown"
}

// Event is one message to the room actor. Every event except EventStatus
// carries the address key of the connection it came from.
type Event struct {
	Type  EventType
	Addr  string
	Coord board.Coord

	// EventReconfigure
	Width  uint16
	Height uint16
	Mines  uint32

	// EventJoined
	Outbound *players.Outbound

	// EventStatus
	Reply chan Status
}

// EventFromPacket turns a decoded client packet into an actor event.
func EventFromPacket(addr string, pkt wire.ClientPacket) (Event, bool) {
	switch p := pkt.(type) {
	case wire.Reveal:
		return Event{Type: EventReveal, Addr: addr, Coord: p.Coord}, true
	case wire.Chord:
		return Event{Type: EventChord, Addr: addr, Coord: p.Coord}, true
	case wire.ToggleFlag:
		return Event{Type: EventToggleFlag, Addr: addr, Coord: p.Coord}, true
	case wire.NewBoard:
		return Event{Type: EventNewBoard, Addr: addr}, true
	case wire.Reconfigure:
		return Event{Type: EventReconfigure, Addr: addr, Width: p.Width, Height: p.Height, Mines: p.Mines}, true
	default:
		return Event{}, false
	}
}
