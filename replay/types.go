package replay

import "sweeper-lite/board"

const TapeVersion = 1

type StepKind string

const (
	StepReveal StepKind = "reveal"
	StepChord  StepKind = "chord"
	StepFlag   StepKind = "flag"
)

// Step is one accepted board mutation.
type Step struct {
	Kind   StepKind `json:"kind"`
	Row    uint16   `json:"row"`
	Col    uint16   `json:"col"`
	Player uint8    `json:"player"`
}

func (s Step) Coord() board.Coord {
	return board.Coord{Row: s.Row, Col: s.Col}
}

// Tape is everything needed to rebuild a board: its config, the seed used
// for mine placement and the ordered steps applied to it.
type Tape struct {
	TapeVersion int    `json:"tape_version"`
	GameID      string `json:"game_id"`
	Width       uint16 `json:"width"`
	Height      uint16 `json:"height"`
	Mines       uint32 `json:"mines"`
	Seed        int64  `json:"seed"`
	Steps       []Step `json:"steps"`
	FinalState  string `json:"final_state,omitempty"`
}

// Frame is one encoded server frame produced while replaying.
type Frame struct {
	Step     int    `json:"step"`
	Type     string `json:"type"`
	FrameB64 string `json:"frame_b64"`
}

type Result struct {
	GameID  string      `json:"game_id"`
	State   board.State `json:"state"`
	Cleared uint32      `json:"cleared"`
	Frames  []Frame     `json:"frames"`
}
