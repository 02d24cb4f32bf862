package replay

import (
	"encoding/base64"
	"fmt"

	"sweeper-lite/board"
	"sweeper-lite/wire"
)

// Run rebuilds the board described by tape and returns the frames a client
// would have received: a full-board bootstrap, one sparse update per step, and
// the loss or win frame when the board ends.
func Run(tape Tape) (*Result, error) {
	if tape.TapeVersion != TapeVersion {
		return nil, &ReplayError{StepIndex: -1, Reason: "unsupported_version", Message: fmt.Sprintf("tape version %d", tape.TapeVersion)}
	}
	if tape.Seed == 0 {
		return nil, &ReplayError{StepIndex: -1, Reason: "missing_seed", Message: "tape has no seed"}
	}
	b, err := board.New(board.Config{Width: tape.Width, Height: tape.Height, Mines: tape.Mines, Seed: tape.Seed})
	if err != nil {
		return nil, &ReplayError{StepIndex: -1, Reason: "invalid_config", Message: err.Error()}
	}

	out := &Result{GameID: tape.GameID}
	out.add(-1, "fullBoard", fullBoard(b))

	for i, step := range tape.Steps {
		idx := int32(i)
		c := step.Coord()
		if !b.InBounds(c) {
			return nil, &ReplayError{StepIndex: idx, Reason: "out_of_bounds", Message: fmt.Sprintf("%v outside %dx%d", c, tape.Width, tape.Height)}
		}
		if b.State().Finished() {
			return nil, &ReplayError{StepIndex: idx, Reason: "board_finished", Message: "step after the board ended"}
		}

		before := b.State()
		var changed []board.Coord
		switch step.Kind {
		case StepReveal:
			changed = b.Reveal(c, step.Player)
		case StepChord:
			changed = b.Chord(c, step.Player)
		case StepFlag:
			if b.ToggleFlag(c, step.Player) {
				changed = []board.Coord{c}
			}
		default:
			return nil, &ReplayError{StepIndex: idx, Reason: "unknown_step", Message: fmt.Sprintf("step kind %q", step.Kind)}
		}
		if len(changed) == 0 {
			return nil, &ReplayError{StepIndex: idx, Reason: "no_effect", Message: fmt.Sprintf("%s at %v changed nothing", step.Kind, c)}
		}
		out.add(i, "sparseUpdate", sparseUpdate(b, changed))

		switch after := b.State(); {
		case after == board.StateLost && before != board.StateLost:
			out.add(i, "boardLoss", wire.BoardLoss{Loser: step.Player, HitMines: changed, WrongFlags: b.WrongFlags()})
		case after == board.StateWon && before != board.StateWon:
			out.add(i, "boardWin", wire.BoardWin{})
		}
	}

	out.State = b.State()
	out.Cleared = b.Cleared()
	if tape.FinalState != "" && tape.FinalState != out.State.String() {
		return nil, &ReplayError{
			StepIndex: int32(len(tape.Steps)),
			Reason:    "state_mismatch",
			Message:   fmt.Sprintf("replay ended %s, tape recorded %s", out.State, tape.FinalState),
		}
	}
	return out, nil
}

func (r *Result) add(step int, kind string, p wire.ServerPacket) {
	r.Frames = append(r.Frames, Frame{
		Step:     step,
		Type:     kind,
		FrameB64: base64.StdEncoding.EncodeToString(p.Encode()),
	})
}

func fullBoard(b *board.Board) wire.FullBoard {
	return wire.FullBoard{
		Width:   b.Width(),
		Height:  b.Height(),
		Mines:   b.Mines(),
		State:   wire.StateOf(b.State()),
		Entries: b.VisibleLayout(),
		Owners:  b.Owners(),
	}
}

func sparseUpdate(b *board.Board, changed []board.Coord) wire.SparseUpdate {
	cells := make([]wire.CellUpdate, 0, len(changed))
	for _, c := range changed {
		cells = append(cells, wire.CellUpdate{Coord: c, Entry: b.Visible(c), Player: b.Owner(c)})
	}
	return wire.SparseUpdate{Cells: cells}
}
