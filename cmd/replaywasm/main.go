//go:build js && wasm

package main

import (
	"encoding/json"
	"errors"
	"syscall/js"

	"sweeper-lite/replay"
)

type runRequest struct {
	Tape replay.Tape `json:"tape"`
}

type runResponse struct {
	OK     bool                `json:"ok"`
	Result *replay.Result      `json:"result,omitempty"`
	Error  *replay.ReplayError `json:"error,omitempty"`
}

func main() {
	js.Global().Set("__sweeperReplay", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 1 {
			return mustJSON(runResponse{
				OK:    false,
				Error: &replay.ReplayError{StepIndex: -1, Reason: "invalid_request", Message: "missing request payload"},
			})
		}
		return mustJSON(handleRun(args[0].String()))
	}))

	select {}
}

func handleRun(raw string) runResponse {
	var req runRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return runResponse{
			OK:    false,
			Error: &replay.ReplayError{StepIndex: -1, Reason: "invalid_json", Message: err.Error()},
		}
	}

	res, err := replay.Run(req.Tape)
	if err != nil {
		var replayErr *replay.ReplayError
		if errors.As(err, &replayErr) {
			return runResponse{OK: false, Error: replayErr}
		}
		return runResponse{
			OK:    false,
			Error: &replay.ReplayError{StepIndex: -1, Reason: "replay_failed", Message: err.Error()},
		}
	}
	return runResponse{OK: true, Result: res}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		fallback := runResponse{
			OK:    false,
			Error: &replay.ReplayError{StepIndex: -1, Reason: "marshal_failed", Message: err.Error()},
		}
		b2, _ := json.Marshal(fallback)
		return string(b2)
	}
	return string(b)
}
