package room

import (
	"log"
	"time"

	"sweeper-lite/apps/server/internal/players"
	"sweeper-lite/board"
	"sweeper-lite/replay"
)

// GameEndInfo describes a board that has just been won or lost.
type GameEndInfo struct {
	GameID           string
	Width            uint16
	Height           uint16
	Mines            uint32
	Outcome          board.State
	Cleared          uint32
	Loser            uint8 // 0 when won
	LoserName        string
	LoserFingerprint string
	Participants     int
	StartedAt        time.Time
	EndedAt          time.Time
	Tape             *replay.Tape
}

// GameEndHook is a post-game callback. Hooks run off the actor goroutine.
type GameEndHook func(info GameEndInfo)

func (r *Room) dispatchGameEnd(loser *players.Player, loserAddr string) {
	r.hooksMu.Lock()
	hooks := append([]GameEndHook(nil), r.gameEndHooks...)
	r.hooksMu.Unlock()
	if len(hooks) == 0 {
		return
	}

	info := GameEndInfo{
		GameID:       r.gameID,
		Width:        r.board.Width(),
		Height:       r.board.Height(),
		Mines:        r.board.Mines(),
		Outcome:      r.board.State(),
		Cleared:      r.board.Cleared(),
		Participants: len(r.participants),
		StartedAt:    r.startedAt,
		EndedAt:      r.finishedAt,
		Tape:         r.tape.Clone(),
	}
	if loser != nil {
		info.Loser = loser.ID
		info.LoserName = loser.Name
		info.LoserFingerprint = players.Fingerprint(loserAddr)
	}

	for _, hook := range hooks {
		go func(cb GameEndHook) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Printf("[Room] game end hook panic: %v", rec)
				}
			}()
			cb(info)
		}(hook)
	}
}
