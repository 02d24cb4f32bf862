package room

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"sweeper-lite/apps/server/internal/players"
	"sweeper-lite/board"
	"sweeper-lite/replay"
	"sweeper-lite/wire"

	"github.com/google/uuid"
)

// MinNewBoardDelay keeps a stray click from skipping past a finished board.
const MinNewBoardDelay = 500 * time.Millisecond

var ErrRoomClosed = errors.New("room closed")

// Options configures a room.
type Options struct {
	Board board.Config
	Names players.NameSource
	Now   func() time.Time
}

// Room owns the shared board and the player registry. All state below the
// mailbox is touched only by the actor goroutine.
type Room struct {
	mailbox  *mailbox
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once

	hooksMu      sync.Mutex
	gameEndHooks []GameEndHook

	now      func() time.Time
	registry *players.Registry
	pending  board.Config

	board        *board.Board
	gameID       string
	startedAt    time.Time
	finishedAt   time.Time
	terminal     wire.ServerPacket // loss or win notice while finished
	tape         *replay.Tape
	participants map[string]struct{}
}

// New validates the initial board config and starts the actor.
func New(opts Options) (*Room, error) {
	if err := opts.Board.Validate(); err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	r := &Room{
		mailbox:  newMailbox(),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		now:      now,
		registry: players.NewRegistry(opts.Names, now),
		pending:  opts.Board,
	}
	if err := r.resetBoard(); err != nil {
		return nil, err
	}

	go r.run()

	log.Printf("[Room] Created (%dx%d, mines=%d)", opts.Board.Width, opts.Board.Height, opts.Board.Mines)
	return r, nil
}

// run is the actor loop
func (r *Room) run() {
	defer close(r.stopped)
	for {
		select {
		case <-r.mailbox.signal:
			for _, e := range r.mailbox.drain() {
				r.handleEvent(e)
			}
		case <-r.done:
			r.registry.CloseAll()
			log.Printf("[Room] Actor stopped")
			return
		}
	}
}

// Submit queues e for the actor. It never blocks.
func (r *Room) Submit(e Event) error {
	select {
	case <-r.done:
		return ErrRoomClosed
	default:
	}
	r.mailbox.push(e)
	return nil
}

// Join registers a connection's outbound queue under addr.
func (r *Room) Join(addr string, out *players.Outbound) error {
	return r.Submit(Event{Type: EventJoined, Addr: addr, Outbound: out})
}

// Status asks the actor for a snapshot. It is answered after every event
// queued before it.
func (r *Room) Status(ctx context.Context) (Status, error) {
	reply := make(chan Status, 1)
	if err := r.Submit(Event{Type: EventStatus, Reply: reply}); err != nil {
		return Status{}, err
	}
	select {
	case st := <-reply:
		return st, nil
	case <-ctx.Done():
		return Status{}, ctx.Err()
	case <-r.done:
		return Status{}, ErrRoomClosed
	}
}

// Stop shuts the actor down and closes every connection queue. Events still
// queued are dropped.
func (r *Room) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
	})
	<-r.stopped
}

// AddGameEndHook registers a callback run after a board is won or lost.
func (r *Room) AddGameEndHook(hook GameEndHook) {
	if hook == nil {
		return
	}
	r.hooksMu.Lock()
	r.gameEndHooks = append(r.gameEndHooks, hook)
	r.hooksMu.Unlock()
}

func (r *Room) resetBoard() error {
	b, err := board.New(r.pending)
	if err != nil {
		return err
	}
	r.board = b
	r.gameID = uuid.NewString()
	r.startedAt = r.now()
	r.finishedAt = time.Time{}
	r.terminal = nil
	r.tape = replay.NewTape(r.gameID, b)
	r.participants = make(map[string]struct{})
	return nil
}
