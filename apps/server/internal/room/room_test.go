package room

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"sweeper-lite/apps/server/internal/players"
	"sweeper-lite/board"
	"sweeper-lite/wire"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type seqNames struct {
	mu sync.Mutex
	n  int
}

func (s *seqNames) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("player-name-%d", s.n)
}

func newTestRoom(t *testing.T, cfg board.Config) (*Room, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	r, err := New(Options{Board: cfg, Names: &seqNames{}, Now: clock.Now})
	require.NoError(t, err)
	t.Cleanup(r.Stop)
	return r, clock
}

// settle waits until every previously submitted event has been handled.
func settle(t *testing.T, r *Room) Status {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := r.Status(ctx)
	require.NoError(t, err)
	return st
}

func join(t *testing.T, r *Room, addr string) *players.Outbound {
	t.Helper()
	out := players.NewOutbound(256)
	require.NoError(t, r.Join(addr, out))
	return out
}

func drain(t *testing.T, out *players.Outbound) []wire.ServerPacket {
	t.Helper()
	var packets []wire.ServerPacket
	for {
		select {
		case frame := <-out.C():
			p, err := wire.DecodeServer(frame)
			require.NoError(t, err)
			packets = append(packets, p)
		default:
			return packets
		}
	}
}

func submit(t *testing.T, r *Room, e Event) {
	t.Helper()
	require.NoError(t, r.Submit(e))
}

func TestJoin_SendsBootstrapInOrder(t *testing.T) {
	r, _ := newTestRoom(t, board.Config{Width: 4, Height: 3, Mines: 2, Seed: 1})

	first := join(t, r, "10.0.0.1")
	settle(t, r)
	got := drain(t, first)
	require.Len(t, got, 3)
	require.Equal(t, wire.PlayerInfo{ID: 1, Color: players.ColorFor(1), Name: "player-name-1", Self: true}, got[0])
	fb, ok := got[1].(wire.FullBoard)
	require.True(t, ok)
	require.Equal(t, uint16(4), fb.Width)
	require.Equal(t, uint16(3), fb.Height)
	require.Equal(t, wire.NextBoardConfig{Width: 4, Height: 3, Mines: 2}, got[2])

	second := join(t, r, "10.0.0.2")
	settle(t, r)
	got = drain(t, second)
	require.Len(t, got, 4)
	require.Equal(t, uint8(2), got[0].(wire.PlayerInfo).ID)
	require.True(t, got[0].(wire.PlayerInfo).Self)
	require.Equal(t, wire.PlayerInfo{ID: 1, Color: players.ColorFor(1), Name: "player-name-1"}, got[1])
	require.IsType(t, wire.FullBoard{}, got[2])
	require.IsType(t, wire.NextBoardConfig{}, got[3])

	announced := drain(t, first)
	require.Equal(t, []wire.ServerPacket{
		wire.PlayerInfo{ID: 2, Color: players.ColorFor(2), Name: "player-name-2"},
	}, announced)

	st := settle(t, r)
	require.Equal(t, 2, st.Players)
	require.Equal(t, 2, st.Connections)
}

func TestReveal_BroadcastsSparseUpdate(t *testing.T) {
	r, _ := newTestRoom(t, board.Config{Width: 5, Height: 5, Mines: 1, Seed: 3})
	a := join(t, r, "a")
	b := join(t, r, "b")
	settle(t, r)
	drain(t, a)
	drain(t, b)

	submit(t, r, Event{Type: EventReveal, Addr: "a", Coord: board.Coord{Row: 2, Col: 2}})
	st := settle(t, r)

	for _, out := range []*players.Outbound{a, b} {
		got := drain(t, out)
		require.NotEmpty(t, got)
		su, ok := got[0].(wire.SparseUpdate)
		require.True(t, ok)
		require.Equal(t, board.Coord{Row: 2, Col: 2}, su.Cells[0].Coord)
		require.Equal(t, uint8(1), su.Cells[0].Player)
		require.Equal(t, int(st.Cleared), len(su.Cells))
	}
}

func TestReveal_OutOfBoundsIgnored(t *testing.T) {
	r, _ := newTestRoom(t, board.Config{Width: 3, Height: 3, Mines: 1, Seed: 3})
	a := join(t, r, "a")
	settle(t, r)
	drain(t, a)

	submit(t, r, Event{Type: EventReveal, Addr: "a", Coord: board.Coord{Row: 3, Col: 0}})
	submit(t, r, Event{Type: EventChord, Addr: "a", Coord: board.Coord{Row: 0, Col: 9}})
	submit(t, r, Event{Type: EventToggleFlag, Addr: "a", Coord: board.Coord{Row: 100, Col: 100}})
	st := settle(t, r)

	require.Empty(t, drain(t, a))
	require.Equal(t, "uninitialized", st.State)
}

func TestToggleFlag_BroadcastsOneCell(t *testing.T) {
	r, _ := newTestRoom(t, board.Config{Width: 3, Height: 3, Mines: 1, Seed: 3})
	a := join(t, r, "a")
	settle(t, r)
	drain(t, a)

	c := board.Coord{Row: 1, Col: 2}
	submit(t, r, Event{Type: EventToggleFlag, Addr: "a", Coord: c})
	submit(t, r, Event{Type: EventToggleFlag, Addr: "a", Coord: c})
	settle(t, r)

	require.Equal(t, []wire.ServerPacket{
		wire.SparseUpdate{Cells: []wire.CellUpdate{{Coord: c, Entry: board.Hidden(true), Player: 1}}},
		wire.SparseUpdate{Cells: []wire.CellUpdate{{Coord: c, Entry: board.Hidden(false), Player: 0}}},
	}, drain(t, a))
}

func TestLoss_NewBoardWaitsForDelay(t *testing.T) {
	r, clock := newTestRoom(t, board.Config{Width: 3, Height: 3, Mines: 9, Seed: 5})
	a := join(t, r, "a")
	settle(t, r)
	drain(t, a)

	c := board.Coord{Row: 1, Col: 1}
	submit(t, r, Event{Type: EventReveal, Addr: "a", Coord: c})
	st := settle(t, r)
	require.Equal(t, "lost", st.State)

	require.Equal(t, []wire.ServerPacket{
		wire.SparseUpdate{Cells: []wire.CellUpdate{{Coord: c, Entry: board.Mine(), Player: 1}}},
		wire.BoardLoss{Loser: 1, HitMines: []board.Coord{c}},
	}, drain(t, a))

	// a late joiner sees the loss notice after the snapshot
	late := join(t, r, "b")
	settle(t, r)
	got := drain(t, late)
	require.Len(t, got, 5)
	require.Equal(t, wire.StateLost, got[2].(wire.FullBoard).State)
	require.Equal(t, wire.BoardLoss{Loser: 1, HitMines: []board.Coord{c}}, got[3])
	drain(t, a)

	clock.Advance(MinNewBoardDelay - time.Millisecond)
	submit(t, r, Event{Type: EventNewBoard, Addr: "a"})
	st = settle(t, r)
	require.Equal(t, "lost", st.State)
	require.Empty(t, drain(t, a))

	clock.Advance(time.Millisecond)
	submit(t, r, Event{Type: EventNewBoard, Addr: "a"})
	st = settle(t, r)
	require.Equal(t, "uninitialized", st.State)
	got = drain(t, a)
	require.Len(t, got, 1)
	require.Equal(t, wire.StateOngoing, got[0].(wire.FullBoard).State)
}

func TestNewBoard_IgnoredWhileOngoing(t *testing.T) {
	r, clock := newTestRoom(t, board.Config{Width: 3, Height: 3, Mines: 1, Seed: 5})
	a := join(t, r, "a")
	settle(t, r)
	before := settle(t, r).GameID
	drain(t, a)

	clock.Advance(time.Minute)
	submit(t, r, Event{Type: EventNewBoard, Addr: "a"})
	st := settle(t, r)
	require.Equal(t, before, st.GameID)
	require.Empty(t, drain(t, a))
}

func TestWin_BroadcastsWinAndReplacesBoardWithPendingConfig(t *testing.T) {
	r, clock := newTestRoom(t, board.Config{Width: 1, Height: 1, Mines: 0, Seed: 5})
	a := join(t, r, "a")
	settle(t, r)
	drain(t, a)

	submit(t, r, Event{Type: EventReconfigure, Addr: "a", Width: 2, Height: 2, Mines: 1})
	submit(t, r, Event{Type: EventReveal, Addr: "a", Coord: board.Coord{}})
	st := settle(t, r)
	require.Equal(t, "won", st.State)
	require.Equal(t, BoardShape{Width: 1, Height: 1}, st.Board)
	require.Equal(t, BoardShape{Width: 2, Height: 2, Mines: 1}, st.Pending)

	got := drain(t, a)
	require.Equal(t, wire.NextBoardConfig{Width: 2, Height: 2, Mines: 1}, got[0])
	require.Equal(t, wire.BoardWin{}, got[2])

	clock.Advance(MinNewBoardDelay)
	submit(t, r, Event{Type: EventNewBoard, Addr: "a"})
	st = settle(t, r)
	require.Equal(t, BoardShape{Width: 2, Height: 2, Mines: 1}, st.Board)
	fb := drain(t, a)[0].(wire.FullBoard)
	require.Equal(t, uint16(2), fb.Width)
	require.Len(t, fb.Entries, 4)
}

func TestReconfigure_InvalidDropped(t *testing.T) {
	r, _ := newTestRoom(t, board.Config{Width: 3, Height: 3, Mines: 1, Seed: 5})
	a := join(t, r, "a")
	settle(t, r)
	drain(t, a)

	submit(t, r, Event{Type: EventReconfigure, Addr: "a", Width: 0, Height: 3, Mines: 0})
	submit(t, r, Event{Type: EventReconfigure, Addr: "a", Width: 101, Height: 3, Mines: 0})
	submit(t, r, Event{Type: EventReconfigure, Addr: "a", Width: 2, Height: 2, Mines: 5})
	st := settle(t, r)

	require.Empty(t, drain(t, a))
	require.Equal(t, BoardShape{Width: 3, Height: 3, Mines: 1}, st.Pending)
}

func TestGameEndHook_ReceivesTape(t *testing.T) {
	r, _ := newTestRoom(t, board.Config{Width: 3, Height: 3, Mines: 9, Seed: 5})
	ended := make(chan GameEndInfo, 1)
	r.AddGameEndHook(func(GameEndInfo) { panic("boom") })
	r.AddGameEndHook(func(info GameEndInfo) { ended <- info })

	join(t, r, "a")
	submit(t, r, Event{Type: EventReveal, Addr: "a", Coord: board.Coord{Row: 0, Col: 2}})
	st := settle(t, r)

	select {
	case info := <-ended:
		require.Equal(t, st.GameID, info.GameID)
		require.Equal(t, board.StateLost, info.Outcome)
		require.Equal(t, uint8(1), info.Loser)
		require.Equal(t, players.Fingerprint("a"), info.LoserFingerprint)
		require.Equal(t, 1, info.Participants)
		require.NotNil(t, info.Tape)
		require.Len(t, info.Tape.Steps, 1)
		require.Equal(t, "lost", info.Tape.FinalState)
		require.NotZero(t, info.Tape.Seed)
	case <-time.After(2 * time.Second):
		t.Fatalf("game end hook not called")
	}
}

func TestStop_ClosesConnectionsAndRejectsEvents(t *testing.T) {
	clock := newFakeClock()
	r, err := New(Options{Board: board.Config{Width: 2, Height: 2, Mines: 1}, Now: clock.Now})
	require.NoError(t, err)

	out := join(t, r, "a")
	settle(t, r)
	r.Stop()

	require.True(t, out.Closed())
	require.ErrorIs(t, r.Submit(Event{Type: EventNewBoard}), ErrRoomClosed)
	_, err = r.Status(context.Background())
	require.ErrorIs(t, err, ErrRoomClosed)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(Options{Board: board.Config{Width: 0, Height: 2}})
	require.ErrorIs(t, err, board.ErrInvalidConfig)
}

func TestEventFromPacket(t *testing.T) {
	e, ok := EventFromPacket("x", wire.Reconfigure{Width: 9, Height: 8, Mines: 7})
	require.True(t, ok)
	require.Equal(t, Event{Type: EventReconfigure, Addr: "x", Width: 9, Height: 8, Mines: 7}, e)

	e, ok = EventFromPacket("x", wire.Chord{Coord: board.Coord{Row: 1, Col: 2}})
	require.True(t, ok)
	require.Equal(t, EventChord, e.Type)
	require.Equal(t, board.Coord{Row: 1, Col: 2}, e.Coord)
}
