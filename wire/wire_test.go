package wire

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"sweeper-lite/board"
)

func TestClientPackets_RoundTrip(t *testing.T) {
	req := require.New(t)
	packets := []ClientPacket{
		Reveal{Coord: board.Coord{Row: 3, Col: 700}},
		Chord{Coord: board.Coord{Row: 65535, Col: 0}},
		ToggleFlag{Coord: board.Coord{Row: 1, Col: 2}},
		NewBoard{},
		Reconfigure{Width: 30, Height: 16, Mines: 99},
	}
	for _, p := range packets {
		got, err := DecodeClient(EncodeClient(p))
		req.NoError(err)
		req.Equal(p, got)
	}
}

func TestDecodeClient_LittleEndianLayout(t *testing.T) {
	got, err := DecodeClient([]byte{TagReveal, 0x02, 0x01, 0x04, 0x00})
	require.NoError(t, err)
	require.Equal(t, Reveal{Coord: board.Coord{Row: 0x0102, Col: 4}}, got)

	got, err = DecodeClient([]byte{TagReconfigure, 10, 0, 20, 0, 0x2c, 0x01, 0, 0})
	require.NoError(t, err)
	require.Equal(t, Reconfigure{Width: 10, Height: 20, Mines: 300}, got)
}

func TestDecodeClient_RejectsMalformedFrames(t *testing.T) {
	frames := [][]byte{
		nil,
		{},
		{TagReveal},
		{TagReveal, 0, 0, 0},
		{TagReveal, 0, 0, 0, 0, 0},
		{TagChord, 1, 2},
		{TagToggleFlag, 1, 2, 3, 4, 5, 6},
		{TagNewBoard, 0},
		{TagReconfigure, 1, 0, 1, 0},
		{TagReconfigure, 1, 0, 1, 0, 1, 0, 0, 0, 0},
		{5},
		{255, 0, 0, 0, 0},
	}
	for _, f := range frames {
		p, err := DecodeClient(f)
		require.Error(t, err, "frame %v", f)
		require.Nil(t, p)
		require.True(t, errors.Is(err, ErrMalformed))
		var decodeErr *DecodeError
		require.True(t, errors.As(err, &decodeErr))
		require.Equal(t, len(f), decodeErr.Len)
	}
}

func TestServerPackets_RoundTrip(t *testing.T) {
	req := require.New(t)
	packets := []ServerPacket{
		FullBoard{
			Width: 3, Height: 2, Mines: 1, State: StateLost,
			Entries: []board.Entry{
				board.Revealed(0), board.Revealed(1), board.Mine(),
				board.Hidden(false), board.Hidden(true), board.Revealed(8),
			},
			Owners: []uint8{0, 1, 2, 0, 255, 9},
		},
		FullBoard{Width: 0, Height: 0, Mines: 0, State: StateOngoing},
		SparseUpdate{Cells: []CellUpdate{
			{Coord: board.Coord{Row: 1, Col: 2}, Entry: board.Revealed(3), Player: 4},
			{Coord: board.Coord{Row: 99, Col: 0}, Entry: board.Hidden(true), Player: 0},
		}},
		SparseUpdate{},
		PlayerInfo{ID: 7, Color: [4]byte{0x8d, 0x6e, 0x63, 0xff}, Name: "brave-otter"},
		PlayerInfo{ID: 255, Color: [4]byte{1, 2, 3, 4}, Name: "ünïcode-名前", Self: true},
		PlayerInfo{ID: 1},
		BoardLoss{
			Loser:      3,
			HitMines:   []board.Coord{{Row: 1, Col: 1}, {Row: 2, Col: 0}},
			WrongFlags: []board.Coord{{Row: 5, Col: 5}},
		},
		BoardLoss{Loser: 1, HitMines: []board.Coord{{Row: 0, Col: 0}}},
		BoardWin{},
		NextBoardConfig{Width: 100, Height: 100, Mines: 10000},
	}
	for _, p := range packets {
		got, err := DecodeServer(p.Encode())
		req.NoError(err)
		req.Equal(p, got)
	}
}

func TestServerPackets_Layout(t *testing.T) {
	frame := FullBoard{
		Width: 2, Height: 1, Mines: 1, State: StateOngoing,
		Entries: []board.Entry{board.Hidden(false), board.Hidden(true)},
		Owners:  []uint8{0, 5},
	}.Encode()
	require.Equal(t, []byte{TagFullBoard, 2, 0, 1, 0, 1, 0, 0, 0, 1, 253, 254, 0, 5}, frame)

	frame = BoardLoss{
		Loser:      2,
		HitMines:   []board.Coord{{Row: 1, Col: 0}},
		WrongFlags: []board.Coord{{Row: 0, Col: 3}},
	}.Encode()
	require.Equal(t, []byte{TagBoardLoss, 2, 1, 1, 0, 0, 0, 0, 0, 3, 0}, frame)

	frame = PlayerInfo{ID: 4, Color: [4]byte{9, 8, 7, 6}, Name: "a-b", Self: true}.Encode()
	require.Equal(t, []byte{TagYourPlayerInfo, 4, 9, 8, 7, 6, 'a', '-', 'b'}, frame)
}

func TestDecodeServer_RejectsMalformedFrames(t *testing.T) {
	frames := [][]byte{
		nil,
		{TagFullBoard, 1, 0, 1, 0},
		{TagFullBoard, 1, 0, 1, 0, 0, 0, 0, 0, 1},
		{TagFullBoard, 1, 0, 1, 0, 0, 0, 0, 0, 1, 253},
		{TagFullBoard, 1, 0, 1, 0, 0, 0, 0, 0, 1, 253, 0, 0},
		{TagFullBoard, 1, 0, 1, 0, 0, 0, 0, 0, 4, 253, 0},
		{TagFullBoard, 1, 0, 1, 0, 0, 0, 0, 0, 1, 100, 0},
		{TagSparseUpdate, 0, 0, 0, 0, 1},
		{TagSparseUpdate, 0, 0, 0, 0, 42, 1},
		{TagPlayerInfo, 1, 0, 0, 0},
		{TagYourPlayerInfo},
		{TagPlayerInfo, 1, 0, 0, 0, 0, 0xff, 0xfe},
		{TagBoardLoss, 1},
		{TagBoardLoss, 1, 2, 0, 0, 0, 0},
		{TagBoardLoss, 1, 0, 0, 0},
		{TagBoardWin, 0},
		{TagNextBoardConfig, 1, 0, 1, 0, 1, 0, 0},
		{7},
	}
	for _, f := range frames {
		p, err := DecodeServer(f)
		require.Error(t, err, "frame %v", f)
		require.Nil(t, p)
		require.ErrorIs(t, err, ErrMalformed)
	}
}

func TestEntryBytes(t *testing.T) {
	require.Equal(t, EntryHidden, EncodeEntry(board.Hidden(false)))
	require.Equal(t, EntryFlagged, EncodeEntry(board.Hidden(true)))
	require.Equal(t, EntryMine, EncodeEntry(board.Mine()))
	for n := uint8(0); n <= 8; n++ {
		require.Equal(t, n, EncodeEntry(board.Revealed(n)))
	}
	_, ok := DecodeEntry(10)
	require.False(t, ok)
	_, ok = DecodeEntry(252)
	require.False(t, ok)
}

func TestStateOf(t *testing.T) {
	require.Equal(t, StateOngoing, StateOf(board.StateUninitialized))
	require.Equal(t, StateOngoing, StateOf(board.StateOngoing))
	require.Equal(t, StateLost, StateOf(board.StateLost))
	require.Equal(t, StateWon, StateOf(board.StateWon))
}

func FuzzDecodeClient(f *testing.F) {
	f.Add([]byte{TagReveal, 1, 0, 2, 0})
	f.Add([]byte{TagReconfigure, 1, 0, 1, 0, 1, 0, 0, 0})
	f.Add([]byte{})
	f.Fuzz(func(t *testing.T, frame []byte) {
		p, err := DecodeClient(frame)
		if err != nil {
			return
		}
		require.Equal(t, frame, EncodeClient(p))
	})
}

func FuzzDecodeServer(f *testing.F) {
	f.Add(BoardWin{}.Encode())
	f.Add(BoardLoss{Loser: 1, HitMines: []board.Coord{{Row: 1, Col: 1}}}.Encode())
	f.Add([]byte{TagFullBoard, 1, 0, 1, 0, 0, 0, 0, 0, 1, 253, 0})
	f.Fuzz(func(t *testing.T, frame []byte) {
		_, _ = DecodeServer(frame)
	})
}
