package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"sweeper-lite/apps/server/internal/room"
	"sweeper-lite/replay"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
	defaultRetain      = 500
	writeTimeout       = 5 * time.Second
)

var ErrNotFound = errors.New("not found")

// Service stores finished boards.
type Service interface {
	Close() error
	RecordGame(ctx context.Context, rec GameRecord, tape *replay.Tape) error
	ListRecent(ctx context.Context, limit int) ([]GameRecord, error)
	GetGame(ctx context.Context, gameID string) (GameRecord, error)
	GetTape(ctx context.Context, gameID string) (*replay.Tape, error)
}

// GameRecord is one finished board.
type GameRecord struct {
	GameID           string         `json:"game_id"`
	Width            uint16         `json:"width"`
	Height           uint16         `json:"height"`
	Mines            uint32         `json:"mines"`
	Outcome          string         `json:"outcome"`
	Cleared          uint32         `json:"cleared"`
	Loser            uint8          `json:"loser,omitempty"`
	LoserName        string         `json:"loser_name,omitempty"`
	LoserFingerprint string         `json:"loser_fingerprint,omitempty"`
	Participants     int            `json:"participants"`
	StartedAt        time.Time      `json:"started_at"`
	EndedAt          time.Time      `json:"ended_at"`
	Summary          map[string]any `json:"summary"`
}

// Config selects and configures the backing store.
type Config struct {
	Mode       string // off | memory | sqlite | postgres
	SQLitePath string
	DSN        string
	Retain     int
}

// NewService builds the store named by cfg.Mode and returns a label for logs.
func NewService(cfg Config) (Service, string, error) {
	retain := cfg.Retain
	if retain <= 0 {
		retain = defaultRetain
	}
	switch mode := strings.ToLower(strings.TrimSpace(cfg.Mode)); mode {
	case "off", "none":
		return &noopService{}, "off", nil
	case "", "memory":
		service, err := NewSQLiteService(":memory:", retain)
		if err != nil {
			return nil, "", err
		}
		return service, "sqlite-memory", nil
	case "sqlite", "local":
		service, err := NewSQLiteService(cfg.SQLitePath, retain)
		if err != nil {
			return nil, "", err
		}
		return service, "sqlite", nil
	case "postgres":
		service, err := NewPostgresService(cfg.DSN, retain)
		if err != nil {
			return nil, "", err
		}
		return service, "postgres", nil
	default:
		return nil, "", fmt.Errorf("unknown ledger mode %q", mode)
	}
}

// NewGameEndHook persists every finished board into svc.
func NewGameEndHook(svc Service) room.GameEndHook {
	return func(info room.GameEndInfo) {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := svc.RecordGame(ctx, RecordFromGameEnd(info), info.Tape); err != nil {
			log.Printf("[Ledger] record game failed: game=%s err=%v", info.GameID, err)
		}
	}
}

// RecordFromGameEnd flattens a game end notice into a record.
func RecordFromGameEnd(info room.GameEndInfo) GameRecord {
	safe := uint32(info.Width)*uint32(info.Height) - info.Mines
	progress := 1.0
	if safe > 0 {
		progress = float64(info.Cleared) / float64(safe)
	}
	summary := map[string]any{
		"progress":    progress,
		"duration_ms": info.EndedAt.Sub(info.StartedAt).Milliseconds(),
	}
	if info.Tape != nil {
		counts := map[string]any{}
		for _, step := range info.Tape.Steps {
			n, _ := counts[string(step.Kind)].(int)
			counts[string(step.Kind)] = n + 1
		}
		summary["steps"] = len(info.Tape.Steps)
		summary["step_kinds"] = counts
	}
	return GameRecord{
		GameID:           info.GameID,
		Width:            info.Width,
		Height:           info.Height,
		Mines:            info.Mines,
		Outcome:          info.Outcome.String(),
		Cleared:          info.Cleared,
		Loser:            info.Loser,
		LoserName:        info.LoserName,
		LoserFingerprint: info.LoserFingerprint,
		Participants:     info.Participants,
		StartedAt:        info.StartedAt,
		EndedAt:          info.EndedAt,
		Summary:          summary,
	}
}

type noopService struct{}

func (n *noopService) Close() error { return nil }

func (n *noopService) RecordGame(_ context.Context, _ GameRecord, _ *replay.Tape) error {
	return nil
}

func (n *noopService) ListRecent(_ context.Context, _ int) ([]GameRecord, error) {
	return []GameRecord{}, nil
}

func (n *noopService) GetGame(_ context.Context, _ string) (GameRecord, error) {
	return GameRecord{}, ErrNotFound
}

func (n *noopService) GetTape(_ context.Context, _ string) (*replay.Tape, error) {
	return nil, ErrNotFound
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const recordColumns = `game_id, width, height, mines, outcome, cleared, loser_id, loser_name, loser_fingerprint, participants, started_at_ms, ended_at_ms, summary_pb`

func scanRecord(row rowScanner) (GameRecord, error) {
	var (
		rec                    GameRecord
		width, height, loserID int64
		mines, cleared         int64
		startedMs, endedMs     int64
		summaryRaw             []byte
	)
	if err := row.Scan(
		&rec.GameID, &width, &height, &mines, &rec.Outcome, &cleared,
		&loserID, &rec.LoserName, &rec.LoserFingerprint, &rec.Participants,
		&startedMs, &endedMs, &summaryRaw,
	); err != nil {
		return GameRecord{}, err
	}
	rec.Width = uint16(width)
	rec.Height = uint16(height)
	rec.Mines = uint32(mines)
	rec.Cleared = uint32(cleared)
	rec.Loser = uint8(loserID)
	rec.StartedAt = time.UnixMilli(startedMs).UTC()
	rec.EndedAt = time.UnixMilli(endedMs).UTC()

	summary, err := decodeSummary(summaryRaw)
	if err != nil {
		return GameRecord{}, err
	}
	rec.Summary = summary
	return rec, nil
}

// encodeSummary stores the free-form summary as a protobuf Struct.
func encodeSummary(summary map[string]any) ([]byte, error) {
	if summary == nil {
		summary = map[string]any{}
	}
	st, err := structpb.NewStruct(summary)
	if err != nil {
		return nil, fmt.Errorf("summary to struct: %w", err)
	}
	return proto.Marshal(st)
}

func decodeSummary(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var st structpb.Struct
	if err := proto.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return st.AsMap(), nil
}

func encodeTape(tape *replay.Tape) (any, error) {
	if tape == nil {
		return nil, nil
	}
	raw, err := json.Marshal(tape)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func decodeTape(raw *string) (*replay.Tape, error) {
	if raw == nil || *raw == "" {
		return nil, ErrNotFound
	}
	var tape replay.Tape
	if err := json.Unmarshal([]byte(*raw), &tape); err != nil {
		return nil, fmt.Errorf("decode tape: %w", err)
	}
	return &tape, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultRecentLimit
	}
	if limit > maxRecentLimit {
		return maxRecentLimit
	}
	return limit
}

func validateRecord(rec GameRecord) error {
	if strings.TrimSpace(rec.GameID) == "" {
		return fmt.Errorf("game id is required")
	}
	if rec.EndedAt.IsZero() {
		return fmt.Errorf("game %s has no end time", rec.GameID)
	}
	return nil
}
