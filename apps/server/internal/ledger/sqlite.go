package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sweeper-lite/replay"

	_ "modernc.org/sqlite"
)

type SQLiteService struct {
	db     *sql.DB
	retain int
}

func NewSQLiteService(dbPath string, retain int) (*SQLiteService, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// one connection, so ":memory:" stays a single database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pragmas := []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSQLiteSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if retain <= 0 {
		retain = defaultRetain
	}
	return &SQLiteService{db: db, retain: retain}, nil
}

func (s *SQLiteService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteService) RecordGame(ctx context.Context, rec GameRecord, tape *replay.Tape) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	summaryRaw, err := encodeSummary(rec.Summary)
	if err != nil {
		return err
	}
	tapeRaw, err := encodeTape(tape)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO sweeper_games (
    game_id, width, height, mines, outcome, cleared, loser_id, loser_name, loser_fingerprint,
    participants, started_at_ms, ended_at_ms, summary_pb, tape_json
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (game_id) DO NOTHING
`, rec.GameID, int64(rec.Width), int64(rec.Height), int64(rec.Mines), rec.Outcome, int64(rec.Cleared),
		int64(rec.Loser), rec.LoserName, rec.LoserFingerprint, rec.Participants,
		rec.StartedAt.UTC().UnixMilli(), rec.EndedAt.UTC().UnixMilli(), summaryRaw, tapeRaw)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
DELETE FROM sweeper_games
WHERE game_id IN (
    SELECT game_id
    FROM sweeper_games
    ORDER BY ended_at_ms DESC, game_id DESC
    LIMIT -1 OFFSET ?
)
`, s.retain)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteService) ListRecent(ctx context.Context, limit int) ([]GameRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+recordColumns+`
FROM sweeper_games
ORDER BY ended_at_ms DESC, game_id DESC
LIMIT ?
`, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]GameRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}

func (s *SQLiteService) GetGame(ctx context.Context, gameID string) (GameRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM sweeper_games WHERE game_id = ?`, gameID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return GameRecord{}, ErrNotFound
	}
	return rec, err
}

func (s *SQLiteService) GetTape(ctx context.Context, gameID string) (*replay.Tape, error) {
	var raw *string
	err := s.db.QueryRowContext(ctx, `SELECT tape_json FROM sweeper_games WHERE game_id = ?`, gameID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeTape(raw)
}

func ensureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS sweeper_games (
    game_id TEXT PRIMARY KEY,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    mines INTEGER NOT NULL,
    outcome TEXT NOT NULL,
    cleared INTEGER NOT NULL,
    loser_id INTEGER NOT NULL DEFAULT 0,
    loser_name TEXT NOT NULL DEFAULT '',
    loser_fingerprint TEXT NOT NULL DEFAULT '',
    participants INTEGER NOT NULL DEFAULT 0,
    started_at_ms INTEGER NOT NULL,
    ended_at_ms INTEGER NOT NULL,
    summary_pb BLOB,
    tape_json TEXT
)`,
		`CREATE INDEX IF NOT EXISTS idx_sweeper_games_ended ON sweeper_games(ended_at_ms DESC)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
