package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nicoberrocal/arenaCore/events"
)

// BattleSummary is one row of the battle listing.
type BattleSummary struct {
	ID              string    `json:"id"`
	Seed            int64     `json:"seed"`
	WinnerTeam      *int      `json:"winner_team"`
	TotalTicks      int       `json:"total_ticks"`
	DurationSeconds float64   `json:"duration_seconds"`
	EventCount      int       `json:"event_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// InsertTrace stores a finished trace document. The full trace is kept as a
// JSON blob beside the queryable summary columns.
func (db *DB) InsertTrace(trace *events.Trace) error {
	blob, err := json.Marshal(trace)
	if err != nil {
		return fmt.Errorf("marshal trace: %w", err)
	}

	var winner sql.NullInt64
	if trace.FinalState.WinnerTeam != nil {
		winner = sql.NullInt64{Int64: int64(*trace.FinalState.WinnerTeam), Valid: true}
	}

	duration := float64(trace.FinalState.TotalTicks) / float64(trace.Metadata.TicksPerSecond)

	_, err = db.conn.Exec(`
		INSERT OR REPLACE INTO battles(id, seed, winner_team, total_ticks, duration_seconds, event_count, created_at, trace_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		trace.ID.Hex(), trace.Metadata.Seed, winner,
		trace.FinalState.TotalTicks, duration, len(trace.Events),
		trace.Metadata.Timestamp.Format(time.RFC3339), blob,
	)
	return err
}

// ListBattles returns the most recent battles, newest first.
func (db *DB) ListBattles(limit int) ([]BattleSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.conn.Query(`
		SELECT id, seed, winner_team, total_ticks, duration_seconds, event_count, created_at
		FROM battles ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []BattleSummary
	for rows.Next() {
		var s BattleSummary
		var winner sql.NullInt64
		var createdAt string
		if err := rows.Scan(&s.ID, &s.Seed, &winner, &s.TotalTicks, &s.DurationSeconds, &s.EventCount, &createdAt); err != nil {
			return nil, err
		}
		if winner.Valid {
			team := int(winner.Int64)
			s.WinnerTeam = &team
		}
		s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		result = append(result, s)
	}
	return result, rows.Err()
}

// GetTrace loads a stored trace by id.
func (db *DB) GetTrace(id string) (*events.Trace, error) {
	var blob []byte
	err := db.conn.QueryRow(`SELECT trace_json FROM battles WHERE id = ?`, id).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("battle %q not found", id)
	}
	if err != nil {
		return nil, err
	}

	var trace events.Trace
	if err := json.Unmarshal(blob, &trace); err != nil {
		return nil, fmt.Errorf("unmarshal trace: %w", err)
	}
	return &trace, nil
}

// BattleCount returns how many battles are stored.
func (db *DB) BattleCount() (int, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(1) FROM battles`).Scan(&count)
	return count, err
}
