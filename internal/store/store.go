// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/kanaquiz/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			script TEXT NOT NULL,
			groups TEXT NOT NULL,
			max_progress INTEGER NOT NULL,
			choices INTEGER NOT NULL,
			wrong_count INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_kana_stats (
			session_id TEXT NOT NULL,
			glyph TEXT NOT NULL,
			romaji TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			PRIMARY KEY (session_id, glyph)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_session_kana_stats_glyph ON session_kana_stats(glyph);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

// InsertSession stores a completed session and its per-kana stats. A session without an
// ID gets a fresh UUID. The stored ID is returned.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord, kana []model.KanaStats) (id string, err error) {
	id = rec.ID
	if id == "" {
		id = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, ended_at, script, groups, max_progress, choices, wrong_count, accuracy, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.EndedAt.UTC().Format(time.RFC3339Nano),
		rec.Script,
		strings.Join(rec.Groups, ","),
		rec.MaxProgress,
		rec.Choices,
		rec.WrongCount,
		rec.Accuracy,
		rec.DurationMs,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert session: %w", err)
	}

	if len(kana) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO session_kana_stats (session_id, glyph, romaji, correct, incorrect)
			 VALUES (?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return "", err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, ks := range kana {
			if _, err = stmt.ExecContext(ctx, id, ks.Glyph, ks.Romaji, ks.Correct, ks.Incorrect); err != nil {
				return "", fmt.Errorf("failed to insert kana stats: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ListSessions returns session aggregates filtered by stats config, oldest first. Last
// keeps only the most recent N sessions.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Script != "" {
		clauses = append(clauses, "script = ?")
		args = append(args, cfg.Script)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, script, wrong_count, accuracy, duration_ms
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.Script, &agg.WrongCount, &agg.Accuracy, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	return sessions, nil
}

// ListKanaAggregates sums per-kana stats across the given sessions.
func (s *Store) ListKanaAggregates(ctx context.Context, sessionIDs []string) ([]model.KanaAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT glyph, MAX(romaji) AS romaji, SUM(correct) AS correct, SUM(incorrect) AS incorrect
		FROM session_kana_stats
		WHERE session_id IN (%s)
		GROUP BY glyph
		ORDER BY glyph`, placeholders(len(sessionIDs)))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.KanaAggregate
	for rows.Next() {
		var agg model.KanaAggregate
		if err := rows.Scan(&agg.Glyph, &agg.Romaji, &agg.Correct, &agg.Incorrect); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListKanaStatsForSessions returns per-session stats of the given glyphs, keyed by session
// ID then glyph. Sessions that never asked a glyph have no entry for it.
func (s *Store) ListKanaStatsForSessions(ctx context.Context, sessionIDs, glyphs []string) (map[string]map[string]model.KanaStats, error) {
	result := map[string]map[string]model.KanaStats{}
	if len(sessionIDs) == 0 || len(glyphs) == 0 {
		return result, nil
	}
	args := make([]any, 0, len(sessionIDs)+len(glyphs))
	for _, id := range sessionIDs {
		args = append(args, id)
	}
	for _, g := range glyphs {
		args = append(args, g)
	}
	query := fmt.Sprintf(`SELECT session_id, glyph, romaji, correct, incorrect
		FROM session_kana_stats
		WHERE session_id IN (%s) AND glyph IN (%s)`, placeholders(len(sessionIDs)), placeholders(len(glyphs)))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query kana stats: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	for rows.Next() {
		var id string
		var ks model.KanaStats
		if err := rows.Scan(&id, &ks.Glyph, &ks.Romaji, &ks.Correct, &ks.Incorrect); err != nil {
			return nil, err
		}
		if result[id] == nil {
			result[id] = map[string]model.KanaStats{}
		}
		result[id][ks.Glyph] = ks
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// AccuracySummary returns the accuracy of the most recent session and the mean accuracy
// over all sessions. ok is false when there is no history.
func (s *Store) AccuracySummary(ctx context.Context) (last, overall float64, ok bool, err error) {
	var count int
	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(accuracy) FROM sessions`).Scan(&count, &avg); err != nil {
		return 0, 0, false, err
	}
	if count == 0 {
		return 0, 0, false, nil
	}
	var lastAcc int
	if err := s.db.QueryRowContext(ctx,
		`SELECT accuracy FROM sessions ORDER BY ended_at DESC LIMIT 1`).Scan(&lastAcc); err != nil {
		return 0, 0, false, err
	}
	return float64(lastAcc), avg.Float64, true, nil
}
