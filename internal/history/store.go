// Package history persists per-agent performance records behind a
// load/append/bounded-prune interface. The scoring engine reads a trailing
// window per agent; writes are serialized through the store.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Dixter999/agentmux/pkg/models"
)

// Store is the performance-history surface the scoring engine depends on.
type Store interface {
	// Append writes one record.
	Append(rec models.PerformanceRecord) error
	// Recent returns up to limit records for an agent, newest first.
	Recent(agentID string, limit int) ([]models.PerformanceRecord, error)
	// Prune keeps only the newest keepPerAgent records per agent.
	Prune(keepPerAgent int) error
	// Close releases the store.
	Close() error
}

// DefaultDBPath returns the path to the agentmux history database under
// the XDG data directory.
func DefaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "agentmux", "history.db")
}

// SQLStore is the sqlite-backed Store.
type SQLStore struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates or opens the history database at dbPath, creating parent
// directories as needed and enabling WAL mode for concurrent reads.
func Open(dbPath string) (*SQLStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open(driverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &SQLStore{db: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS performance_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			agent_id TEXT NOT NULL,
			task_kind TEXT NOT NULL,
			success INTEGER NOT NULL,
			quality REAL NOT NULL,
			confidence REAL NOT NULL,
			feedback REAL NOT NULL DEFAULT 0,
			tokens_used INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			recorded_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_perf_agent_time
			ON performance_records(agent_id, recorded_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Append writes one performance record.
func (s *SQLStore) Append(rec models.PerformanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordedAt := rec.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO performance_records
			(agent_id, task_kind, success, quality, confidence, feedback, tokens_used, duration_ms, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.AgentID, string(rec.TaskKind), boolToInt(rec.Success), rec.Quality,
		rec.Confidence, rec.Feedback, rec.TokensUsed, rec.Duration.Milliseconds(),
		recordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// Recent returns up to limit records for an agent, newest first.
func (s *SQLStore) Recent(agentID string, limit int) ([]models.PerformanceRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.Query(`
		SELECT agent_id, task_kind, success, quality, confidence, feedback, tokens_used, duration_ms, recorded_at
		FROM performance_records
		WHERE agent_id = ?
		ORDER BY id DESC
		LIMIT ?`, agentID, limit)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []models.PerformanceRecord
	for rows.Next() {
		var rec models.PerformanceRecord
		var kind, recordedAt string
		var success int
		var durationMS int64
		if err := rows.Scan(&rec.AgentID, &kind, &success, &rec.Quality,
			&rec.Confidence, &rec.Feedback, &rec.TokensUsed, &durationMS, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.TaskKind = models.TaskKind(kind)
		rec.Success = success != 0
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		if ts, err := time.Parse(time.RFC3339Nano, recordedAt); err == nil {
			rec.RecordedAt = ts
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Prune keeps only the newest keepPerAgent records per agent.
func (s *SQLStore) Prune(keepPerAgent int) error {
	if keepPerAgent <= 0 {
		return fmt.Errorf("keepPerAgent must be positive, got %d", keepPerAgent)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		DELETE FROM performance_records
		WHERE id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (
					PARTITION BY agent_id ORDER BY id DESC
				) AS rn
				FROM performance_records
			) WHERE rn <= ?
		)`, keepPerAgent)
	if err != nil {
		return fmt.Errorf("prune records: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
