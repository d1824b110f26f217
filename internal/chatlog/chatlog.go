// Package chatlog persists finished dialogue turns to SQLite.
// Writes happen off the request path and failures never affect replies.
package chatlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver for database/sql

	"github.com/sayeesck/portfolio-chatbot-go/internal/metrics"
)

// Entry is one recorded exchange between a visitor and the bot.
type Entry struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Exported  bool      `json:"-"`
}

const schema = `
CREATE TABLE IF NOT EXISTS chat_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	speaker TEXT NOT NULL CHECK (speaker IN ('user', 'bot')),
	text TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	exported INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_chat_log_session ON chat_log(session_id);
CREATE INDEX IF NOT EXISTS idx_chat_log_created ON chat_log(created_at);
CREATE INDEX IF NOT EXISTS idx_chat_log_exported ON chat_log(exported) WHERE exported = 0;
`

// Store wraps the SQLite chat-log database.
type Store struct {
	conn    *sql.DB
	path    string
	metrics *metrics.Metrics
}

// New opens (or creates) the chat-log database and initializes the schema.
func New(dbPath string, m *metrics.Metrics) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=30000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{conn: conn, path: dbPath, metrics: m}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ready verifies the database is reachable. Used by the readiness probe.
func (s *Store) Ready(ctx context.Context) error {
	if s == nil || s.conn == nil {
		return fmt.Errorf("chat log store not initialized")
	}
	return s.conn.PingContext(ctx)
}

// Append records one exchange (user message and bot reply) in a single
// transaction so a transcript never contains half a turn.
func (s *Store) Append(ctx context.Context, sessionID, userText, botText string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return s.recordWrite(fmt.Errorf("begin append: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	const insert = `INSERT INTO chat_log (session_id, speaker, text, created_at) VALUES (?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insert, sessionID, "user", userText, now); err != nil {
		return s.recordWrite(fmt.Errorf("insert user turn: %w", err))
	}
	if _, err := tx.ExecContext(ctx, insert, sessionID, "bot", botText, now); err != nil {
		return s.recordWrite(fmt.Errorf("insert bot turn: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return s.recordWrite(fmt.Errorf("commit append: %w", err))
	}
	return s.recordWrite(nil)
}

func (s *Store) recordWrite(err error) error {
	if s.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		s.metrics.RecordChatLogWrite(status)
	}
	return err
}

// SessionEntries returns all entries for a session in insertion order.
func (s *Store) SessionEntries(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, session_id, speaker, text, created_at FROM chat_log WHERE session_id = ? ORDER BY id`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// UnexportedEntries returns up to limit entries not yet shipped to the
// archive, oldest first.
func (s *Store) UnexportedEntries(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, session_id, speaker, text, created_at FROM chat_log WHERE exported = 0 ORDER BY id LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("query unexported entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// MarkExported flags the given entries as shipped to the archive.
func (s *Store) MarkExported(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mark exported: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `UPDATE chat_log SET exported = 1 WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare mark exported: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("mark entry %d exported: %w", id, err)
		}
	}
	return tx.Commit()
}

// PruneOlderThan deletes entries created before the cutoff and returns
// the number of rows removed.
func (s *Store) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM chat_log WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune chat log: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}
	return n, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Speaker, &e.Text, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}
