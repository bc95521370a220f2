// Package convlog persists conversational records in a local SQLite
// database.
package convlog

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"opscenter/lex/internal/voice"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	view       TEXT NOT NULL DEFAULT '',
	intent     TEXT NOT NULL,
	user_text  TEXT NOT NULL,
	reply_text TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`

// Open initializes the database at baseDir/lex.db. The baseDir parameter
// lets tests use t.TempDir().
func Open(baseDir string) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dsn := filepath.Join(baseDir, "lex.db") + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

// Record is one stored conversational exchange.
type Record struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	View      string    `json:"view"`
	Intent    string    `json:"intent"`
	UserText  string    `json:"user_text"`
	ReplyText string    `json:"reply_text"`
	CreatedAt time.Time `json:"created_at"`
}

// Store reads and writes conversation records.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append stores one exchange. Implements the orchestrator's conversation
// log contract.
func (s *Store) Append(ctx context.Context, rec voice.Record) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, title, view, intent, user_text, reply_text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		newID(), rec.Title, rec.View, rec.Intent, rec.UserText, rec.ReplyText,
		now.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

// Recent returns the newest records first. ULIDs sort by creation time, so
// ordering by id is ordering by age.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, view, intent, user_text, reply_text, created_at
		 FROM conversations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var created string
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.View, &rec.Intent,
			&rec.UserText, &rec.ReplyText, &created); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func newID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
