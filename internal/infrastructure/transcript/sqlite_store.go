// Package transcript persists chat exchanges in a local SQLite database.
package transcript

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/aside/internal/domain"
	"github.com/doeshing/aside/internal/ports"
)

// SQLiteStore keeps the chat transcript in ~/.aside/transcript.db.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore opens (or creates) the default transcript database.
func NewSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStoreAt(filepath.Join(userHome(), ".aside", "transcript.db"))
}

// NewSQLiteStoreAt opens the transcript database at an explicit path.
func NewSQLiteStoreAt(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS exchanges (
		id TEXT PRIMARY KEY,
		timestamp TEXT,
		prompt TEXT,
		selection TEXT,
		response TEXT,
		model TEXT,
		failed INTEGER
	);`)
	return err
}

// Save inserts one exchange.
func (s *SQLiteStore) Save(rec domain.ChatExchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO exchanges
		(id, timestamp, prompt, selection, response, model, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Timestamp.Format(time.RFC3339),
		rec.Prompt,
		rec.Selection,
		rec.Response,
		rec.Model,
		boolToInt(rec.Failed),
	)
	return err
}

// Records returns exchanges newest first (limit/search optional).
func (s *SQLiteStore) Records(limit int, search string) ([]domain.ChatExchange, error) {
	builder := strings.Builder{}
	builder.WriteString("SELECT id, timestamp, prompt, selection, response, model, failed FROM exchanges")
	var args []interface{}
	if search != "" {
		builder.WriteString(" WHERE prompt LIKE ? OR response LIKE ?")
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	builder.WriteString(" ORDER BY datetime(timestamp) DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []domain.ChatExchange
	for rows.Next() {
		var rec domain.ChatExchange
		var ts string
		var failed int
		if err := rows.Scan(&rec.ID, &ts, &rec.Prompt, &rec.Selection, &rec.Response, &rec.Model, &failed); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Failed = failed == 1
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes every exchange.
func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM exchanges")
	return err
}

// ExportJSON writes the transcript to a jsonl file.
func (s *SQLiteStore) ExportJSON(dest string) error {
	records, err := s.Records(0, "")
	if err != nil {
		return err
	}
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := file.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func userHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

var _ ports.TranscriptRepository = (*SQLiteStore)(nil)
