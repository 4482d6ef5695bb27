package app

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// PromptStore persists the input box's recent prompts between runs. Message
// history itself stays in memory; the backend is its source of truth.
type PromptStore struct {
	Root   string
	dbPath string

	mu sync.Mutex
	db *sql.DB
}

// DefaultHistoryRoot is ~/.local/share/chatcli.
func DefaultHistoryRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chatcli"
	}
	return filepath.Join(home, ".local", "share", "chatcli")
}

func NewPromptStore(root string) (*PromptStore, error) {
	if strings.TrimSpace(root) == "" {
		root = DefaultHistoryRoot()
	}
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	st := &PromptStore{
		Root:   root,
		dbPath: filepath.Join(root, "chatcli.db"),
	}
	if err := st.init(); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *PromptStore) init() error {
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return err
	}
	// Keep sqlite responsive under contention.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return err
		}
	}
	schema := `CREATE TABLE IF NOT EXISTS prompt_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		prompt TEXT NOT NULL,
		created_at TEXT NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return err
	}
	s.db = db
	return nil
}

// Append records one submitted prompt. Empty prompts and immediate repeats
// are skipped.
func (s *PromptStore) Append(prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var last string
	row := s.db.QueryRow(`SELECT prompt FROM prompt_history ORDER BY id DESC LIMIT 1`)
	if err := row.Scan(&last); err == nil && last == prompt {
		return nil
	}
	_, err := s.db.Exec(
		`INSERT INTO prompt_history (prompt, created_at) VALUES (?, ?)`,
		prompt, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Recent returns up to limit prompts, oldest first.
func (s *PromptStore) Recent(limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT prompt FROM prompt_history ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Reverse into chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *PromptStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
