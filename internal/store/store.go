package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"StockSentry/internal/model"
)

// SessionTTL is how long an unconfirmed removal session stays valid.
const SessionTTL = 300 * time.Second

// Confirmation session failure modes.
var (
	ErrSessionNotFound = errors.New("session not found or expired")
	ErrNotOwner        = errors.New("session belongs to another user")
)

// Store persists the watchlist, removal confirmation sessions, and scan
// history in a SQLite database.
type Store struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] store opened: %s", dbPath)
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS watchlist (
			symbol TEXT PRIMARY KEY
		)`,

		`CREATE TABLE IF NOT EXISTS confirm_sessions (
			id         TEXT PRIMARY KEY,
			owner_id   INTEGER NOT NULL,
			symbols    TEXT NOT NULL,
			expires_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_exp ON confirm_sessions(expires_at)`,

		`CREATE TABLE IF NOT EXISTS scan_history (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			submitted INTEGER,
			hits      INTEGER,
			failures  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_ts ON scan_history(timestamp)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Normalize canonicalizes a symbol: trimmed and uppercased.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Add inserts a symbol into the watchlist. Returns true if it was newly added.
func (s *Store) Add(symbol string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`INSERT OR IGNORE INTO watchlist (symbol) VALUES (?)`, Normalize(symbol))
	if err != nil {
		return false, fmt.Errorf("add symbol: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Remove deletes a symbol from the watchlist. Returns true if it existed.
func (s *Store) Remove(symbol string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM watchlist WHERE symbol = ?`, Normalize(symbol))
	if err != nil {
		return false, fmt.Errorf("remove symbol: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// List returns all tracked symbols.
func (s *Store) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT symbol FROM watchlist ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

// Len returns the number of tracked symbols.
func (s *Store) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM watchlist`).Scan(&n)
	return n, err
}

// CreateSession stores a pending removal for later confirmation and returns
// its id. The session expires after SessionTTL and may be taken once, only
// by the owner.
func (s *Store) CreateSession(ownerID int64, symbols []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := make([]string, len(symbols))
	for i, sym := range symbols {
		normalized[i] = Normalize(sym)
	}

	now := s.now()

	// Drop anything already expired while we are here.
	if _, err := s.db.Exec(`DELETE FROM confirm_sessions WHERE expires_at < ?`, now.Unix()); err != nil {
		return "", fmt.Errorf("purge sessions: %w", err)
	}

	id := uuid.New().String()
	_, err := s.db.Exec(`INSERT INTO confirm_sessions (id, owner_id, symbols, expires_at) VALUES (?,?,?,?)`,
		id, ownerID, strings.Join(normalized, ","), now.Add(SessionTTL).Unix())
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// TakeSession consumes a confirmation session. The acting user must match
// the session owner; expired or already-taken sessions are rejected.
func (s *Store) TakeSession(id string, ownerID int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var owner int64
	var symbols string
	var expiresAt int64
	err := s.db.QueryRow(`SELECT owner_id, symbols, expires_at FROM confirm_sessions WHERE id = ?`, id).
		Scan(&owner, &symbols, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if expiresAt < s.now().Unix() {
		if _, err := s.db.Exec(`DELETE FROM confirm_sessions WHERE id = ?`, id); err != nil {
			return nil, fmt.Errorf("purge session: %w", err)
		}
		return nil, ErrSessionNotFound
	}
	if owner != ownerID {
		return nil, ErrNotOwner
	}

	// Single use.
	if _, err := s.db.Exec(`DELETE FROM confirm_sessions WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("take session: %w", err)
	}
	return strings.Split(symbols, ","), nil
}

// RecordScan appends one scan summary to the history.
func (s *Store) RecordScan(sum model.ScanSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO scan_history (timestamp, submitted, hits, failures) VALUES (?,?,?,?)`,
		s.now().Unix(), sum.Submitted, sum.Hits, sum.Failures)
	return err
}
