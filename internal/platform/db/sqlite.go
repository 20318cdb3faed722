package db

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLite wraps a single-connection SQLite handle with write serialization.
// Writers must hold LockWrite for the whole load-modify-store transaction.
type SQLite struct {
	conn    *sql.DB
	writeMu sync.Mutex
}

// OpenSQLite opens path (":memory:" for an in-process database) with WAL
// journaling and a busy timeout.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("openSQLite: path is empty")
	}

	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("openSQLite: open %q: %w", path, err)
	}

	// One connection: SQLite has a single writer, and ":memory:" databases
	// exist per connection.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("openSQLite: ping %q: %w", path, err)
	}

	log.Debug().Str("path", path).Msg("sqlite opened")
	return &SQLite{conn: conn}, nil
}

func (s *SQLite) Conn() *sql.DB {
	return s.conn
}

func (s *SQLite) Close() error {
	return s.conn.Close()
}

// LockWrite acquires the write mutex. Must be paired with UnlockWrite.
func (s *SQLite) LockWrite() {
	s.writeMu.Lock()
}

func (s *SQLite) UnlockWrite() {
	s.writeMu.Unlock()
}
