package db

import (
	"path/filepath"
	"testing"
)

func TestOpenSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if _, err := s.Conn().Exec(`CREATE TABLE t (v TEXT)`); err != nil {
		t.Fatalf("create: %v", err)
	}

	s.LockWrite()
	_, err = s.Conn().Exec(`INSERT INTO t (v) VALUES ('x')`)
	s.UnlockWrite()
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	var n int
	if err := s.Conn().QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestOpenSQLiteRejectsEmptyPath(t *testing.T) {
	if _, err := OpenSQLite(" "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
