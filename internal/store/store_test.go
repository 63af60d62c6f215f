package store

import (
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"
)

func tempDB(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp("", "kod-test-*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	path := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(path) })
	return path
}

// exercise runs the behaviour shared by every Store implementation.
func exercise(t *testing.T, s Store) {
	t.Helper()

	// Variables
	if err := s.PutVar("hp", 12); err != nil {
		t.Fatalf("PutVar failed: %v", err)
	}
	v, ok, err := s.GetVar("hp")
	if err != nil {
		t.Fatalf("GetVar failed: %v", err)
	}
	if !ok || v != 12 {
		t.Errorf("expected hp=12, got %d (ok=%v)", v, ok)
	}
	if err := s.PutVar("hp", -3); err != nil {
		t.Fatalf("PutVar overwrite failed: %v", err)
	}
	if v, _, _ := s.GetVar("hp"); v != -3 {
		t.Errorf("expected hp=-3 after overwrite, got %d", v)
	}
	if _, ok, _ := s.GetVar("missing"); ok {
		t.Error("expected missing variable to be absent")
	}

	// Macros
	if err := s.PutMacro("attack", "1d20 + 5"); err != nil {
		t.Fatalf("PutMacro failed: %v", err)
	}
	src, ok, err := s.GetMacro("attack")
	if err != nil {
		t.Fatalf("GetMacro failed: %v", err)
	}
	if !ok || src != "1d20 + 5" {
		t.Errorf("expected attack macro, got %q (ok=%v)", src, ok)
	}

	// A name is either a variable or a macro
	if err := s.PutMacro("hp", "2d6"); err != nil {
		t.Fatalf("PutMacro failed: %v", err)
	}
	if _, ok, _ := s.GetVar("hp"); ok {
		t.Error("expected macro to replace variable hp")
	}
	if err := s.PutVar("hp", 4); err != nil {
		t.Fatalf("PutVar failed: %v", err)
	}
	if _, ok, _ := s.GetMacro("hp"); ok {
		t.Error("expected variable to replace macro hp")
	}

	vars, err := s.Vars()
	if err != nil {
		t.Fatalf("Vars failed: %v", err)
	}
	if len(vars) != 1 || vars["hp"] != 4 {
		t.Errorf("unexpected vars %v", vars)
	}
	macros, err := s.Macros()
	if err != nil {
		t.Fatalf("Macros failed: %v", err)
	}
	if len(macros) != 1 || macros["attack"] != "1d20 + 5" {
		t.Errorf("unexpected macros %v", macros)
	}

	// Delete
	if err := s.Delete("hp"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete("attack"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := s.GetVar("hp"); ok {
		t.Error("expected hp deleted")
	}
	if _, ok, _ := s.GetMacro("attack"); ok {
		t.Error("expected attack deleted")
	}

	// History
	entries, err := s.History(0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty history, got %v", entries)
	}

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, src := range []string{"1 + 1", "3d6", "x = 2"} {
		err := s.AppendHistory(HistoryEntry{
			Session: "s1",
			Source:  src,
			Result:  "r" + src,
			Ts:      base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("AppendHistory failed: %v", err)
		}
	}

	entries, err = s.History(0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Source != "x = 2" || entries[2].Source != "1 + 1" {
		t.Errorf("expected newest first, got %v", entries)
	}
	if entries[0].Session != "s1" || entries[0].Result != "rx = 2" {
		t.Errorf("unexpected entry %+v", entries[0])
	}
	if !entries[0].Ts.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("expected timestamp %v, got %v", base.Add(2*time.Minute), entries[0].Ts)
	}

	entries, err = s.History(2)
	if err != nil {
		t.Fatalf("History with limit failed: %v", err)
	}
	if len(entries) != 2 || entries[1].Source != "3d6" {
		t.Errorf("unexpected limited history %v", entries)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemory()
	defer s.Close()
	exercise(t, s)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLite(tempDB(t))
	if err != nil {
		t.Fatalf("Failed to create SQLite store: %v", err)
	}
	defer s.Close()
	exercise(t, s)

	version, err := s.GetMetadata("schema_version")
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("expected schema version %s, got %q", SchemaVersion, version)
	}
}

func TestSQLitePersistence(t *testing.T) {
	path := tempDB(t)

	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("Failed to create SQLite store: %v", err)
	}
	s.PutVar("gold", 250)
	s.PutMacro("fireball", "8d6")
	s.AppendHistory(HistoryEntry{Session: "a", Source: "8d6", Result: "27"})

	// Close and reopen to verify persistence
	s.Close()

	s2, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("Failed to reopen SQLite store: %v", err)
	}
	defer s2.Close()

	if v, ok, _ := s2.GetVar("gold"); !ok || v != 250 {
		t.Errorf("expected gold=250 after reopen, got %d (ok=%v)", v, ok)
	}
	if src, ok, _ := s2.GetMacro("fireball"); !ok || src != "8d6" {
		t.Errorf("expected fireball macro after reopen, got %q (ok=%v)", src, ok)
	}
	entries, _ := s2.History(0)
	if len(entries) != 1 || entries[0].Result != "27" {
		t.Fatalf("expected one history entry after reopen, got %v", entries)
	}
	if entries[0].Ts.IsZero() {
		t.Error("expected non-empty timestamp")
	}
}

func TestSQLiteUnsupportedVersion(t *testing.T) {
	path := tempDB(t)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	_, err = db.Exec(`
		CREATE TABLE metadata (key TEXT PRIMARY KEY, value TEXT NOT NULL);
		INSERT INTO metadata (key, value) VALUES ('schema_version', '99');
	`)
	db.Close()
	if err != nil {
		t.Fatalf("seed database: %v", err)
	}

	s, err := NewSQLite(path)
	if err == nil {
		s.Close()
		t.Fatal("expected error for unsupported schema version")
	}
	if !strings.Contains(err.Error(), "unsupported schema version: 99") {
		t.Errorf("unexpected error: %v", err)
	}
}
