package persistence

import (
	"os"
	"path/filepath"
	"testing"
)

// === FileStore ===

func TestFileStore_LoadMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	if _, err := s.Load(); err != ErrNoSnapshot {
		t.Errorf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	s := NewFileStore(path)

	if err := s.Save([]byte(`{"agents":[]}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(data) != `{"agents":[]}` {
		t.Errorf("round trip: got %q", data)
	}
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := NewFileStore(path)

	s.Save([]byte("one"))
	s.Save([]byte("two"))

	data, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "two" {
		t.Errorf("got %q", data)
	}
}

func TestFileStore_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "state.json"))
	s.Save([]byte("data"))

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the snapshot file, found %d entries", len(entries))
	}
}

func TestFileStore_RestrictivePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := NewFileStore(path)
	s.Save([]byte("secret material"))

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("snapshot permissions: got %o, want 600", perm)
	}
}
