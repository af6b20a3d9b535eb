package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSessionRoundTrip(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if _, ok := m.FileState("/tmp/a.go"); ok {
		t.Fatalf("unexpected state in fresh session")
	}
	m.SetFileState("/tmp/a.go", FileState{CursorRow: 12, CursorCol: 4, TopRow: 8})
	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	m2, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	state, ok := m2.FileState("/tmp/a.go")
	if !ok {
		t.Fatalf("state not persisted")
	}
	if state != (FileState{CursorRow: 12, CursorCol: 4, TopRow: 8}) {
		t.Fatalf("state = %+v", state)
	}
}

func TestSaveSkipsWhenClean(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(m.path); !os.IsNotExist(err) {
		t.Fatalf("session file written without changes")
	}
}

func TestLoadIgnoresCorruptFile(t *testing.T) {
	stateDir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", stateDir)
	dir := filepath.Join(stateDir, "teak")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "session.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if _, ok := m.FileState("/tmp/a.go"); ok {
		t.Fatalf("state recovered from corrupt file")
	}
	m.SetFileState("/tmp/a.go", FileState{CursorRow: 1})
	if err := m.Save(); err != nil {
		t.Fatalf("Save over corrupt file: %v", err)
	}
}
