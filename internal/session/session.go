// Package session persists per-file editing positions between runs, so
// reopening a file restores the cursor and scroll origin. State lives in a
// JSON file under the XDG state directory.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileState is the remembered position for one file.
type FileState struct {
	CursorRow int `json:"cursor_row"`
	CursorCol int `json:"cursor_col"`
	TopRow    int `json:"top_row"`
}

type Session struct {
	Files     map[string]FileState `json:"files"`
	LastSaved time.Time            `json:"last_saved"`
}

// Manager loads and saves the session file. All calls happen on the event
// loop; there is no background writer.
type Manager struct {
	session Session
	path    string
	dirty   bool
}

func NewManager() (*Manager, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}
	m := &Manager{
		session: Session{Files: make(map[string]FileState)},
		path:    path,
	}
	m.load()
	return m, nil
}

func sessionPath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	dir := filepath.Join(stateDir, "teak")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

func (m *Manager) load() {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return // no existing session, start fresh
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return
	}
	if s.Files == nil {
		s.Files = make(map[string]FileState)
	}
	m.session = s
}

// FileState returns the saved position for a file.
func (m *Manager) FileState(absPath string) (FileState, bool) {
	state, ok := m.session.Files[absPath]
	return state, ok
}

// SetFileState records the position for a file.
func (m *Manager) SetFileState(absPath string, state FileState) {
	m.session.Files[absPath] = state
	m.dirty = true
}

// Save persists the session when anything changed since the last save.
func (m *Manager) Save() error {
	if !m.dirty {
		return nil
	}
	m.session.LastSaved = time.Now()
	data, err := json.MarshalIndent(m.session, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return err
	}
	m.dirty = false
	return nil
}
