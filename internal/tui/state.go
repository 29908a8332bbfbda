package tui

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"backoffice-cli/internal/session"
)

const uiStateFileName = "uistate.json"

// uiState is the best-effort "resume where I left off" snapshot. Losing it is
// harmless; it must never block the TUI.
type uiState struct {
	Version     int    `json:"version"`
	ResourceKey string `json:"resourceKey,omitempty"`
	PageSize    int    `json:"pageSize,omitempty"`
}

// uiStatePersist shares the latest snapshot between the model copies of the
// bubbletea loop and the debounced flush goroutine.
type uiStatePersist struct {
	dir string

	mu sync.Mutex
	st uiState
}

func (p *uiStatePersist) set(st uiState) {
	p.mu.Lock()
	p.st = st
	p.mu.Unlock()
}

func (p *uiStatePersist) write() {
	p.mu.Lock()
	st := p.st
	p.mu.Unlock()
	_ = saveUIState(p.dir, st)
}

func uiStatePath(dir string) (string, error) {
	if dir == "" {
		d, err := session.DefaultDir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	return filepath.Join(dir, uiStateFileName), nil
}

func loadUIState(dir string) (uiState, error) {
	path, err := uiStatePath(dir)
	if err != nil {
		return uiState{}, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return uiState{Version: 1}, nil
		}
		return uiState{}, err
	}
	var st uiState
	if err := json.Unmarshal(b, &st); err != nil {
		// Corrupt state files are discarded, not fatal.
		return uiState{Version: 1}, nil
	}
	return st, nil
}

func saveUIState(dir string, st uiState) error {
	path, err := uiStatePath(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
