package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tkta/config"
)

// fileState is the on-disk layout of the JSON backend.
type fileState struct {
	Sessions []persistedSession `json:"sessions"`
	ActiveID int64              `json:"activeSessionId"`
}

// FileRepository persists the whole state as one JSON document at
// <dataDir>/sessions.json. Sessions may hold conversation content, so the
// file is 0600 and the directory 0700.
type FileRepository struct {
	path string
}

// NewFileRepository prepares the data directory and returns a repository
// writing to sessions.json inside it.
func NewFileRepository(dataDir string) (*FileRepository, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileRepository{path: filepath.Join(dataDir, "sessions.json")}, nil
}

// Load reads the persisted state. A missing file is a fresh start, and a
// corrupted file is logged and treated the same way rather than blocking
// startup.
func (r *FileRepository) Load() (State, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to read sessions file: %w", err)
	}
	var fs fileState
	if err := json.Unmarshal(data, &fs); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Storage] Corrupted sessions file %s, starting fresh: %v", r.path, err)
		}
		return State{}, nil
	}
	return State{Sessions: fromPersisted(fs.Sessions), ActiveID: fs.ActiveID}, nil
}

// Save writes the full state atomically by writing a temp file first and
// renaming it over the old one.
func (r *FileRepository) Save(state State) error {
	fs := fileState{Sessions: toPersisted(state.Sessions), ActiveID: state.ActiveID}
	data, err := json.MarshalIndent(fs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sessions: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write sessions file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace sessions file: %w", err)
	}
	return nil
}

// Close is a no-op for the file backend.
func (r *FileRepository) Close() error { return nil }
