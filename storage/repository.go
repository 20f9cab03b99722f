package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"tkta/model"
)

// State is the full persisted form of the store: every session plus which
// one was active. Repositories load and save it as a unit.
type State struct {
	Sessions []Session
	ActiveID int64
}

// Repository is the persistence port for session state. Implementations
// must treat Load of a missing or unreadable backing store as a normal
// condition and return an empty State with no error; the Store synthesizes
// a fresh session in that case.
type Repository interface {
	Load() (State, error)
	Save(State) error
	Close() error
}

// OpenRepository picks a backend by name. "sqlite" opens sessions.db under
// dataDir; anything else uses the JSON file backend.
func OpenRepository(backend, dataDir string) (Repository, error) {
	if backend == "sqlite" {
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return NewSQLiteRepository(filepath.Join(dataDir, "sessions.db"))
	}
	return NewFileRepository(dataDir)
}

// persistedSession is the wire layout shared by the file and SQLite
// backends. Only role and content survive persistence; timestamps and
// render caches are rebuilt on load, and images are never stored.
type persistedSession struct {
	ID       int64              `json:"id"`
	Title    string             `json:"title"`
	Messages []persistedMessage `json:"messages"`
}

type persistedMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func toPersisted(sessions []Session) []persistedSession {
	out := make([]persistedSession, 0, len(sessions))
	for _, s := range sessions {
		ps := persistedSession{ID: s.ID, Title: s.Title}
		for _, m := range s.Messages {
			ps.Messages = append(ps.Messages, persistedMessage{Role: m.Role, Content: m.Content})
		}
		out = append(out, ps)
	}
	return out
}

func messageFromPersisted(m persistedMessage) model.Message {
	return model.Message{Role: m.Role, Content: m.Content}
}

func fromPersisted(sessions []persistedSession) []Session {
	out := make([]Session, 0, len(sessions))
	for _, ps := range sessions {
		s := Session{ID: ps.ID, Title: ps.Title}
		for _, m := range ps.Messages {
			s.Messages = append(s.Messages, messageFromPersisted(m))
		}
		out = append(out, s)
	}
	return out
}
