package storage

import (
	"sync"
	"time"

	"tkta/config"
	"tkta/model"
)

// Store holds every session in memory and writes through to a Repository.
// There is always at least one session and exactly one active session;
// operations that would violate that synthesize a fresh one instead.
//
// Persistence is best effort: a failed save is logged and the in-memory
// state stays authoritative for the rest of the run.
type Store struct {
	mu       sync.Mutex
	repo     Repository
	sessions []Session
	activeID int64
	lastID   int64
}

// NewStore restores state from the repository. A load error, an empty
// state, or an active pointer that matches no session all degrade
// gracefully: the store starts with whatever sessions survived, creating
// a fresh one if none did, and activates the newest session when the
// pointer is stale.
func NewStore(repo Repository) *Store {
	s := &Store{repo: repo}
	state, err := repo.Load()
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Storage] Load failed, starting fresh: %v", err)
		}
		state = State{}
	}
	s.sessions = state.Sessions
	for _, sess := range s.sessions {
		if sess.ID > s.lastID {
			s.lastID = sess.ID
		}
	}
	if len(s.sessions) == 0 {
		s.createSessionLocked()
		s.persistLocked()
		return s
	}
	s.activeID = state.ActiveID
	if s.findLocked(s.activeID) == nil {
		// Same fallback as Delete: the newest session takes over.
		s.activeID = s.sessions[len(s.sessions)-1].ID
	}
	return s
}

// Sessions returns the sessions newest first, as the session list displays
// them. The returned slice is a copy; the transcripts are shared.
func (s *Store) Sessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Session, len(s.sessions))
	for i := range s.sessions {
		out[len(s.sessions)-1-i] = s.sessions[i]
	}
	return out
}

// Active returns the current session.
func (s *Store) Active() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.findLocked(s.activeID)
}

// ActiveID returns the current session's identifier.
func (s *Store) ActiveID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// NewSession creates a session seeded with the greeting, makes it active,
// and returns its id.
func (s *Store) NewSession() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.createSessionLocked()
	s.persistLocked()
	return id
}

// Select makes the given session active. An unknown id is a silent no-op
// so a stale reference from the UI cannot wedge the store.
func (s *Store) Select(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findLocked(id) == nil {
		return
	}
	s.activeID = id
	s.persistLocked()
}

// Delete removes the given session. An unknown id is a silent no-op.
// Deleting the last session immediately synthesizes a fresh one, and
// deleting the active session activates the newest survivor.
func (s *Store) Delete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)
	if len(s.sessions) == 0 {
		s.createSessionLocked()
	} else if s.activeID == id {
		s.activeID = s.sessions[len(s.sessions)-1].ID
	}
	s.persistLocked()
}

// Append adds a message to the named session's transcript. The first user
// message of a fresh session also names the session. Turn writers address
// the session they started in, so a mid-turn switch cannot reroute the
// stream; writes to a session deleted meanwhile are dropped.
func (s *Store) Append(sessionID int64, msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.findLocked(sessionID)
	if sess == nil {
		return
	}
	if msg.Role == model.RoleUser && len(sess.Messages) == 1 && sess.Title == DefaultTitle {
		sess.Title = DeriveTitle(msg.Content)
	}
	sess.Messages = append(sess.Messages, msg)
	s.persistLocked()
}

// MutateLast applies fn to the newest message of the named session. The
// streaming path calls this once per delta, so the write-through happens
// only on Flush, not here.
func (s *Store) MutateLast(sessionID int64, fn func(*model.Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.findLocked(sessionID)
	if sess == nil {
		return
	}
	if last := sess.LastMessage(); last != nil {
		fn(last)
	}
}

// ReplaceLast swaps the newest message of the named session wholesale.
func (s *Store) ReplaceLast(sessionID int64, msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.findLocked(sessionID)
	if sess == nil {
		return
	}
	if len(sess.Messages) == 0 {
		sess.Messages = append(sess.Messages, msg)
	} else {
		sess.Messages[len(sess.Messages)-1] = msg
	}
	s.persistLocked()
}

// SetRendered caches the rendered markdown for one message of the active
// session. Render caches are display state, so this never persists.
func (s *Store) SetRendered(index int, rendered string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.findLocked(s.activeID)
	if index >= 0 && index < len(sess.Messages) {
		sess.Messages[index].Rendered = rendered
	}
}

// ReleaseImages drops image attachments from the named session. An
// attachment is sent to the provider once, with the live message; replayed
// history is text-only, so there is no reason to keep the bytes around.
func (s *Store) ReleaseImages(sessionID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.findLocked(sessionID)
	if sess == nil {
		return
	}
	for i := range sess.Messages {
		sess.Messages[i].Image = nil
	}
}

// Messages returns a copy of the active session's transcript.
func (s *Store) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messagesLocked(s.activeID)
}

// MessagesOf returns a copy of the named session's transcript.
func (s *Store) MessagesOf(sessionID int64) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messagesLocked(sessionID)
}

func (s *Store) messagesLocked(sessionID int64) []model.Message {
	sess := s.findLocked(sessionID)
	if sess == nil {
		return nil
	}
	out := make([]model.Message, len(sess.Messages))
	copy(out, sess.Messages)
	return out
}

// Flush writes the current state to the repository.
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistLocked()
}

// Close flushes and releases the repository.
func (s *Store) Close() error {
	s.Flush()
	return s.repo.Close()
}

func (s *Store) createSessionLocked() int64 {
	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	s.sessions = append(s.sessions, Session{
		ID:       id,
		Title:    DefaultTitle,
		Messages: []model.Message{newGreetingMessage()},
	})
	s.activeID = id
	return id
}

func (s *Store) findLocked(id int64) *Session {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return &s.sessions[i]
		}
	}
	return nil
}

func (s *Store) persistLocked() {
	state := State{Sessions: s.sessions, ActiveID: s.activeID}
	if err := s.repo.Save(state); err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[Storage] Save failed: %v", err)
	}
}
