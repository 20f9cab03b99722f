package storage

import "strings"

// SessionMatch is one hit from a cross-session search: the session it lives
// in plus a short preview of the matching message.
type SessionMatch struct {
	SessionID    int64
	SessionTitle string
	MessageIndex int
	Role         string
	Preview      string
}

// Search finds sessions whose title or transcript contains query,
// case-insensitive. A title hit reports message index -1; transcript hits
// carry a preview capped at 100 bytes. System messages are skipped.
func (s *Store) Search(query string) []SessionMatch {
	if query == "" {
		return nil
	}
	queryLower := strings.ToLower(query)

	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []SessionMatch
	for i := len(s.sessions) - 1; i >= 0; i-- {
		sess := s.sessions[i]
		if strings.Contains(strings.ToLower(sess.Title), queryLower) {
			matches = append(matches, SessionMatch{
				SessionID:    sess.ID,
				SessionTitle: sess.Title,
				MessageIndex: -1,
			})
			continue
		}
		for j, msg := range sess.Messages {
			if msg.Role == "system" {
				continue
			}
			if strings.Contains(strings.ToLower(msg.Content), queryLower) {
				preview := msg.Content
				if len(preview) > 100 {
					preview = preview[:100] + "..."
				}
				matches = append(matches, SessionMatch{
					SessionID:    sess.ID,
					SessionTitle: sess.Title,
					MessageIndex: j,
					Role:         msg.Role,
					Preview:      preview,
				})
				break
			}
		}
	}
	return matches
}
