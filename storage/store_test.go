package storage

import (
	"errors"
	"strings"
	"testing"

	"tkta/model"
)

// memoryRepo is an in-memory Repository for store tests.
type memoryRepo struct {
	state   State
	loadErr error
	saves   int
}

func (r *memoryRepo) Load() (State, error) {
	if r.loadErr != nil {
		return State{}, r.loadErr
	}
	return r.state, nil
}

func (r *memoryRepo) Save(state State) error {
	r.state = state
	r.saves++
	return nil
}

func (r *memoryRepo) Close() error { return nil }

func TestNewStoreStartsWithGreeting(t *testing.T) {
	store := NewStore(&memoryRepo{})

	active := store.Active()
	if active.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", active.Title, DefaultTitle)
	}
	if len(active.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(active.Messages))
	}
	if active.Messages[0].Role != model.RoleModel {
		t.Errorf("greeting role = %q, want %q", active.Messages[0].Role, model.RoleModel)
	}
	if active.Messages[0].Content != Greeting {
		t.Errorf("greeting content = %q, want %q", active.Messages[0].Content, Greeting)
	}
}

func TestNewStoreLoadErrorStartsFresh(t *testing.T) {
	store := NewStore(&memoryRepo{loadErr: errors.New("disk on fire")})

	if len(store.Sessions()) != 1 {
		t.Fatalf("got %d sessions, want 1", len(store.Sessions()))
	}
}

func TestNewStoreRestoresActiveSession(t *testing.T) {
	repo := &memoryRepo{state: State{
		Sessions: []Session{
			{ID: 1, Title: "Hỏi về TIMATIC", Messages: []model.Message{newGreetingMessage()}},
			{ID: 2, Title: "SR DOCS", Messages: []model.Message{newGreetingMessage()}},
		},
		ActiveID: 2,
	}}
	store := NewStore(repo)

	if got := store.ActiveID(); got != 2 {
		t.Errorf("ActiveID() = %d, want 2", got)
	}
}

func TestNewStoreStaleActivePointerFallsBack(t *testing.T) {
	repo := &memoryRepo{state: State{
		Sessions: []Session{
			{ID: 1, Title: "a", Messages: []model.Message{newGreetingMessage()}},
			{ID: 2, Title: "b", Messages: []model.Message{newGreetingMessage()}},
		},
		ActiveID: 99,
	}}
	store := NewStore(repo)

	if got := store.ActiveID(); got != 2 {
		t.Errorf("ActiveID() = %d, want newest session id 2", got)
	}
}

func TestNewSessionIDsNeverCollide(t *testing.T) {
	store := NewStore(&memoryRepo{})
	seen := map[int64]bool{store.ActiveID(): true}
	for i := 0; i < 5; i++ {
		id := store.NewSession()
		if seen[id] {
			t.Fatalf("duplicate session id %d", id)
		}
		seen[id] = true
	}
}

func TestAppendFirstUserMessageSetsTitle(t *testing.T) {
	store := NewStore(&memoryRepo{})

	store.Append(store.ActiveID(), model.Message{Role: model.RoleUser, Content: "Khách quốc tịch Việt Nam đi Nhật cần visa không?"})

	active := store.Active()
	if active.Title == DefaultTitle {
		t.Error("title was not derived from first user message")
	}
	if !strings.HasPrefix(active.Title, "Khách quốc tịch Việt Nam") {
		t.Errorf("unexpected title %q", active.Title)
	}

	// A second user message must not rename the session.
	before := active.Title
	store.Append(store.ActiveID(), model.Message{Role: model.RoleUser, Content: "Còn đi Hàn Quốc thì sao?"})
	if got := store.Active().Title; got != before {
		t.Errorf("title changed from %q to %q on second message", before, got)
	}
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"short stays intact", "Xin chào", "Xin chào"},
		{"exactly 40 columns stays intact", strings.Repeat("a", 40), strings.Repeat("a", 40)},
		{"long text truncated", strings.Repeat("a", 50), strings.Repeat("a", 40) + "..."},
		{"wide runes measured by columns", strings.Repeat("国", 30), strings.Repeat("国", 20) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTitle(tt.text); got != tt.want {
				t.Errorf("DeriveTitle(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSelectUnknownIDIsNoOp(t *testing.T) {
	store := NewStore(&memoryRepo{})
	before := store.ActiveID()

	store.Select(424242)

	if got := store.ActiveID(); got != before {
		t.Errorf("ActiveID() = %d, want %d", got, before)
	}
}

func TestDeleteUnknownIDIsNoOp(t *testing.T) {
	store := NewStore(&memoryRepo{})

	store.Delete(424242)

	if got := len(store.Sessions()); got != 1 {
		t.Errorf("got %d sessions, want 1", got)
	}
}

func TestDeleteLastSessionSynthesizesFresh(t *testing.T) {
	store := NewStore(&memoryRepo{})
	oldID := store.ActiveID()

	store.Delete(oldID)

	sessions := store.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	if sessions[0].ID == oldID {
		t.Error("deleted session still present")
	}
	if sessions[0].Title != DefaultTitle {
		t.Errorf("fresh session title = %q, want %q", sessions[0].Title, DefaultTitle)
	}
}

func TestDeleteActiveSelectsNewestSurvivor(t *testing.T) {
	store := NewStore(&memoryRepo{})
	first := store.ActiveID()
	second := store.NewSession()
	third := store.NewSession()

	store.Delete(third)

	if got := store.ActiveID(); got != second {
		t.Errorf("ActiveID() = %d, want newest survivor %d", got, second)
	}
	if got := len(store.Sessions()); got != 2 {
		t.Errorf("got %d sessions, want 2", got)
	}
	_ = first
}

func TestDeleteInactiveKeepsActive(t *testing.T) {
	store := NewStore(&memoryRepo{})
	first := store.ActiveID()
	second := store.NewSession()

	store.Delete(first)

	if got := store.ActiveID(); got != second {
		t.Errorf("ActiveID() = %d, want %d", got, second)
	}
}

func TestSessionsNewestFirst(t *testing.T) {
	store := NewStore(&memoryRepo{})
	second := store.NewSession()

	sessions := store.Sessions()
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if sessions[0].ID != second {
		t.Errorf("first listed session = %d, want newest %d", sessions[0].ID, second)
	}
}

func TestMutateLastDoesNotPersist(t *testing.T) {
	repo := &memoryRepo{}
	store := NewStore(repo)
	store.Append(store.ActiveID(), model.Message{Role: model.RoleModel, Content: ""})
	saves := repo.saves

	store.MutateLast(store.ActiveID(), func(m *model.Message) { m.Content += "Xin" })
	store.MutateLast(store.ActiveID(), func(m *model.Message) { m.Content += " chào" })

	if repo.saves != saves {
		t.Errorf("MutateLast persisted %d times, want 0", repo.saves-saves)
	}
	active := store.Active()
	if got := active.LastMessage().Content; got != "Xin chào" {
		t.Errorf("last message = %q, want %q", got, "Xin chào")
	}

	store.Flush()
	if repo.saves != saves+1 {
		t.Errorf("Flush persisted %d times, want 1", repo.saves-saves)
	}
}

func TestReplaceLast(t *testing.T) {
	store := NewStore(&memoryRepo{})
	store.Append(store.ActiveID(), model.Message{Role: model.RoleModel, Content: "partial answer"})

	store.ReplaceLast(store.ActiveID(), model.Message{Role: model.RoleModel, Content: "Xin lỗi, đã có lỗi xảy ra. Vui lòng thử lại."})

	active := store.Active()
	got := active.LastMessage()
	if got.Content != "Xin lỗi, đã có lỗi xảy ra. Vui lòng thử lại." {
		t.Errorf("last message = %q", got.Content)
	}
}

func TestWritesFollowSessionNotActivePointer(t *testing.T) {
	store := NewStore(&memoryRepo{})
	first := store.ActiveID()
	store.Append(first, model.Message{Role: model.RoleModel, Content: ""})

	// A switch between deltas must not reroute the stream.
	second := store.NewSession()
	store.MutateLast(first, func(m *model.Message) { m.Content = "phần đầu phần cuối." })

	if got := store.MessagesOf(second); len(got) != 1 || got[0].Content != Greeting {
		t.Errorf("inactive session was mutated: %+v", got)
	}
	msgs := store.MessagesOf(first)
	if got := msgs[len(msgs)-1].Content; got != "phần đầu phần cuối." {
		t.Errorf("pinned session last message = %q", got)
	}

	store.ReplaceLast(first, model.Message{Role: model.RoleModel, Content: "thay thế"})
	if got := store.MessagesOf(second); got[0].Content != Greeting {
		t.Errorf("ReplaceLast leaked into wrong session: %q", got[0].Content)
	}
}

func TestWritesToDeletedSessionAreDropped(t *testing.T) {
	store := NewStore(&memoryRepo{})
	doomed := store.ActiveID()
	store.NewSession()
	store.Delete(doomed)

	store.Append(doomed, model.Message{Role: model.RoleUser, Content: "muộn rồi"})
	store.MutateLast(doomed, func(m *model.Message) { m.Content = "muộn rồi" })
	store.ReplaceLast(doomed, model.Message{Role: model.RoleModel, Content: "muộn rồi"})
	store.ReleaseImages(doomed)

	if got := store.MessagesOf(doomed); got != nil {
		t.Errorf("deleted session has %d messages", len(got))
	}
	if got := store.Messages(); len(got) != 1 || got[0].Content != Greeting {
		t.Errorf("surviving session was touched: %+v", got)
	}
}

func TestSearch(t *testing.T) {
	store := NewStore(&memoryRepo{})
	store.Append(store.ActiveID(), model.Message{Role: model.RoleUser, Content: "Tra cứu TIMATIC cho khách đi Singapore"})
	store.NewSession()
	store.Append(store.ActiveID(), model.Message{Role: model.RoleUser, Content: "Tạo lệnh SR DOCS"})

	matches := store.Search("timatic")
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].MessageIndex != -1 {
		// Title was derived from the message, so the hit comes from the title.
		t.Errorf("MessageIndex = %d, want title match -1", matches[0].MessageIndex)
	}

	if got := store.Search(""); got != nil {
		t.Errorf("empty query returned %d matches, want none", len(got))
	}
	if got := store.Search("không có gì khớp cả"); got != nil {
		t.Errorf("no-hit query returned %d matches", len(got))
	}
}
