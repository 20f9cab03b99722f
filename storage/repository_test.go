package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"tkta/model"
)

func testState() State {
	return State{
		Sessions: []Session{
			{
				ID:    1700000000000,
				Title: "Hỏi về visa Nhật",
				Messages: []model.Message{
					{Role: model.RoleModel, Content: Greeting},
					{Role: model.RoleUser, Content: "Khách quốc tịch Việt Nam đi Nhật cần visa không?"},
				},
			},
			{
				ID:       1700000000001,
				Title:    DefaultTitle,
				Messages: []model.Message{{Role: model.RoleModel, Content: Greeting}},
			},
		},
		ActiveID: 1700000000001,
	}
}

func assertStateEqual(t *testing.T, got, want State) {
	t.Helper()
	if got.ActiveID != want.ActiveID {
		t.Errorf("ActiveID = %d, want %d", got.ActiveID, want.ActiveID)
	}
	if len(got.Sessions) != len(want.Sessions) {
		t.Fatalf("got %d sessions, want %d", len(got.Sessions), len(want.Sessions))
	}
	for i := range want.Sessions {
		gs, ws := got.Sessions[i], want.Sessions[i]
		if gs.ID != ws.ID || gs.Title != ws.Title {
			t.Errorf("session %d = (%d, %q), want (%d, %q)", i, gs.ID, gs.Title, ws.ID, ws.Title)
		}
		if len(gs.Messages) != len(ws.Messages) {
			t.Fatalf("session %d: got %d messages, want %d", i, len(gs.Messages), len(ws.Messages))
		}
		for j := range ws.Messages {
			if gs.Messages[j].Role != ws.Messages[j].Role || gs.Messages[j].Content != ws.Messages[j].Content {
				t.Errorf("session %d message %d = (%q, %q), want (%q, %q)",
					i, j, gs.Messages[j].Role, gs.Messages[j].Content,
					ws.Messages[j].Role, ws.Messages[j].Content)
			}
		}
	}
}

func TestFileRepositoryRoundTrip(t *testing.T) {
	repo, err := NewFileRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileRepository: %v", err)
	}
	defer repo.Close()

	want := testState()
	if err := repo.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertStateEqual(t, got, want)
}

func TestFileRepositoryMissingFile(t *testing.T) {
	repo, err := NewFileRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileRepository: %v", err)
	}
	state, err := repo.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(state.Sessions) != 0 {
		t.Errorf("got %d sessions from missing file, want 0", len(state.Sessions))
	}
}

func TestFileRepositoryCorruptedFile(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileRepository(dir)
	if err != nil {
		t.Fatalf("NewFileRepository: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sessions.json"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	state, err := repo.Load()
	if err != nil {
		t.Fatalf("Load returned error for corrupted file: %v", err)
	}
	if len(state.Sessions) != 0 {
		t.Errorf("got %d sessions from corrupted file, want 0", len(state.Sessions))
	}
}

func TestFileRepositoryFilePermissions(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileRepository(dir)
	if err != nil {
		t.Fatalf("NewFileRepository: %v", err)
	}
	if err := repo.Save(testState()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "sessions.json"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("sessions.json mode = %o, want 0600", perm)
	}
}

func TestFileRepositoryWireLayout(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileRepository(dir)
	if err != nil {
		t.Fatalf("NewFileRepository: %v", err)
	}
	if err := repo.Save(testState()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "sessions.json"))
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Sessions []struct {
			ID       int64  `json:"id"`
			Title    string `json:"title"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		} `json:"sessions"`
		ActiveID int64 `json:"activeSessionId"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unexpected layout: %v", err)
	}
	if doc.ActiveID != 1700000000001 {
		t.Errorf("activeSessionId = %d, want 1700000000001", doc.ActiveID)
	}
	if doc.Sessions[0].Messages[0].Role != model.RoleModel {
		t.Errorf("first message role = %q", doc.Sessions[0].Messages[0].Role)
	}
}

func TestSQLiteRepositoryRoundTrip(t *testing.T) {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	defer repo.Close()

	want := testState()
	if err := repo.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertStateEqual(t, got, want)
}

func TestSQLiteRepositorySaveReplacesState(t *testing.T) {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	defer repo.Close()

	if err := repo.Save(testState()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	small := State{
		Sessions: []Session{{ID: 7, Title: "only one", Messages: []model.Message{{Role: model.RoleModel, Content: Greeting}}}},
		ActiveID: 7,
	}
	if err := repo.Save(small); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	got, err := repo.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertStateEqual(t, got, small)
}

func TestSQLiteRepositoryEmptyDatabase(t *testing.T) {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	defer repo.Close()

	state, err := repo.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(state.Sessions) != 0 || state.ActiveID != 0 {
		t.Errorf("empty database loaded as %d sessions, active %d", len(state.Sessions), state.ActiveID)
	}
}

func TestOpenRepository(t *testing.T) {
	dir := t.TempDir()
	repo, err := OpenRepository("sqlite", dir)
	if err != nil {
		t.Fatalf("OpenRepository(sqlite): %v", err)
	}
	if _, ok := repo.(*SQLiteRepository); !ok {
		t.Errorf("got %T, want *SQLiteRepository", repo)
	}
	repo.Close()

	repo, err = OpenRepository("file", dir)
	if err != nil {
		t.Fatalf("OpenRepository(file): %v", err)
	}
	if _, ok := repo.(*FileRepository); !ok {
		t.Errorf("got %T, want *FileRepository", repo)
	}
	repo.Close()
}
