package persist

import (
	"errors"
	"testing"
	"time"

	"github.com/amarquez/folio/internal/entity"
	"github.com/amarquez/folio/internal/nav"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store := entity.NewStore()
	if err := store.AddDocument(entity.Document{
		ID:         "doc-1",
		Name:       "report.pdf",
		UploadedAt: time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC),
		SizeLabel:  "1.2 MB",
		PageCount:  12,
	}); err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}
	sessionID, err := store.CreateChatbot("doc-1")
	if err != nil {
		t.Fatalf("CreateChatbot() error = %v", err)
	}
	if _, err := store.AppendMessage(sessionID, entity.Message{Role: entity.RoleUser, Content: "hello"}); err != nil {
		t.Fatalf("AppendMessage() error = %v", err)
	}

	machine := nav.NewMachine(store)
	if _, err := machine.OpenChatbot("doc-1"); err != nil {
		t.Fatalf("OpenChatbot() error = %v", err)
	}

	gateway := NewGateway(NewDiskStore(t.TempDir()), nil)
	if err := gateway.Save(Snapshot{Entities: store.Snapshot(), Nav: machine.SnapshotState()}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded := gateway.Load()
	restored := entity.NewStore()
	restored.Restore(loaded.Entities)

	doc, ok := restored.Document("doc-1")
	if !ok || doc.Name != "report.pdf" || doc.PageCount != 12 || doc.SizeLabel != "1.2 MB" {
		t.Fatalf("document lost in round trip: %#v (ok=%v)", doc, ok)
	}
	session, ok := restored.Session(sessionID)
	if !ok || len(session.Messages) != 1 || session.Messages[0].Content != "hello" {
		t.Fatalf("session lost in round trip: %#v (ok=%v)", session, ok)
	}

	restoredNav := nav.NewMachine(restored)
	restoredNav.RestoreState(loaded.Nav)
	if restoredNav.Screen() != nav.ScreenChatbot || restoredNav.ChatbotID() != sessionID {
		t.Fatalf("navigation lost in round trip: %v / %q", restoredNav.Screen(), restoredNav.ChatbotID())
	}
}

func TestEmptyStateRoundTrip(t *testing.T) {
	t.Parallel()

	gateway := NewGateway(NewDiskStore(t.TempDir()), nil)
	if err := gateway.Save(Snapshot{}); err != nil {
		t.Fatalf("Save(empty) error = %v", err)
	}

	loaded := gateway.Load()
	if len(loaded.Entities.Documents) != 0 || len(loaded.Entities.Sessions) != 0 {
		t.Fatalf("empty snapshot round trip produced entities: %#v", loaded.Entities)
	}
}

func TestLoadMissingSnapshotStartsCold(t *testing.T) {
	t.Parallel()

	gateway := NewGateway(NewDiskStore(t.TempDir()), nil)
	loaded := gateway.Load()
	if len(loaded.Entities.Documents) != 0 || loaded.Nav.Screen != "" {
		t.Fatalf("cold start should be the empty baseline, got %#v", loaded)
	}
}

func TestLoadCorruptSnapshotStartsCold(t *testing.T) {
	t.Parallel()

	kv := NewDiskStore(t.TempDir())
	if err := kv.Set("folio-state", []byte("{not json")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	gateway := NewGateway(kv, nil)
	loaded := gateway.Load()
	if len(loaded.Entities.Documents) != 0 || len(loaded.Entities.Sessions) != 0 {
		t.Fatalf("corrupt snapshot should load as empty baseline, got %#v", loaded)
	}
}

func TestLoadPartialSnapshotFillsDefaults(t *testing.T) {
	t.Parallel()

	kv := NewDiskStore(t.TempDir())
	// A legacy snapshot that predates the nav field.
	if err := kv.Set("folio-state", []byte(`{"entities":{"documents":[{"id":"doc-1","name":"a.pdf"}]}}`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	loaded := NewGateway(kv, nil).Load()
	if len(loaded.Entities.Documents) != 1 {
		t.Fatalf("partial snapshot dropped documents: %#v", loaded.Entities)
	}
	if loaded.Nav.Screen != "" {
		t.Fatalf("missing nav should default to zero value, got %q", loaded.Nav.Screen)
	}

	store := entity.NewStore()
	store.Restore(loaded.Entities)
	doc, ok := store.Document("doc-1")
	if !ok || doc.PageCount != 1 {
		t.Fatalf("missing pageCount should default to 1, got %#v (ok=%v)", doc, ok)
	}
}

type failingKV struct{}

func (failingKV) Get(string) ([]byte, error) { return nil, errors.New("unavailable") }
func (failingKV) Set(string, []byte) error   { return errors.New("quota exceeded") }
func (failingKV) Remove(string) error        { return errors.New("unavailable") }

func TestSaveFailureIsReportedNotFatal(t *testing.T) {
	t.Parallel()

	gateway := NewGateway(failingKV{}, nil)
	if err := gateway.Save(Snapshot{}); err == nil {
		t.Fatal("expected write failure to be reported")
	}
	// Load on a failing store still yields a usable baseline.
	loaded := gateway.Load()
	if len(loaded.Entities.Documents) != 0 {
		t.Fatalf("failing store should load empty, got %#v", loaded)
	}
}
