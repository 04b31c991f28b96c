package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind tags store notifications.
type EventKind string

const (
	EventDocumentAdded   EventKind = "document-added"
	EventDocumentDeleted EventKind = "document-deleted"
	EventSessionCreated  EventKind = "session-created"
	EventSessionDeleted  EventKind = "session-deleted"
	EventMessageAppended EventKind = "message-appended"
)

// Event describes one store mutation. For EventMessageAppended, Message
// carries only the new tail element so observers can render incrementally.
type Event struct {
	Kind       EventKind
	DocumentID string
	SessionID  string
	Message    *Message
}

// Observer receives store events. Observers run synchronously on the
// mutating goroutine; the store has a single writer.
type Observer func(Event)

const idRetryLimit = 5

// Store owns all documents and chat sessions. It is not safe for concurrent
// writers; all mutations must come through the single event-dispatch path.
type Store struct {
	documents    map[string]*Document
	docOrder     []string
	sessions     map[string]*ChatSession
	sessionOrder []string
	seq          int64
	observers    []Observer
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		documents: map[string]*Document{},
		sessions:  map[string]*ChatSession{},
	}
}

// Subscribe registers an observer for subsequent mutations.
func (s *Store) Subscribe(fn Observer) {
	if fn != nil {
		s.observers = append(s.observers, fn)
	}
}

func (s *Store) notify(event Event) {
	for _, fn := range s.observers {
		fn(event)
	}
}

// AddDocument inserts a document under its caller-supplied id.
func (s *Store) AddDocument(doc Document) error {
	if doc.ID == "" {
		return fmt.Errorf("add document: missing id")
	}
	if _, exists := s.documents[doc.ID]; exists {
		return fmt.Errorf("add document %q: %w", doc.ID, ErrDuplicateID)
	}
	if doc.PageCount < 1 {
		doc.PageCount = 1
	}
	stored := doc
	s.documents[doc.ID] = &stored
	s.docOrder = append(s.docOrder, doc.ID)
	s.notify(Event{Kind: EventDocumentAdded, DocumentID: doc.ID})
	return nil
}

// DeleteDocument removes the document and cascades to every session that
// references it. Deleting an absent id is a no-op.
func (s *Store) DeleteDocument(id string) {
	if _, exists := s.documents[id]; !exists {
		return
	}
	delete(s.documents, id)
	s.docOrder = removeID(s.docOrder, id)

	var kept []string
	for _, sessionID := range s.sessionOrder {
		session := s.sessions[sessionID]
		if session.DocumentID == id {
			delete(s.sessions, sessionID)
			s.notify(Event{Kind: EventSessionDeleted, SessionID: sessionID, DocumentID: id})
			continue
		}
		kept = append(kept, sessionID)
	}
	s.sessionOrder = kept
	s.notify(Event{Kind: EventDocumentDeleted, DocumentID: id})
}

// DeleteSession removes one session without touching its document.
// Absent ids are a no-op.
func (s *Store) DeleteSession(id string) {
	session, exists := s.sessions[id]
	if !exists {
		return
	}
	delete(s.sessions, id)
	s.sessionOrder = removeID(s.sessionOrder, id)
	s.notify(Event{Kind: EventSessionDeleted, SessionID: id, DocumentID: session.DocumentID})
}

// CreateChatbot creates a session for the document, snapshotting its current
// name, and returns the fresh session id. The store stays untouched when the
// document does not exist.
func (s *Store) CreateChatbot(documentID string) (string, error) {
	doc, exists := s.documents[documentID]
	if !exists {
		return "", fmt.Errorf("create chatbot for %q: %w", documentID, ErrNotFound)
	}
	id, err := s.freshID("chat", func(candidate string) bool {
		_, taken := s.sessions[candidate]
		return taken
	})
	if err != nil {
		return "", err
	}
	s.sessions[id] = &ChatSession{
		ID:           id,
		DocumentID:   documentID,
		DocumentName: doc.Name,
	}
	s.sessionOrder = append(s.sessionOrder, id)
	s.notify(Event{Kind: EventSessionCreated, SessionID: id, DocumentID: documentID})
	return id, nil
}

// AppendMessage appends one message to the session. The message id is
// assigned when empty; a supplied id that collides within the session is
// rejected. Prior messages are never mutated or reordered.
func (s *Store) AppendMessage(sessionID string, message Message) (Message, error) {
	session, exists := s.sessions[sessionID]
	if !exists {
		return Message{}, fmt.Errorf("append message to %q: %w", sessionID, ErrNotFound)
	}
	if message.ID == "" {
		id, err := s.freshID("msg", func(candidate string) bool {
			return sessionHasMessage(session, candidate)
		})
		if err != nil {
			return Message{}, err
		}
		message.ID = id
	} else if sessionHasMessage(session, message.ID) {
		return Message{}, fmt.Errorf("append message %q to %q: %w", message.ID, sessionID, ErrDuplicateID)
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	session.Messages = append(session.Messages, message)
	tail := session.Messages[len(session.Messages)-1]
	notified := tail
	notified.Related = append([]RelatedDocument(nil), tail.Related...)
	s.notify(Event{Kind: EventMessageAppended, SessionID: sessionID, DocumentID: session.DocumentID, Message: &notified})
	return tail, nil
}

// SetDocumentPageCount records the authoritative page count for a document.
func (s *Store) SetDocumentPageCount(id string, pageCount int) error {
	doc, exists := s.documents[id]
	if !exists {
		return fmt.Errorf("set page count for %q: %w", id, ErrNotFound)
	}
	if pageCount < 1 {
		pageCount = 1
	}
	doc.PageCount = pageCount
	return nil
}

// Document returns a copy of the document, if present.
func (s *Store) Document(id string) (Document, bool) {
	doc, exists := s.documents[id]
	if !exists {
		return Document{}, false
	}
	return *doc, true
}

// Session returns a copy of the session, if present.
func (s *Store) Session(id string) (ChatSession, bool) {
	session, exists := s.sessions[id]
	if !exists {
		return ChatSession{}, false
	}
	return cloneSession(session), true
}

// SessionForDocument returns the oldest live session bound to the document.
func (s *Store) SessionForDocument(documentID string) (ChatSession, bool) {
	for _, sessionID := range s.sessionOrder {
		session := s.sessions[sessionID]
		if session.DocumentID == documentID {
			return cloneSession(session), true
		}
	}
	return ChatSession{}, false
}

// Documents lists all documents in insertion order.
func (s *Store) Documents() []Document {
	out := make([]Document, 0, len(s.docOrder))
	for _, id := range s.docOrder {
		out = append(out, *s.documents[id])
	}
	return out
}

// Sessions lists all sessions in creation order.
func (s *Store) Sessions() []ChatSession {
	out := make([]ChatSession, 0, len(s.sessionOrder))
	for _, id := range s.sessionOrder {
		out = append(out, cloneSession(s.sessions[id]))
	}
	return out
}

// Snapshot captures a deep copy of the whole store.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Documents: s.Documents(),
		Sessions:  s.Sessions(),
	}
}

// Restore replaces the store contents with the snapshot. Duplicate ids keep
// the first occurrence and sessions referencing a missing document are
// dropped, so a partially-corrupt snapshot still restores to a valid state.
func (s *Store) Restore(snapshot Snapshot) {
	s.documents = map[string]*Document{}
	s.docOrder = nil
	s.sessions = map[string]*ChatSession{}
	s.sessionOrder = nil

	for _, doc := range snapshot.Documents {
		if doc.ID == "" {
			continue
		}
		if _, exists := s.documents[doc.ID]; exists {
			continue
		}
		if doc.PageCount < 1 {
			doc.PageCount = 1
		}
		stored := doc
		s.documents[doc.ID] = &stored
		s.docOrder = append(s.docOrder, doc.ID)
	}
	for _, session := range snapshot.Sessions {
		if session.ID == "" {
			continue
		}
		if _, exists := s.sessions[session.ID]; exists {
			continue
		}
		if _, exists := s.documents[session.DocumentID]; !exists {
			continue
		}
		stored := session
		stored.Messages = cloneMessages(session.Messages)
		s.sessions[session.ID] = &stored
		s.sessionOrder = append(s.sessionOrder, session.ID)
	}
}

// freshID combines a monotonic counter with random entropy. Uniqueness is
// still checked against the store; the generator is never trusted on its own.
func (s *Store) freshID(prefix string, taken func(string) bool) (string, error) {
	for attempt := 0; attempt < idRetryLimit; attempt++ {
		s.seq++
		candidate := fmt.Sprintf("%s-%d-%s", prefix, s.seq, uuid.NewString()[:8])
		if !taken(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("generate %s id: %w", prefix, ErrDuplicateID)
}

func sessionHasMessage(session *ChatSession, id string) bool {
	for _, message := range session.Messages {
		if message.ID == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}
