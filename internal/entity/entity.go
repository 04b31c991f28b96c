// Package entity owns the document, chat-session, and message model and
// enforces its referential integrity.
package entity

import (
	"errors"
	"time"
)

var (
	// ErrNotFound reports a reference to a missing document or session.
	ErrNotFound = errors.New("entity not found")
	// ErrDuplicateID reports an id collision on creation.
	ErrDuplicateID = errors.New("duplicate id")
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Document is an uploaded file plus the metadata the backend derived from it.
// The id is assigned by the upload collaborator. PageCount starts as a local
// guess and is overridden when the authoritative value arrives.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	UploadedAt time.Time `json:"uploadedAt"`
	SizeLabel  string    `json:"sizeLabel"`
	Content    string    `json:"content,omitempty"`
	PageCount  int       `json:"pageCount"`
}

// ChatSession is a conversation scoped to exactly one document.
// DocumentName is snapshotted at creation and intentionally does not track
// later renames.
type ChatSession struct {
	ID           string    `json:"id"`
	DocumentID   string    `json:"documentId"`
	DocumentName string    `json:"documentName"`
	Messages     []Message `json:"messages"`
}

// RelatedDocument links a message to a page of some document.
type RelatedDocument struct {
	DocumentID   string `json:"documentId"`
	DocumentName string `json:"documentName"`
	Page         int    `json:"page"`
}

// Message is one immutable turn in a chat session.
type Message struct {
	ID        string            `json:"id"`
	Role      Role              `json:"role"`
	Content   string            `json:"content"`
	Related   []RelatedDocument `json:"relatedDocuments,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Snapshot is the serialization contract consumed by the persistence
// gateway. Sessions always appear after the documents they reference.
type Snapshot struct {
	Documents []Document    `json:"documents"`
	Sessions  []ChatSession `json:"sessions"`
}

func cloneMessages(messages []Message) []Message {
	if messages == nil {
		return nil
	}
	out := make([]Message, len(messages))
	for i, message := range messages {
		out[i] = message
		out[i].Related = append([]RelatedDocument(nil), message.Related...)
	}
	return out
}

func cloneSession(session *ChatSession) ChatSession {
	out := *session
	out.Messages = cloneMessages(session.Messages)
	return out
}
