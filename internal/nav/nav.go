// Package nav owns the top-level screen state. Transitions into entity-bound
// screens validate against the store and are transactional: a failed
// transition leaves the machine where it was.
package nav

import (
	"fmt"

	"github.com/amarquez/folio/internal/entity"
)

// Screen enumerates the top-level screens.
type Screen int

const (
	ScreenHome Screen = iota
	ScreenLibrary
	ScreenViewer
	ScreenChatbot
)

func (s Screen) String() string {
	switch s {
	case ScreenHome:
		return "home"
	case ScreenLibrary:
		return "library"
	case ScreenViewer:
		return "viewer"
	case ScreenChatbot:
		return "chatbot"
	default:
		return "unknown"
	}
}

func screenFromString(name string) (Screen, bool) {
	switch name {
	case "home":
		return ScreenHome, true
	case "library":
		return ScreenLibrary, true
	case "viewer":
		return ScreenViewer, true
	case "chatbot":
		return ScreenChatbot, true
	default:
		return ScreenHome, false
	}
}

// Snapshot is the persisted shape of the navigation state.
type Snapshot struct {
	Screen     string `json:"screen"`
	DocumentID string `json:"documentId,omitempty"`
	ChatbotID  string `json:"chatbotId,omitempty"`
}

// Machine tracks the current screen and its entity selections. Entities can
// be deleted out-of-band, so every read reconciles first and falls back to
// Home when a selection dangles.
type Machine struct {
	store      *entity.Store
	screen     Screen
	documentID string
	chatbotID  string
}

// NewMachine returns a machine on the Home screen.
func NewMachine(store *entity.Store) *Machine {
	return &Machine{store: store, screen: ScreenHome}
}

// Screen reconciles and returns the current screen.
func (m *Machine) Screen() Screen {
	m.reconcile()
	return m.screen
}

// DocumentID returns the selected document after reconciliation. It is the
// viewer selection on ScreenViewer and the session's document on
// ScreenChatbot.
func (m *Machine) DocumentID() string {
	m.reconcile()
	return m.documentID
}

// ChatbotID returns the selected session after reconciliation.
func (m *Machine) ChatbotID() string {
	m.reconcile()
	return m.chatbotID
}

// GoHome always succeeds.
func (m *Machine) GoHome() {
	m.screen = ScreenHome
	m.documentID = ""
	m.chatbotID = ""
}

// GoLibrary always succeeds.
func (m *Machine) GoLibrary() {
	m.screen = ScreenLibrary
	m.documentID = ""
	m.chatbotID = ""
}

// OpenViewer transitions to the viewer for the document. The prior state is
// kept when the document does not resolve.
func (m *Machine) OpenViewer(documentID string) error {
	if _, ok := m.store.Document(documentID); !ok {
		return fmt.Errorf("open viewer for %q: %w", documentID, entity.ErrNotFound)
	}
	m.screen = ScreenViewer
	m.documentID = documentID
	m.chatbotID = ""
	return nil
}

// OpenChatbot looks up or creates a session for the document and transitions
// to it. The whole operation is transactional: when the document does not
// exist, no session is created and navigation does not change.
func (m *Machine) OpenChatbot(documentID string) (string, error) {
	sessionID := ""
	if session, ok := m.store.SessionForDocument(documentID); ok {
		sessionID = session.ID
	} else {
		created, err := m.store.CreateChatbot(documentID)
		if err != nil {
			return "", err
		}
		sessionID = created
	}
	m.screen = ScreenChatbot
	m.documentID = documentID
	m.chatbotID = sessionID
	return sessionID, nil
}

// Back steps out of the current screen. Back navigation never fails.
func (m *Machine) Back() {
	switch m.Screen() {
	case ScreenViewer, ScreenChatbot:
		m.GoLibrary()
	case ScreenLibrary:
		m.GoHome()
	}
}

// SnapshotState captures the navigation state for persistence.
func (m *Machine) SnapshotState() Snapshot {
	m.reconcile()
	return Snapshot{
		Screen:     m.screen.String(),
		DocumentID: m.documentID,
		ChatbotID:  m.chatbotID,
	}
}

// RestoreState applies a persisted snapshot. Unknown screens or dangling
// selections restore to Home rather than failing.
func (m *Machine) RestoreState(snapshot Snapshot) {
	screen, ok := screenFromString(snapshot.Screen)
	if !ok {
		m.GoHome()
		return
	}
	m.screen = screen
	m.documentID = snapshot.DocumentID
	m.chatbotID = snapshot.ChatbotID
	m.reconcile()
}

// reconcile forces the machine to Home when the current selection points at
// a deleted entity.
func (m *Machine) reconcile() {
	switch m.screen {
	case ScreenViewer:
		if _, ok := m.store.Document(m.documentID); !ok {
			m.GoHome()
		}
	case ScreenChatbot:
		session, ok := m.store.Session(m.chatbotID)
		if !ok {
			m.GoHome()
			return
		}
		if _, ok := m.store.Document(session.DocumentID); !ok {
			m.GoHome()
			return
		}
		m.documentID = session.DocumentID
	default:
		m.documentID = ""
		m.chatbotID = ""
	}
}
