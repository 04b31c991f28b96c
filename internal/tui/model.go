// Package tui mounts the document library, viewer, and chatbot screens on a
// Bubble Tea program. All state mutations happen inside Update, which is the
// single writer over the entity store and navigation machine; backend calls
// run as commands and come back as typed result messages.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/amarquez/folio/internal/backend"
	"github.com/amarquez/folio/internal/citation"
	"github.com/amarquez/folio/internal/entity"
	"github.com/amarquez/folio/internal/nav"
	"github.com/amarquez/folio/internal/pageview"
	"github.com/amarquez/folio/internal/persist"
)

// Config wires the assembled core into the TUI program.
type Config struct {
	Store   *entity.Store
	Nav     *nav.Machine
	Gateway *persist.Gateway
	Backend backend.Client
	Logger  *zap.Logger
}

type inputFocus int

const (
	focusNone inputFocus = iota
	focusUploadPath
	focusChat
	focusGotoPage
)

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
)

type model struct {
	config Config
	logger *zap.Logger

	pathInput textinput.Model
	chatInput textinput.Model
	pageInput textinput.Model
	spinner   spinner.Model
	viewport  viewport.Model

	views         map[string]*pageview.Controller
	libraryCursor int
	focus         inputFocus

	uploading    bool
	pendingChats map[string]bool
	pendingInfo  map[string]bool

	infoMessage  string
	errorMessage string
	width        int
	height       int
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	pathInput := textinput.New()
	pathInput.Placeholder = "./reports/q3.pdf"
	pathInput.CharLimit = 200
	pathInput.Width = 60

	chatInput := textinput.New()
	chatInput.Placeholder = "Ask about this document…"
	chatInput.CharLimit = 400
	chatInput.Width = 70

	pageInput := textinput.New()
	pageInput.Placeholder = "page number"
	pageInput.CharLimit = 6
	pageInput.Width = 12

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &model{
		config:       config,
		logger:       logger,
		pathInput:    pathInput,
		chatInput:    chatInput,
		pageInput:    pageInput,
		spinner:      spin,
		viewport:     vp,
		views:        map[string]*pageview.Controller{},
		pendingChats: map[string]bool{},
		pendingInfo:  map[string]bool{},
		infoMessage:  "Press u to upload a document, l for the library.",
	}
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		newWidth := msg.Width - viewportHorizontalPadding
		if newWidth < minViewportWidth {
			newWidth = minViewportWidth
		}
		m.viewport.Width = newWidth
		height := msg.Height - 8
		if height < 5 {
			height = 5
		}
		m.viewport.Height = height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case uploadResultMsg:
		return m, m.handleUploadResult(msg)
	case chatResultMsg:
		return m, m.handleChatResult(msg)
	case docInfoMsg:
		return m, m.handleDocInfo(msg)
	case snapshotSavedMsg:
		if msg.err != nil {
			// Durability is best-effort; the live session keeps running.
			m.infoMessage = "Warning: state not saved to disk."
			m.logger.Warn("snapshot save failed", zap.Error(msg.err))
		}
		return m, nil
	}
	return m, nil
}

func (m *model) busy() bool {
	return m.uploading || len(m.pendingChats) > 0 || len(m.pendingInfo) > 0
}

// handleUploadResult applies an upload completion as one state transition.
func (m *model) handleUploadResult(msg uploadResultMsg) tea.Cmd {
	m.uploading = false
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		m.infoMessage = "Upload failed. Press u to retry."
		return nil
	}
	if !msg.result.Success {
		m.errorMessage = fmt.Sprintf("upload rejected: %s", msg.result.Error)
		return nil
	}

	pages := msg.result.TotalPages
	if pages < 1 {
		pages = msg.probedPages
	}
	doc := entity.Document{
		ID:         msg.result.SessionID,
		Name:       msg.result.FileName,
		UploadedAt: time.Now(),
		SizeLabel:  formatSize(msg.size),
		PageCount:  pages,
	}
	if err := m.config.Store.AddDocument(doc); err != nil {
		m.errorMessage = err.Error()
		return nil
	}
	m.ensureView(doc.ID)
	m.config.Nav.GoLibrary()
	m.libraryCursor = len(m.config.Store.Documents()) - 1
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Uploaded %s.", doc.Name)
	m.pendingInfo[doc.ID] = true
	return tea.Batch(
		m.spinner.Tick,
		docInfoCmd(m.config.Backend, doc.ID),
		m.persistCmd(),
	)
}

// handleChatResult appends the assistant turn. Completions for sessions
// deleted while the request was in flight are discarded as no-ops.
func (m *model) handleChatResult(msg chatResultMsg) tea.Cmd {
	delete(m.pendingChats, msg.sessionID)
	session, ok := m.config.Store.Session(msg.sessionID)
	if !ok {
		m.logger.Info("discarding chat completion for deleted session",
			zap.String("session", msg.sessionID))
		return nil
	}

	content := msg.result.Answer
	var related []entity.RelatedDocument
	switch {
	case msg.err != nil:
		content = fmt.Sprintf("I couldn't reach the document service: %v. Please try again.", msg.err)
	case !msg.result.Success:
		content = fmt.Sprintf("I couldn't answer that: %s", msg.result.Error)
	default:
		for _, page := range citation.Pages(citation.Parse(content)) {
			related = append(related, entity.RelatedDocument{
				DocumentID:   session.DocumentID,
				DocumentName: session.DocumentName,
				Page:         page,
			})
		}
	}

	if _, err := m.config.Store.AppendMessage(msg.sessionID, entity.Message{
		Role:    entity.RoleAssistant,
		Content: content,
		Related: related,
	}); err != nil {
		m.logger.Warn("append assistant message failed", zap.Error(err))
		return nil
	}
	m.infoMessage = "Answer received. Press 1-9 to open a cited page."
	return m.persistCmd()
}

// handleDocInfo applies the authoritative page count, discarding completions
// for documents deleted while the request was pending.
func (m *model) handleDocInfo(msg docInfoMsg) tea.Cmd {
	delete(m.pendingInfo, msg.documentID)
	if _, ok := m.config.Store.Document(msg.documentID); !ok {
		m.logger.Info("discarding page-count result for deleted document",
			zap.String("document", msg.documentID))
		return nil
	}
	if msg.err != nil || !msg.result.Success {
		// Keep the provisional guess; the viewer stays usable.
		m.logger.Warn("document info unavailable",
			zap.String("document", msg.documentID), zap.Error(msg.err))
		return nil
	}
	if err := m.config.Store.SetDocumentPageCount(msg.documentID, msg.result.TotalPages); err != nil {
		return nil
	}
	m.ensureView(msg.documentID).SetPageCount(msg.result.TotalPages)
	return m.persistCmd()
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusUploadPath:
		return m.handleUploadPathKey(key)
	case focusGotoPage:
		return m.handleGotoPageKey(key)
	case focusChat:
		return m.handleChatKey(key)
	}

	switch m.config.Nav.Screen() {
	case nav.ScreenHome:
		return m.handleHomeKey(key)
	case nav.ScreenLibrary:
		return m.handleLibraryKey(key)
	case nav.ScreenViewer:
		return m.handleViewerKey(key)
	case nav.ScreenChatbot:
		// The chat input owns this screen; refocus if it was dropped.
		m.focus = focusChat
		m.chatInput.Focus()
		return m.handleChatKey(key)
	}
	return m, nil
}

func (m *model) handleHomeKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "l", "enter":
		m.config.Nav.GoLibrary()
		return m, m.persistCmd()
	case "u":
		m.startUploadEntry()
	case "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) handleLibraryKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	docs := m.config.Store.Documents()
	switch key.String() {
	case "up", "k":
		if m.libraryCursor > 0 {
			m.libraryCursor--
		}
	case "down", "j":
		if m.libraryCursor < len(docs)-1 {
			m.libraryCursor++
		}
	case "enter", "v":
		if doc, ok := m.documentAtCursor(docs); ok {
			if err := m.config.Nav.OpenViewer(doc.ID); err != nil {
				m.errorMessage = err.Error()
				return m, nil
			}
			m.ensureView(doc.ID)
			m.errorMessage = ""
			return m, m.persistCmd()
		}
	case "c":
		if doc, ok := m.documentAtCursor(docs); ok {
			return m, m.openChatbot(doc.ID)
		}
	case "d":
		if doc, ok := m.documentAtCursor(docs); ok {
			m.config.Store.DeleteDocument(doc.ID)
			delete(m.views, doc.ID)
			if m.libraryCursor >= len(docs)-1 && m.libraryCursor > 0 {
				m.libraryCursor--
			}
			m.infoMessage = fmt.Sprintf("Deleted %s and its chats.", doc.Name)
			return m, m.persistCmd()
		}
	case "u":
		m.startUploadEntry()
	case "esc", "q":
		m.config.Nav.Back()
		return m, m.persistCmd()
	}
	return m, nil
}

func (m *model) handleViewerKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	docID := m.config.Nav.DocumentID()
	view := m.ensureView(docID)
	switch key.String() {
	case "right", "l", "n":
		view.NextPage()
	case "left", "h", "p":
		view.PrevPage()
	case "+", "=":
		view.ZoomIn()
	case "-":
		view.ZoomOut()
	case "e":
		view.ToggleExpanded()
	case "g":
		m.focus = focusGotoPage
		m.pageInput.SetValue("")
		m.pageInput.Focus()
	case "c":
		return m, m.openChatbot(docID)
	case "esc", "q":
		m.config.Nav.Back()
		return m, m.persistCmd()
	}
	return m, nil
}

func (m *model) handleUploadPathKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.focus = focusNone
		m.pathInput.Blur()
		m.pathInput.SetValue("")
		m.infoMessage = "Upload canceled."
		return m, nil
	case tea.KeyEnter:
		path := strings.TrimSpace(m.pathInput.Value())
		if path == "" {
			m.errorMessage = "Enter a file path to upload."
			return m, nil
		}
		m.focus = focusNone
		m.pathInput.Blur()
		m.pathInput.SetValue("")
		m.uploading = true
		m.errorMessage = ""
		m.infoMessage = "Uploading…"
		return m, tea.Batch(m.spinner.Tick, uploadCmd(m.config.Backend, path))
	}
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(key)
	return m, cmd
}

func (m *model) handleGotoPageKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.focus = focusNone
		m.pageInput.Blur()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.pageInput.Value())
		m.focus = focusNone
		m.pageInput.Blur()
		m.pageInput.SetValue("")
		page, err := strconv.Atoi(value)
		if err != nil {
			return m, nil
		}
		view := m.ensureView(m.config.Nav.DocumentID())
		if !view.JumpToPage(page) {
			m.infoMessage = fmt.Sprintf("Page %d is out of range.", page)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.pageInput, cmd = m.pageInput.Update(key)
	return m, cmd
}

func (m *model) handleChatKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.focus = focusNone
		m.chatInput.Blur()
		m.config.Nav.Back()
		return m, m.persistCmd()
	case tea.KeyEnter:
		return m, m.sendChatMessage()
	}

	// With an empty composer, digits follow citations from the latest answer.
	if m.chatInput.Value() == "" && len(key.String()) == 1 && key.String() >= "1" && key.String() <= "9" {
		index := int(key.String()[0] - '1')
		return m, m.followCitation(index)
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(key)
	return m, cmd
}

// sendChatMessage appends the user turn, then requests the assistant turn.
// The user message lands before the request is issued so append order always
// follows issuance order within the session.
func (m *model) sendChatMessage() tea.Cmd {
	value := strings.TrimSpace(m.chatInput.Value())
	if value == "" {
		return nil
	}
	sessionID := m.config.Nav.ChatbotID()
	if sessionID == "" {
		return nil
	}
	if m.pendingChats[sessionID] {
		m.infoMessage = "Still waiting for the previous answer."
		return nil
	}
	if _, err := m.config.Store.AppendMessage(sessionID, entity.Message{
		Role:    entity.RoleUser,
		Content: value,
	}); err != nil {
		m.errorMessage = err.Error()
		return nil
	}
	m.chatInput.SetValue("")
	m.pendingChats[sessionID] = true
	m.errorMessage = ""
	m.infoMessage = "Thinking…"
	return tea.Batch(
		m.spinner.Tick,
		chatCmd(m.config.Backend, sessionID, value),
		m.persistCmd(),
	)
}

// openChatbot runs the compound transition: look up or create the session,
// then enter the chat screen. A missing document changes nothing.
func (m *model) openChatbot(documentID string) tea.Cmd {
	if _, err := m.config.Nav.OpenChatbot(documentID); err != nil {
		m.errorMessage = err.Error()
		return nil
	}
	m.ensureView(documentID)
	m.focus = focusChat
	m.chatInput.Focus()
	m.errorMessage = ""
	m.infoMessage = "Type a question and press Enter."
	return m.persistCmd()
}

// followCitation jumps the document view to the indexth citation of the most
// recent assistant message and makes the viewer visible. Citation pages are
// untrusted text; out-of-range targets are silently ignored.
func (m *model) followCitation(index int) tea.Cmd {
	session, ok := m.config.Store.Session(m.config.Nav.ChatbotID())
	if !ok {
		return nil
	}
	pages := lastAssistantCitations(session)
	if index < 0 || index >= len(pages) {
		return nil
	}
	view := m.ensureView(session.DocumentID)
	if !view.JumpToPage(pages[index]) {
		return nil
	}
	m.focus = focusNone
	m.chatInput.Blur()
	if err := m.config.Nav.OpenViewer(session.DocumentID); err != nil {
		return nil
	}
	m.infoMessage = fmt.Sprintf("Jumped to page %d.", pages[index])
	return m.persistCmd()
}

func lastAssistantCitations(session entity.ChatSession) []int {
	for i := len(session.Messages) - 1; i >= 0; i-- {
		message := session.Messages[i]
		if message.Role != entity.RoleAssistant {
			continue
		}
		return citation.Pages(citation.Parse(message.Content))
	}
	return nil
}

func (m *model) startUploadEntry() {
	m.focus = focusUploadPath
	m.pathInput.SetValue("")
	m.pathInput.Focus()
	m.errorMessage = ""
	m.infoMessage = "Enter the path of the document to upload."
}

// ensureView returns the controller for the document, creating it with the
// document's current count plus any textual hint from its content.
func (m *model) ensureView(documentID string) *pageview.Controller {
	if view, ok := m.views[documentID]; ok {
		return view
	}
	doc, _ := m.config.Store.Document(documentID)
	view := pageview.New(doc.PageCount)
	if hint := pageview.GuessPageCount(doc.Content); hint > doc.PageCount {
		view.SetProvisionalCount(hint)
	}
	m.views[documentID] = view
	return view
}

func (m *model) documentAtCursor(docs []entity.Document) (entity.Document, bool) {
	if len(docs) == 0 {
		m.infoMessage = "Library is empty. Press u to upload a document."
		return entity.Document{}, false
	}
	if m.libraryCursor >= len(docs) {
		m.libraryCursor = len(docs) - 1
	}
	if m.libraryCursor < 0 {
		m.libraryCursor = 0
	}
	return docs[m.libraryCursor], true
}

// persistCmd snapshots the store and navigation on the update goroutine and
// writes it in the background. Failures surface as snapshotSavedMsg warnings.
func (m *model) persistCmd() tea.Cmd {
	if m.config.Gateway == nil {
		return nil
	}
	snapshot := persist.Snapshot{
		Entities: m.config.Store.Snapshot(),
		Nav:      m.config.Nav.SnapshotState(),
	}
	return saveSnapshotCmd(m.config.Gateway, snapshot)
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(size)/(1<<10))
	case size >= 0:
		return fmt.Sprintf("%d B", size)
	default:
		return ""
	}
}
