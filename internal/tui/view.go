package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/amarquez/folio/internal/citation"
	"github.com/amarquez/folio/internal/entity"
	"github.com/amarquez/folio/internal/nav"
)

const heroTagline = "Read your documents, ask them questions."

func (m *model) View() string {
	var body string
	switch {
	case m.focus == focusUploadPath:
		body = m.viewUploadEntry()
	case m.uploading:
		body = fmt.Sprintf("%s Uploading document…", m.spinner.View())
	default:
		switch m.config.Nav.Screen() {
		case nav.ScreenHome:
			body = m.viewHome()
		case nav.ScreenLibrary:
			body = m.viewLibrary()
		case nav.ScreenViewer:
			body = m.viewViewer()
		case nav.ScreenChatbot:
			body = m.viewChatbot()
		}
	}

	parts := []string{heroStyle.Render("FOLIO"), taglineStyle.Render(heroTagline), body}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		parts = append(parts, helperStyle.Render(m.infoMessage))
	}
	return joinNonEmpty(parts)
}

func (m *model) viewHome() string {
	docs := m.config.Store.Documents()
	b := strings.Builder{}
	b.WriteString(sectionHeaderStyle.Render("Home"))
	b.WriteRune('\n')
	b.WriteString(fmt.Sprintf("%d document(s) in your library.\n\n", len(docs)))
	b.WriteString(keyHintLine("u", "upload a document"))
	b.WriteString(keyHintLine("l", "open the library"))
	b.WriteString(keyHintLine("q", "quit"))
	return b.String()
}

func (m *model) viewUploadEntry() string {
	b := strings.Builder{}
	b.WriteString(sectionHeaderStyle.Render("Upload Document"))
	b.WriteRune('\n')
	b.WriteString(m.pathInput.View())
	b.WriteRune('\n')
	b.WriteString(helperStyle.Render("Press Enter to upload, Esc to cancel."))
	return b.String()
}

func (m *model) viewLibrary() string {
	docs := m.config.Store.Documents()
	b := strings.Builder{}
	b.WriteString(sectionHeaderStyle.Render("Library"))
	b.WriteRune('\n')
	if len(docs) == 0 {
		b.WriteString(helperStyle.Render("No documents yet. Press u to upload one."))
		return b.String()
	}
	for i, doc := range docs {
		cursor := " "
		if i == m.libraryCursor {
			cursor = ">"
		}
		row := fmt.Sprintf(" %s %s  %s · %d page(s) · %s",
			cursor, doc.Name, doc.SizeLabel, doc.PageCount, doc.UploadedAt.Format("2006-01-02 15:04"))
		if i == m.libraryCursor {
			row = currentLineStyle.Render(row)
		}
		b.WriteString(row)
		b.WriteRune('\n')
	}
	b.WriteRune('\n')
	b.WriteString(helperStyle.Render("enter view · c chat · d delete · u upload · esc back"))
	return b.String()
}

func (m *model) viewViewer() string {
	docID := m.config.Nav.DocumentID()
	doc, ok := m.config.Store.Document(docID)
	if !ok {
		return m.viewHome()
	}
	view := m.ensureView(docID)

	b := strings.Builder{}
	b.WriteString(sectionHeaderStyle.Render(doc.Name))
	b.WriteRune('\n')

	status := fmt.Sprintf("Page %d/%d · Zoom %d%%", view.Page(), view.PageCount(), view.Zoom())
	if view.Provisional() {
		status += " · page count pending"
	}
	if view.Expanded() {
		status += " · expanded"
	}
	b.WriteString(statusBarStyle.Render(status))
	b.WriteRune('\n')

	if locator, err := m.config.Backend.PageImageURL(doc.ID, view.Page()); err == nil {
		b.WriteString(helperStyle.Render("image: " + locator))
		b.WriteRune('\n')
	}

	if m.focus == focusGotoPage {
		b.WriteString("Go to ")
		b.WriteString(m.pageInput.View())
		b.WriteRune('\n')
	}

	if strings.TrimSpace(doc.Content) != "" {
		b.WriteRune('\n')
		b.WriteString(wordwrap.String(doc.Content, m.wrapWidth(0)))
		b.WriteRune('\n')
	}

	b.WriteRune('\n')
	b.WriteString(helperStyle.Render("←/→ pages · +/- zoom · e expand · g goto · c chat · esc back"))
	return b.String()
}

func (m *model) viewChatbot() string {
	session, ok := m.config.Store.Session(m.config.Nav.ChatbotID())
	if !ok {
		return m.viewHome()
	}

	b := strings.Builder{}
	b.WriteString(sectionHeaderStyle.Render("Chat · " + session.DocumentName))
	b.WriteRune('\n')

	if len(session.Messages) == 0 {
		b.WriteString(helperStyle.Render("No messages yet. Ask something about the document."))
		b.WriteRune('\n')
	}
	for _, message := range session.Messages {
		b.WriteString(m.renderMessage(message))
		b.WriteRune('\n')
	}
	if m.pendingChats[session.ID] {
		b.WriteString(helperStyle.Render(fmt.Sprintf("%s Waiting for an answer…", m.spinner.View())))
		b.WriteRune('\n')
	}

	b.WriteRune('\n')
	b.WriteString(m.chatInput.View())
	b.WriteRune('\n')
	b.WriteString(helperStyle.Render("enter send · 1-9 open cited page · esc back"))
	return b.String()
}

// renderMessage styles one transcript turn. Assistant text runs through the
// citation parser here, at render time, so stored content stays verbatim.
func (m *model) renderMessage(message entity.Message) string {
	if message.Role == entity.RoleUser {
		return userLabelStyle.Render("you ") + wordwrap.String(message.Content, m.wrapWidth(6))
	}

	segments := citation.Parse(message.Content)
	var body strings.Builder
	linkIndex := 0
	for _, segment := range segments {
		if segment.IsCitation() {
			linkIndex++
			label := segment.Text
			if linkIndex <= 9 {
				label = fmt.Sprintf("%s(%d)", segment.Text, linkIndex)
			}
			body.WriteString(citationStyle.Render(label))
			continue
		}
		body.WriteString(segment.Text)
	}
	return assistantLabelStyle.Render("doc ") + wordwrap.String(body.String(), m.wrapWidth(6))
}

func (m *model) wrapWidth(padding int) int {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	available := width - padding
	if available < 20 {
		available = 20
	}
	return available
}

func keyHintLine(key, description string) string {
	return fmt.Sprintf("  %s %s\n", keyStyle.Render(key), keyDescStyle.Render(description))
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

var (
	heroStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff8c00")).Padding(0, 1)
	taglineStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffb347")).Italic(true)
	sectionHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	helperStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusBarStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	currentLineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))
	keyStyle            = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	userLabelStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("147"))
	assistantLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	citationStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("190"))
)
