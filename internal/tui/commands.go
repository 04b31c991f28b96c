package tui

import (
	"context"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amarquez/folio/internal/backend"
	"github.com/amarquez/folio/internal/persist"
)

type uploadResultMsg struct {
	path        string
	size        int64
	probedPages int
	result      backend.UploadResult
	err         error
}

type chatResultMsg struct {
	sessionID string
	result    backend.ChatResult
	err       error
}

type docInfoMsg struct {
	documentID string
	result     backend.DocumentInfo
	err        error
}

type snapshotSavedMsg struct {
	err error
}

const (
	uploadTimeout  = 3 * time.Minute
	chatTimeout    = 2 * time.Minute
	docInfoTimeout = 30 * time.Second
)

func uploadCmd(client backend.Client, path string) tea.Cmd {
	return func() tea.Msg {
		msg := uploadResultMsg{path: path}
		if info, err := os.Stat(path); err == nil {
			msg.size = info.Size()
		}
		// Best-effort local probe; the backend's count wins later.
		if pages, err := backend.ProbePageCount(path); err == nil {
			msg.probedPages = pages
		}

		ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
		defer cancel()
		msg.result, msg.err = client.Upload(ctx, path)
		return msg
	}
}

func chatCmd(client backend.Client, sessionID, message string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
		defer cancel()
		result, err := client.Ask(ctx, sessionID, message)
		return chatResultMsg{sessionID: sessionID, result: result, err: err}
	}
}

func docInfoCmd(client backend.Client, documentID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), docInfoTimeout)
		defer cancel()
		result, err := client.DocumentInfo(ctx, documentID)
		return docInfoMsg{documentID: documentID, result: result, err: err}
	}
}

// saveSnapshotCmd takes the snapshot by value: it was captured on the update
// goroutine, so the background write never races the single writer.
func saveSnapshotCmd(gateway *persist.Gateway, snapshot persist.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return snapshotSavedMsg{err: gateway.Save(snapshot)}
	}
}
