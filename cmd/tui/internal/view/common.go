package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adityamitter15/invoice-ocr-prototype/internal/submission"
)

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// queueLoadedMsg carries a pending-queue snapshot back to the event
// loop. The token ties it to the refresh that requested it; stale
// responses are discarded by the cache.
type queueLoadedMsg struct {
	token uint64
	items []submission.Submission
	err   error
}
