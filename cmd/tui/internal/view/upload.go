package view

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adityamitter15/invoice-ocr-prototype/internal/api"
	"github.com/adityamitter15/invoice-ocr-prototype/internal/review"
	"github.com/adityamitter15/invoice-ocr-prototype/internal/submission"
	"github.com/adityamitter15/invoice-ocr-prototype/internal/upload"
)

type uploadState int

const (
	uploadStatePick uploadState = iota
	uploadStateUploading
	uploadStateResult
)

type UploadModel struct {
	CommonModel
	client   *api.Client
	workflow *upload.Workflow
	queue    *review.Queue

	state      uploadState
	filePicker filepicker.Model

	result *submission.Submission
	status string
}

func NewUploadModel(client *api.Client, queue *review.Queue) UploadModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.AllowedTypes = []string{".jpg", ".jpeg", ".png", ".heic", ".heif"}
	fp.SetHeight(15)

	return UploadModel{
		client:     client,
		workflow:   upload.NewWorkflow(client),
		queue:      queue,
		filePicker: fp,
	}
}

func (m UploadModel) Title() string { return "Upload Invoice" }

func (m UploadModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m UploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Control is disabled while an upload is in flight: once issued
		// it runs to completion, and a second submit must not fire.
		if m.state == uploadStateUploading {
			return m, nil
		}

		if msg.Type == tea.KeyEsc {
			if m.state == uploadStateResult {
				m.state = uploadStatePick
				m.result = nil
				m.status = ""

				return m, m.filePicker.Init()
			}

			return m, Back
		}

	case uploadResultMsg:
		if msg.err != nil {
			// Prior state stays untouched so the human can retry the
			// same file or pick another.
			m.state = uploadStatePick
			m.status = fmt.Sprintf("Upload failed: %v", msg.err)

			return m, nil
		}

		m.state = uploadStateResult
		m.result = msg.sub
		m.status = ""

		// Make the new submission discoverable in the review queue.
		return m, m.refreshQueueCmd()

	case queueLoadedMsg:
		_, _ = m.queue.Apply(msg.token, msg.items, msg.err)
		return m, nil
	}

	if m.state != uploadStatePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		if err := m.workflow.SetFile(path); err != nil {
			m.status = err.Error()
			return m, cmd
		}

		m.state = uploadStateUploading
		m.status = fmt.Sprintf("Uploading %s...", path)

		return m, m.submitCmd()
	}

	return m, cmd
}

func (m UploadModel) View() string {
	switch m.state {
	case uploadStatePick:
		content := "Pick an invoice image (jpeg, png, heic, heif):\n\n" + m.filePicker.View()
		if m.status != "" {
			content += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render(m.status)
		}

		content += "\n(Esc to back)"

		return lipgloss.NewStyle().Padding(1, 2).Render(content)

	case uploadStateUploading:
		return lipgloss.NewStyle().Padding(2).Render(m.status)

	case uploadStateResult:
		info := fmt.Sprintf(
			"Submission created\n\nID:      %s\nStatus:  %s\nCreated: %s\n\nOCR raw_text:\n%s\n\n(Esc to upload another)",
			m.result.ID,
			m.result.Status,
			FormatDate(m.result.CreatedAt),
			rawTextPanel(m.result.RawText()),
		)

		return lipgloss.NewStyle().Padding(1, 2).Render(info)
	}

	return ""
}

func rawTextPanel(text string) string {
	if text == "" {
		text = "(none)"
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(72).
		Render(text)
}

type uploadResultMsg struct {
	sub *submission.Submission
	err error
}

func (m UploadModel) submitCmd() tea.Cmd {
	wf := m.workflow

	return func() tea.Msg {
		ctx, cancel := ApiCtx()
		defer cancel()

		sub, err := wf.Submit(ctx)

		return uploadResultMsg{sub: sub, err: err}
	}
}

func (m UploadModel) refreshQueueCmd() tea.Cmd {
	token := m.queue.Begin()
	client := m.client

	return func() tea.Msg {
		ctx, cancel := ApiCtx()
		defer cancel()

		items, err := client.ListPending(ctx)

		return queueLoadedMsg{token: token, items: items, err: err}
	}
}
