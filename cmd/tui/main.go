package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/adityamitter15/invoice-ocr-prototype/cmd/tui/internal/view"
	"github.com/adityamitter15/invoice-ocr-prototype/internal/api"
	"github.com/adityamitter15/invoice-ocr-prototype/internal/config"
	"github.com/adityamitter15/invoice-ocr-prototype/internal/review"
)

type model struct {
	client  *api.Client
	queue   *review.Queue
	session *review.Session

	currentView View

	uploadView view.UploadModel
	reviewView view.ReviewModel
}

type View int

const (
	ViewMenu   View = 0
	ViewUpload View = 1
	ViewReview View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)

	// Queue and session outlive the individual views: the upload view
	// refreshes the same queue the review view displays, and an
	// in-flight approval keeps its session across navigation.
	queue := new(review.Queue)
	session := review.NewSession()

	return model{
		client:      client,
		queue:       queue,
		session:     session,
		currentView: ViewMenu,
		uploadView:  view.NewUploadModel(client, queue),
		reviewView:  view.NewReviewModel(client, queue, session),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewUpload
				m.uploadView = view.NewUploadModel(m.client, m.queue)

				return m, m.uploadView.Init()
			case "2":
				m.currentView = ViewReview
				m.reviewView = view.NewReviewModel(m.client, m.queue, m.session)

				return m, m.reviewView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewUpload:
		var newModel tea.Model
		newModel, cmd = m.uploadView.Update(msg)
		m.uploadView = newModel.(view.UploadModel)
	case ViewReview:
		var newModel tea.Model
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Invoice OCR Review\n\n" +
				"1. Upload Invoice\n" +
				"2. Review Queue\n\n" +
				"q. Quit",
		)
	case ViewUpload:
		return m.uploadView.View()
	case ViewReview:
		return m.reviewView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
