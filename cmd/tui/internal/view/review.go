package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/adityamitter15/invoice-ocr-prototype/internal/api"
	"github.com/adityamitter15/invoice-ocr-prototype/internal/review"
	"github.com/adityamitter15/invoice-ocr-prototype/internal/submission"
)

type reviewState int

const (
	reviewStateBrowse reviewState = iota
	reviewStateDetail
	reviewStateEdit
)

type ReviewModel struct {
	CommonModel
	client  *api.Client
	queue   *review.Queue
	session *review.Session

	state reviewState
	table table.Model
	form  *huh.Form

	status string

	// Form bindings
	formDesc   string
	formQty    string
	formAmount string
	formConf   string
}

func NewReviewModel(client *api.Client, queue *review.Queue, session *review.Session) ReviewModel {
	columns := []table.Column{
		{Title: "ID", Width: 36},
		{Title: "Created", Width: 17},
		{Title: "OCR Preview", Width: 48},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m := ReviewModel{
		client:  client,
		queue:   queue,
		session: session,
		table:   t,
	}
	m.refreshTable()

	return m
}

func (m ReviewModel) Title() string { return "Review Queue" }

func (m ReviewModel) ShortHelp() string {
	switch m.state {
	case reviewStateDetail:
		return "e: edit items | a: approve | Esc: back to queue"
	case reviewStateEdit:
		return "Navigate form | Esc: cancel"
	}

	return "Enter: review | r: refresh | Esc: back"
}

func (m ReviewModel) Init() tea.Cmd {
	return m.refreshQueueCmd()
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case queueLoadedMsg:
		applied, err := m.queue.Apply(msg.token, msg.items, msg.err)
		if applied && err != nil {
			// Previous snapshot is retained; only the failure is shown.
			m.status = fmt.Sprintf("Queue refresh failed: %v", err)
		}

		m.refreshTable()

		return m, nil

	case subLoadedMsg:
		if err := m.session.ApplyLoad(msg.token, msg.sub, msg.err); err != nil {
			m.state = reviewStateBrowse
			m.status = fmt.Sprintf("Error: %v", err)

			return m, nil
		}

		if m.session.State() == review.StateLoaded {
			m.state = reviewStateDetail
			m.status = ""
		}

		return m, nil

	case approveResultMsg:
		cleared, err := m.session.ApplyApprove(msg.err)
		if err != nil {
			m.status = fmt.Sprintf("Error: %v", err)
		} else {
			m.status = fmt.Sprintf("Approved %s", msg.id)
		}

		if cleared {
			// The submission left the reviewer's purview either way.
			m.state = reviewStateBrowse
			return m, m.refreshQueueCmd()
		}

		return m, nil
	}

	switch m.state {
	case reviewStateBrowse:
		return m.updateBrowse(msg)
	case reviewStateDetail:
		return m.updateDetail(msg)
	case reviewStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m ReviewModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			// Coalesce: at most one outstanding queue request.
			if m.queue.Loading() {
				return m, nil
			}

			return m, m.refreshQueueCmd()
		case "enter":
			return m.selectCurrent()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ReviewModel) selectCurrent() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()

	items := m.queue.Items()
	if idx < 0 || idx >= len(items) {
		return m, nil
	}

	token, err := m.session.Select(items[idx].ID)
	if err != nil {
		m.status = fmt.Sprintf("Cannot select: %v", err)
		return m, nil
	}

	m.status = "Loading submission..."

	return m, m.loadSubCmd(items[idx].ID, token)
}

func (m ReviewModel) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	// The triggering controls stay disabled while an approval is in
	// flight; it runs to completion.
	if m.session.State() == review.StateApproving {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		m.state = reviewStateBrowse
		m.status = ""

		return m, nil
	case "e":
		return m.enterEditMode()
	case "a":
		return m.startApprove()
	}

	return m, nil
}

func (m ReviewModel) enterEditMode() (tea.Model, tea.Cmd) {
	draft := m.session.Draft()
	m.formDesc = draft.Description
	m.formQty = strconv.Itoa(draft.Quantity)
	m.formAmount = strconv.FormatFloat(draft.Amount, 'f', -1, 64)
	m.formConf = strconv.FormatFloat(draft.Confidence, 'f', -1, 64)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.formDesc),

			huh.NewInput().
				Key("quantity").
				Title("Quantity").
				Value(&m.formQty),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("0.00").
				Value(&m.formAmount),

			huh.NewInput().
				Key("confidence").
				Title("Confidence (0-1)").
				Value(&m.formConf),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = reviewStateEdit

	return m, m.form.Init()
}

func (m ReviewModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = reviewStateDetail
			m.form = nil

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	// Invalid numeric input is coerced, not rejected; the draft always
	// holds usable values.
	_ = m.session.EditDescription(m.formDesc)
	_ = m.session.EditQuantity(m.formQty)
	_ = m.session.EditAmount(m.formAmount)
	_ = m.session.EditConfidence(m.formConf)

	m.state = reviewStateDetail
	m.form = nil

	return m, nil
}

func (m ReviewModel) startApprove() (tea.Model, tea.Cmd) {
	id, items, err := m.session.BeginApprove()
	if err != nil {
		m.status = fmt.Sprintf("Cannot approve: %v", err)
		return m, nil
	}

	m.status = "Approving..."

	return m, m.approveCmd(id, items)
}

func (m ReviewModel) View() string {
	switch m.state {
	case reviewStateBrowse:
		return m.viewBrowse()
	case reviewStateDetail, reviewStateEdit:
		return m.viewDetail()
	}

	return ""
}

func (m ReviewModel) viewBrowse() string {
	header := "Pending Review Queue"
	if m.queue.Loading() {
		header += "  (refreshing...)"
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).PaddingBottom(1).Render(header),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
	)

	if len(m.queue.Items()) == 0 && !m.queue.Loading() {
		content += "\n\nNo pending submissions."
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m ReviewModel) viewDetail() string {
	sub := m.session.Selected()
	if sub == nil {
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	}

	draft := m.session.Draft()

	left := fmt.Sprintf(
		"Submission: %s\nStatus:     %s\nCreated:    %s\n\nOCR raw_text:\n%s",
		sub.ID,
		sub.Status,
		FormatDate(sub.CreatedAt),
		rawTextPanel(sub.RawText()),
	)

	right := fmt.Sprintf(
		"Line Item Draft\n\nDescription: %s\nQuantity:    %d\nAmount:      %.2f\nConfidence:  %.2f",
		draft.Description,
		draft.Quantity,
		draft.Amount,
		draft.Confidence,
	)

	if m.session.State() == review.StateApproving {
		right += "\n\nApproving..."
	}

	if m.state == reviewStateEdit && m.form != nil {
		right = "Edit Line Item\n\n" + m.form.View()
	}

	panel := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(78).Render(left),
		lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(right),
	)

	content := panel
	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ReviewModel) refreshTable() {
	items := m.queue.Items()

	rows := make([]table.Row, 0, len(items))
	for _, sub := range items {
		rows = append(rows, table.Row{
			sub.ID,
			FormatDate(sub.CreatedAt),
			Preview(sub.RawText(), 46),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type subLoadedMsg struct {
	token uint64
	sub   *submission.Submission
	err   error
}

type approveResultMsg struct {
	id  string
	err error
}

func (m ReviewModel) refreshQueueCmd() tea.Cmd {
	token := m.queue.Begin()
	client := m.client

	return func() tea.Msg {
		ctx, cancel := ApiCtx()
		defer cancel()

		items, err := client.ListPending(ctx)

		return queueLoadedMsg{token: token, items: items, err: err}
	}
}

func (m ReviewModel) loadSubCmd(id string, token uint64) tea.Cmd {
	client := m.client

	return func() tea.Msg {
		ctx, cancel := ApiCtx()
		defer cancel()

		sub, err := client.Get(ctx, id)

		return subLoadedMsg{token: token, sub: sub, err: err}
	}
}

func (m ReviewModel) approveCmd(id string, items []submission.LineItem) tea.Cmd {
	client := m.client

	return func() tea.Msg {
		ctx, cancel := ApiCtx()
		defer cancel()

		_, err := client.Approve(ctx, id, items)

		return approveResultMsg{id: id, err: err}
	}
}
