package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"faqbot/internal/domain"
	"faqbot/internal/textnorm"
)

// FAQPort is the TUI-facing subset of the FAQ service. Consult returns the
// decision and the ranking computed against the same index.
type FAQPort interface {
	Consult(ctx context.Context, query string, k int) (domain.Outcome, []domain.Match)
}

// Model is the Bubble Tea model for the interactive console.
type Model struct {
	service   FAQPort
	topK      int
	input     textinput.Model
	viewport  viewport.Model
	outcome   *domain.Outcome
	results   []domain.Match
	subtitle  string
	status    string
	cursor    int
	ready     bool
	lastQuery string
}

// New creates a console asking service. subtitle is shown under the title.
func New(service FAQPort, topK int, subtitle string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	if topK <= 0 {
		topK = 5
	}
	return Model{
		service:  service,
		topK:     topK,
		input:    ti,
		viewport: vp,
		subtitle: subtitle,
		status:   "Ready. Up/Down browse the ranking, Ctrl+C quits.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // title, subtitle, status, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.render())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			m.ask(m.input.Value())
			m.viewport.SetContent(m.render())
			return m, nil
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.render())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.render())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) ask(query string) {
	out, ranked := m.service.Consult(context.Background(), query, m.topK)
	m.outcome = &out
	m.results = ranked
	m.cursor = 0
	m.lastQuery = query
	if out.Kind == domain.OutcomeEmptyQuery {
		m.status = out.Message
		return
	}
	m.status = fmt.Sprintf("%s for %q (best score %.3f)", out.Kind, strings.TrimSpace(query), out.Score)
}

// View renders the layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("FAQ Bot")
	subtitle := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.subtitle)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + subtitle + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) render() string {
	if m.outcome == nil {
		return "Nothing asked yet."
	}
	var b strings.Builder
	if m.outcome.Answered() {
		b.WriteString(answerStyle.Render(m.outcome.Message))
	} else {
		b.WriteString(deferStyle.Render(m.outcome.Message))
	}
	if len(m.results) == 0 {
		return b.String()
	}
	r := m.results[m.cursor]
	fmt.Fprintf(&b, "\n\nMatch %d/%d  score=%.3f\n\n", m.cursor+1, len(m.results), r.Score)
	b.WriteString("Q: " + highlightTerms(r.Question, m.lastQuery) + "\n")
	b.WriteString("A: " + r.Answer)
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	answerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	deferStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Italic(true)
)

// highlightTerms emphasizes every word of text that shares a normalized
// token with query.
func highlightTerms(text, query string) string {
	q := make(map[string]struct{})
	for _, t := range textnorm.Tokens(query) {
		q[t] = struct{}{}
	}
	if len(q) == 0 {
		return text
	}
	words := strings.Fields(text)
	for i, w := range words {
		for _, t := range textnorm.Tokens(w) {
			if _, ok := q[t]; ok {
				words[i] = highlightStyle.Render(w)
				break
			}
		}
	}
	return strings.Join(words, " ")
}
