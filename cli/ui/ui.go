// Package ui provides reusable UI components for the foundation CLI.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AshkanYarmoradi/go-foundation/cli/styles"
)

// SpinnerModel is a spinner component with a message
type SpinnerModel struct {
	spinner  spinner.Model
	message  string
	quitting bool
	done     bool
	result   string
	err      error
}

// NewSpinner creates a new spinner with the given message
func NewSpinner(message string) SpinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return SpinnerModel{
		spinner: s,
		message: message,
	}
}

func (m SpinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case SpinnerDoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m SpinnerModel) View() string {
	if m.done {
		if m.err != nil {
			return styles.FormatError(m.result) + "\n"
		}
		return styles.FormatSuccess(m.result) + "\n"
	}

	if m.quitting {
		return styles.FormatWarning("Cancelled") + "\n"
	}

	return m.spinner.View() + " " + styles.Normal.Render(m.message) + "\n"
}

// SpinnerDoneMsg signals that the spinner operation is complete
type SpinnerDoneMsg struct {
	Result string
	Err    error
}

// GenerationModel shows the steps of a generation run as a progress bar.
type GenerationModel struct {
	spinner  spinner.Model
	progress progress.Model
	total    int
	step     int
	current  string
	quitting bool
	done     bool
	result   string
	err      error
}

// NewGenerationProgress creates a GenerationModel for a run of total steps.
func NewGenerationProgress(total int) GenerationModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return GenerationModel{
		spinner: s,
		progress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		),
		total: total,
	}
}

// StepMsg reports that a generation step started.
type StepMsg struct {
	Artifact string
	Target   string
}

func (m GenerationModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m GenerationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case StepMsg:
		m.step++
		m.current = msg.Artifact + " " + msg.Target
		return m, nil

	case SpinnerDoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// Percent returns the share of started steps.
func (m GenerationModel) Percent() float64 {
	if m.total <= 0 {
		return 0
	}
	if m.step >= m.total {
		return 1
	}
	return float64(m.step) / float64(m.total)
}

func (m GenerationModel) View() string {
	if m.done {
		if m.err != nil {
			return styles.FormatError(m.result) + "\n"
		}
		return styles.FormatSuccess(m.result) + "\n"
	}

	if m.quitting {
		return styles.FormatWarning("Cancelled") + "\n"
	}

	return m.spinner.View() + " " + m.progress.ViewAs(m.Percent()) + " " +
		styles.FormatStep(m.step, m.total, styles.Muted.Render(m.current)) + "\n"
}

// Table renders a bordered table
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a new table with headers
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	return &Table{
		headers: headers,
		rows:    make([][]string, 0),
		widths:  widths,
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(values ...string) {
	// Missing cells are left empty; extra values are dropped.
	row := make([]string, len(t.headers))
	for i := 0; i < len(t.headers); i++ {
		if i < len(values) {
			row[i] = values[i]
			if w := lipgloss.Width(values[i]); w > t.widths[i] {
				t.widths[i] = w
			}
		}
	}
	t.rows = append(t.rows, row)
}

// Render returns the formatted table string
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	var sb strings.Builder

	// Header styles
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.Primary).
		Padding(0, 1)

	cellStyle := lipgloss.NewStyle().
		Foreground(styles.Text).
		Padding(0, 1)

	borderStyle := lipgloss.NewStyle().
		Foreground(styles.Border)

	// Top border
	sb.WriteString(borderStyle.Render("┌"))
	for i, w := range t.widths {
		sb.WriteString(borderStyle.Render(strings.Repeat("─", w+2)))
		if i < len(t.widths)-1 {
			sb.WriteString(borderStyle.Render("┬"))
		}
	}
	sb.WriteString(borderStyle.Render("┐"))
	sb.WriteString("\n")

	// Header row
	sb.WriteString(borderStyle.Render("│"))
	for i, h := range t.headers {
		cell := headerStyle.Width(t.widths[i] + 2).Render(h)
		sb.WriteString(cell)
		sb.WriteString(borderStyle.Render("│"))
	}
	sb.WriteString("\n")

	// Header separator
	sb.WriteString(borderStyle.Render("├"))
	for i, w := range t.widths {
		sb.WriteString(borderStyle.Render(strings.Repeat("─", w+2)))
		if i < len(t.widths)-1 {
			sb.WriteString(borderStyle.Render("┼"))
		}
	}
	sb.WriteString(borderStyle.Render("┤"))
	sb.WriteString("\n")

	// Data rows
	for _, row := range t.rows {
		sb.WriteString(borderStyle.Render("│"))
		for i, cell := range row {
			c := cellStyle.Width(t.widths[i] + 2).Render(cell)
			sb.WriteString(c)
			sb.WriteString(borderStyle.Render("│"))
		}
		sb.WriteString("\n")
	}

	// Bottom border
	sb.WriteString(borderStyle.Render("└"))
	for i, w := range t.widths {
		sb.WriteString(borderStyle.Render(strings.Repeat("─", w+2)))
		if i < len(t.widths)-1 {
			sb.WriteString(borderStyle.Render("┴"))
		}
	}
	sb.WriteString(borderStyle.Render("┘"))

	return sb.String()
}

// StatusBadge returns a styled status badge
func StatusBadge(status string) string {
	var background, foreground lipgloss.Color
	switch strings.ToLower(status) {
	case "ok", "success", "generated", "resolved", "latest":
		background, foreground = styles.Success, lipgloss.Color("#000000")
	case "skipped", "pending", "factory":
		background, foreground = styles.Warning, lipgloss.Color("#000000")
	case "error", "failed", "unresolved":
		background, foreground = styles.Error, lipgloss.Color("#FFFFFF")
	default:
		background, foreground = styles.Surface, styles.Text
	}
	return lipgloss.NewStyle().
		Background(background).
		Foreground(foreground).
		Padding(0, 1).
		Render(status)
}

// Banner renders the foundation banner
func Banner() string {
	banner := `
    ┌──────────────────────────────────────────┐
    │                                          │
    │   ╔═╗╔═╗╦ ╦╔╗╔╔╦╗╔═╗╔╦╗╦╔═╗╔╗╔           │
    │   ╠╣ ║ ║║ ║║║║ ║║╠═╣ ║ ║║ ║║║║           │
    │   ╚  ╚═╝╚═╝╝╚╝═╩╝╩ ╩ ╩ ╩╚═╝╝╚╝           │
    │                                          │
    │   Buses, translators and event fields    │
    │   generated from your contracts          │
    │                                          │
    └──────────────────────────────────────────┘
`
	return lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Render(banner)
}

// SimpleBanner returns a smaller, simpler banner
func SimpleBanner() string {
	return styles.IconFoundation + " " + lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.Primary).
		Render("foundation") +
		" " +
		styles.Muted.Render("- CQRS wiring generator for Go")
}

// Divider returns a horizontal divider line
func Divider(width int) string {
	return styles.Dim.Render(strings.Repeat("─", width))
}

// ListItems formats a list of items with bullets
func ListItems(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(styles.ListItemBullet.Render(styles.IconDot))
		sb.WriteString(styles.ListItem.Render(item))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Pluralize returns "1 file" or "n files".
func Pluralize(n int, singular string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %ss", n, singular)
}
