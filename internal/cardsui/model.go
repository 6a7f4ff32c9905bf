// Package cardsui provides the Bubble Tea card browser interface.
package cardsui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jun-nagaya/competitive-karuta-trainer/internal/dataset"
	"github.com/jun-nagaya/competitive-karuta-trainer/internal/kimariji"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	prefixStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// row pairs a card with its precomputed identifying prefix.
type row struct {
	pair dataset.Pair
	rec  kimariji.Record
	hint string
}

// Model implements the Bubble Tea card browser.
type Model struct {
	rows     []row
	filtered []row

	table  table.Model
	filter textinput.Model

	filterMode bool

	width  int
	height int
}

// NewModel constructs a card browser over the given pairs. Identifying
// prefixes are computed across the full pair set so the 決まり字 column
// reflects the complete deck, not a sampled subset.
func NewModel(pairs []dataset.Pair, hints *dataset.HintTable, prefixes map[int]kimariji.Record) *Model {
	rows := make([]row, 0, len(pairs))
	for _, pair := range pairs {
		rows = append(rows, row{
			pair: pair,
			rec:  prefixes[pair.ID],
			hint: hints.Lookup(pair),
		})
	}

	filter := textinput.New()
	filter.Prompt = "検索: "
	filter.CharLimit = 64

	m := &Model{
		rows:   rows,
		filter: filter,
	}
	m.applyFilter("")
	m.rebuildTable()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rebuildTable()
		return m, nil
	case tea.KeyMsg:
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "/":
			m.filterMode = true
			m.filter.Focus()
			return m, textinput.Blink
		case "g", "home":
			m.table.GotoTop()
			return m, nil
		case "G", "end":
			m.table.GotoBottom()
			return m, nil
		default:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filterMode = false
		m.filter.Blur()
		return m, nil
	case "esc":
		m.filterMode = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter("")
		m.rebuildTable()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter(m.filter.Value())
	m.rebuildTable()
	return m, cmd
}

// applyFilter keeps the rows whose prefix, verse, or hint contains query.
func (m *Model) applyFilter(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		m.filtered = m.rows
		return
	}
	filtered := make([]row, 0, len(m.rows))
	for _, r := range m.rows {
		if strings.Contains(r.rec.Prefix, query) ||
			strings.Contains(r.pair.Kami, query) ||
			strings.Contains(r.pair.Shimo, query) ||
			strings.Contains(r.hint, query) {
			filtered = append(filtered, r)
		}
	}
	m.filtered = filtered
}

func (m *Model) rebuildTable() {
	prefixWidth := runewidth.StringWidth("決まり字")
	kamiWidth := runewidth.StringWidth("上の句")
	shimoWidth := runewidth.StringWidth("下の句")
	hintWidth := runewidth.StringWidth("ヒント")
	rows := make([]table.Row, 0, len(m.filtered))
	for _, r := range m.filtered {
		if w := runewidth.StringWidth(r.rec.Prefix); w > prefixWidth {
			prefixWidth = w
		}
		if w := runewidth.StringWidth(r.pair.Kami); w > kamiWidth {
			kamiWidth = w
		}
		if w := runewidth.StringWidth(r.pair.Shimo); w > shimoWidth {
			shimoWidth = w
		}
		if w := runewidth.StringWidth(r.hint); w > hintWidth {
			hintWidth = w
		}
		rows = append(rows, table.Row{r.rec.Prefix, r.pair.Kami, r.pair.Shimo, r.hint})
	}

	columns := []table.Column{
		{Title: "決まり字", Width: prefixWidth},
		{Title: "上の句", Width: kamiWidth},
		{Title: "下の句", Width: shimoWidth},
		{Title: "ヒント", Width: hintWidth},
	}

	height := m.height - 8
	if height < 3 {
		height = 3
	}
	if height > len(rows)+1 {
		height = len(rows) + 1
	}

	selected := m.table.Cursor()
	m.table = table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(height),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("#8C8C8C")).Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Background(lipgloss.Color("#3A3A3A")).
		Bold(true)
	m.table.SetStyles(styles)
	if selected < len(rows) {
		m.table.SetCursor(selected)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	sections := []string{
		titleStyle.Render("札一覧"),
		headerStyle.Render(m.countLine()),
		tableStyle.Render(m.table.View()),
	}
	if detail := m.renderDetail(); detail != "" {
		sections = append(sections, detail)
	}
	if m.filterMode {
		sections = append(sections, m.filter.View())
	} else {
		sections = append(sections, footerStyle.Render("↑/↓: 移動  /: 検索  q: 終了"))
	}
	return strings.Join(sections, "\n")
}

func (m *Model) countLine() string {
	if len(m.filtered) == len(m.rows) {
		return fmt.Sprintf("%d 枚", len(m.rows))
	}
	return fmt.Sprintf("%d 枚 (全%d枚)", len(m.filtered), len(m.rows))
}

// renderDetail shows the selected card's full verse with the identifying
// prefix highlighted. ANSI styling stays out of the table cells so the
// column widths stay stable.
func (m *Model) renderDetail() string {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.filtered) {
		return ""
	}
	r := m.filtered[cursor]
	runes := []rune(r.pair.Kami)
	end := r.rec.EndIndex
	if end > len(runes) {
		end = len(runes)
	}
	kami := prefixStyle.Render(string(runes[:end])) + string(runes[end:])
	detail := kami + "  " + r.pair.Shimo
	if r.hint != "" {
		detail += footerStyle.Render("  " + r.hint)
	}
	return detail
}
