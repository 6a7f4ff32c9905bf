// Package tui provides the Bubble Tea game board interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jun-nagaya/competitive-karuta-trainer/internal/audio"
	"github.com/jun-nagaya/competitive-karuta-trainer/internal/dataset"
	"github.com/jun-nagaya/competitive-karuta-trainer/internal/game"
	"github.com/jun-nagaya/competitive-karuta-trainer/internal/kimariji"
	"github.com/jun-nagaya/competitive-karuta-trainer/internal/model"
	"github.com/jun-nagaya/competitive-karuta-trainer/internal/results"
	"github.com/jun-nagaya/competitive-karuta-trainer/internal/store"
)

// tickInterval drives autoplay polling and the muted verse reveal. One tick
// reveals one character, matching the original 0.1s per-char cadence.
const tickInterval = 100 * time.Millisecond

type tickMsg time.Time

type audioFetchedMsg struct {
	cardID  int
	deferMs int
	data    []byte
	err     error
}

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			Padding(0, 1)
	cursorCardStyle = cardStyle.
			BorderForeground(lipgloss.Color("#C89A3A")).
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true)
	emptyCardStyle = cardStyle.
			BorderForeground(lipgloss.Color("#2E2E2E")).
			Foreground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	revealStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	prefixStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")).Italic(true)
)

// Model implements the Bubble Tea game UI.
type Model struct {
	cfg      model.Config
	session  *game.Session
	store    *store.Store
	cache    *audio.Cache
	hints    *dataset.HintTable
	prefixes map[int]kimariji.Record

	width  int
	height int

	cursorR int
	cursorC int

	revealID    int
	revealCount int

	audioNote string
	saved     bool
}

// NewModel constructs a game UI model. The session must already be dealt;
// the game starts on Init.
func NewModel(cfg model.Config, session *game.Session, st *store.Store, cache *audio.Cache, hints *dataset.HintTable, prefixes map[int]kimariji.Record) *Model {
	return &Model{
		cfg:      cfg,
		session:  session,
		store:    st,
		cache:    cache,
		hints:    hints,
		prefixes: prefixes,
		revealID: game.EmptyCell,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.session.SetMuted(m.cfg.Muted)
	m.session.Start()
	return tick()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		cmd := m.handleTick()
		return m, tea.Batch(tick(), cmd)
	case audioFetchedMsg:
		return m, m.handleAudioFetched(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1, 0)
	case "down", "j":
		m.moveCursor(1, 0)
	case "left", "h":
		m.moveCursor(0, -1)
	case "right", "l":
		m.moveCursor(0, 1)
	case "enter", " ":
		m.session.HandleCellClick(m.cursorR, m.cursorC)
		if m.session.Finished() {
			m.saveGame()
		}
	case "m":
		m.session.SetMuted(!m.session.Muted())
		if m.session.Muted() {
			m.audioNote = ""
		}
	case "r":
		m.resetGame()
	}
	return m, nil
}

func (m *Model) moveCursor(dr, dc int) {
	r := m.cursorR + dr
	c := m.cursorC + dc
	if r >= 0 && r < m.session.Rows() {
		m.cursorR = r
	}
	if c >= 0 && c < m.session.Cols() {
		m.cursorC = c
	}
}

func (m *Model) resetGame() {
	m.session.Reset(nil, 0, 0)
	m.session.Start()
	if m.cache != nil {
		m.cache.Clear()
	}
	m.cursorR, m.cursorC = 0, 0
	m.revealID = game.EmptyCell
	m.revealCount = 0
	m.audioNote = ""
	m.saved = false
}

func (m *Model) handleTick() tea.Cmd {
	m.advanceReveal()

	poll := m.session.PollAutoplay()
	if !poll.Attempted || !poll.FetchAudio || m.cache == nil {
		return nil
	}
	target, ok := m.session.Target()
	if !ok {
		return nil
	}
	cache := m.cache
	deferMs := poll.DeferMs
	return func() tea.Msg {
		data, err := cache.Fetch(context.Background(), target.ID, target.Kami)
		return audioFetchedMsg{cardID: target.ID, deferMs: deferMs, data: data, err: err}
	}
}

// advanceReveal drives the muted char-by-char reveal of the target's kami.
// The reveal restarts whenever the target changes and never blocks; a target
// switch mid-reveal simply abandons the old one.
func (m *Model) advanceReveal() {
	if !m.session.Muted() || !m.session.TimingStarted() {
		m.revealID = game.EmptyCell
		m.revealCount = 0
		return
	}
	target, ok := m.session.Target()
	if !ok {
		m.revealID = game.EmptyCell
		return
	}
	if m.revealID != target.ID {
		m.revealID = target.ID
		m.revealCount = 0
	}
	if m.revealCount < len([]rune(target.Kami)) {
		m.revealCount++
	}
}

func (m *Model) handleAudioFetched(msg audioFetchedMsg) tea.Cmd {
	if msg.err != nil {
		m.audioNote = "音声を準備しています…"
		return nil
	}
	m.audioNote = ""
	// Stale fetches for an already-taken target are dropped.
	if target, ok := m.session.TargetID(); !ok || target != msg.cardID {
		return nil
	}
	data := msg.data
	delay := time.Duration(msg.deferMs) * time.Millisecond
	return func() tea.Msg {
		if delay > 0 {
			time.Sleep(delay)
		}
		if err := playBytes(data); err != nil {
			return audioFetchedMsg{cardID: msg.cardID, err: err}
		}
		return nil
	}
}

func (m *Model) saveGame() {
	if m.saved || m.store == nil {
		return
	}
	m.saved = true

	summary := results.Build(m.session.ActiveIDs(), m.session.CardTimes(), m.session.CardMisses())
	rec := model.GameRecord{
		StartedAt:  m.session.StartedAt(),
		EndedAt:    time.Now(),
		Mode:       m.cfg.Mode,
		Rows:       m.session.Rows(),
		Cols:       m.session.Cols(),
		Cards:      len(m.session.ActiveIDs()),
		Score:      m.session.Score(),
		Miss:       m.session.Miss(),
		DurationMs: summary.Total.Milliseconds(),
	}
	cards := make([]model.CardResult, 0, len(summary.All))
	for _, entry := range summary.All {
		pair, ok := m.session.Pair(entry.CardID)
		if !ok {
			continue
		}
		cards = append(cards, model.CardResult{
			CardID:     entry.CardID,
			Kami:       pair.Kami,
			Shimo:      pair.Shimo,
			DurationMs: entry.Duration.Milliseconds(),
			Measured:   entry.Measured,
			Misses:     m.session.CardMisses()[entry.CardID],
		})
	}
	if _, err := m.store.InsertGame(context.Background(), rec, cards); err != nil {
		logErrf("failed to save game: %v\n", err)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.session.Finished() {
		return m.viewResults()
	}
	sections := []string{
		m.renderHeader(),
		m.renderTargetLine(),
		m.renderBoard(),
		footerStyle.Render("矢印/hjkl: 移動  enter: 取る  m: 消音  r: やり直し  q: 終了"),
	}
	content := strings.Join(sections, "\n")
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

func (m *Model) renderHeader() string {
	total := len(m.session.ActiveIDs())
	remaining := total - m.session.Score()
	mute := "♪"
	if m.session.Muted() {
		mute = "消音"
	}
	return headerStyle.Render(fmt.Sprintf("残り %d/%d  ミス %d  [%s]", remaining, total, m.session.Miss(), mute))
}

func (m *Model) renderTargetLine() string {
	target, ok := m.session.Target()
	if !ok {
		return ""
	}
	if m.session.Muted() {
		return revealStyle.Render(revealedPrefix(target.Kami, m.revealCount))
	}
	if m.audioNote != "" {
		return noteStyle.Render(m.audioNote)
	}
	return noteStyle.Render("♪ 読み上げ中…")
}

func (m *Model) renderBoard() string {
	grid := m.session.Grid()
	cellWidth := m.cellWidth()
	rows := make([]string, 0, len(grid))
	for r, row := range grid {
		cells := make([]string, 0, len(row))
		for c, id := range row {
			cells = append(cells, m.renderCell(id, r == m.cursorR && c == m.cursorC, cellWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) cellWidth() int {
	width := 10
	if m.width > 0 {
		avail := m.width/m.session.Cols() - 4
		if avail > width {
			width = avail
		}
		if width > 16 {
			width = 16
		}
	}
	return width
}

func (m *Model) renderCell(id int, cursor bool, width int) string {
	if id == game.EmptyCell {
		return emptyCardStyle.Width(width).Render("")
	}
	pair, ok := m.session.Pair(id)
	if !ok {
		return emptyCardStyle.Width(width).Render("")
	}
	style := cardStyle
	if cursor {
		style = cursorCardStyle
	}
	return style.Width(width).Render(pair.Shimo)
}

func (m *Model) viewResults() string {
	summary := results.Build(m.session.ActiveIDs(), m.session.CardTimes(), m.session.CardMisses())

	var b strings.Builder
	b.WriteString(titleStyle.Render("お疲れさまでした！ すべての札を取り終えました。"))
	b.WriteString("\n\n")
	mm := int(summary.Total.Seconds()) / 60
	ss := int(summary.Total.Seconds()) % 60
	b.WriteString(fmt.Sprintf("総時間 %02d:%02d  ミス %d\n", mm, ss, m.session.Miss()))
	if summary.MeasuredCount > 0 {
		b.WriteString(fmt.Sprintf("平均/札 %.2fs\n", summary.Average.Seconds()))
	}

	if len(summary.Weakest) > 0 {
		b.WriteString("\n" + titleStyle.Render("苦手な札（下位10%）") + "\n")
		for _, cd := range summary.Weakest {
			pair, ok := m.session.Pair(cd.CardID)
			if !ok {
				continue
			}
			b.WriteString(fmt.Sprintf("• %s → %s  %.2fs\n", m.highlightKami(pair), pair.Shimo, cd.Duration.Seconds()))
		}
	}

	if len(summary.Missed) > 0 {
		b.WriteString("\n" + titleStyle.Render("ミスした札") + "\n")
		for _, cm := range summary.Missed {
			pair, ok := m.session.Pair(cm.CardID)
			if !ok {
				continue
			}
			b.WriteString(fmt.Sprintf("• %s → %s  ミス %d回\n", m.highlightKami(pair), pair.Shimo, cm.Misses))
		}
	}

	b.WriteString("\n" + titleStyle.Render("各札の取得時間") + "\n")
	for _, entry := range summary.All {
		pair, ok := m.session.Pair(entry.CardID)
		if !ok {
			continue
		}
		duration := "-"
		if entry.Measured {
			duration = fmt.Sprintf("%.2fs", entry.Duration.Seconds())
		}
		line := fmt.Sprintf("%s → %s  %s", m.highlightKami(pair), pair.Shimo, duration)
		if hint := m.hints.Lookup(pair); hint != "" {
			line += noteStyle.Render("  " + hint)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + footerStyle.Render("r: もう一度  q: 終了"))
	content := b.String()
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

// highlightKami renders the identifying prefix of the opening verse in its
// own color so the kimariji stands out in result listings.
func (m *Model) highlightKami(pair dataset.Pair) string {
	rec, ok := m.prefixes[pair.ID]
	if !ok || rec.EndIndex == 0 {
		return pair.Kami
	}
	runes := []rune(pair.Kami)
	end := rec.EndIndex
	if end > len(runes) {
		end = len(runes)
	}
	return prefixStyle.Render(string(runes[:end])) + string(runes[end:])
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
