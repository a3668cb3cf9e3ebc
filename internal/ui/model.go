package ui

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"hwdash/internal/board"
	"hwdash/internal/chart"
	"hwdash/internal/monitor"
	"hwdash/internal/theme"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	fixedRows   = 3 // header, banner, footer
	chartHeight = 10
	twoColumns  = 80
)

type Options struct {
	Theme string
	// Refresh requests an immediate poll. It is called off the update loop.
	Refresh func()
}

type Model struct {
	board      *board.Board
	charts     *chart.Manager
	viewport   viewport.Model
	help       help.Model
	keys       keyMap
	refresh    func()
	themeIndex int
	styles     theme.Styles
	width      int
	height     int
}

func NewModel(opts Options) Model {
	vp := viewport.New(0, 0)
	vp.SetContent("Loading...")

	idx := theme.Index(opts.Theme)
	return Model{
		board:      board.New(),
		charts:     chart.Initialize(chart.DefaultConfig()),
		viewport:   vp,
		help:       help.New(),
		keys:       defaultKeys(),
		refresh:    opts.Refresh,
		themeIndex: idx,
		styles:     theme.BuildStyles(idx),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("hwdash")
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m, m.requestRefresh()
		case key.Matches(msg, m.keys.Theme):
			m.themeIndex = (m.themeIndex + 1) % len(theme.Themes)
			m.styles = theme.BuildStyles(m.themeIndex)
			m.syncContent()
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
	case snapshotMsg:
		id := m.board.Render(sanitizePayload(msg.payload))
		m.syncContent()
		cmds = append(cmds, endPulse(id))
	case historyMsg:
		m.charts.ReplaceSeries(msg.history.CPU, msg.history.Memory)
		m.syncContent()
	case fetchErrorMsg:
		m.board.ShowError(bannerText(msg.err))
	case clearErrorMsg:
		m.board.ClearError()
	case pulseEndMsg:
		m.board.EndPulse(msg.id)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(m.width),
		m.renderBanner(m.width),
		m.viewport.View(),
		m.renderFooter(m.width),
	)
}

func (m Model) requestRefresh() tea.Cmd {
	if m.refresh == nil {
		return nil
	}
	refresh := m.refresh
	return func() tea.Msg {
		refresh()
		return nil
	}
}

func endPulse(id uint64) tea.Cmd {
	return tea.Tick(board.PulseDuration, func(time.Time) tea.Msg { return pulseEndMsg{id: id} })
}

func (m *Model) resize() {
	footer := lipgloss.Height(m.renderFooter(m.width))
	m.viewport.Width = clampMin(m.width, 0)
	m.viewport.Height = clampMin(m.height-fixedRows-(footer-1), 0)
	m.syncContent()
}

func (m *Model) syncContent() {
	m.viewport.SetContent(m.renderBody(m.width))
}

func bannerText(err error) string {
	var statusErr *monitor.StatusError
	switch {
	case errors.As(err, &statusErr):
		return fmt.Sprintf("Metrics backend returned HTTP %d. Retrying on the next refresh.", statusErr.Code)
	case monitor.Classify(err) == monitor.KindMalformed:
		return "Metrics backend sent malformed data. Retrying on the next refresh."
	}
	return "Unable to reach the metrics backend. Retrying on the next refresh."
}

// Rendering helpers

func (m Model) renderHeader(width int) string {
	b := m.board
	left := fmt.Sprintf("hwdash  %s  up %s", b.Hostname, b.Uptime)
	if cpu := m.charts.CPU.Data; len(cpu) > 0 {
		left += "  CPU " + sparkline(cpu, 0, 100)
	}
	if mem := m.charts.Memory.Data; len(mem) > 0 {
		left += "  MEM " + sparkline(mem, 0, 100)
	}
	left = m.styles.Header.Render(left)

	badge := m.styles.Refresh
	if b.Pulsing() {
		badge = m.styles.RefreshDim
	}
	right := badge.Render(b.RefreshBadge.Text)

	gap := clampMin(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderBanner(width int) string {
	if !m.board.ErrorBanner.Visible || width <= 0 {
		return ""
	}
	return m.styles.Banner.Width(width).Render(m.board.ErrorBanner.Message)
}

func (m Model) renderFooter(width int) string {
	return m.styles.Footer.Width(width).Render(m.help.View(m.keys))
}

func (m Model) renderBody(width int) string {
	if width <= 0 {
		return ""
	}
	cpu, mem := m.renderCPUCard, m.renderMemoryCard
	var rows []string
	if width >= twoColumns {
		col := width/2 - 2
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cpu(col), mem(col)))
	} else {
		rows = append(rows, cpu(width-2), mem(width-2))
	}
	rows = append(rows, m.renderDiskCard(width-2), m.renderCharts(width))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) card(alert bool) lipgloss.Style {
	if alert {
		return m.styles.AlertCard
	}
	return m.styles.Card
}

// cardTitle puts the badge at the right edge of the card's inner width.
func (m Model) cardTitle(title string, badge board.Badge, inner int) string {
	l := m.styles.CardTitle.Render(title)
	r := m.levelStyle(badge.Level).Render(badge.Text)
	gap := clampMin(inner-lipgloss.Width(l)-lipgloss.Width(r), 1)
	return l + strings.Repeat(" ", gap) + r
}

func (m Model) renderCPUCard(width int) string {
	b := m.board
	inner := clampMin(width-2, 1)
	lines := []string{
		m.cardTitle("CPU", b.CPUBadge, inner),
		m.styles.Value.Render(b.CPUUsage),
		m.bar(b.CPUProgress, inner),
	}
	for _, core := range b.Cores {
		label := m.styles.Label.Render(fmt.Sprintf("%-8s %s", core.Label, core.Detail))
		lines = append(lines, label, m.bar(core.Bar, inner))
	}
	return m.card(b.CPUCard.Alert).Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderMemoryCard(width int) string {
	b := m.board
	inner := clampMin(width-2, 1)
	lines := []string{
		m.cardTitle("Memory", b.MemoryBadge, inner),
		m.styles.Value.Render(b.MemoryUsage),
		m.bar(b.MemoryProgress, inner),
	}
	if d := b.MemoryDetail; d.Total != "" {
		lines = append(lines,
			m.styles.Label.Render("Total:     "+d.Total),
			m.styles.Label.Render("Used:      "+d.Used),
			m.styles.Label.Render("Available: "+d.Available),
		)
	}
	return m.card(b.MemoryCard.Alert).Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderDiskCard(width int) string {
	inner := clampMin(width-2, 1)
	lines := []string{m.styles.CardTitle.Render("Disks")}
	if len(m.board.Disks) == 0 {
		lines = append(lines, m.styles.Faint.Render("No disks reported"))
	}
	for _, d := range m.board.Disks {
		head := m.styles.Label.Render(d.Name) + "  " + m.levelStyle(d.Bar.Level).Render(d.Used)
		lines = append(lines,
			head,
			m.bar(d.Bar, inner),
			m.styles.Faint.Render(d.Free+" / "+d.Total),
		)
	}
	return m.styles.Card.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderCharts(width int) string {
	cfg := m.charts.Config
	if width >= twoColumns {
		col := width / 2
		return lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(col).Render(m.charts.CPU.Render(col-1, chartHeight, cfg)),
			m.charts.Memory.Render(width-col, chartHeight, cfg),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.charts.CPU.Render(width, chartHeight, cfg),
		m.charts.Memory.Render(width, chartHeight, cfg),
	)
}

func (m Model) bar(b board.Bar, width int) string {
	color := string(m.styles.Accent)
	switch b.Level {
	case board.LevelSuccess:
		color = theme.SuccessColor
	case board.LevelWarning:
		color = theme.WarningColor
	case board.LevelDanger:
		color = theme.DangerColor
	}
	p := progress.New(
		progress.WithSolidFill(color),
		progress.WithoutPercentage(),
		progress.WithWidth(clampMin(width, 1)),
	)
	return p.ViewAs(b.Fraction())
}

func (m Model) levelStyle(l board.Level) lipgloss.Style {
	switch l {
	case board.LevelSuccess:
		return m.styles.Success
	case board.LevelWarning:
		return m.styles.Warning
	case board.LevelDanger:
		return m.styles.Danger
	}
	return m.styles.Label
}

// sparkline draws the newest values that fit in 20 cells. Values that cannot
// be plotted show as blanks.
func sparkline(values []float64, min, max float64) string {
	const cells = 20
	if len(values) > cells {
		values = values[len(values)-cells:]
	}
	if max <= min {
		max = min + 1
	}
	levels := []rune(" ▁▂▃▄▅▆▇█")
	var b strings.Builder
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			b.WriteRune(' ')
			continue
		}
		v = math.Max(min, math.Min(max, v))
		n := int(((v - min) / (max - min)) * float64(len(levels)-1))
		b.WriteRune(levels[n])
	}
	return b.String()
}

func clampMin(value, min int) int {
	if value < min {
		return min
	}
	return value
}
