// Package chart holds the two live usage charts and draws them as terminal
// line plots.
package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Config is shared by both charts.
type Config struct {
	Responsive bool // draw only the newest points that fit the width
	YMin       float64
	YMax       float64
	YTitle     string
	Animation  bool // kept for parity; redraws are always immediate
}

// DefaultConfig plots 0 to 100 percent, follows the newest points and never
// animates.
func DefaultConfig() Config {
	return Config{
		Responsive: true,
		YMin:       0,
		YMax:       100,
		YTitle:     "Usage %",
		Animation:  false,
	}
}

// Chart is one time series. Labels and Data always have the same length after
// a replacement.
type Chart struct {
	Title    string
	Color    lipgloss.Color
	Labels   []string
	Data     []float64
	Revision int
}

// Manager owns the CPU and memory charts.
type Manager struct {
	Config Config
	CPU    *Chart
	Memory *Chart
}

// Initialize creates both charts empty.
func Initialize(cfg Config) *Manager {
	return &Manager{
		Config: cfg,
		CPU: &Chart{
			Title:  "CPU Usage %",
			Color:  lipgloss.Color("#4BC0C0"),
			Labels: []string{},
			Data:   []float64{},
		},
		Memory: &Chart{
			Title:  "Memory Usage %",
			Color:  lipgloss.Color("#9966FF"),
			Labels: []string{},
			Data:   []float64{},
		},
	}
}

// ReplaceSeries overwrites both charts and redraws them. Values are not
// inspected.
func (m *Manager) ReplaceSeries(cpu, memory []float64) {
	m.CPU.replace(cpu)
	m.Memory.replace(memory)
}

func (c *Chart) replace(values []float64) {
	c.Data = append(make([]float64, 0, len(values)), values...)
	c.Labels = make([]string, len(values))
	c.update()
}

func (c *Chart) update() {
	c.Revision++
}

const gutter = 4 // "100┤"

// Render draws the chart into exactly height lines of at most width cells.
func (c *Chart) Render(width, height int, cfg Config) string {
	titleStyle := lipgloss.NewStyle().Foreground(c.Color).Bold(true)
	axisStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	pointStyle := lipgloss.NewStyle().Foreground(c.Color)

	plotHeight := max(height-2, 1)
	plotWidth := max(width-gutter, 1)

	data := c.Data
	if cfg.Responsive && len(data) > plotWidth {
		data = data[len(data)-plotWidth:]
	}
	if len(data) > plotWidth {
		data = data[:plotWidth]
	}

	grid := make([][]rune, plotHeight)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", plotWidth))
	}

	prev := -1
	for x, v := range data {
		row := c.row(cfg, v, plotHeight)
		if row < 0 {
			prev = -1
			continue
		}
		if prev >= 0 {
			lo, hi := min(prev, row), max(prev, row)
			for r := lo + 1; r < hi; r++ {
				grid[r][x] = '│'
			}
		}
		grid[row][x] = '•'
		prev = row
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(c.Title))
	if cfg.YTitle != "" {
		b.WriteString(axisStyle.Render("  (" + cfg.YTitle + ")"))
	}
	b.WriteString("\n")

	for i := range grid {
		// grid row 0 is the bottom of the plot
		r := plotHeight - 1 - i
		b.WriteString(axisStyle.Render(c.axisLabel(cfg, r, plotHeight)))
		line := string(grid[r])
		if len(data) == 0 && i == plotHeight/2 {
			line = truncate(centre("waiting for data", plotWidth), plotWidth)
			b.WriteString(axisStyle.Render(line))
		} else {
			b.WriteString(pointStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString(axisStyle.Render("   └" + strings.Repeat("─", plotWidth)))
	return b.String()
}

// row maps v onto a plot row, or -1 when v cannot be drawn.
func (c *Chart) row(cfg Config, v float64, plotHeight int) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || cfg.YMax <= cfg.YMin {
		return -1
	}
	v = math.Max(cfg.YMin, math.Min(cfg.YMax, v))
	return int(math.Round((v - cfg.YMin) / (cfg.YMax - cfg.YMin) * float64(plotHeight-1)))
}

func (c *Chart) axisLabel(cfg Config, r, plotHeight int) string {
	switch {
	case r == plotHeight-1:
		return fmt.Sprintf("%3.0f┤", cfg.YMax)
	case r == 0:
		return fmt.Sprintf("%3.0f┤", cfg.YMin)
	case r == (plotHeight-1)/2 && plotHeight > 4:
		return fmt.Sprintf("%3.0f┤", cfg.YMin+(cfg.YMax-cfg.YMin)*float64(r)/float64(plotHeight-1))
	}
	return "   │"
}

func centre(s string, width int) string {
	pad := (width - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		return string(r[:width])
	}
	return s
}
