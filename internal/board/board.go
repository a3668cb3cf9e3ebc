// Package board holds the dashboard's displayed state and the renderer that
// projects a backend payload onto it.
//
// Each field of Board stands for one identified element of the dashboard; the
// element ids are listed in IDs. The terminal UI only reads a Board, it never
// computes display values itself.
package board

import (
	"fmt"
	"math"
	"time"

	"hwdash/internal/format"
	"hwdash/internal/metrics"
)

// PulseDuration is how long the refresh badge stays dimmed after a render.
const PulseDuration = 200 * time.Millisecond

const (
	anomalyText = "ANOMALY DETECTED"
	normalText  = "Normal"
)

// IDs lists the dashboard elements backed by Board fields.
var IDs = []string{
	"cpu-usage", "cpu-progress", "cpu-cores-list", "cpu-anomaly-badge", "cpu-card",
	"memory-usage", "memory-progress", "memory-detail", "memory-anomaly-badge", "memory-card",
	"disk-list", "hostname", "uptime", "error-alert", "refresh-badge",
}

// Level is the severity colour of a badge or bar.
type Level int

const (
	LevelNone Level = iota
	LevelSuccess
	LevelWarning
	LevelDanger
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelDanger:
		return "danger"
	}
	return "none"
}

// DiskLevel colours a disk bar: success below 70%, warning below 90%, danger
// from 90% up.
func DiskLevel(percentUsed float64) Level {
	switch {
	case percentUsed < 70:
		return LevelSuccess
	case percentUsed < 90:
		return LevelWarning
	default:
		return LevelDanger
	}
}

// Bar is a progress bar. Width is the raw percentage as received; use Fraction
// for drawing.
type Bar struct {
	Width float64
	Level Level
}

// Fraction clamps Width into [0,1]. NaN draws as empty.
func (b Bar) Fraction() float64 {
	if math.IsNaN(b.Width) {
		return 0
	}
	return math.Max(0, math.Min(100, b.Width)) / 100
}

type Badge struct {
	Text  string
	Level Level
}

type Card struct {
	Alert bool
}

type CoreRow struct {
	Label  string // "Core 0"
	Detail string // "12.5% @ 2400MHz"
	Bar    Bar
}

type MemoryDetail struct {
	Total     string
	Used      string
	Available string
}

type DiskRow struct {
	Name  string
	Used  string // "65.0% used"
	Bar   Bar
	Free  string // "1.2 GiB free"
	Total string // "4.0 GiB total"
}

type Banner struct {
	Visible bool
	Message string
}

// RefreshBadge shows the time of the last applied snapshot and pulses on
// every render.
type RefreshBadge struct {
	Text    string
	Opacity float64
	pulse   uint64
}

// Board is the full displayed state.
type Board struct {
	CPUUsage    string
	CPUProgress Bar
	Cores       []CoreRow
	CPUBadge    Badge
	CPUCard     Card

	MemoryUsage    string
	MemoryProgress Bar
	MemoryDetail   MemoryDetail
	MemoryBadge    Badge
	MemoryCard     Card

	Disks []DiskRow

	Hostname string
	Uptime   string

	ErrorBanner  Banner
	RefreshBadge RefreshBadge

	// Location is used for the "last updated" time; nil means time.Local.
	Location *time.Location
}

func New() *Board {
	return &Board{
		CPUUsage:     "--",
		MemoryUsage:  "--",
		Hostname:     "--",
		Uptime:       "--",
		CPUBadge:     Badge{Text: normalText, Level: LevelSuccess},
		MemoryBadge:  Badge{Text: normalText, Level: LevelSuccess},
		RefreshBadge: RefreshBadge{Text: "Waiting for data", Opacity: 1},
	}
}

// Render projects p onto the board and starts a refresh pulse. It returns the
// pulse id to hand back to EndPulse once PulseDuration has elapsed.
func (b *Board) Render(p metrics.DashboardPayload) uint64 {
	snap := p.Current

	cpu := snap.MeanCPUUsage()
	b.CPUUsage = format.Percent(cpu)
	b.CPUProgress = Bar{Width: cpu}

	cores := make([]CoreRow, 0, len(snap.CPUs))
	for i, c := range snap.CPUs {
		cores = append(cores, CoreRow{
			Label:  fmt.Sprintf("Core %d", i),
			Detail: fmt.Sprintf("%s @ %dMHz", format.Percent(c.Usage), c.Frequency),
			Bar:    Bar{Width: c.Usage},
		})
	}
	b.Cores = cores

	mem := snap.Memory.UsedPercent()
	b.MemoryUsage = format.Percent(mem)
	b.MemoryProgress = Bar{Width: mem}
	b.MemoryDetail = MemoryDetail{
		Total:     format.KB(snap.Memory.Total),
		Used:      format.KB(snap.Memory.Used),
		Available: format.KB(snap.Memory.Available),
	}

	disks := make([]DiskRow, 0, len(snap.Disks))
	for _, d := range snap.Disks {
		disks = append(disks, DiskRow{
			Name:  d.Name,
			Used:  format.Percent(d.PercentUsed) + " used",
			Bar:   Bar{Width: d.PercentUsed, Level: DiskLevel(d.PercentUsed)},
			Free:  format.KB(d.AvailableSpace) + " free",
			Total: format.KB(d.TotalSpace) + " total",
		})
	}
	b.Disks = disks

	b.Hostname = snap.Hostname
	b.Uptime = format.Uptime(snap.Uptime)

	setAnomaly(&b.CPUBadge, &b.CPUCard, p.Anomalies.CPU, p.Anomalies.CPUScore)
	setAnomaly(&b.MemoryBadge, &b.MemoryCard, p.Anomalies.Memory, p.Anomalies.MemoryScore)

	loc := b.Location
	if loc == nil {
		loc = time.Local
	}
	b.RefreshBadge.Text = "Last updated: " + time.Unix(p.Timestamp, 0).In(loc).Format("15:04:05")

	return b.startPulse()
}

// setAnomaly appends the backend's score to the danger badge when one was
// sent.
func setAnomaly(badge *Badge, card *Card, anomalous bool, score float64) {
	if anomalous {
		text := anomalyText
		if score != 0 {
			text = fmt.Sprintf("%s (%.2f)", anomalyText, score)
		}
		*badge = Badge{Text: text, Level: LevelDanger}
		card.Alert = true
		return
	}
	*badge = Badge{Text: normalText, Level: LevelSuccess}
	card.Alert = false
}

func (b *Board) startPulse() uint64 {
	b.RefreshBadge.pulse++
	b.RefreshBadge.Opacity = 0.5
	return b.RefreshBadge.pulse
}

// EndPulse restores the refresh badge if id belongs to the most recent pulse.
// Ends of superseded pulses are ignored.
func (b *Board) EndPulse(id uint64) {
	if id != b.RefreshBadge.pulse {
		return
	}
	b.RefreshBadge.Opacity = 1
}

// Pulsing reports whether the refresh badge is currently dimmed.
func (b *Board) Pulsing() bool {
	return b.RefreshBadge.Opacity < 1
}

func (b *Board) ShowError(msg string) {
	b.ErrorBanner = Banner{Visible: true, Message: msg}
}

func (b *Board) ClearError() {
	b.ErrorBanner = Banner{}
}
