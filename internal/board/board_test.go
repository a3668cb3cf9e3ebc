package board

import (
	"reflect"
	"testing"
	"time"

	"hwdash/internal/metrics"
)

func samplePayload() metrics.DashboardPayload {
	return metrics.DashboardPayload{
		Current: metrics.Snapshot{
			CPUs: []metrics.CPU{
				{Usage: 50, Frequency: 2400},
				{Usage: 70, Frequency: 2600},
			},
			Memory: metrics.Memory{Total: 8 * 1024 * 1024, Used: 2 * 1024 * 1024, Available: 6 * 1024 * 1024},
			Disks: []metrics.Disk{
				{Name: "/dev/sda1", PercentUsed: 65, AvailableSpace: 1024 * 1024, TotalSpace: 4 * 1024 * 1024},
			},
			Hostname: "node-1",
			Uptime:   90061,
		},
		Anomalies: metrics.Anomalies{CPU: true},
		Timestamp: 1700000000,
	}
}

func newUTCBoard() *Board {
	b := New()
	b.Location = time.UTC
	return b
}

func TestRenderCPU(t *testing.T) {
	b := newUTCBoard()
	b.Render(samplePayload())

	if b.CPUUsage != "60.0%" {
		t.Errorf("CPUUsage = %q, want 60.0%%", b.CPUUsage)
	}
	if b.CPUProgress.Width != 60 {
		t.Errorf("CPUProgress.Width = %v, want 60", b.CPUProgress.Width)
	}
	if len(b.Cores) != 2 {
		t.Fatalf("got %d core rows, want 2", len(b.Cores))
	}
	want := []CoreRow{
		{Label: "Core 0", Detail: "50.0% @ 2400MHz", Bar: Bar{Width: 50}},
		{Label: "Core 1", Detail: "70.0% @ 2600MHz", Bar: Bar{Width: 70}},
	}
	if !reflect.DeepEqual(b.Cores, want) {
		t.Errorf("cores = %+v, want %+v", b.Cores, want)
	}
}

func TestRenderReplacesCoreList(t *testing.T) {
	b := newUTCBoard()
	p := samplePayload()
	b.Render(p)

	p.Current.CPUs = []metrics.CPU{{Usage: 12.345, Frequency: 1800}}
	b.Render(p)

	if len(b.Cores) != 1 || b.Cores[0].Detail != "12.3% @ 1800MHz" {
		t.Errorf("core list not replaced: %+v", b.Cores)
	}
}

func TestRenderNoCores(t *testing.T) {
	b := newUTCBoard()
	p := samplePayload()
	p.Current.CPUs = nil
	b.Render(p)

	if b.CPUUsage != "NaN%" {
		t.Errorf("CPUUsage = %q, want NaN%%", b.CPUUsage)
	}
	if b.CPUProgress.Fraction() != 0 {
		t.Errorf("NaN bar should draw empty, got %v", b.CPUProgress.Fraction())
	}
	if len(b.Cores) != 0 {
		t.Errorf("expected empty core list, got %+v", b.Cores)
	}
}

func TestRenderMemory(t *testing.T) {
	b := newUTCBoard()
	b.Render(samplePayload())

	if b.MemoryUsage != "25.0%" {
		t.Errorf("MemoryUsage = %q", b.MemoryUsage)
	}
	want := MemoryDetail{Total: "8.0 GiB", Used: "2.0 GiB", Available: "6.0 GiB"}
	if b.MemoryDetail != want {
		t.Errorf("MemoryDetail = %+v, want %+v", b.MemoryDetail, want)
	}
}

func TestRenderDisks(t *testing.T) {
	b := newUTCBoard()
	b.Render(samplePayload())

	if len(b.Disks) != 1 {
		t.Fatalf("got %d disks", len(b.Disks))
	}
	d := b.Disks[0]
	if d.Name != "/dev/sda1" || d.Used != "65.0% used" || d.Free != "1.0 GiB free" || d.Total != "4.0 GiB total" {
		t.Errorf("unexpected disk row: %+v", d)
	}
	if d.Bar.Level != LevelSuccess {
		t.Errorf("disk level = %v, want success", d.Bar.Level)
	}
}

func TestDiskLevel(t *testing.T) {
	tests := []struct {
		pct  float64
		want Level
	}{
		{0, LevelSuccess},
		{65, LevelSuccess},
		{69.99, LevelSuccess},
		{70, LevelWarning},
		{75, LevelWarning},
		{89.9, LevelWarning},
		{90, LevelDanger},
		{95, LevelDanger},
		{100, LevelDanger},
	}

	for _, tt := range tests {
		if got := DiskLevel(tt.pct); got != tt.want {
			t.Errorf("DiskLevel(%v) = %v, want %v", tt.pct, got, tt.want)
		}
	}
}

func TestRenderHostAndTimestamp(t *testing.T) {
	b := newUTCBoard()
	b.Render(samplePayload())

	if b.Hostname != "node-1" {
		t.Errorf("Hostname = %q", b.Hostname)
	}
	if b.Uptime != "1d 1h 1m" {
		t.Errorf("Uptime = %q", b.Uptime)
	}
	if b.RefreshBadge.Text != "Last updated: 22:13:20" {
		t.Errorf("RefreshBadge.Text = %q", b.RefreshBadge.Text)
	}
}

func TestAnomalyBadges(t *testing.T) {
	b := newUTCBoard()
	b.Render(samplePayload())

	if b.CPUBadge != (Badge{Text: "ANOMALY DETECTED", Level: LevelDanger}) || !b.CPUCard.Alert {
		t.Errorf("cpu badge/card = %+v / %+v", b.CPUBadge, b.CPUCard)
	}
	if b.MemoryBadge != (Badge{Text: "Normal", Level: LevelSuccess}) || b.MemoryCard.Alert {
		t.Errorf("memory badge/card = %+v / %+v", b.MemoryBadge, b.MemoryCard)
	}

	p := samplePayload()
	p.Anomalies = metrics.Anomalies{Memory: true}
	b.Render(p)
	if b.CPUCard.Alert || b.CPUBadge.Text != "Normal" {
		t.Errorf("cpu alert not cleared: %+v / %+v", b.CPUBadge, b.CPUCard)
	}
	if !b.MemoryCard.Alert || b.MemoryBadge.Level != LevelDanger {
		t.Errorf("memory alert not raised: %+v / %+v", b.MemoryBadge, b.MemoryCard)
	}
}

func TestAnomalyScores(t *testing.T) {
	tests := []struct {
		name      string
		anomalies metrics.Anomalies
		cpu, mem  string
	}{
		{"scores on both", metrics.Anomalies{CPU: true, Memory: true, CPUScore: 0.873, MemoryScore: 2.5},
			"ANOMALY DETECTED (0.87)", "ANOMALY DETECTED (2.50)"},
		{"score omitted", metrics.Anomalies{CPU: true}, "ANOMALY DETECTED", "Normal"},
		{"score without anomaly", metrics.Anomalies{CPUScore: 0.4}, "Normal", "Normal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newUTCBoard()
			p := samplePayload()
			p.Anomalies = tt.anomalies
			b.Render(p)
			if b.CPUBadge.Text != tt.cpu || b.MemoryBadge.Text != tt.mem {
				t.Errorf("badges = %q / %q, want %q / %q", b.CPUBadge.Text, b.MemoryBadge.Text, tt.cpu, tt.mem)
			}
		})
	}
}

func TestRenderIdempotent(t *testing.T) {
	once := newUTCBoard()
	id := once.Render(samplePayload())
	once.EndPulse(id)

	twice := newUTCBoard()
	twice.Render(samplePayload())
	id = twice.Render(samplePayload())
	twice.EndPulse(id)

	once.RefreshBadge.pulse, twice.RefreshBadge.pulse = 0, 0
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("rendering twice diverged:\n once: %+v\ntwice: %+v", once, twice)
	}
}

func TestPulse(t *testing.T) {
	b := newUTCBoard()
	if b.Pulsing() {
		t.Fatal("new board should not pulse")
	}

	first := b.Render(samplePayload())
	if !b.Pulsing() || b.RefreshBadge.Opacity != 0.5 {
		t.Fatalf("render should dim the badge, opacity = %v", b.RefreshBadge.Opacity)
	}

	second := b.Render(samplePayload())
	b.EndPulse(first)
	if !b.Pulsing() {
		t.Error("ending a superseded pulse must not restore the badge")
	}

	b.EndPulse(second)
	if b.Pulsing() || b.RefreshBadge.Opacity != 1 {
		t.Errorf("latest pulse end should restore opacity, got %v", b.RefreshBadge.Opacity)
	}
}

func TestErrorBanner(t *testing.T) {
	b := New()
	b.ShowError("boom")
	if !b.ErrorBanner.Visible || b.ErrorBanner.Message != "boom" {
		t.Errorf("banner = %+v", b.ErrorBanner)
	}
	b.ClearError()
	if b.ErrorBanner.Visible {
		t.Error("banner should be hidden")
	}
}

func TestBarFraction(t *testing.T) {
	tests := []struct {
		width float64
		want  float64
	}{
		{-5, 0},
		{0, 0},
		{50, 0.5},
		{150, 1},
	}
	for _, tt := range tests {
		if got := (Bar{Width: tt.width}).Fraction(); got != tt.want {
			t.Errorf("Fraction(%v) = %v, want %v", tt.width, got, tt.want)
		}
	}
}
