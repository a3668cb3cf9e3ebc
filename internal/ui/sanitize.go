package ui

import (
	"regexp"
	"strings"

	"hwdash/internal/metrics"
)

// CSI sequences whose final byte is anything but 'm': cursor moves, clears,
// mode switches. SGR (color/style) sequences are kept.
var cursorCSI = regexp.MustCompile(`\x1b\[[\d;?]*[@-ln-~]`)

// sanitizeOutput removes ANSI cursor movement and clear screen codes
// while preserving SGR codes.
func sanitizeOutput(input string) string {
	return cursorCSI.ReplaceAllString(input, "")
}

// sanitizeLine is sanitizeOutput for single-line fields: line breaks and
// other control characters, except ESC, are dropped as well.
func sanitizeLine(input string) string {
	return strings.Map(func(r rune) rune {
		if r == '\x1b' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, sanitizeOutput(input))
}

// sanitizePayload cleans the free-text fields the backend controls. The
// payload's slices are not modified.
func sanitizePayload(p metrics.DashboardPayload) metrics.DashboardPayload {
	p.Current.Hostname = sanitizeLine(p.Current.Hostname)
	if len(p.Current.Disks) > 0 {
		disks := make([]metrics.Disk, len(p.Current.Disks))
		copy(disks, p.Current.Disks)
		for i := range disks {
			disks[i].Name = sanitizeLine(disks[i].Name)
		}
		p.Current.Disks = disks
	}
	return p
}
