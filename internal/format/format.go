// Package format turns raw backend numbers into display strings.
package format

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Bytes scales a byte count with IEC units, e.g. "1.5 GiB".
func Bytes(n uint64) string {
	return humanize.IBytes(n)
}

// KB formats a kilobyte count. The backend reports memory and disk sizes in KB.
func KB(n uint64) string {
	return Bytes(n * 1024)
}

// Percent renders v with one decimal place. NaN renders as "NaN%".
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Uptime renders seconds as "2d 3h 15m", dropping leading zero units.
func Uptime(seconds uint64) string {
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if days > 0 || hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	parts = append(parts, fmt.Sprintf("%dm", minutes))
	return strings.Join(parts, " ")
}
