package textutil

import (
	"fmt"
	"time"
)

// ShowSize formats a byte count with binary prefixes, e.g. 12828 -> "12.5KiB".
func ShowSize(b float64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%.0f bytes", b)
	}
	div, exp := float64(unit), 0
	for n := b / unit; n >= unit && exp < 5; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", b/div, "KMGTPE"[exp])
}

// MajorUnit reduces a duration to its largest whole unit: "45s", "5m", "2h".
func MajorUnit(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	mins := secs / 60
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh", mins/60)
}
