package view

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// overlayAt composites overlay on top of bg with its top-left corner at
// visible column x of line y. Escape sequences in either string are kept.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	for i, ovLine := range strings.Split(overlay, "\n") {
		idx := y + i
		if idx < 0 || idx >= len(bgLines) {
			continue
		}
		line := bgLines[idx]
		left := ansi.Truncate(line, x, "")
		if pad := x - ansi.StringWidth(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		right := ansi.TruncateLeft(line, x+ansi.StringWidth(ovLine), "")
		bgLines[idx] = left + ovLine + right
	}
	return strings.Join(bgLines, "\n")
}
