package statusbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	statusBarStyle  = lipgloss.NewStyle().Reverse(true)
	statusTextStyle = lipgloss.NewStyle().Inherit(statusBarStyle)
	separatorStyle  = statusTextStyle.Foreground(lipgloss.Color("240"))
	modeStyle       = statusTextStyle.Bold(true)
	errStyle        = statusTextStyle.Foreground(lipgloss.Color("203"))
)

// StatusData holds what the status bar shows about a masked field.
type StatusData struct {
	Mode    string // e.g. "masked", "submitted"
	Length  int    // runes in the true value
	Symbol  rune
	Err     error
	Message string
}

// Render creates the status bar string at the given width.
func Render(width int, data StatusData) string {
	if width <= 0 {
		return ""
	}
	sep := separatorStyle.Render(" │ ")

	left := modeStyle.Render(fmt.Sprintf(" %s ", data.Mode))
	if data.Message != "" {
		left += sep + statusTextStyle.Render(data.Message)
	}
	if data.Err != nil {
		left += sep + errStyle.Render(data.Err.Error())
	}
	right := fmt.Sprintf(" %d × %c ", data.Length, data.Symbol)

	pad := width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 0 {
		pad = 0
	}
	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", pad) + right)
}
