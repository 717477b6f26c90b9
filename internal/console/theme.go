package console

import "github.com/charmbracelet/lipgloss"

// Speaker colors.
var (
	ColorSelf   = lipgloss.Color("#06b6d4")
	ColorPlayer = lipgloss.Color("#3b82f6")
	ColorAI     = lipgloss.Color("#a855f7")
)

// Notice colors.
var (
	ColorSystem  = lipgloss.Color("#9ca3af")
	ColorError   = lipgloss.Color("#dc2626")
	ColorConnect = lipgloss.Color("#16a34a")
	ColorNotice  = lipgloss.Color("#d97706")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
)

// Reusable styles.
var (
	styleSelf   = lipgloss.NewStyle().Bold(true).Foreground(ColorSelf)
	stylePlayer = lipgloss.NewStyle().Bold(true).Foreground(ColorPlayer)
	styleAI     = lipgloss.NewStyle().Bold(true).Foreground(ColorAI)

	styleSystem  = lipgloss.NewStyle().Foreground(ColorSystem).Italic(true)
	styleError   = lipgloss.NewStyle().Foreground(ColorError)
	styleConnect = lipgloss.NewStyle().Foreground(ColorConnect)
	styleNotice  = lipgloss.NewStyle().Foreground(ColorNotice)
	styleDimmed  = lipgloss.NewStyle().Foreground(ColorDimmed)
	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(ColorBright)
)

// senderStyle picks the name style for a message origin.
func senderStyle(self, ai bool) lipgloss.Style {
	switch {
	case self:
		return styleSelf
	case ai:
		return styleAI
	default:
		return stylePlayer
	}
}
