package overlay

import "github.com/charmbracelet/lipgloss"

const cardWidth = 64

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Width(cardWidth)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Bold(true)

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E0E0E0"))

	gutterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5C5C5C"))

	addedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#32CD32"))

	removedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F"))

	contextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5D5DFF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5C5C5C")).
			Padding(0, 1)
)
