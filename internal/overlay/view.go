package overlay

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yuya-takeyama/cc-nod/internal/config"
	"github.com/yuya-takeyama/cc-nod/internal/diff"
	"github.com/yuya-takeyama/cc-nod/internal/messages"
)

const maxDetailLines = 8

func (m *Model) View() string {
	var body string
	if m.current == nil {
		body = idleStyle.Render("cc-nod · waiting for permission requests")
	} else {
		body = m.renderCard()
	}
	if m.status != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, errorStyle.Render(m.status))
	}

	if m.width == 0 || m.height == 0 {
		return body
	}
	h, v := placement(m.position)
	return lipgloss.Place(m.width, m.height, h, v, body)
}

func (m *Model) renderCard() string {
	c := m.current
	var b strings.Builder

	header := headerStyle.Render(fmt.Sprintf("%s %s", c.info.Emoji, c.info.Label))
	if badge := messages.FormatQueueBadge(m.depth); badge != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", badgeStyle.Render(badge))
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render(c.detail.Label))
	b.WriteString("\n")
	b.WriteString(valueStyle.Render(clipLines(c.detail.Value, maxDetailLines)))
	b.WriteString("\n")

	if len(c.diff) > 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Changes " + messages.FormatDiffStats(c.stats)))
		b.WriteString("\n")
		b.WriteString(m.renderDiff())
	}

	b.WriteString("\n")
	switch {
	case m.mode == modeFeedback:
		b.WriteString(m.feedback.View())
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("ctrl+s send · esc back"))
	case m.deciding:
		b.WriteString(hintStyle.Render("sending…"))
	default:
		hints := "enter allow · esc deny · f feedback · p move"
		if m.collapsible() {
			hints += " · e expand"
		}
		b.WriteString(hintStyle.Render(hints))
	}

	return cardStyle.Render(b.String())
}

func (m *Model) collapsible() bool {
	return m.collapseAt > 0 && len(m.current.diff) > m.collapseAt
}

func (m *Model) renderDiff() string {
	entries := m.current.diff
	hidden := 0
	if m.collapsible() && !m.expanded {
		hidden = len(entries) - m.collapseAt
		entries = entries[:m.collapseAt]
	}

	lines := make([]string, 0, len(entries)+1)
	for _, e := range entries {
		gutter := gutterStyle.Render(fmt.Sprintf("%s %s", lineNumber(e.OldLine), lineNumber(e.NewLine)))
		text := diff.Prefix(e.Type) + " " + e.Text
		switch e.Type {
		case diff.Added:
			text = addedStyle.Render(text)
		case diff.Removed:
			text = removedStyle.Render(text)
		default:
			text = contextStyle.Render(text)
		}
		lines = append(lines, gutter+" "+text)
	}
	if hidden > 0 {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("… %d more lines", hidden)))
	}
	return strings.Join(lines, "\n")
}

func lineNumber(n int) string {
	if n == 0 {
		return "   "
	}
	return fmt.Sprintf("%3d", n)
}

func clipLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n") + fmt.Sprintf("\n… %d more lines", len(lines)-n)
}

func placement(p config.Position) (lipgloss.Position, lipgloss.Position) {
	switch p {
	case config.PositionTopLeft:
		return lipgloss.Left, lipgloss.Top
	case config.PositionTopRight:
		return lipgloss.Right, lipgloss.Top
	case config.PositionLeft:
		return lipgloss.Left, lipgloss.Center
	case config.PositionRight:
		return lipgloss.Right, lipgloss.Center
	case config.PositionBottomLeft:
		return lipgloss.Left, lipgloss.Bottom
	case config.PositionBottom:
		return lipgloss.Center, lipgloss.Bottom
	case config.PositionBottomRight:
		return lipgloss.Right, lipgloss.Bottom
	default:
		return lipgloss.Center, lipgloss.Top
	}
}
