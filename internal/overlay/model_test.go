package overlay

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuya-takeyama/cc-nod/internal/config"
	"github.com/yuya-takeyama/cc-nod/internal/queue"
	"github.com/yuya-takeyama/cc-nod/pkg/types"
)

type resolved struct {
	id       string
	decision types.Decision
}

type fakeResolver struct {
	calls  []resolved
	accept bool
}

func (f *fakeResolver) resolve(id string, d types.Decision) bool {
	f.calls = append(f.calls, resolved{id: id, decision: d})
	return f.accept
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) (*Model, *fakeResolver) {
	t.Helper()
	r := &fakeResolver{accept: true}
	m := NewModel(r.resolve, Options{
		Position:          config.PositionTop,
		DiffCollapseLines: 5,
		Logger:            zerolog.Nop(),
	})
	return m, r
}

func display(m *Model, id string, req types.PermissionRequest, depth int) {
	m.Update(displayMsg{card: newCard(&queue.Ticket{ID: id, Request: req}), depth: depth})
}

// press sends a key and runs the resulting command, feeding its message back
func press(t *testing.T, m *Model, k string) tea.Cmd {
	t.Helper()
	_, cmd := m.Update(key(k))
	return cmd
}

func run(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		m.Update(msg)
	}
}

var bash = types.PermissionRequest{ToolName: "Bash", ToolInput: map[string]interface{}{"command": "ls -la"}}

func TestIdleView(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Contains(t, m.View(), "waiting for permission requests")
}

func TestAllowKeys(t *testing.T) {
	for _, k := range []string{"enter", "y"} {
		t.Run(k, func(t *testing.T) {
			m, r := newTestModel(t)
			display(m, "t1", bash, 0)

			cmd := press(t, m, k)
			require.NotNil(t, cmd)
			assert.Empty(t, r.calls, "decision must not be delivered inside Update")

			run(m, cmd)
			require.Len(t, r.calls, 1)
			assert.Equal(t, resolved{id: "t1", decision: types.Allow()}, r.calls[0])
		})
	}
}

func TestDenyKeys(t *testing.T) {
	for _, k := range []string{"esc", "n"} {
		t.Run(k, func(t *testing.T) {
			m, r := newTestModel(t)
			display(m, "t1", bash, 0)

			run(m, press(t, m, k))
			require.Len(t, r.calls, 1)
			assert.Equal(t, types.Deny("Denied via overlay"), r.calls[0].decision)
		})
	}
}

func TestKeysIgnoredWhileIdleOrDeciding(t *testing.T) {
	m, r := newTestModel(t)
	assert.Nil(t, press(t, m, "enter"))

	display(m, "t1", bash, 0)
	first := press(t, m, "enter")
	require.NotNil(t, first)
	assert.Nil(t, press(t, m, "n"), "second decision while the first is in flight")
	assert.Contains(t, m.View(), "sending")

	run(m, first)
	assert.Len(t, r.calls, 1)
}

func TestRejectedDecisionReenablesKeys(t *testing.T) {
	m, r := newTestModel(t)
	r.accept = false
	display(m, "t1", bash, 0)

	run(m, press(t, m, "enter"))
	assert.NotNil(t, press(t, m, "enter"))
}

func TestFeedback(t *testing.T) {
	m, r := newTestModel(t)
	display(m, "t1", bash, 0)

	press(t, m, "f")
	assert.Contains(t, m.View(), "ctrl+s send")

	// empty or whitespace feedback is not sent
	assert.Nil(t, press(t, m, "ctrl+s"))
	press(t, m, "   ")
	assert.Nil(t, press(t, m, "ctrl+s"))

	// y and n are text here, not shortcuts
	press(t, m, "yes, but use /tmp")
	assert.Empty(t, r.calls)

	run(m, press(t, m, "ctrl+s"))
	require.Len(t, r.calls, 1)
	assert.Equal(t, types.Deny("yes, but use /tmp"), r.calls[0].decision)
}

func TestFeedbackEscReturnsToCard(t *testing.T) {
	m, r := newTestModel(t)
	display(m, "t1", bash, 0)

	press(t, m, "f")
	press(t, m, "never mind")
	assert.Nil(t, press(t, m, "esc"))
	assert.Empty(t, r.calls)
	assert.Contains(t, m.View(), "enter allow")

	// reopening starts empty
	press(t, m, "f")
	assert.Equal(t, "", m.feedback.Value())
}

func TestCardShowsLabelDetailAndBadge(t *testing.T) {
	m, _ := newTestModel(t)
	display(m, "t1", bash, 1)

	view := m.View()
	assert.Contains(t, view, "Terminal")
	assert.Contains(t, view, "ls -la")
	assert.Contains(t, view, "+1 more")

	m.Update(depthMsg{depth: 3})
	assert.Contains(t, m.View(), "+3 more")

	m.Update(dismissMsg{})
	assert.Contains(t, m.View(), "waiting for permission requests")
}

func TestDiffCollapseAndExpand(t *testing.T) {
	m, _ := newTestModel(t)
	edit := types.PermissionRequest{
		ToolName: "Edit",
		ToolInput: map[string]interface{}{
			"file_path":  "/src/app.go",
			"old_string": "1\n2\n3\n4\n5\n6\n7\n8",
			"new_string": "1\n2\n3\n4\n5\n6\n7\nX",
		},
	}
	display(m, "t1", edit, 0)

	view := m.View()
	assert.Contains(t, view, "+1 -1")
	assert.Contains(t, view, "… 4 more lines")
	assert.Contains(t, view, "e expand")

	press(t, m, "e")
	view = m.View()
	assert.NotContains(t, view, "more lines")
	assert.Contains(t, view, "+ X")
	assert.Contains(t, view, "- 8")
}

func TestPositionCycleSaves(t *testing.T) {
	var saved []config.Position
	m := NewModel(func(string, types.Decision) bool { return true }, Options{
		Position: config.PositionTop,
		SavePosition: func(p config.Position) error {
			saved = append(saved, p)
			return nil
		},
	})

	run(m, press(t, m, "p"))
	assert.Equal(t, config.PositionTopRight, m.position)
	assert.Equal(t, []config.Position{config.PositionTopRight}, saved)
}

func TestPositionSaveError(t *testing.T) {
	m := NewModel(func(string, types.Decision) bool { return true }, Options{
		SavePosition: func(config.Position) error { return errors.New("read-only") },
	})

	run(m, press(t, m, "p"))
	assert.Contains(t, m.View(), "read-only")
}

func TestPositionMsgFromConfigReload(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(positionMsg{position: config.PositionBottomLeft})
	assert.Equal(t, config.PositionBottomLeft, m.position)

	m.Update(positionMsg{position: "nowhere"})
	assert.Equal(t, config.PositionBottomLeft, m.position)
}

func TestPlacement(t *testing.T) {
	tests := []struct {
		pos  config.Position
		h, v lipgloss.Position
	}{
		{config.PositionTopLeft, lipgloss.Left, lipgloss.Top},
		{config.PositionTop, lipgloss.Center, lipgloss.Top},
		{config.PositionRight, lipgloss.Right, lipgloss.Center},
		{config.PositionBottomRight, lipgloss.Right, lipgloss.Bottom},
	}
	for _, tt := range tests {
		t.Run(string(tt.pos), func(t *testing.T) {
			h, v := placement(tt.pos)
			assert.Equal(t, tt.h, h)
			assert.Equal(t, tt.v, v)
		})
	}
}

func TestPlacedViewFillsWindow(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	lines := strings.Split(m.View(), "\n")
	assert.Len(t, lines, 30)
}

func TestCtrlCQuits(t *testing.T) {
	m, _ := newTestModel(t)
	cmd := press(t, m, "ctrl+c")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
