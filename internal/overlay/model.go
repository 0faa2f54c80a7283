// Package overlay renders the request being presented as a terminal card and
// turns key presses into decisions.
package overlay

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/yuya-takeyama/cc-nod/internal/config"
	"github.com/yuya-takeyama/cc-nod/internal/diff"
	"github.com/yuya-takeyama/cc-nod/internal/messages"
	"github.com/yuya-takeyama/cc-nod/internal/queue"
	"github.com/yuya-takeyama/cc-nod/internal/tools"
	"github.com/yuya-takeyama/cc-nod/pkg/types"
)

// Resolver delivers a decision for a ticket, normally Queue.ResolveTicket
type Resolver func(ticketID string, d types.Decision) bool

// Options configures the overlay model
type Options struct {
	Position          config.Position
	DiffCollapseLines int

	// SavePosition persists a position chosen with the p key. May be nil.
	SavePosition func(config.Position) error
	Logger       zerolog.Logger
}

type mode int

const (
	modeCard mode = iota
	modeFeedback
)

// card is the render-ready copy of a presented ticket
type card struct {
	id     string
	info   tools.ToolInfo
	detail tools.ToolDetail
	diff   []diff.NumberedEntry
	stats  diff.Stats
}

func newCard(t *queue.Ticket) *card {
	c := &card{
		id:     t.ID,
		info:   tools.GetToolInfo(t.Request.ToolName),
		detail: tools.GetToolDetail(t.Request),
	}
	if tools.IsEditWithDiff(t.Request) {
		oldText, _ := t.Request.StringInput("old_string")
		newText, _ := t.Request.StringInput("new_string")
		entries := diff.Compute(oldText, newText)
		c.diff = diff.Number(entries)
		c.stats = diff.Summarize(entries)
	}
	return c
}

// displayMsg and the other *Msg types below are sent in by the presenter
type displayMsg struct {
	card  *card
	depth int
}

type dismissMsg struct{}

type depthMsg struct{ depth int }

type positionMsg struct{ position config.Position }

// decidedMsg reports whether the queue accepted a decision
type decidedMsg struct {
	id       string
	accepted bool
}

type positionSavedMsg struct{ err error }

// Model is the Bubble Tea model of the overlay
type Model struct {
	resolve      Resolver
	savePosition func(config.Position) error
	logger       zerolog.Logger

	position   config.Position
	collapseAt int
	width      int
	height     int

	current  *card
	depth    int
	mode     mode
	expanded bool
	deciding bool
	feedback textarea.Model
	status   string
}

// NewModel creates an idle overlay model
func NewModel(resolve Resolver, opts Options) *Model {
	ta := textarea.New()
	ta.Placeholder = "Tell the agent what to do instead..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(cardWidth - 4)
	ta.SetHeight(4)

	pos := opts.Position
	if !pos.Valid() {
		pos = config.PositionTop
	}

	return &Model{
		resolve:      resolve,
		savePosition: opts.SavePosition,
		logger:       opts.Logger.With().Str("component", "overlay").Logger(),
		position:     pos,
		collapseAt:   opts.DiffCollapseLines,
		feedback:     ta,
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case displayMsg:
		m.current = msg.card
		m.depth = msg.depth
		m.mode = modeCard
		m.expanded = false
		m.deciding = false
		m.status = ""
		m.feedback.Reset()
		m.feedback.Blur()
		return m, nil

	case dismissMsg:
		m.current = nil
		m.depth = 0
		m.mode = modeCard
		m.deciding = false
		m.feedback.Blur()
		return m, nil

	case depthMsg:
		m.depth = msg.depth
		return m, nil

	case positionMsg:
		if msg.position.Valid() {
			m.position = msg.position
		}
		return m, nil

	case decidedMsg:
		if !msg.accepted && m.current != nil && m.current.id == msg.id {
			// the request went away underneath us
			m.deciding = false
		}
		return m, nil

	case positionSavedMsg:
		if msg.err != nil {
			m.status = "could not save position: " + msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode == modeFeedback {
			return m.updateFeedback(msg)
		}
		return m.updateCard(msg)
	}

	if m.mode == modeFeedback {
		var cmd tea.Cmd
		m.feedback, cmd = m.feedback.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateCard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "p" {
		return m, m.cyclePosition()
	}
	if m.current == nil || m.deciding {
		return m, nil
	}

	switch msg.String() {
	case "enter", "y":
		return m, m.decide(types.Allow())
	case "esc", "n":
		return m, m.decide(types.Deny(messages.DefaultDenyMessage))
	case "f":
		m.mode = modeFeedback
		m.feedback.Reset()
		return m, m.feedback.Focus()
	case "e":
		m.expanded = !m.expanded
	}
	return m, nil
}

func (m *Model) updateFeedback(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeCard
		m.feedback.Blur()
		return m, nil
	case "ctrl+s":
		text := strings.TrimSpace(m.feedback.Value())
		if text == "" || m.current == nil || m.deciding {
			return m, nil
		}
		return m, m.decide(types.Deny(text))
	}

	var cmd tea.Cmd
	m.feedback, cmd = m.feedback.Update(msg)
	return m, cmd
}

// decide resolves off the event loop; the queue calls back into the
// presenter, which sends into this program.
func (m *Model) decide(d types.Decision) tea.Cmd {
	id := m.current.id
	m.deciding = true
	resolve := m.resolve
	logger := m.logger
	return func() tea.Msg {
		accepted := resolve(id, d)
		logger.Debug().
			Str("request_id", id).
			Str("behavior", d.Behavior).
			Bool("accepted", accepted).
			Msg("Decision sent")
		return decidedMsg{id: id, accepted: accepted}
	}
}

func (m *Model) cyclePosition() tea.Cmd {
	m.position = m.position.Next()
	m.status = ""
	if m.savePosition == nil {
		return nil
	}
	save, pos := m.savePosition, m.position
	return func() tea.Msg {
		return positionSavedMsg{err: save(pos)}
	}
}
