package overlay

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yuya-takeyama/cc-nod/internal/config"
	"github.com/yuya-takeyama/cc-nod/internal/queue"
)

const mailboxSize = 256

// Presenter drives a Bubble Tea program from queue callbacks. Messages go
// through an ordered mailbox so Display and Dismiss never wait on the
// event loop while the queue is locked.
type Presenter struct {
	program *tea.Program
	mailbox chan tea.Msg
	done    chan struct{}
	once    sync.Once
}

// NewPresenter wraps m in a program. Call Run to take over the terminal.
func NewPresenter(m *Model, opts ...tea.ProgramOption) *Presenter {
	p := &Presenter{
		program: tea.NewProgram(m, opts...),
		mailbox: make(chan tea.Msg, mailboxSize),
		done:    make(chan struct{}),
	}
	go p.forward()
	return p
}

func (p *Presenter) forward() {
	for {
		select {
		case msg := <-p.mailbox:
			p.program.Send(msg)
		case <-p.done:
			return
		}
	}
}

// Run blocks until the user quits or Quit is called
func (p *Presenter) Run() error {
	defer p.stop()
	_, err := p.program.Run()
	return err
}

// Quit asks the program to exit
func (p *Presenter) Quit() {
	p.program.Quit()
}

func (p *Presenter) stop() {
	p.once.Do(func() { close(p.done) })
}

func (p *Presenter) post(msg tea.Msg) {
	select {
	case p.mailbox <- msg:
	case <-p.done:
	}
}

func (p *Presenter) Display(t *queue.Ticket, depth int) {
	p.post(displayMsg{card: newCard(t), depth: depth})
}

func (p *Presenter) Dismiss() {
	p.post(dismissMsg{})
}

func (p *Presenter) QueueChanged(depth int) {
	p.post(depthMsg{depth: depth})
}

// SetPosition moves the card, e.g. after the config file changed
func (p *Presenter) SetPosition(pos config.Position) {
	p.post(positionMsg{position: pos})
}
