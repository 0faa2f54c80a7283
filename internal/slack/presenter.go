// Package slack mirrors the request being presented into a Slack channel and
// accepts decisions from its buttons.
package slack

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/yuya-takeyama/cc-nod/internal/messages"
	"github.com/yuya-takeyama/cc-nod/internal/queue"
	"github.com/yuya-takeyama/cc-nod/internal/slack/blocks"
	"github.com/yuya-takeyama/cc-nod/pkg/types"
)

// API is the subset of *slack.Client used here
type API interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
	UpdateMessage(channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error)
	OpenView(triggerID string, view slack.ModalViewRequest) (*slack.ViewResponse, error)
}

const jobBuffer = 64

// card is a posted approval message
type card struct {
	request   types.PermissionRequest
	channelID string
	ts        string
	deciderID string
}

// Presenter posts one card per presented ticket and rewrites it with the
// outcome. Queue callbacks only schedule work; Slack calls run on a single
// worker goroutine so the queue lock is never held across the network and
// a card is always posted before it is updated.
type Presenter struct {
	api       API
	channelID string
	logger    zerolog.Logger

	jobs chan func()
	done chan struct{}
	once sync.Once

	mu    sync.Mutex
	cards map[string]*card
}

// NewPresenter creates a presenter and starts its worker
func NewPresenter(api API, channelID string, logger zerolog.Logger) *Presenter {
	p := &Presenter{
		api:       api,
		channelID: channelID,
		logger:    logger.With().Str("component", "slack_presenter").Logger(),
		jobs:      make(chan func(), jobBuffer),
		done:      make(chan struct{}),
		cards:     make(map[string]*card),
	}
	go p.run()
	return p
}

func (p *Presenter) run() {
	defer close(p.done)
	for job := range p.jobs {
		job()
	}
}

// Close drains scheduled work and stops the worker
func (p *Presenter) Close() {
	p.once.Do(func() {
		close(p.jobs)
	})
	<-p.done
}

func (p *Presenter) submit(job func()) {
	select {
	case p.jobs <- job:
	default:
		p.logger.Warn().Msg("Slack job queue full, dropping update")
	}
}

// Display posts the approval card for t
func (p *Presenter) Display(t *queue.Ticket, depth int) {
	id, req := t.ID, t.Request
	text := messages.FormatApprovalMarkdown(req, depth)

	p.mu.Lock()
	p.cards[id] = &card{request: req, channelID: p.channelID}
	p.mu.Unlock()

	p.submit(func() {
		channelID, ts, err := p.api.PostMessage(p.channelID, slack.MsgOptionBlocks(blocks.ApprovalRequest(text, id)...))
		if err != nil {
			p.logger.Error().Err(err).Str("request_id", id).Msg("Failed to post approval request")
			return
		}

		p.mu.Lock()
		if c, ok := p.cards[id]; ok {
			c.channelID, c.ts = channelID, ts
		}
		p.mu.Unlock()
	})
}

// Dismiss is a no-op; cards are closed out per ticket in Decided and Retracted
func (p *Presenter) Dismiss() {}

func (p *Presenter) Admitted(t *queue.Ticket, depth int) {}

func (p *Presenter) Presented(t *queue.Ticket, depth int) {}

// Decided replaces the card's buttons with the outcome
func (p *Presenter) Decided(t *queue.Ticket, d types.Decision) {
	waited := time.Since(t.EnqueuedAt)
	p.finish(t.ID, func(c *card) string {
		return messages.FormatStatusMarkdown(c.deciderID, d, waited)
	})
}

// Retracted closes the card of a request whose caller went away
func (p *Presenter) Retracted(t *queue.Ticket) {
	waited := time.Since(t.EnqueuedAt)
	p.finish(t.ID, func(*card) string {
		return messages.FormatWithdrawnMarkdown(waited)
	})
}

func (p *Presenter) finish(id string, status func(*card) string) {
	p.mu.Lock()
	_, ok := p.cards[id]
	p.mu.Unlock()
	if !ok {
		// never displayed here, e.g. retracted while pending
		return
	}

	p.submit(func() {
		p.mu.Lock()
		c := p.cards[id]
		delete(p.cards, id)
		p.mu.Unlock()

		if c == nil || c.ts == "" {
			return
		}
		original := messages.FormatApprovalMarkdown(c.request, 0)
		_, _, _, err := p.api.UpdateMessage(c.channelID, c.ts,
			slack.MsgOptionBlocks(blocks.ApprovalStatus(original, status(c))...))
		if err != nil {
			p.logger.Error().Err(err).Str("request_id", id).Msg("Failed to update approval message")
		}
	})
}

// markDecider records who pressed a button so the status line can credit them
func (p *Presenter) markDecider(ticketID, userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.cards[ticketID]; ok {
		c.deciderID = userID
	}
}
