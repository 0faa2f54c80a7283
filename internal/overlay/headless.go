package overlay

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/yuya-takeyama/cc-nod/internal/messages"
	"github.com/yuya-takeyama/cc-nod/internal/queue"
	"github.com/yuya-takeyama/cc-nod/internal/tools"
	"github.com/yuya-takeyama/cc-nod/pkg/types"
)

// Headless logs what would be shown and how it was decided. Decisions
// arrive through the shortcut endpoint or Slack. It is both a
// queue.Presenter and a queue.Observer.
type Headless struct {
	logger zerolog.Logger
}

// NewHeadless creates a headless presenter
func NewHeadless(logger zerolog.Logger) *Headless {
	return &Headless{logger: logger.With().Str("component", "headless").Logger()}
}

func (h *Headless) Display(t *queue.Ticket, depth int) {
	detail := tools.GetToolDetail(t.Request)
	h.logger.Info().
		Str("request_id", t.ID).
		Str("tool", tools.GetToolLabel(t.Request.ToolName)).
		Str(detail.Label, detail.Value).
		Int("queue_depth", depth).
		Msg("Awaiting decision")
}

func (h *Headless) Dismiss() {
	h.logger.Info().Msg("Queue idle")
}

func (h *Headless) QueueChanged(depth int) {
	h.logger.Debug().Int("queue_depth", depth).Msg("Backlog changed")
}

func (h *Headless) Admitted(t *queue.Ticket, depth int) {}

func (h *Headless) Presented(t *queue.Ticket, depth int) {}

func (h *Headless) Decided(t *queue.Ticket, d types.Decision) {
	h.logger.Info().
		Str("request_id", t.ID).
		Dur("waited", time.Since(t.PresentedAt)).
		Msg(messages.FormatDecision(d))
}

func (h *Headless) Retracted(t *queue.Ticket) {
	h.logger.Info().Str("request_id", t.ID).Msg("Withdrawn by the agent")
}
