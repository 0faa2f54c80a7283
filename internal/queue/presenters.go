package queue

import "github.com/yuya-takeyama/cc-nod/pkg/types"

// Presenters fans every call out to each presenter in order
type Presenters []Presenter

func (ps Presenters) Display(t *Ticket, depth int) {
	for _, p := range ps {
		p.Display(t, depth)
	}
}

func (ps Presenters) Dismiss() {
	for _, p := range ps {
		p.Dismiss()
	}
}

func (ps Presenters) QueueChanged(depth int) {
	for _, p := range ps {
		if n, ok := p.(DepthNotifier); ok {
			n.QueueChanged(depth)
		}
	}
}

// Observers fans lifecycle events out to each observer in order
type Observers []Observer

func (obs Observers) Admitted(t *Ticket, depth int) {
	for _, o := range obs {
		o.Admitted(t, depth)
	}
}

func (obs Observers) Presented(t *Ticket, depth int) {
	for _, o := range obs {
		o.Presented(t, depth)
	}
}

func (obs Observers) Decided(t *Ticket, d types.Decision) {
	for _, o := range obs {
		o.Decided(t, d)
	}
}

func (obs Observers) Retracted(t *Ticket) {
	for _, o := range obs {
		o.Retracted(t)
	}
}
