package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"golang.org/x/sync/errgroup"

	"github.com/yuya-takeyama/cc-nod/internal/hook"
	"github.com/yuya-takeyama/cc-nod/pkg/types"
)

var errNotRunning = errors.New("overlay is not running")

// harness drives a running overlay through its HTTP API
type harness struct {
	client *hook.Client
	out    io.Writer
}

func newHarness(opts *rootOptions, out io.Writer) *harness {
	return &harness{client: hook.NewClient(opts.URL, opts.Timeout), out: out}
}

func (h *harness) println(s string) {
	fmt.Fprintln(h.out, s)
}

func (h *harness) health(ctx context.Context) error {
	status, err := h.client.Health(ctx)
	if err != nil {
		h.println(pterm.Error.Sprint("Overlay is not running on " + h.client.BaseURL))
		h.println("  Start it first with: cc-nod")
		return fmt.Errorf("%w: %v", errNotRunning, err)
	}
	h.println(pterm.Success.Sprintf("Overlay is running (pending: %d, presenting: %t)", status.Pending, status.Presenting))
	return nil
}

func (h *harness) list() error {
	data := pterm.TableData{{"#", "Name", "Tool"}}
	for i, s := range samples {
		data = append(data, []string{strconv.Itoa(i + 1), s.Name, s.Request.ToolName})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	h.println(table)
	return nil
}

func (h *harness) send(ctx context.Context, s sample) error {
	input, err := json.Marshal(s.Request.ToolInput)
	if err != nil {
		return err
	}
	h.println(pterm.Info.Sprint("Sending: " + s.Name))
	h.println("  Tool: " + s.Request.ToolName)
	h.println("  Input: " + string(input))
	h.println("  Waiting for your decision in the overlay...")

	d, err := h.client.Request(ctx, s.Request)
	if err != nil {
		h.println(pterm.Error.Sprint("Error: " + err.Error()))
		return err
	}
	h.println(pterm.Success.Sprint("Response: " + describe(d)))
	return nil
}

// burst sends the burst samples at once and reports responses in send order
func (h *harness) burst(ctx context.Context) error {
	h.println(pterm.Info.Sprintf("Sending %d requests simultaneously (queue test)...", len(burstSamples)))

	results := make([]types.Decision, len(burstSamples))
	g, ctx := errgroup.WithContext(ctx)
	for i, idx := range burstSamples {
		s := samples[idx]
		h.println(fmt.Sprintf("  → Sent #%d: %s", i+1, s.Name))
		g.Go(func() error {
			d, err := h.client.Request(ctx, s.Request)
			if err != nil {
				return fmt.Errorf("request #%d: %w", i+1, err)
			}
			results[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.println(pterm.Error.Sprint("Error: " + err.Error()))
		return err
	}

	for i, d := range results {
		h.println(fmt.Sprintf("  ← Response #%d: %s", i+1, describe(d)))
	}
	return nil
}

func (h *harness) shortcut(ctx context.Context, action string) error {
	d, err := h.client.Shortcut(ctx, action)
	if err != nil {
		h.println(pterm.Warning.Sprint(err.Error()))
		return err
	}
	h.println(pterm.Success.Sprint("Decided: " + describe(d)))
	return nil
}

// lineReader is satisfied by *readline.Instance
type lineReader interface {
	Readline() (string, error)
}

// interactive runs the menu until the user exits or input ends
func (h *harness) interactive(ctx context.Context, rl lineReader) error {
	if err := h.health(ctx); err != nil {
		return err
	}

	for {
		h.println("")
		h.println("─── Pick a test request ───")
		for i, s := range samples {
			h.println(fmt.Sprintf("  %d. %s  →  %s", i+1, s.Name, s.Request.ToolName))
		}
		h.println(fmt.Sprintf("  q. Send queue burst (%d at once)", len(burstSamples)))
		h.println("  x. Exit")

		line, err := rl.Readline()
		if err != nil {
			// EOF and ctrl+c both end the session
			h.println("Bye!")
			return nil
		}

		choice := strings.ToLower(strings.TrimSpace(line))
		switch choice {
		case "x":
			h.println("Bye!")
			return nil
		case "q":
			_ = h.burst(ctx)
			continue
		}

		n, err := strconv.Atoi(choice)
		s, ok := lookupSample(n)
		if err != nil || !ok {
			h.println(pterm.Warning.Sprint("Invalid choice"))
			continue
		}
		_ = h.send(ctx, s)
	}
}

func describe(d types.Decision) string {
	if d.Message != "" {
		return d.Behavior + " (" + d.Message + ")"
	}
	return d.Behavior
}
