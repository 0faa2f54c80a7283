package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	slackapi "github.com/slack-go/slack"

	"github.com/yuya-takeyama/cc-nod/internal/config"
	"github.com/yuya-takeyama/cc-nod/internal/logger"
	"github.com/yuya-takeyama/cc-nod/internal/mcp"
	"github.com/yuya-takeyama/cc-nod/internal/overlay"
	"github.com/yuya-takeyama/cc-nod/internal/queue"
	"github.com/yuya-takeyama/cc-nod/internal/server"
	"github.com/yuya-takeyama/cc-nod/internal/slack"
	"github.com/yuya-takeyama/cc-nod/pkg/types"
)

const shutdownTimeout = 30 * time.Second

// app is the wired overlay process
type app struct {
	cfg    *config.Config
	queue  *queue.Queue
	server *server.Server
	tui    *overlay.Presenter
	slack  *slack.Presenter
}

// newApp builds the queue, its presenters and the HTTP server. Nothing is
// started.
func newApp(store *config.Store, cfg *config.Config, log zerolog.Logger) *app {
	a := &app{cfg: cfg}

	metrics := server.NewMetrics()
	presenters := queue.Presenters{}
	observers := queue.Observers{metrics}

	switch cfg.Overlay.Mode {
	case config.ModeTUI:
		model := overlay.NewModel(func(id string, d types.Decision) bool {
			return a.queue.ResolveTicket(id, d)
		}, overlay.Options{
			Position:          cfg.Overlay.Position,
			DiffCollapseLines: cfg.Overlay.DiffCollapseLines,
			SavePosition:      store.SavePosition,
			Logger:            log,
		})
		a.tui = overlay.NewPresenter(model, tea.WithAltScreen())
		presenters = append(presenters, a.tui)
	default:
		headless := overlay.NewHeadless(log)
		presenters = append(presenters, headless)
		observers = append(observers, headless)
	}

	var slackClient *slackapi.Client
	if cfg.Slack.Enabled {
		slackClient = slackapi.New(cfg.Slack.BotToken)
		a.slack = slack.NewPresenter(slackClient, cfg.Slack.ChannelID, log)
		presenters = append(presenters, a.slack)
		observers = append(observers, a.slack)
	}

	a.queue = queue.New(presenters,
		queue.WithLogger(log),
		queue.WithObserver(observers),
	)
	metrics.Watch(a.queue)

	a.server = server.New(cfg.Server, a.queue,
		server.WithLogger(log),
		server.WithMetrics(metrics),
	)
	if cfg.MCP.Enabled {
		a.server.Mount("/mcp", mcp.NewServer(a.queue, log))
	}
	if a.slack != nil {
		h := slack.NewHandler(slackClient, cfg.Slack.SigningSecret, a.queue, a.slack, log)
		a.server.Handle("/slack/interactive", h.ServeHTTP, http.MethodPost)
	}

	return a
}

func run(ctx context.Context, configPath string) error {
	store, cfg, err := config.Open(configPath)
	if err != nil {
		return err
	}

	// The terminal belongs to the overlay in TUI mode
	var echo io.Writer
	if cfg.Overlay.Mode == config.ModeHeadless {
		echo = os.Stderr
	}
	lg, err := logger.New(cfg.Logging, echo)
	if err != nil {
		return err
	}
	defer lg.Close()
	log := lg.Component("main")

	a := newApp(store, cfg, lg.Logger)
	if a.slack != nil {
		defer a.slack.Close()
	}

	if err := a.server.Listen(); err != nil {
		if errors.Is(err, server.ErrAddressInUse) {
			log.Error().Err(err).Str("addr", cfg.Server.Addr()).Msg("Another instance is already running")
			return fmt.Errorf("%s is already in use; is another cc-nod running?", cfg.Server.Addr())
		}
		return err
	}

	if store.Watch(func(c *config.Config) {
		log.Info().Str("position", string(c.Overlay.Position)).Msg("Config file changed")
		if a.tui != nil {
			a.tui.SetPosition(c.Overlay.Position)
		}
	}, func(err error) {
		log.Warn().Err(err).Msg("Ignoring invalid config change")
	}) {
		log.Info().Str("file", store.ConfigFileUsed()).Msg("Watching config file")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.server.Serve()
	}()

	log.Info().
		Str("addr", a.server.Addr()).
		Str("mode", cfg.Overlay.Mode).
		Bool("mcp", cfg.MCP.Enabled).
		Bool("slack", cfg.Slack.Enabled).
		Str("log_file", lg.Path()).
		Msg("cc-nod listening")

	var uiDone chan error
	if a.tui != nil {
		uiDone = make(chan error, 1)
		go func() {
			uiDone <- a.tui.Run()
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("Received shutdown signal")
	case err := <-serveErr:
		runErr = err
		serveErr = nil
	case err := <-uiDone:
		log.Info().Msg("Overlay closed")
		runErr = err
		uiDone = nil
	}

	if uiDone != nil {
		a.tui.Quit()
		if err := <-uiDone; err != nil && runErr == nil {
			runErr = err
		}
	}

	log.Info().Int("pending", a.queue.Depth()).Msg("Server is shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Could not gracefully shutdown the server")
		if runErr == nil {
			runErr = err
		}
	}
	if serveErr != nil {
		if err := <-serveErr; err != nil && runErr == nil {
			runErr = err
		}
	}

	log.Info().Msg("Server stopped")
	return runErr
}
