package slack

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/yuya-takeyama/cc-nod/internal/queue"
	"github.com/yuya-takeyama/cc-nod/internal/slack/blocks"
	"github.com/yuya-takeyama/cc-nod/pkg/types"
)

// DenyMessage is sent to the agent when the plain Deny button is used
const DenyMessage = "Denied via Slack"

// Handler serves POST /slack/interactive
type Handler struct {
	api           API
	signingSecret string
	queue         *queue.Queue
	presenter     *Presenter
	logger        zerolog.Logger
}

// reasonMetadata travels through the deny reason modal
type reasonMetadata struct {
	TicketID string `json:"ticket_id"`
	UserID   string `json:"user_id"`
}

// NewHandler creates the interactive endpoint handler
func NewHandler(api API, signingSecret string, q *queue.Queue, p *Presenter, logger zerolog.Logger) *Handler {
	return &Handler{
		api:           api,
		signingSecret: signingSecret,
		queue:         q,
		presenter:     p,
		logger:        logger.With().Str("component", "slack_interaction").Logger(),
	}
}

// ServeHTTP handles Slack interactive components (buttons and modals)
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Read the entire request body for signature verification
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	sv, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		http.Error(w, "Failed to create secrets verifier", http.StatusBadRequest)
		return
	}
	if _, err := sv.Write(body); err != nil {
		http.Error(w, "Failed to verify signature", http.StatusInternalServerError)
		return
	}
	if err := sv.Ensure(); err != nil {
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	payloadString := r.FormValue("payload")
	if payloadString == "" {
		http.Error(w, "Missing payload", http.StatusBadRequest)
		return
	}

	var payload slack.InteractionCallback
	if err := json.Unmarshal([]byte(payloadString), &payload); err != nil {
		http.Error(w, "Failed to parse payload", http.StatusBadRequest)
		return
	}

	switch payload.Type {
	case slack.InteractionTypeBlockActions:
		for _, action := range payload.ActionCallback.BlockActions {
			h.handleBlockAction(&payload, action)
		}
	case slack.InteractionTypeViewSubmission:
		if payload.View.CallbackID == blocks.DenyReasonCallbackID {
			h.handleDenyReasonSubmission(w, &payload)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleBlockAction(payload *slack.InteractionCallback, action *slack.BlockAction) {
	prefix, ticketID, ok := blocks.ParseActionID(action.ActionID)
	if !ok {
		h.logger.Debug().Str("action_id", action.ActionID).Msg("Ignoring unknown action")
		return
	}

	switch prefix {
	case blocks.ActionApprove:
		h.resolve(ticketID, payload.User.ID, types.Allow())
	case blocks.ActionDeny:
		h.resolve(ticketID, payload.User.ID, types.Deny(DenyMessage))
	case blocks.ActionDenyWithReason:
		metadata, _ := json.Marshal(reasonMetadata{TicketID: ticketID, UserID: payload.User.ID})
		if _, err := h.api.OpenView(payload.TriggerID, blocks.DenyReasonModal(string(metadata))); err != nil {
			h.logger.Error().Err(err).Str("request_id", ticketID).Msg("Failed to open deny reason modal")
		}
	}
}

func (h *Handler) handleDenyReasonSubmission(w http.ResponseWriter, payload *slack.InteractionCallback) {
	var reason string
	if payload.View.State != nil {
		if reasonBlock, ok := payload.View.State.Values[blocks.ReasonBlockID]; ok {
			if reasonInput, ok := reasonBlock[blocks.ReasonInputID]; ok {
				reason = strings.TrimSpace(reasonInput.Value)
			}
		}
	}

	if reason == "" {
		writeResponseAction(w, map[string]interface{}{
			"response_action": "errors",
			"errors": map[string]string{
				blocks.ReasonBlockID: "Please provide a reason for denial",
			},
		})
		return
	}

	var metadata reasonMetadata
	if err := json.Unmarshal([]byte(payload.View.PrivateMetadata), &metadata); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse modal metadata")
		w.WriteHeader(http.StatusOK)
		return
	}

	writeResponseAction(w, map[string]interface{}{"response_action": "clear"})

	userID := payload.User.ID
	if userID == "" {
		userID = metadata.UserID
	}
	h.resolve(metadata.TicketID, userID, types.Deny(reason))
}

func (h *Handler) resolve(ticketID, userID string, d types.Decision) {
	if h.presenter != nil {
		h.presenter.markDecider(ticketID, userID)
	}
	if !h.queue.ResolveTicket(ticketID, d) {
		h.logger.Info().
			Str("request_id", ticketID).
			Str("user_id", userID).
			Msg("Ignoring decision for a request that is no longer presented")
		return
	}
	h.logger.Info().
		Str("request_id", ticketID).
		Str("user_id", userID).
		Str("behavior", d.Behavior).
		Msg("Decision received from Slack")
}

func writeResponseAction(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
