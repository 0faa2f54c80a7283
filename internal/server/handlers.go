package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yuya-takeyama/cc-nod/internal/messages"
	"github.com/yuya-takeyama/cc-nod/internal/queue"
	"github.com/yuya-takeyama/cc-nod/pkg/types"
)

// handlePermission handles POST /permission
func (s *Server) handlePermission(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.reject(w, "read_error", "Invalid JSON")
		return
	}

	req, err := types.ParseRequest(body)
	if err != nil {
		if errors.Is(err, types.ErrMissingToolName) {
			s.reject(w, "missing_tool_name", "Missing tool_name")
			return
		}
		s.reject(w, "invalid_json", "Invalid JSON")
		return
	}

	ticket := s.queue.Enqueue(req)

	select {
	case d := <-ticket.Decision():
		writeJSON(w, http.StatusOK, d)
	case <-r.Context().Done():
		if !s.queue.Retract(ticket) {
			// decided in the meantime
			writeJSON(w, http.StatusOK, <-ticket.Decision())
			return
		}
		s.logger.Info().
			Str("request_id", ticket.ID).
			Str("tool_name", req.ToolName).
			Msg("Request withdrawn before a decision")
		if s.baseCtx.Err() != nil {
			writeError(w, http.StatusServiceUnavailable, "Shutting down")
		}
	}
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:     "ok",
		Pending:    s.queue.Depth(),
		Presenting: s.queue.State() == queue.Presenting,
	})
}

// handleShortcut handles POST /shortcut/{action}, the global allow/deny keys.
// Browsers attach Origin to cross-site POSTs, even "simple" ones that skip
// the preflight, so any request carrying it is refused.
func (s *Server) handleShortcut(w http.ResponseWriter, r *http.Request) {
	if origin := r.Header.Get("Origin"); origin != "" {
		s.logger.Warn().Str("origin", origin).Msg("Refused cross-origin shortcut")
		writeError(w, http.StatusForbidden, "Cross-origin requests are not allowed")
		return
	}

	var d types.Decision
	switch mux.Vars(r)["action"] {
	case types.BehaviorAllow:
		d = types.Allow()
	default:
		d = types.Deny(messages.DefaultDenyMessage)
	}

	// Like a global hotkey this acts on whatever is presented now, not on a
	// ticket the caller saw earlier; a late press can decide the next request.
	if !s.queue.Resolve(d) {
		writeError(w, http.StatusConflict, "No pending request")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) reject(w http.ResponseWriter, reason, message string) {
	s.metrics.Rejected(reason)
	s.logger.Warn().Str("reason", reason).Msg("Rejected permission request")
	writeError(w, http.StatusBadRequest, message)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, types.ErrorResponse{Error: message})
}
