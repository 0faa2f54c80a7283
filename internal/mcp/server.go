// Package mcp exposes the queue as an MCP permission prompt tool, for agents
// started with --permission-prompt-tool instead of a PermissionRequest hook.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/yuya-takeyama/cc-nod/internal/queue"
	"github.com/yuya-takeyama/cc-nod/pkg/types"
)

// ToolName is the tool's base name. Agents see it as mcp__cc-nod__approval_prompt.
const ToolName = "approval_prompt"

// Server wraps the MCP server and HTTP handler
type Server struct {
	mcp     *mcpsdk.Server
	handler *mcpsdk.StreamableHTTPHandler
	queue   *queue.Queue
	logger  zerolog.Logger
}

// ApprovalRequest represents a request for user approval
// According to Claude Code docs, permission prompt receives:
// - tool_name: Name of the tool requesting permission
// - input: Input for the tool
// - tool_use_id: Unique tool use request ID (optional)
type ApprovalRequest struct {
	ToolName  string                 `json:"tool_name"`
	Input     map[string]interface{} `json:"input,omitempty"`
	ToolUseID string                 `json:"tool_use_id,omitempty"`
}

// PermissionPromptResponse represents the response format for permission prompts
type PermissionPromptResponse struct {
	Behavior     string                 `json:"behavior"`
	Message      string                 `json:"message,omitempty"`
	UpdatedInput map[string]interface{} `json:"updatedInput,omitempty"` // required for allow
}

// NewServer creates an MCP server whose approval_prompt tool feeds q
func NewServer(q *queue.Queue, logger zerolog.Logger) *Server {
	mcp := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "cc-nod",
		Version: "0.1.0",
	}, nil)

	s := &Server{
		mcp:    mcp,
		queue:  q,
		logger: logger.With().Str("component", "mcp_server").Logger(),
	}

	mcpsdk.AddTool(mcp, &mcpsdk.Tool{
		Name:        ToolName,
		Description: "Ask the human at the overlay to allow or deny a tool call",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"tool_name": {
					Type:        "string",
					Description: "Name of the tool requesting approval",
				},
				"input": {
					Type:        "object",
					Description: "Input parameters for the tool",
				},
				"tool_use_id": {
					Type:        "string",
					Description: "Unique tool use request ID",
				},
			},
			Required: []string{"tool_name"},
		},
	}, s.HandleApprovalPrompt)

	s.handler = mcpsdk.NewStreamableHTTPHandler(func(r *http.Request) *mcpsdk.Server {
		return mcp
	}, nil)

	return s
}

// ServeHTTP processes MCP requests
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// HandleApprovalPrompt queues the call like any hook request and blocks
// until the human decides or the MCP call is cancelled.
func (s *Server) HandleApprovalPrompt(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[ApprovalRequest]) (*mcpsdk.CallToolResultFor[PermissionPromptResponse], error) {
	args := params.Arguments

	resp, err := s.decide(ctx, args)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal approval response: %w", err)
	}

	s.logger.Info().
		Str("tool_name", args.ToolName).
		Str("tool_use_id", args.ToolUseID).
		Str("behavior", resp.Behavior).
		Msg("Returning approval response")

	return &mcpsdk.CallToolResultFor[PermissionPromptResponse]{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(jsonData)},
		},
	}, nil
}

// decide queues the prompt and waits for a decision. The SDK runs tool calls
// on a context detached from the HTTP request, so ctx ends only when the
// client sends notifications/cancelled. A client that disconnects without
// cancelling leaves its ticket queued until a human decides it.
func (s *Server) decide(ctx context.Context, args ApprovalRequest) (PermissionPromptResponse, error) {
	req := types.PermissionRequest{
		ToolName:  args.ToolName,
		ToolInput: args.Input,
	}
	if err := req.Validate(); err != nil {
		return PermissionPromptResponse{}, err
	}
	if req.ToolInput == nil {
		req.ToolInput = map[string]interface{}{}
	}

	ticket := s.queue.Enqueue(req)
	s.logger.Debug().
		Str("request_id", ticket.ID).
		Str("tool_use_id", args.ToolUseID).
		Msg("Approval prompt queued")

	var d types.Decision
	select {
	case d = <-ticket.Decision():
	case <-ctx.Done():
		if s.queue.Retract(ticket) {
			return PermissionPromptResponse{}, ctx.Err()
		}
		d = <-ticket.Decision()
	}

	resp := PermissionPromptResponse{
		Behavior: d.Behavior,
		Message:  d.Message,
	}
	// allow must echo the input back, unchanged
	if d.IsAllow() {
		resp.UpdatedInput = req.ToolInput
	}
	return resp, nil
}
