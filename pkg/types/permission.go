package types

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Decision behaviors understood by the agent
const (
	BehaviorAllow = "allow"
	BehaviorDeny  = "deny"
)

// HookEventPermissionRequest is the hook event name echoed back to the agent
const HookEventPermissionRequest = "PermissionRequest"

var (
	// ErrInvalidJSON is returned when a request body cannot be decoded
	ErrInvalidJSON = errors.New("invalid JSON")
	// ErrMissingToolName is returned when a request has no tool_name
	ErrMissingToolName = errors.New("missing tool_name")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// PermissionRequest is the payload the agent's PermissionRequest hook sends.
// Only tool_name is required. permission_suggestions is forwarded as-is.
type PermissionRequest struct {
	ToolName              string                 `json:"tool_name" validate:"required"`
	ToolInput             map[string]interface{} `json:"tool_input"`
	PermissionSuggestions []interface{}          `json:"permission_suggestions,omitempty"`

	// Hook envelope fields, kept for logging
	SessionID     string `json:"session_id,omitempty"`
	Cwd           string `json:"cwd,omitempty"`
	HookEventName string `json:"hook_event_name,omitempty"`
}

// Decision is the outcome of human review
type Decision struct {
	Behavior string `json:"behavior"`
	Message  string `json:"message,omitempty"`
}

// Allow returns an allow decision
func Allow() Decision {
	return Decision{Behavior: BehaviorAllow}
}

// Deny returns a deny decision carrying message
func Deny(message string) Decision {
	return Decision{Behavior: BehaviorDeny, Message: message}
}

// IsAllow reports whether the decision permits the tool call
func (d Decision) IsAllow() bool {
	return d.Behavior == BehaviorAllow
}

// Valid reports whether the behavior is one the agent understands
func (d Decision) Valid() bool {
	return d.Behavior == BehaviorAllow || d.Behavior == BehaviorDeny
}

// HookResponse is what the hook binary writes to stdout
type HookResponse struct {
	HookSpecificOutput HookSpecificOutput `json:"hookSpecificOutput"`
}

type HookSpecificOutput struct {
	HookEventName string   `json:"hookEventName"`
	Decision      Decision `json:"decision"`
}

// NewHookResponse wraps a decision in the PermissionRequest hook envelope
func NewHookResponse(d Decision) HookResponse {
	return HookResponse{
		HookSpecificOutput: HookSpecificOutput{
			HookEventName: HookEventPermissionRequest,
			Decision:      d,
		},
	}
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status     string `json:"status"`
	Pending    int    `json:"pending"`
	Presenting bool   `json:"presenting"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ParseRequest decodes and validates a permission request
func ParseRequest(data []byte) (PermissionRequest, error) {
	var req PermissionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return PermissionRequest{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if err := req.Validate(); err != nil {
		return PermissionRequest{}, err
	}
	if req.ToolInput == nil {
		req.ToolInput = map[string]interface{}{}
	}
	return req, nil
}

// Validate checks the request invariants
func (r PermissionRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Field() == "ToolName" {
					return ErrMissingToolName
				}
			}
		}
		return fmt.Errorf("invalid permission request: %w", err)
	}
	return nil
}

// StringInput returns tool_input[key] if it is a string
func (r PermissionRequest) StringInput(key string) (string, bool) {
	v, ok := r.ToolInput[key].(string)
	return v, ok
}
