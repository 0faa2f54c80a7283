// Package hook is the PermissionRequest hook client. It forwards the agent's
// request to the overlay and prints the decision in the hook envelope.
package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yuya-takeyama/cc-nod/pkg/types"
)

// Defaults used when the environment does not override them
const (
	DefaultURL     = "http://127.0.0.1:19191"
	DefaultTimeout = 2 * time.Minute
)

// ErrUnavailable wraps every failure that should send the agent back to
// its own permission prompt.
var ErrUnavailable = errors.New("overlay unavailable")

// Client posts permission requests to the overlay
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client whose requests give up after timeout
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Request sends one request and waits for the human's decision
func (c *Client) Request(ctx context.Context, req types.PermissionRequest) (types.Decision, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return types.Decision{}, fmt.Errorf("%w: encoding request: %v", ErrUnavailable, err)
	}

	return c.Forward(ctx, body)
}

// Forward posts a hook payload as received, so fields PermissionRequest does
// not model (transcript_path, permission_mode, ...) reach the overlay
// untouched. Callers validate the payload first.
func (c *Client) Forward(ctx context.Context, payload []byte) (types.Decision, error) {
	var d types.Decision
	if err := c.do(ctx, http.MethodPost, "/permission", bytes.NewReader(payload), &d); err != nil {
		return types.Decision{}, err
	}
	if !d.Valid() {
		return types.Decision{}, fmt.Errorf("%w: unknown behavior %q", ErrUnavailable, d.Behavior)
	}
	return d, nil
}

// Health reports the overlay's queue state
func (c *Client) Health(ctx context.Context) (types.HealthResponse, error) {
	var h types.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &h); err != nil {
		return types.HealthResponse{}, err
	}
	return h, nil
}

// Shortcut decides the presented request the way the global shortcut does.
// action is "allow" or "deny".
func (c *Client) Shortcut(ctx context.Context, action string) (types.Decision, error) {
	var d types.Decision
	if err := c.do(ctx, http.MethodPost, "/shortcut/"+action, nil, &d); err != nil {
		return types.Decision{}, err
	}
	return d, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		var e types.ErrorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			return fmt.Errorf("%w: HTTP %d: %s", ErrUnavailable, resp.StatusCode, e.Error)
		}
		return fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: invalid response: %v", ErrUnavailable, err)
	}
	return nil
}

// Run reads the hook input from stdin, asks the overlay, and writes the
// envelope to stdout. It returns the process exit code: 0 on a decision,
// 1 when the agent should fall back to its own prompt.
func Run(ctx context.Context, c *Client, stdin io.Reader, stdout, stderr io.Writer) int {
	fail := func(err error) int {
		fmt.Fprintf(stderr, "[cc-nod] %v\n", err)
		return 1
	}

	input, err := io.ReadAll(stdin)
	if err != nil {
		return fail(fmt.Errorf("reading stdin: %w", err))
	}

	if _, err := types.ParseRequest(input); err != nil {
		return fail(err)
	}

	d, err := c.Forward(ctx, input)
	if err != nil {
		return fail(err)
	}

	if err := json.NewEncoder(stdout).Encode(types.NewHookResponse(d)); err != nil {
		return fail(fmt.Errorf("writing decision: %w", err))
	}
	return 0
}
