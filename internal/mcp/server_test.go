package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuya-takeyama/cc-nod/internal/queue"
	"github.com/yuya-takeyama/cc-nod/pkg/types"
)

type callResult struct {
	res *mcpsdk.CallToolResultFor[PermissionPromptResponse]
	err error
}

func call(s *Server, ctx context.Context, args ApprovalRequest) <-chan callResult {
	out := make(chan callResult, 1)
	go func() {
		res, err := s.HandleApprovalPrompt(ctx, nil, &mcpsdk.CallToolParamsFor[ApprovalRequest]{Arguments: args})
		out <- callResult{res, err}
	}()
	return out
}

func decode(t *testing.T, res *mcpsdk.CallToolResultFor[PermissionPromptResponse]) PermissionPromptResponse {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)

	var resp PermissionPromptResponse
	require.NoError(t, json.Unmarshal([]byte(text.Text), &resp))
	return resp
}

func TestApprovalPromptAllowEchoesInput(t *testing.T) {
	q := queue.New(nil)
	s := NewServer(q, zerolog.Nop())

	input := map[string]interface{}{"command": "ls -la"}
	done := call(s, context.Background(), ApprovalRequest{ToolName: "Bash", Input: input, ToolUseID: "toolu_1"})

	require.Eventually(t, func() bool { return q.State() == queue.Presenting }, 2*time.Second, 5*time.Millisecond)
	cur, _ := q.Current()
	assert.Equal(t, "Bash", cur.Request.ToolName)
	require.True(t, q.Resolve(types.Allow()))

	r := <-done
	require.NoError(t, r.err)
	resp := decode(t, r.res)
	assert.Equal(t, types.BehaviorAllow, resp.Behavior)
	assert.Equal(t, input, resp.UpdatedInput)
}

func TestApprovalPromptDeny(t *testing.T) {
	q := queue.New(nil)
	s := NewServer(q, zerolog.Nop())

	done := call(s, context.Background(), ApprovalRequest{ToolName: "Write"})
	require.Eventually(t, func() bool { return q.State() == queue.Presenting }, 2*time.Second, 5*time.Millisecond)
	q.Resolve(types.Deny("use a temp dir"))

	r := <-done
	require.NoError(t, r.err)
	resp := decode(t, r.res)
	assert.Equal(t, types.BehaviorDeny, resp.Behavior)
	assert.Equal(t, "use a temp dir", resp.Message)
	assert.Nil(t, resp.UpdatedInput)
}

func TestApprovalPromptMissingToolName(t *testing.T) {
	q := queue.New(nil)
	s := NewServer(q, zerolog.Nop())

	r := <-call(s, context.Background(), ApprovalRequest{})
	assert.True(t, errors.Is(r.err, types.ErrMissingToolName))
	assert.Equal(t, queue.Idle, q.State())
}

func TestApprovalPromptCancelRetracts(t *testing.T) {
	q := queue.New(nil)
	s := NewServer(q, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := call(s, ctx, ApprovalRequest{ToolName: "Bash"})
	require.Eventually(t, func() bool { return q.State() == queue.Presenting }, 2*time.Second, 5*time.Millisecond)

	cancel()
	r := <-done
	assert.True(t, errors.Is(r.err, context.Canceled))
	assert.Equal(t, queue.Idle, q.State())
}
