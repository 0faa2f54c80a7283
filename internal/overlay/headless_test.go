package overlay

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/yuya-takeyama/cc-nod/internal/queue"
	"github.com/yuya-takeyama/cc-nod/pkg/types"
)

func TestHeadlessLogsLifecycle(t *testing.T) {
	var buf bytes.Buffer
	h := NewHeadless(zerolog.New(&buf))
	q := queue.New(h, queue.WithObserver(h))

	first := q.Enqueue(types.PermissionRequest{
		ToolName:  "Bash",
		ToolInput: map[string]interface{}{"command": "make test"},
	})
	second := q.Enqueue(types.PermissionRequest{ToolName: "Read"})
	assert.True(t, q.Resolve(types.Deny("not now")))
	assert.True(t, q.Retract(second))
	<-first.Decision()

	out := buf.String()
	assert.Contains(t, out, `"component":"headless"`)
	assert.Contains(t, out, `"tool":"Terminal"`)
	assert.Contains(t, out, `"Command":"make test"`)
	assert.Contains(t, out, "Awaiting decision")
	assert.Contains(t, out, "Denied: not now")
	assert.Contains(t, out, "Withdrawn by the agent")
	assert.Contains(t, out, "Queue idle")
}
