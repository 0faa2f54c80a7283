// Command cc-nod-hook is installed as the agent's PermissionRequest hook.
// It forwards the request to a running cc-nod and prints the decision.
package main

import (
	"context"
	"os"

	"github.com/yuya-takeyama/cc-nod/internal/config"
	"github.com/yuya-takeyama/cc-nod/internal/hook"
)

func main() {
	c := hook.NewClient(
		config.GetEnv("CC_NOD_URL", hook.DefaultURL),
		config.GetDurationEnv("CC_NOD_HOOK_TIMEOUT", hook.DefaultTimeout),
	)
	os.Exit(hook.Run(context.Background(), c, os.Stdin, os.Stdout, os.Stderr))
}
