// Command cc-nod-test sends sample permission requests to a running cc-nod
// so the overlay can be previewed without an agent.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yuya-takeyama/cc-nod/internal/config"
	"github.com/yuya-takeyama/cc-nod/internal/hook"
)

type rootOptions struct {
	URL     string
	Timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "cc-nod-test",
		Short:         "Send sample permission requests to a running cc-nod",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.URL, "url", config.GetEnv("CC_NOD_URL", hook.DefaultURL), "overlay base URL")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 10*time.Minute, "how long to wait for a decision")

	cmd.AddCommand(newHealthCmd(opts))
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newSendCmd(opts))
	cmd.AddCommand(newBurstCmd(opts))
	cmd.AddCommand(newInteractiveCmd(opts))
	cmd.AddCommand(newShortcutCmd(opts, "allow", "Allow the request being presented"))
	cmd.AddCommand(newShortcutCmd(opts, "deny", "Deny the request being presented"))
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
