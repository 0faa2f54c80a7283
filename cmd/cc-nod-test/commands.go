package main

import (
	"fmt"
	"strconv"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the overlay is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return newHarness(opts, cmd.OutOrStdout()).health(cmd.Context())
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the sample requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h := &harness{out: cmd.OutOrStdout()}
			return h.list()
		},
	}
}

func newSendCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send <n>",
		Short: "Send sample n and wait for the decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("sample number must be an integer: %q", args[0])
			}
			s, ok := lookupSample(n)
			if !ok {
				return fmt.Errorf("sample number must be between 1 and %d", len(samples))
			}
			return newHarness(opts, cmd.OutOrStdout()).send(cmd.Context(), s)
		},
	}
}

func newBurstCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "burst",
		Short: "Send several samples at once to exercise the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return newHarness(opts, cmd.OutOrStdout()).burst(cmd.Context())
		},
	}
}

func newInteractiveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Pick samples from a menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "Choice: ",
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return fmt.Errorf("failed to create readline instance: %w", err)
			}
			defer rl.Close()

			return newHarness(opts, cmd.OutOrStdout()).interactive(cmd.Context(), rl)
		},
	}
}

func newShortcutCmd(opts *rootOptions, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return newHarness(opts, cmd.OutOrStdout()).shortcut(cmd.Context(), action)
		},
	}
}
