package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"stockdesk/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent daemon log output",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			logPath := filepath.Join(cfg.Paths.LogDir, "stockdesk.log")

			tail, offset, err := logs.TailFile(logPath, lines)
			if err != nil {
				return err
			}
			if len(tail) == 0 && !follow {
				fmt.Fprintf(out, "No log output yet at %s\n", logPath)
				return nil
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			err = logs.Follow(cmd.Context(), logPath, offset, func(line string) {
				fmt.Fprintln(out, line)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new log lines")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	return cmd
}
