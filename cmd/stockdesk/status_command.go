package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"stockdesk/internal/api"
	"stockdesk/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and workflow status",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			status := ctx.daemonStatus(cmd.Context())
			if status == nil {
				writeSectionHeader(out, "Daemon", colorize)
				fmt.Fprintln(out, renderStatusLine("Running", statusWarn, "daemon not reachable", colorize))
				fmt.Fprintln(out)
				return renderLocalQueueSection(cmd, ctx, colorize)
			}

			renderDaemonStatus(out, status, colorize)
			return nil
		},
	}
}

func renderDaemonStatus(out io.Writer, status *api.DaemonStatus, colorize bool) {
	writeSectionHeader(out, "Daemon", colorize)
	runningKind := statusError
	if status.Running {
		runningKind = statusOK
	}
	fmt.Fprintln(out, renderStatusLine("Running", runningKind, yesNo(status.Running), colorize))
	fmt.Fprintln(out, renderStatusLine("PID", statusInfo, fmt.Sprintf("%d", status.PID), colorize))
	fmt.Fprintln(out, renderStatusLine("Queue database", statusInfo, status.QueueDBPath, colorize))
	fmt.Fprintln(out)

	writeSectionHeader(out, "Stages", colorize)
	for _, health := range status.Workflow.StageHealth {
		kind := statusError
		if health.Ready {
			kind = statusOK
		}
		fmt.Fprintln(out, renderStatusLine(health.Name, kind, health.Detail, colorize))
	}
	fmt.Fprintln(out)

	writeSectionHeader(out, "Queue", colorize)
	if len(status.Workflow.QueueStats) == 0 {
		fmt.Fprintln(out, statusIndent+"Queue is empty")
	} else {
		for _, queueStatus := range queue.AllStatuses() {
			count := status.Workflow.QueueStats[string(queueStatus)]
			if count == 0 {
				continue
			}
			kind := statusKindForQueue(queueStatus)
			fmt.Fprintln(out, renderStatusLine(queueStatus.DisplayLabel(), kind, fmt.Sprintf("%d", count), colorize))
		}
	}

	if status.Workflow.LastError != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderStatusLine("Last error", statusError, status.Workflow.LastError, colorize))
	}
	if status.Workflow.LastItem != nil {
		item := status.Workflow.LastItem
		label := fmt.Sprintf("#%d %s (%s)", item.ID, item.Symbol, strings.ToLower(item.StatusLabel))
		fmt.Fprintln(out, renderStatusLine("Last item", statusInfo, label, colorize))
	}
}

func renderLocalQueueSection(cmd *cobra.Command, ctx *commandContext, colorize bool) error {
	out := cmd.OutOrStdout()
	return ctx.withStore(func(store *queue.Store) error {
		stats, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}
		writeSectionHeader(out, "Queue", colorize)
		empty := true
		for _, queueStatus := range queue.AllStatuses() {
			count := stats[queueStatus]
			if count == 0 {
				continue
			}
			empty = false
			kind := statusKindForQueue(queueStatus)
			fmt.Fprintln(out, renderStatusLine(queueStatus.DisplayLabel(), kind, fmt.Sprintf("%d", count), colorize))
		}
		if empty {
			fmt.Fprintln(out, statusIndent+"Queue is empty")
		}
		return nil
	})
}
