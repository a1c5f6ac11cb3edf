package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"stockdesk/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the analysis queue",
	}

	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueResetCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))

	return queueCmd
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue status summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				rows := buildQueueStatusRows(stats)
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				writeTable(cmd.OutOrStdout(), []tableColumn{
					{Title: "Status", QueueState: true},
					{Title: "Count", Align: alignRight},
				}, rows)
				return nil
			})
		},
	}
}

func buildQueueStatusRows(stats map[queue.Status]int) [][]string {
	rows := make([][]string, 0, len(stats))
	for _, status := range queue.AllStatuses() {
		count, ok := stats[status]
		if !ok || count == 0 {
			continue
		}
		rows = append(rows, []string{status.DisplayLabel(), strconv.Itoa(count)})
	}
	return rows
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				var statuses []queue.Status
				for _, raw := range listStatuses {
					status, ok := queue.ParseStatus(raw)
					if !ok {
						return fmt.Errorf("unknown status %q", raw)
					}
					statuses = append(statuses, status)
				}

				items, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}

				rows := make([][]string, 0, len(items))
				for _, item := range items {
					detail := item.ProgressMessage
					if item.Status == queue.StatusFailed && item.ErrorMessage != "" {
						detail = item.ErrorMessage
					}
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						item.Symbol,
						item.Status.DisplayLabel(),
						humanize.Time(item.CreatedAt),
						detail,
					})
				}
				writeTable(cmd.OutOrStdout(), []tableColumn{
					{Title: "ID", Align: alignRight},
					{Title: "Symbol"},
					{Title: "Status", QueueState: true},
					{Title: "Created"},
					{Title: "Details"},
				}, rows)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by queue status (repeatable)")
	return cmd
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show ITEM_ID",
		Short: "Show details for a single queue item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}
			return ctx.withStore(func(store *queue.Store) error {
				item, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("queue item %d not found", id)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Item #%d\n", item.ID)
				fmt.Fprintf(out, "  Symbol:     %s\n", item.Symbol)
				fmt.Fprintf(out, "  Status:     %s\n", item.Status.DisplayLabel())
				fmt.Fprintf(out, "  Created:    %s\n", humanize.Time(item.CreatedAt))
				fmt.Fprintf(out, "  Updated:    %s\n", humanize.Time(item.UpdatedAt))
				if item.TargetDir != "" {
					fmt.Fprintf(out, "  Target dir: %s\n", item.TargetDir)
				}
				if item.ProgressMessage != "" {
					fmt.Fprintf(out, "  Progress:   %s (%.0f%%)\n", item.ProgressMessage, item.ProgressPercent)
				}
				if item.ReportFile != "" {
					fmt.Fprintf(out, "  Report:     %s\n", item.ReportFile)
				}
				if item.DataFile != "" {
					fmt.Fprintf(out, "  Data:       %s\n", item.DataFile)
				}
				if item.ErrorMessage != "" {
					fmt.Fprintf(out, "  Error:      %s\n", item.ErrorMessage)
				}
				return nil
			})
		},
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ITEM_ID",
		Short: "Remove a single queue item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}
			return ctx.withStore(func(store *queue.Store) error {
				removed, err := store.Remove(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("queue item %d not found", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed item %d\n", id)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var clearCompleted bool
	var clearFailed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearCompleted && clearFailed {
				return errors.New("specify only one of --completed or --failed")
			}
			return ctx.withStore(func(store *queue.Store) error {
				out := cmd.OutOrStdout()
				var removed int64
				var err error
				switch {
				case clearCompleted:
					removed, err = store.ClearCompleted(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Cleared %d completed items\n", removed)
				case clearFailed:
					removed, err = store.ClearFailed(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Cleared %d failed items\n", removed)
				default:
					removed, err = store.Clear(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Cleared %d queue items\n", removed)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearCompleted, "completed", false, "Remove only completed items")
	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove only failed items")
	return cmd
}

func newQueueResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-stuck",
		Short: "Return in-flight items to their stage start",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				updated, err := store.ResetStuckProcessing(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %d items\n", updated)
				return nil
			})
		},
	}
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [itemID...]",
		Short: "Retry failed analyses",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid item id %q", arg)
				}
				ids = append(ids, id)
			}

			return ctx.withStore(func(store *queue.Store) error {
				out := cmd.OutOrStdout()
				if len(ids) == 0 {
					updated, err := store.RetryFailed(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Retried %d failed items\n", updated)
					return nil
				}

				items, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				itemsByID := make(map[int64]*queue.Item, len(items))
				for _, item := range items {
					itemsByID[item.ID] = item
				}

				for _, id := range ids {
					item, ok := itemsByID[id]
					if !ok {
						fmt.Fprintf(out, "Item %d not found\n", id)
						continue
					}
					if item.Status != queue.StatusFailed {
						fmt.Fprintf(out, "Item %d is not in failed state\n", id)
						continue
					}
					updated, err := store.RetryFailed(cmd.Context(), id)
					if err != nil {
						return err
					}
					if updated > 0 {
						fmt.Fprintf(out, "Item %d reset for retry\n", id)
					} else {
						fmt.Fprintf(out, "Item %d is not in failed state\n", id)
					}
				}
				return nil
			})
		},
	}
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show queue health summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Total: %d\nPending: %d\nProcessing: %d\nFailed: %d\nCompleted: %d\n",
					health.Total,
					health.Pending,
					health.Processing,
					health.Failed,
					health.Completed,
				)
				return nil
			})
		},
	}
}
