package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"stockdesk/internal/apiclient"
	"stockdesk/internal/download"
	"stockdesk/internal/logging"
	"stockdesk/internal/notifications"
	"stockdesk/internal/organizer"
	"stockdesk/internal/queue"
	"stockdesk/internal/screening"
	"stockdesk/internal/stageexec"
)

const pollInterval = time.Second

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var local bool
	var noWait bool
	var targetDir string

	cmd := &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "Queue a stock analysis and watch its progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, err := queue.ValidateSymbol(args[0])
			if err != nil {
				return err
			}

			if !local {
				if status := ctx.daemonStatus(cmd.Context()); status != nil && status.Running {
					return analyzeViaDaemon(cmd, ctx.daemonClient(), symbol, targetDir, noWait)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon not reachable; running analysis locally")
			}
			return analyzeLocally(cmd, ctx, symbol, targetDir)
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Run the analysis in-process instead of via the daemon")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Queue the analysis without waiting for completion")
	cmd.Flags().StringVar(&targetDir, "target-dir", "", "Directory to file outputs under (defaults to paths.target_dir)")
	return cmd
}

func analyzeViaDaemon(cmd *cobra.Command, client *apiclient.Client, symbol, targetDir string, noWait bool) error {
	out := cmd.OutOrStdout()
	resp, err := client.Analyze(cmd.Context(), symbol, targetDir)
	if err != nil {
		return err
	}
	if resp.Created {
		fmt.Fprintf(out, "Queued analysis #%d for %s\n", resp.Item.ID, resp.Item.Symbol)
	} else {
		fmt.Fprintf(out, "Analysis #%d for %s is already in flight\n", resp.Item.ID, resp.Item.Symbol)
	}
	if noWait {
		return nil
	}
	return watchItem(cmd.Context(), out, client, resp.Item.ID, symbol)
}

func watchItem(ctx context.Context, out io.Writer, client *apiclient.Client, id int64, symbol string) error {
	bar := newAnalysisBar(out, symbol)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		item, err := client.QueueItem(ctx, id)
		if err != nil {
			if errors.Is(err, apiclient.ErrNotFound) {
				return fmt.Errorf("queue item %d disappeared", id)
			}
			return err
		}

		if item.Progress.Stage != "" {
			bar.Describe(item.Progress.Stage)
		}
		_ = bar.Set(int(item.Progress.Percent))

		switch queue.Status(item.Status) {
		case queue.StatusCompleted:
			_ = bar.Finish()
			fmt.Fprintln(out)
			printArtifacts(out, item.Symbol, item.ReportFile, item.DataFile)
			return nil
		case queue.StatusFailed:
			fmt.Fprintln(out)
			if item.ErrorMessage != "" {
				return fmt.Errorf("analysis failed: %s", item.ErrorMessage)
			}
			return errors.New("analysis failed")
		}
	}
}

func analyzeLocally(cmd *cobra.Command, cmdCtx *commandContext, symbol, targetDir string) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	if targetDir == "" {
		targetDir = cfg.Paths.TargetDir
	}
	out := cmd.OutOrStdout()

	return cmdCtx.withStore(func(store *queue.Store) error {
		ctx := cmd.Context()
		if existing, err := store.FindActiveBySymbol(ctx, symbol); err != nil {
			return err
		} else if existing != nil {
			return fmt.Errorf("analysis #%d for %s is already in flight; use the daemon to watch it", existing.ID, symbol)
		}

		item, err := store.NewAnalysis(ctx, symbol, targetDir)
		if err != nil {
			return err
		}

		logger := logging.NewNop()
		notifier := notifications.NewService(cfg)

		screener, err := screening.NewScreener(cfg, store, logger)
		if err != nil {
			return err
		}
		downloader, err := download.NewDownloader(cfg, store, logger)
		if err != nil {
			return err
		}
		organize := organizer.NewOrganizerWithDependencies(cfg, store, logger, notifier)

		stages := []struct {
			name       string
			handler    stageexec.Handler
			processing queue.Status
			done       queue.Status
		}{
			{"screening", screener, queue.StatusScreening, queue.StatusScreened},
			{"download", downloader, queue.StatusDownloading, queue.StatusDownloaded},
			{"organizing", organize, queue.StatusOrganizing, queue.StatusCompleted},
		}

		bar := newAnalysisBar(out, symbol)
		for i, st := range stages {
			bar.Describe(st.processing.DisplayLabel())
			err := stageexec.Run(ctx, stageexec.Options{
				Logger:     logger,
				Store:      store,
				Notifier:   notifier,
				Handler:    st.handler,
				StageName:  st.name,
				Processing: st.processing,
				Done:       st.done,
				Item:       item,
			})
			if err != nil {
				fmt.Fprintln(out)
				return fmt.Errorf("analysis failed: %s", item.ErrorMessage)
			}
			_ = bar.Set((i + 1) * 100 / len(stages))
		}
		_ = bar.Finish()
		fmt.Fprintln(out)

		printArtifacts(out, item.Symbol, item.ReportFile, item.DataFile)
		return nil
	})
}

func newAnalysisBar(out io.Writer, symbol string) *progressbar.ProgressBar {
	return progressbar.NewOptions(100,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(fmt.Sprintf("Analyzing %s", symbol)),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func printArtifacts(out io.Writer, symbol, reportFile, dataFile string) {
	fmt.Fprintf(out, "Analysis for %s complete\n", symbol)
	artifacts := []struct {
		label string
		path  string
	}{
		{"Report", reportFile},
		{"Data", dataFile},
	}
	for _, artifact := range artifacts {
		label, path := artifact.label, artifact.path
		if path == "" {
			continue
		}
		if info, err := os.Stat(path); err == nil {
			fmt.Fprintf(out, "  %s: %s (%s)\n", label, path, humanize.Bytes(uint64(info.Size())))
		} else {
			fmt.Fprintf(out, "  %s: %s\n", label, path)
		}
	}
}
