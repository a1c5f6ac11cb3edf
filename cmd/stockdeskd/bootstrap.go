package main

import (
	"log/slog"

	"stockdesk/internal/config"
	"stockdesk/internal/download"
	"stockdesk/internal/organizer"
	"stockdesk/internal/queue"
	"stockdesk/internal/screening"
	"stockdesk/internal/workflow"
)

type stageConfigurer interface {
	ConfigureStages(workflow.StageSet)
}

func configureStages(cfgr stageConfigurer, cfg *config.Config, store *queue.Store, logger *slog.Logger) error {
	if cfgr == nil || cfg == nil {
		return nil
	}

	screener, err := screening.NewScreener(cfg, store, logger)
	if err != nil {
		return err
	}
	downloader, err := download.NewDownloader(cfg, store, logger)
	if err != nil {
		return err
	}

	cfgr.ConfigureStages(workflow.StageSet{
		Screener:   screener,
		Downloader: downloader,
		Organizer:  organizer.NewOrganizer(cfg, store, logger),
	})
	return nil
}
