package config

const (
	defaultTargetDir                 = "~/Documents/StockReports"
	defaultStagingDir                = "~/.local/share/stockdesk/staging"
	defaultLogDir                    = "~/.local/share/stockdesk/logs"
	defaultAPIBind                   = "127.0.0.1:7319"
	defaultScreenerScript            = "~/.local/share/stockdesk/scripts/screener_report"
	defaultDownloaderScript          = "~/.local/share/stockdesk/scripts/candle_download"
	defaultScriptTimeoutSeconds      = 900
	defaultLogFormat                 = "console"
	defaultLogLevel                  = "info"
	defaultWorkflowHeartbeatInterval = 15
	defaultWorkflowHeartbeatTimeout  = 120
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TargetDir:  defaultTargetDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Scripts: Scripts{
			Screener:       defaultScreenerScript,
			Downloader:     defaultDownloaderScript,
			TimeoutSeconds: defaultScriptTimeoutSeconds,
		},
		Workflow: Workflow{
			QueuePollInterval:  5,
			ErrorRetryInterval: 10,
			HeartbeatInterval:  defaultWorkflowHeartbeatInterval,
			HeartbeatTimeout:   defaultWorkflowHeartbeatTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			Completion:     true,
			Organization:   true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
