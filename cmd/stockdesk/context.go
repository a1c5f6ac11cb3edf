package main

import (
	"context"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"stockdesk/internal/api"
	"stockdesk/internal/apiclient"
	"stockdesk/internal/config"
	"stockdesk/internal/queue"
)

type commandContext struct {
	apiFlag    *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(apiFlag, configFlag *string) *commandContext {
	return &commandContext{
		apiFlag:    apiFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) apiAddr() string {
	if c.apiFlag != nil {
		if addr := strings.TrimSpace(*c.apiFlag); addr != "" {
			return addr
		}
	}
	if cfg := c.configValue(); cfg != nil {
		return cfg.Paths.APIBind
	}
	return ""
}

func (c *commandContext) daemonClient() *apiclient.Client {
	addr := c.apiAddr()
	if addr == "" {
		return nil
	}
	var token string
	if cfg := c.configValue(); cfg != nil {
		token = cfg.Paths.APIToken
	}
	return apiclient.New(addr, apiclient.WithToken(token))
}

// daemonStatus probes the daemon API. A nil status means the daemon is not
// reachable and commands should fall back to direct store access.
func (c *commandContext) daemonStatus(ctx context.Context) *api.DaemonStatus {
	client := c.daemonClient()
	if client == nil {
		return nil
	}
	status, err := client.Status(ctx)
	if err != nil {
		return nil
	}
	return status
}

func (c *commandContext) withStore(fn func(*queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
