package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"packagekit/internal/backend"
	"packagekit/internal/bus"
	"packagekit/internal/config"
	"packagekit/internal/control"
	"packagekit/internal/logging"
	"packagekit/internal/netstate"
	"packagekit/internal/spawn"
)

// busDialer replaces the real message bus when set; tests install a fake.
var busDialer func(address string) (bus.Backend, error)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	jsonFlag     *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, logLevelFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		jsonFlag:     jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.TrimSpace(*c.logLevelFlag)
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

// withControl acquires the shared daemon handle for the duration of fn.
func (c *commandContext) withControl(fn func(*control.Control) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	opts := bus.OptionsFromConfig(cfg.Bus, c.loggerValue())
	opts.Dial = busDialer
	ctl, err := control.Acquire(control.Options{Bus: opts, Logger: c.loggerValue()})
	if err != nil {
		return err
	}
	defer ctl.Release()
	return fn(ctl)
}

// withBackend builds the local helper supervisor and network monitor for fn.
func (c *commandContext) withBackend(ctx context.Context, fn func(*backend.Backend, *netstate.Monitor) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger := c.loggerValue()
	monitor := netstate.New(cfg, netstate.WithLogger(logger))
	if err := monitor.Start(ctx); err != nil {
		return err
	}
	defer monitor.Stop()

	sup, err := spawn.New(cfg, spawn.WithNetwork(monitor), spawn.WithLogger(logger))
	if err != nil {
		return err
	}
	return fn(backend.New(sup, logger), monitor)
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
