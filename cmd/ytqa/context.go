package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"ytqa/internal/config"
	"ytqa/internal/logging"
	"ytqa/internal/pipeline"
	"ytqa/internal/session"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		if exists {
			c.configPath = resolved
		}
	})
	return c.config, c.configErr
}

// ensureLogger builds the process logger once and prunes expired log files.
// When console is set, records are mirrored to stderr regardless of --verbose.
func (c *commandContext) ensureLogger(console bool) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		if c.verbose != nil && *c.verbose {
			console = true
		}
		logger, err := logging.NewFromConfig(cfg, console)
		if err != nil {
			c.loggerErr = err
			return
		}
		logging.PruneLogDir(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays)
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// withRuntime builds the production pipeline, runs fn, and releases the
// runtime's resources.
func (c *commandContext) withRuntime(ctx context.Context, console bool, fn func(*pipeline.Runtime, *slog.Logger) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger(console)
	if err != nil {
		return err
	}
	rt, err := pipeline.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			logging.WarnWithContext(logger, "runtime close failed", "runtime_close",
				logging.Error(cerr),
				logging.String(logging.FieldImpact, "helper script or cache handle may linger until exit"),
			)
		}
	}()
	return fn(rt, logger)
}

func (c *commandContext) sessionManager() (*session.Manager, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return session.NewManager(cfg.SessionsDir()), nil
}

func addSessionFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "session", "s", session.DefaultID, "Session identifier")
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
