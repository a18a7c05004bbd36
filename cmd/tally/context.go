package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"tally/internal/admission"
	"tally/internal/clock"
	"tally/internal/config"
	"tally/internal/identity"
	"tally/internal/logging"
	"tally/internal/notify"
	"tally/internal/ocr"
	"tally/internal/session"
	"tally/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
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

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}

// app bundles the wired services behind one capture run.
type app struct {
	cfg     *config.Config
	store   *store.Store
	manager *session.Manager
	coord   *admission.Coordinator
	notify  notify.Service
}

// buildApp assembles the full capture pipeline against the given member
// directory. The caller owns the returned store and must Close it.
func (c *commandContext) buildApp(directory identity.Directory) (*app, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open result store: %w", err)
	}

	notifier := notify.NewService(cfg)
	clk := clock.System()
	coord := admission.NewCoordinator(cfg, clk, notifier, logger)
	engine := ocr.NewTesseractEngine(cfg.OCR)
	manager := session.NewManager(cfg, coord, engine, directory, st, notifier, clk, logger)

	return &app{
		cfg:     cfg,
		store:   st,
		manager: manager,
		coord:   coord,
		notify:  notifier,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
