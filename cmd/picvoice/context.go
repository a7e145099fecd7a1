package main

import (
	"context"
	"fmt"

	"picvoice/internal/config"
	"picvoice/internal/store"
)

// commandContext carries lazily loaded configuration between commands.
type commandContext struct {
	configFlag *string

	cfg        *config.Config
	configPath string
	fromFile   bool
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := ""
	if c.configFlag != nil {
		path = *c.configFlag
	}
	cfg, resolvedPath, exists, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	c.configPath = resolvedPath
	c.fromFile = exists
	return cfg, nil
}

// withStore opens the metadata store for the duration of fn.
func (c *commandContext) withStore(ctx context.Context, fn func(*store.Store, *store.User) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	user, err := st.GetOrCreateUser(ctx, cfg.Account.Email)
	if err != nil {
		return fmt.Errorf("resolve account: %w", err)
	}
	return fn(st, user)
}
