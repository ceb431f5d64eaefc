// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/lostfound/internal/config"
	"github.com/tomtom215/lostfound/internal/database"
	"github.com/tomtom215/lostfound/internal/logging"
)

type commandContext struct {
	dbFlag      *string
	jsonFlag    *bool
	verboseFlag *bool

	cfg *config.Config
}

func newCommandContext(dbFlag *string, jsonFlag, verboseFlag *bool) *commandContext {
	return &commandContext{dbFlag: dbFlag, jsonFlag: jsonFlag, verboseFlag: verboseFlag}
}

// ensureConfig loads configuration once and routes logs to the command's
// stderr.
func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.dbFlag != nil && *c.dbFlag != "" {
		cfg.Database.Path = *c.dbFlag
	}

	level := "warn"
	if c.verboseFlag != nil && *c.verboseFlag {
		level = cfg.Logging.Level
	}
	logging.Init(logging.Config{
		Level:     level,
		Format:    "auto",
		Timestamp: true,
		Output:    cmd.ErrOrStderr(),
	})

	c.cfg = cfg
	return cfg, nil
}

// openDB opens the configured store. The caller closes it.
func (c *commandContext) openDB(cmd *cobra.Command) (*database.DB, *config.Config, error) {
	cfg, err := c.ensureConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
	}
	return db, cfg, nil
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}
