// Good Old Galaxy Core
// Copyright (c) 2026 The Good Old Galaxy Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Good Old Galaxy Core.
//
// Good Old Galaxy Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Good Old Galaxy Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Good Old Galaxy Core.  If not, see <http://www.gnu.org/licenses/>.

// Package cli wires the library components into the galaxy command.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goodoldgalaxy/galaxy-core/internal/telemetry"
	"github.com/goodoldgalaxy/galaxy-core/pkg/catalog"
	"github.com/goodoldgalaxy/galaxy-core/pkg/config"
	"github.com/goodoldgalaxy/galaxy-core/pkg/database/librarydb"
	"github.com/goodoldgalaxy/galaxy-core/pkg/downloads"
	"github.com/goodoldgalaxy/galaxy-core/pkg/helpers"
	"github.com/goodoldgalaxy/galaxy-core/pkg/helpers/command"
	"github.com/goodoldgalaxy/galaxy-core/pkg/installer"
	"github.com/goodoldgalaxy/galaxy-core/pkg/launcher"
	"github.com/goodoldgalaxy/galaxy-core/pkg/procscan"
	"github.com/goodoldgalaxy/galaxy-core/pkg/service"
	"github.com/goodoldgalaxy/galaxy-core/pkg/service/broker"
	"github.com/goodoldgalaxy/galaxy-core/pkg/shortcuts"
	"github.com/goodoldgalaxy/galaxy-core/pkg/supervisor"
	"github.com/rs/zerolog/log"
)

// settleTimeout bounds how long Close waits for running pipelines to
// unwind after their downloads are cancelled.
const settleTimeout = 5 * time.Second

type Options struct {
	// CatalogPath is a JSON product export. Without one the catalog is
	// empty and only titles already in the library can be used.
	CatalogPath string
	Verbose     bool
}

// App is a fully wired library. Close must be called when done.
type App struct {
	Config  *config.Instance
	Manager *service.Manager
	Catalog catalog.Client
	Broker  *broker.Broker
	db      *librarydb.LibraryDB
	cancel  context.CancelFunc
	Dirs    helpers.Dirs
}

// Setup creates the directories, config, logging, error reporting and
// database, then loads the library.
func Setup(ctx context.Context, opts Options) (*App, error) {
	dirs := helpers.DefaultDirs()
	if err := helpers.EnsureDirectories(dirs); err != nil {
		return nil, fmt.Errorf("error creating directories: %w", err)
	}

	cfg, err := config.NewConfig(dirs.Config, config.BaseDefaults())
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	var writers []io.Writer
	if opts.Verbose {
		writers = []io.Writer{os.Stderr}
	}
	if err := helpers.InitLogging(dirs, cfg.DebugLogging() || opts.Verbose, writers); err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	if err := telemetry.Init(cfg.ErrorReporting(), config.AppVersion, cfg.InstallDir()); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	client, err := loadCatalog(opts.CatalogPath)
	if err != nil {
		telemetry.Close()
		return nil, err
	}

	db, err := librarydb.Open(ctx, dirs.DatabasePath())
	if err != nil {
		telemetry.Close()
		return nil, fmt.Errorf("error opening library database: %w", err)
	}

	cmd := &command.RealExecutor{}
	pipeline := installer.NewPipeline(cfg, dirs, cmd, shortcuts.NewManager())

	var mgr *service.Manager
	sup := supervisor.New(
		cfg, cmd,
		launcher.NewResolver(),
		procscan.NewSuccessorDetector(procscan.DefaultLister()),
		supervisor.WithSessionHook(func(s supervisor.Session) {
			mgr.RecordSession(s)
		}),
	)

	appCtx, cancel := context.WithCancel(ctx)
	mgr, ns := service.NewManager(appCtx, service.Deps{
		Settings:   cfg,
		Catalog:    client,
		Store:      db,
		Installer:  pipeline,
		Launcher:   sup,
		Downloader: downloads.New(),
		Dirs:       dirs,
	})

	b := broker.NewBroker(appCtx, ns)
	b.Start()

	if err := mgr.Load(appCtx); err != nil {
		cancel()
		if closeErr := db.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing library database")
		}
		telemetry.Close()
		return nil, fmt.Errorf("error loading library: %w", err)
	}

	return &App{
		Config:  cfg,
		Manager: mgr,
		Catalog: client,
		Broker:  b,
		db:      db,
		cancel:  cancel,
		Dirs:    dirs,
	}, nil
}

func loadCatalog(path string) (catalog.Client, error) {
	if path == "" {
		return catalog.NewStaticClient(nil)
	}
	client, err := catalog.LoadStaticClient(path)
	if err != nil {
		return nil, fmt.Errorf("error loading catalog: %w", err)
	}
	return client, nil
}

// Close cancels anything still downloading, waits for the library to
// settle and closes the database.
func (a *App) Close() error {
	a.cancel()
	if !waitIdle(a.Manager, settleTimeout) {
		log.Warn().Msg("library did not settle before shutdown")
	}
	a.Broker.Stop()
	telemetry.Close()
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("error closing library database: %w", err)
	}
	return nil
}
