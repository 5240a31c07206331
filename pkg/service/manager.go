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

// Package service is the library manager. It owns every title, serialises
// the operations on each one, drives the lifecycle state machine and
// publishes what happens as notifications.
package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/goodoldgalaxy/galaxy-core/pkg/catalog"
	"github.com/goodoldgalaxy/galaxy-core/pkg/database/librarydb"
	"github.com/goodoldgalaxy/galaxy-core/pkg/downloads"
	"github.com/goodoldgalaxy/galaxy-core/pkg/helpers"
	"github.com/goodoldgalaxy/galaxy-core/pkg/helpers/syncutil"
	"github.com/goodoldgalaxy/galaxy-core/pkg/library"
	"github.com/goodoldgalaxy/galaxy-core/pkg/service/notifications"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownTitle   = errors.New("unknown title")
	ErrNotInstalled   = errors.New("title is not installed")
	ErrNotDownloading = errors.New("title has no download in progress")
	ErrDLCUninstall   = errors.New("DLCs are removed together with their game")
)

// Settings are the options the manager reads at call time.
type Settings interface {
	InstallDir() string
	InstallDLCs() bool
	Lang() string
	CurrentDownload() int64
	SetCurrentDownload(id int64)
	Save() error
}

type Store interface {
	SaveTitle(ctx context.Context, rec library.Record) error
	LoadTitles(ctx context.Context) ([]library.Record, error)
	AddSession(ctx context.Context, s librarydb.Session) error
}

type Installer interface {
	Install(ctx context.Context, title *library.Title, archivePath string) error
	Update(ctx context.Context, title *library.Title, archivePath string) error
	Uninstall(ctx context.Context, title *library.Title) error
	Source(installDir, archivePath string) string
}

type Launcher interface {
	Launch(ctx context.Context, title *library.Title) error
	ConfigureCompat(ctx context.Context, title *library.Title) error
}

type Downloader interface {
	Start(ctx context.Context, reqs []downloads.Request, cb downloads.Callbacks) (*downloads.Handle, error)
}

// Deps are the collaborators a Manager drives.
type Deps struct {
	Settings   Settings
	Catalog    catalog.Client
	Store      Store
	Installer  Installer
	Launcher   Launcher
	Downloader Downloader
	Dirs       helpers.Dirs
}

// Manager holds the library.
//
// LOCKING RULES: mu protects titles and busy. Titles carry their own lock.
// Notifications are sent after mu is released: lock → modify → copy →
// unlock → send.
type Manager struct {
	ctx           context.Context
	deps          Deps
	titles        map[int64]*library.Title
	busy          map[int64]operation
	Notifications chan<- notifications.Notification
	mu            syncutil.RWMutex
}

// NewManager returns an empty manager and the channel its notifications
// are delivered on. ctx bounds background work such as downloads.
//
//nolint:gocritic // deps copied once at construction
func NewManager(ctx context.Context, deps Deps) (mgr *Manager, notificationCh <-chan notifications.Notification) {
	ns := make(chan notifications.Notification, 500)
	return &Manager{
		ctx:           ctx,
		deps:          deps,
		titles:        make(map[int64]*library.Title),
		busy:          make(map[int64]operation),
		Notifications: ns,
	}, ns
}

// Load restores the library from the store. Titles caught in the middle
// of an operation when the process last stopped are moved back to the
// nearest resting state.
func (m *Manager) Load(ctx context.Context) error {
	recs, err := m.deps.Store.LoadTitles(ctx)
	if err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}

	loaded := make(map[int64]*library.Title, len(recs))
	for i := range recs {
		t, err := library.Restore(recs[i])
		if err != nil {
			log.Error().Err(err).Msg("skipping invalid library record")
			continue
		}
		loaded[t.ID] = t
	}
	for _, t := range loaded {
		if t.Kind != library.KindDLC {
			continue
		}
		parent, ok := loaded[t.ParentID]
		if !ok {
			log.Warn().Msgf("DLC %s (%d) has no parent %d", t.Name, t.ID, t.ParentID)
			continue
		}
		parent.DLCs = append(parent.DLCs, t)
	}
	for _, t := range loaded {
		slices.SortFunc(t.DLCs, byID)
	}

	m.mu.Lock()
	m.titles = loaded
	m.mu.Unlock()

	for _, t := range loaded {
		m.settle(t)
	}

	log.Info().Msgf("loaded %d titles", len(loaded))
	return nil
}

func (m *Manager) settle(t *library.Title) {
	var path []library.State
	switch t.State() {
	case library.StateQueued, library.StateDownloading, library.StateInstalling, library.StateUninstalling:
		path = []library.State{library.StateDownloadable}
	case library.StateUpdateQueued, library.StateUpdateDownloading:
		path = []library.State{library.StateInstalled, library.StateUpdatable}
	case library.StateUpdating:
		path = []library.State{library.StateUpdatable}
	case library.StateDownloadable, library.StateInstalled, library.StateUpdatable:
		return
	}

	log.Warn().Msgf("%s (%d) was interrupted while %s", t.Name, t.ID, t.State())
	for _, to := range path {
		m.logTransition(t, to)
	}
	if t.State() == library.StateDownloadable {
		t.ClearInstall()
		m.persist(t)
	}
}

// Add registers a title and its DLCs. A title that is already known is
// returned instead.
func (m *Manager) Add(t *library.Title) *library.Title {
	m.mu.Lock()
	if existing, ok := m.titles[t.ID]; ok {
		m.mu.Unlock()
		return existing
	}
	m.titles[t.ID] = t
	for _, dlc := range t.DLCs {
		dlc.ParentID = t.ID
		m.titles[dlc.ID] = dlc
	}
	m.mu.Unlock()

	m.persist(t)
	for _, dlc := range t.DLCs {
		m.persist(dlc)
	}
	return t
}

func (m *Manager) Title(id int64) (*library.Title, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.titles[id]
	if !ok {
		return nil, fmt.Errorf("%d: %w", id, ErrUnknownTitle)
	}
	return t, nil
}

// Titles lists the games in the library ordered by id. DLCs hang off their
// game.
func (m *Manager) Titles() []*library.Title {
	m.mu.RLock()
	out := make([]*library.Title, 0, len(m.titles))
	for _, t := range m.titles {
		if t.Kind != library.KindDLC {
			out = append(out, t)
		}
	}
	m.mu.RUnlock()
	slices.SortFunc(out, byID)
	return out
}

func byID(a, b *library.Title) int {
	return cmp.Compare(a.ID, b.ID)
}

func (m *Manager) persist(t *library.Title) {
	if err := m.deps.Store.SaveTitle(m.ctx, t.Record()); err != nil {
		log.Error().Err(err).Msgf("failed to save %s (%d)", t.Name, t.ID)
	}
}

// transition moves t to state to, saves it and announces the change.
func (m *Manager) transition(t *library.Title, to library.State, installDir string) error {
	if err := t.Transition(to, installDir); err != nil {
		return err
	}
	m.persist(t)
	notifications.StateChanged(m.Notifications, t.ID, t.Name, to)
	return nil
}

// logTransition is transition for paths where a refused move is not the
// caller's problem.
func (m *Manager) logTransition(t *library.Title, to library.State) {
	if err := m.transition(t, to, ""); err != nil {
		log.Warn().Err(err).Msgf("failed to move %s to %s", t.Name, to)
	}
}

// fail reports err to the user.
func (m *Manager) fail(t *library.Title, err error) {
	notifications.Failed(m.Notifications, t.ID, t.Name, UserMessage(err))
}

func (m *Manager) setCurrentDownload(id int64) {
	m.deps.Settings.SetCurrentDownload(id)
	if err := m.deps.Settings.Save(); err != nil {
		log.Error().Err(err).Msg("failed to save download marker")
	}
}

// clearCurrentDownload drops the resume marker if it points at t.
func (m *Manager) clearCurrentDownload(t *library.Title) {
	if m.deps.Settings.CurrentDownload() != t.ID {
		return
	}
	m.setCurrentDownload(0)
}
