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

package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/goodoldgalaxy/galaxy-core/pkg/database/librarydb"
	"github.com/goodoldgalaxy/galaxy-core/pkg/installer"
	"github.com/goodoldgalaxy/galaxy-core/pkg/library"
	"github.com/goodoldgalaxy/galaxy-core/pkg/service/notifications"
	"github.com/goodoldgalaxy/galaxy-core/pkg/supervisor"
	"github.com/rs/zerolog/log"
)

// InstallArchive installs a title from an installer that is already on
// disk, skipping the download.
func (m *Manager) InstallArchive(ctx context.Context, id int64, archivePath string) error {
	t, err := m.Title(id)
	if err != nil {
		return err
	}
	if err := library.ValidateTransition(t.State(), library.StateInstalling); err != nil {
		return fmt.Errorf("%s: %w", t.Name, err)
	}
	if err := m.acquire(t, opPipeline); err != nil {
		return err
	}
	defer m.release(t.ID)

	return m.runInstall(ctx, t, archivePath)
}

// Update installs archivePath over an UPDATABLE title.
func (m *Manager) Update(ctx context.Context, id int64, archivePath string) error {
	t, err := m.Title(id)
	if err != nil {
		return err
	}
	if err := library.ValidateTransition(t.State(), library.StateUpdateQueued); err != nil {
		return fmt.Errorf("%s: %w", t.Name, err)
	}
	if err := m.acquire(t, opPipeline); err != nil {
		return err
	}
	defer m.release(t.ID)

	if err := m.transition(t, library.StateUpdateQueued, ""); err != nil {
		return err
	}
	return m.runUpdate(ctx, t, archivePath)
}

// installDirFor is where t goes: its own folder in the library root, or
// the folder of its game for a DLC.
func (m *Manager) installDirFor(t *library.Title) (string, error) {
	if t.Kind != library.KindDLC {
		return filepath.Join(m.deps.Settings.InstallDir(), t.DirName()), nil
	}
	parent, err := m.Title(t.ParentID)
	if err != nil {
		return "", fmt.Errorf("DLC %s: %w", t.Name, err)
	}
	dir := parent.InstallDir()
	if dir == "" {
		return "", fmt.Errorf("DLC %s: %s: %w", t.Name, parent.Name, ErrNotInstalled)
	}
	return dir, nil
}

func (m *Manager) runInstall(ctx context.Context, t *library.Title, archivePath string) error {
	dir, err := m.installDirFor(t)
	if err != nil {
		m.fail(t, err)
		m.revertDownload(t)
		return err
	}
	if err := m.transition(t, library.StateInstalling, dir); err != nil {
		return err
	}

	source := m.deps.Installer.Source(dir, archivePath)
	if err := m.deps.Installer.Install(ctx, t, source); err != nil {
		m.fail(t, err)
		m.logTransition(t, library.StateDownloadable)
		return err
	}
	m.logTransition(t, library.StateInstalled)

	if t.Kind == library.KindGame && m.deps.Settings.InstallDLCs() {
		m.installDLCs(ctx, t)
	}
	return nil
}

func (m *Manager) runUpdate(ctx context.Context, t *library.Title, archivePath string) error {
	if err := m.transition(t, library.StateUpdating, ""); err != nil {
		return err
	}

	source := m.deps.Installer.Source(t.InstallDir(), archivePath)
	if err := m.deps.Installer.Update(ctx, t, source); err != nil {
		m.fail(t, err)
		m.logTransition(t, library.StateUpdatable)
		return err
	}
	m.logTransition(t, library.StateInstalled)
	return nil
}

// installDLCs downloads every DLC of game that is not installed yet. A DLC
// that can't be fetched is skipped and does not affect the game.
func (m *Manager) installDLCs(ctx context.Context, game *library.Title) {
	for _, dlc := range game.DLCs {
		if dlc.State() != library.StateDownloadable {
			continue
		}
		dlc.Platform = game.Platform
		dlc.Language = game.Language
		if err := m.startDownload(ctx, dlc, false); err != nil {
			log.Warn().Err(err).Msgf("skipping DLC %s of %s", dlc.Name, game.Name)
		}
	}
}

// Uninstall removes an installed game together with its DLCs.
func (m *Manager) Uninstall(ctx context.Context, id int64) error {
	t, err := m.Title(id)
	if err != nil {
		return err
	}
	if t.Kind == library.KindDLC {
		return fmt.Errorf("%s: %w", t.Name, ErrDLCUninstall)
	}
	if !t.State().HasInstallDir() {
		return fmt.Errorf("%s is %s: %w", t.Name, t.State(), ErrNotInstalled)
	}
	if err := library.ValidateTransition(t.State(), library.StateUninstalling); err != nil {
		return fmt.Errorf("%s: %w", t.Name, err)
	}
	if err := m.acquire(t, opPipeline); err != nil {
		return err
	}
	defer m.release(t.ID)

	if err := m.transition(t, library.StateUninstalling, ""); err != nil {
		return err
	}
	if err := m.deps.Installer.Uninstall(ctx, t); err != nil {
		log.Warn().Err(err).Msgf("uninstall of %s was incomplete", t.Name)
	}

	for _, dlc := range t.DLCs {
		if !dlc.State().HasInstallDir() {
			continue
		}
		m.logTransition(dlc, library.StateUninstalling)
		dlc.ClearInstall()
		m.logTransition(dlc, library.StateDownloadable)
	}

	return m.transition(t, library.StateDownloadable, "")
}

func playable(t *library.Title) error {
	switch t.State() {
	case library.StateInstalled, library.StateUpdatable:
		return nil
	default:
		return fmt.Errorf("%s is %s: %w", t.Name, t.State(), ErrNotInstalled)
	}
}

// Launch starts an installed title and reports whether it came up.
func (m *Manager) Launch(ctx context.Context, id int64) error {
	t, err := m.Title(id)
	if err != nil {
		return err
	}
	if err := playable(t); err != nil {
		return err
	}
	if err := m.acquire(t, opSupervisor); err != nil {
		return err
	}
	defer m.release(t.ID)

	err = m.deps.Launcher.Launch(ctx, t)
	m.persist(t)
	if err != nil {
		m.fail(t, err)
		return err
	}
	return nil
}

// RecordSession stores a finished launch attempt. It is meant to be hooked
// into the supervisor.
func (m *Manager) RecordSession(s supervisor.Session) {
	session := librarydb.NewSession(s.TitleID, s.Start, s.Duration, s.Err == nil)
	if err := m.deps.Store.AddSession(m.ctx, session); err != nil {
		log.Error().Err(err).Msgf("failed to save play session for %d", s.TitleID)
	}

	name := ""
	if t, err := m.Title(s.TitleID); err == nil {
		name = t.Name
	}
	notifications.Session(m.Notifications, s.TitleID, name, fmt.Sprintf("session of %s", s.Duration))
}

// ConfigureCompat opens the Wine configuration of an installed Windows
// title.
func (m *Manager) ConfigureCompat(ctx context.Context, id int64) error {
	t, err := m.Title(id)
	if err != nil {
		return err
	}
	if err := playable(t); err != nil {
		return err
	}
	if t.Platform != library.PlatformWindows {
		return fmt.Errorf("%s: %w", t.Name, installer.ErrPlatformUnsupported)
	}
	return m.deps.Launcher.ConfigureCompat(ctx, t)
}

// CheckUpdates asks the catalog for the newest version of every INSTALLED
// game and marks those with a newer one UPDATABLE. It returns the ids it
// marked; catalog failures are joined into the error without stopping the
// scan.
func (m *Manager) CheckUpdates(ctx context.Context) ([]int64, error) {
	var (
		updatable []int64
		errs      []error
	)
	for _, t := range m.Titles() {
		if t.State() != library.StateInstalled {
			continue
		}
		product, err := m.deps.Catalog.Product(ctx, t.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		lang := t.Language
		if lang == "" {
			lang = m.deps.Settings.Lang()
		}
		inst, err := product.SelectInstaller(t.Platform, lang)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		t.SetAvailableVersion(inst.Version)
		if !t.NeedsUpdate() {
			m.persist(t)
			continue
		}
		if t.Updates() == 0 {
			t.SetUpdates(1)
		}
		m.logTransition(t, library.StateUpdatable)
		updatable = append(updatable, t.ID)
	}
	return updatable, errors.Join(errs...)
}
