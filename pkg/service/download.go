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
	"fmt"
	"path/filepath"

	"github.com/goodoldgalaxy/galaxy-core/pkg/downloads"
	"github.com/goodoldgalaxy/galaxy-core/pkg/library"
	"github.com/goodoldgalaxy/galaxy-core/pkg/service/notifications"
	"github.com/rs/zerolog/log"
)

// ArchivePath is where part n of a title's installer is downloaded to.
// The first part is the archive handed to the installer, the others sit
// next to it.
func ArchivePath(dir string, id int64, part int) string {
	if part == 0 {
		return filepath.Join(dir, fmt.Sprintf("%d.bin", id))
	}
	return filepath.Join(dir, fmt.Sprintf("%d-%d.bin", id, part))
}

// StartDownload queues a DOWNLOADABLE title for download. Installation
// follows automatically once every file has arrived.
func (m *Manager) StartDownload(ctx context.Context, id int64) error {
	t, err := m.Title(id)
	if err != nil {
		return err
	}
	if err := library.ValidateTransition(t.State(), library.StateQueued); err != nil {
		return fmt.Errorf("%s: %w", t.Name, err)
	}
	return m.startDownload(ctx, t, false)
}

// StartUpdate downloads the newest installer of an UPDATABLE title and
// installs it over the existing files.
func (m *Manager) StartUpdate(ctx context.Context, id int64) error {
	t, err := m.Title(id)
	if err != nil {
		return err
	}
	if err := library.ValidateTransition(t.State(), library.StateUpdateQueued); err != nil {
		return fmt.Errorf("%s: %w", t.Name, err)
	}
	return m.startDownload(ctx, t, true)
}

// Cancel stops the title's downloads. The state is reverted by the
// download's cancel callback.
func (m *Manager) Cancel(id int64) error {
	t, err := m.Title(id)
	if err != nil {
		return err
	}
	handles := t.Downloads()
	if len(handles) == 0 {
		return fmt.Errorf("%s: %w", t.Name, ErrNotDownloading)
	}
	m.clearCurrentDownload(t)
	for _, h := range handles {
		h.Cancel()
	}
	return nil
}

// ResumePending restarts the download that was in flight when the process
// last stopped.
func (m *Manager) ResumePending(ctx context.Context) error {
	id := m.deps.Settings.CurrentDownload()
	if id == 0 {
		return nil
	}

	t, err := m.Title(id)
	if err != nil {
		log.Warn().Err(err).Msg("dropping download marker")
		m.setCurrentDownload(0)
		return nil
	}

	switch t.State() {
	case library.StateDownloadable:
		log.Info().Msgf("resuming download of %s", t.Name)
		return m.StartDownload(ctx, id)
	case library.StateUpdatable:
		log.Info().Msgf("resuming update of %s", t.Name)
		return m.StartUpdate(ctx, id)
	default:
		m.clearCurrentDownload(t)
		return nil
	}
}

func (m *Manager) startDownload(ctx context.Context, t *library.Title, update bool) error {
	if err := m.acquire(t, opPipeline); err != nil {
		return err
	}

	queued := library.StateQueued
	if update {
		queued = library.StateUpdateQueued
	}
	if err := m.transition(t, queued, ""); err != nil {
		m.release(t.ID)
		return err
	}
	if t.Kind == library.KindGame {
		m.setCurrentDownload(t.ID)
	}

	reqs, err := m.requests(ctx, t, update)
	if err == nil {
		_, err = m.deps.Downloader.Start(m.ctx, reqs, m.callbacks(t, update, reqs[0].Path))
	}
	if err != nil {
		log.Error().Err(err).Msgf("failed to start download of %s", t.Name)
		m.fail(t, err)
		m.revertDownload(t)
		m.release(t.ID)
		return err
	}
	return nil
}

func (m *Manager) requests(ctx context.Context, t *library.Title, update bool) ([]downloads.Request, error) {
	product, err := m.deps.Catalog.Product(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", t.Name, err)
	}

	lang := t.Language
	if lang == "" {
		lang = m.deps.Settings.Lang()
	}
	inst, err := product.SelectInstaller(t.Platform, lang)
	if err != nil {
		return nil, err
	}
	t.SetAvailableVersion(inst.Version)

	dir := m.deps.Dirs.DownloadDir()
	if update {
		dir = m.deps.Dirs.UpdateDir()
	}

	reqs := make([]downloads.Request, 0, len(inst.Files))
	for i, f := range inst.Files {
		url, err := m.deps.Catalog.ResolveDownlink(ctx, f.Downlink)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", f.ID, err)
		}
		reqs = append(reqs, downloads.Request{URL: url, Path: ArchivePath(dir, t.ID, i)})
	}
	return reqs, nil
}

// callbacks run on the download's goroutine. The pipeline guard taken by
// startDownload is released by OnFinish or OnCancel. The handle is
// registered from OnStart so it is on the title before either can run.
func (m *Manager) callbacks(t *library.Title, update bool, archivePath string) downloads.Callbacks {
	return downloads.Callbacks{
		OnStart: func(h *downloads.Handle) {
			t.AddDownload(h)
		},
		OnProgress: func(percent int) {
			switch t.State() {
			case library.StateQueued:
				m.logTransition(t, library.StateDownloading)
			case library.StateUpdateQueued:
				m.logTransition(t, library.StateUpdateDownloading)
			default:
			}
			notifications.Progress(m.Notifications, t.ID, t.Name, percent)
		},
		OnFinish: func() {
			t.ClearDownloads()
			m.clearCurrentDownload(t)
			defer m.release(t.ID)

			var err error
			if update {
				err = m.runUpdate(m.ctx, t, archivePath)
			} else {
				err = m.runInstall(m.ctx, t, archivePath)
			}
			if err != nil {
				log.Error().Err(err).Msgf("failed to install %s", t.Name)
			}
		},
		OnCancel: func() {
			t.ClearDownloads()
			m.revertDownload(t)
			m.release(t.ID)
		},
	}
}

// revertDownload puts a queued or downloading title back where it was
// before the download started. No installer step runs. The pipeline guard
// is left to the operation that took it.
func (m *Manager) revertDownload(t *library.Title) {
	switch t.State() {
	case library.StateQueued, library.StateDownloading:
		m.logTransition(t, library.StateDownloadable)
	case library.StateUpdateQueued, library.StateUpdateDownloading:
		m.logTransition(t, library.StateInstalled)
	default:
	}
	m.clearCurrentDownload(t)
}
