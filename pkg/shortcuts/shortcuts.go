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

// Package shortcuts writes freedesktop launcher entries for installed
// titles, one in the application menu and one on the desktop.
package shortcuts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/xdg"
	"github.com/goodoldgalaxy/galaxy-core/pkg/library"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

const (
	// Vendor prefixes every entry file name.
	Vendor  = "gog_com"
	section = "Desktop Entry"
)

var reUnsafe = regexp.MustCompile(`[^A-Za-z0-9_]+`)

func init() {
	// desktop entries are "Key=Value" with no padding
	ini.PrettyFormat = false
}

// SanitizeName turns a title name into the form used in entry file names.
func SanitizeName(name string) string {
	return reUnsafe.ReplaceAllString(strings.ReplaceAll(name, " ", "_"), "")
}

// FileName is the entry file name for a title.
func FileName(title *library.Title) string {
	return Vendor + "-" + SanitizeName(title.Name) + ".desktop"
}

type Manager struct {
	fs              afero.Fs
	desktopDir      func() (string, error)
	applicationsDir string
}

type Option func(*Manager)

func WithFs(fs afero.Fs) Option {
	return func(m *Manager) {
		m.fs = fs
	}
}

// WithApplicationsDir overrides the menu entry directory.
func WithApplicationsDir(dir string) Option {
	return func(m *Manager) {
		m.applicationsDir = dir
	}
}

// WithDesktopDir overrides how the desktop folder is found. It is called on
// every Create and Remove.
func WithDesktopDir(fn func() (string, error)) Option {
	return func(m *Manager) {
		m.desktopDir = fn
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		fs:              afero.NewOsFs(),
		applicationsDir: filepath.Join(xdg.DataHome, "applications"),
		desktopDir:      userDesktopDir,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func userDesktopDir() (string, error) {
	if xdg.UserDirs.Desktop == "" {
		return "", errors.New("desktop directory not configured")
	}
	return xdg.UserDirs.Desktop, nil
}

// Create writes the menu and desktop entries for a Linux title. Titles on
// other platforms are ignored. A missing desktop folder only skips the
// desktop entry.
func (m *Manager) Create(title *library.Title) error {
	if title.Platform != library.PlatformLinux {
		return nil
	}
	installDir := title.InstallDir()
	if installDir == "" {
		return fmt.Errorf("title %d: %w", title.ID, library.ErrInstallDirRequired)
	}

	play := filepath.Join(installDir, "start.sh")
	menuPath := filepath.Join(m.applicationsDir, FileName(title))
	if err := m.fs.MkdirAll(m.applicationsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", m.applicationsDir, err)
	}
	if err := m.write(menuPath, title, `"`+play+`" ""`); err != nil {
		return err
	}
	log.Debug().Msgf("created menu entry: %s", menuPath)

	desktop, err := m.desktopDir()
	if err != nil {
		log.Warn().Err(err).Msg("skipping desktop entry")
		return nil
	}
	if _, err := m.fs.Stat(desktop); err != nil {
		log.Warn().Err(err).Msgf("skipping desktop entry, no folder at %s", desktop)
		return nil
	}
	desktopPath := filepath.Join(desktop, FileName(title))
	if err := m.write(desktopPath, title, play); err != nil {
		return err
	}
	log.Debug().Msgf("created desktop entry: %s", desktopPath)
	return nil
}

// Remove deletes both entries. Entries that do not exist are not an error.
func (m *Manager) Remove(title *library.Title) error {
	name := FileName(title)
	if err := m.remove(filepath.Join(m.applicationsDir, name)); err != nil {
		return err
	}

	desktop, err := m.desktopDir()
	if err != nil {
		log.Debug().Err(err).Msg("no desktop folder, nothing to remove")
		return nil
	}
	return m.remove(filepath.Join(desktop, name))
}

func (m *Manager) remove(path string) error {
	err := m.fs.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

func (m *Manager) write(path string, title *library.Title, exec string) error {
	installDir := title.InstallDir()

	entry := ini.Empty(ini.LoadOptions{IgnoreInlineComment: true})
	sec, err := entry.NewSection(section)
	if err != nil {
		return fmt.Errorf("failed to build desktop entry: %w", err)
	}
	for _, kv := range [][2]string{
		{"Encoding", "UTF-8"},
		{"Value", "1.0"},
		{"Type", "Application"},
		{"Name", title.Name},
		{"GenericName", title.Name},
		{"Comment", title.Name},
		{"Icon", filepath.Join(installDir, "support", "icon.png")},
		{"Exec", exec},
		{"Categories", "Game;"},
		{"Path", installDir},
	} {
		if _, err := sec.NewKey(kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to set %s: %w", kv[0], err)
		}
	}

	f, err := m.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := entry.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
