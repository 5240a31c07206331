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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// ErrInvalidInstallDir is returned when a library path can't be created or
// written to.
var ErrInvalidInstallDir = errors.New("invalid install directory")

const writeTestFile = ".galaxy_write_test"

type Library struct {
	InstallDir       string `toml:"install_dir"`
	KeepInstallers   bool   `toml:"keep_installers"`
	CreateShortcuts  bool   `toml:"create_shortcuts"`
	InstallDLCs      bool   `toml:"install_dlcs"`
	ShowWindowsGames bool   `toml:"show_windows_games"`
	AutomaticUpdates bool   `toml:"automatic_updates"`
}

// InstallDir is the library root new titles are installed under.
func (c *Instance) InstallDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Library.InstallDir
}

// SetInstallDir checks that dir is usable as a library root and stores it.
// A missing directory is created, an existing one must be writable. The
// previous library root is removed if it was left empty.
func (c *Instance) SetInstallDir(dir string) error {
	if dir == "" || !filepath.IsAbs(dir) {
		return fmt.Errorf("%w: %q is not an absolute path", ErrInvalidInstallDir, dir)
	}
	dir = filepath.Clean(dir)

	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInstallDir, err)
		}
	case err != nil:
		return fmt.Errorf("%w: %w", ErrInvalidInstallDir, err)
	case !info.IsDir():
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidInstallDir, dir)
	default:
		testPath := filepath.Join(dir, writeTestFile)
		if err := os.WriteFile(testPath, nil, 0o600); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInstallDir, err)
		}
		if err := os.Remove(testPath); err != nil {
			log.Warn().Err(err).Msgf("failed to remove %s", testPath)
		}
	}

	c.mu.Lock()
	old := c.vals.Library.InstallDir
	c.vals.Library.InstallDir = dir
	c.mu.Unlock()

	if old != "" && old != dir {
		// os.Remove refuses non-empty directories
		if err := os.Remove(old); err == nil {
			log.Info().Msgf("removed empty library directory: %s", old)
		}
	}
	return nil
}

func (c *Instance) KeepInstallers() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Library.KeepInstallers
}

func (c *Instance) SetKeepInstallers(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Library.KeepInstallers = enabled
}

func (c *Instance) CreateShortcuts() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Library.CreateShortcuts
}

func (c *Instance) SetCreateShortcuts(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Library.CreateShortcuts = enabled
}

func (c *Instance) InstallDLCs() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Library.InstallDLCs
}

func (c *Instance) SetInstallDLCs(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Library.InstallDLCs = enabled
}

// ShowWindowsGames controls whether Windows builds are offered when no
// Linux build of a title exists.
func (c *Instance) ShowWindowsGames() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Library.ShowWindowsGames
}

func (c *Instance) SetShowWindowsGames(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Library.ShowWindowsGames = enabled
}

func (c *Instance) AutomaticUpdates() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Library.AutomaticUpdates
}

func (c *Instance) SetAutomaticUpdates(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Library.AutomaticUpdates = enabled
}
