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

package helpers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/goodoldgalaxy/galaxy-core/pkg/config"
)

// HomeEnv relocates every directory below a single root, for portable
// installs and tests.
const HomeEnv = "GALAXY_HOME"

const (
	extractDir   = "extract"
	downloadDir  = "download"
	updateDir    = "update"
	thumbnailDir = "thumbnails"
	logDir       = "logs"
)

// Dirs holds the per-user directories the library works in.
type Dirs struct {
	Config string
	Data   string
	Cache  string
}

// DefaultDirs resolves directories from the XDG base directory variables.
func DefaultDirs() Dirs {
	if home := os.Getenv(HomeEnv); home != "" {
		return Dirs{
			Config: filepath.Join(home, "config"),
			Data:   filepath.Join(home, "data"),
			Cache:  filepath.Join(home, "cache"),
		}
	}
	return Dirs{
		Config: filepath.Join(xdg.ConfigHome, config.AppName),
		Data:   filepath.Join(xdg.DataHome, config.AppName),
		Cache:  filepath.Join(xdg.CacheHome, config.AppName),
	}
}

// ExtractDir is the scratch root installer archives are unpacked into.
func (d Dirs) ExtractDir() string { return filepath.Join(d.Cache, extractDir) }

func (d Dirs) DownloadDir() string { return filepath.Join(d.Cache, downloadDir) }

func (d Dirs) UpdateDir() string { return filepath.Join(d.Cache, updateDir) }

func (d Dirs) ThumbnailDir() string { return filepath.Join(d.Cache, thumbnailDir) }

func (d Dirs) LogDir() string { return filepath.Join(d.Data, logDir) }

func (d Dirs) DatabasePath() string { return filepath.Join(d.Data, config.LibraryDbFile) }

// EnsureDirectories creates every directory in d that the library writes to.
func EnsureDirectories(d Dirs) error {
	for _, dir := range []string{
		d.Config, d.Data, d.LogDir(),
		d.DownloadDir(), d.UpdateDir(), d.ThumbnailDir(),
	} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
