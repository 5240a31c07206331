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

package installer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goodoldgalaxy/galaxy-core/pkg/helpers"
	"github.com/rs/zerolog/log"
)

// Place merges the tree at src into dst. Directories are created as needed,
// files are copied over whatever is at the destination, and symlinks are
// recreated as links rather than followed. Entries in dst that src doesn't
// mention are left alone, so a half-populated install directory from an
// earlier attempt is completed in place.
func Place(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("payload %s is not a directory", src)
	}

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			return placeSymlink(path, target)
		case d.IsDir():
			return placeDir(path, target)
		case d.Type().IsRegular():
			return placeFile(path, target)
		default:
			log.Debug().Msgf("skipping special file: %s", path)
			return nil
		}
	})
	if err != nil {
		return fmt.Errorf("failed to place %s into %s: %w", src, dst, err)
	}
	return nil
}

func placeDir(src, target string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if existing, err := os.Lstat(target); err == nil && !existing.IsDir() {
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("failed to replace %s: %w", target, err)
		}
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.Chmod(target, info.Mode().Perm()|0o700); err != nil {
		return fmt.Errorf("failed to set directory mode: %w", err)
	}
	return nil
}

func placeFile(src, target string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	// replace rather than rewrite, so read-only files and links left at
	// this path don't get in the way
	if _, err := os.Lstat(target); err == nil {
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("failed to replace %s: %w", target, err)
		}
	}
	if err := helpers.CopyFile(src, target); err != nil {
		return err
	}
	if err := os.Chtimes(target, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set file times: %w", err)
	}
	return nil
}

func placeSymlink(src, target string) error {
	link, err := os.Readlink(src)
	if err != nil {
		return fmt.Errorf("failed to read symlink: %w", err)
	}
	info, err := os.Lstat(src)
	if err != nil {
		return fmt.Errorf("failed to stat symlink: %w", err)
	}
	if _, err := os.Lstat(target); err == nil {
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("failed to replace %s: %w", target, err)
		}
	}
	if err := os.Symlink(link, target); err != nil {
		return fmt.Errorf("failed to create symlink: %w", err)
	}
	if err := lchmod(target, info.Mode().Perm()); err != nil {
		log.Debug().Err(err).Msgf("symlink permissions not applied: %s", target)
	}
	return nil
}
