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
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goodoldgalaxy/galaxy-core/pkg/helpers"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// scratchLock serialises use of the extraction scratch root. Every
// extraction clears the whole root, so two titles can never extract at
// once, whichever Extractor they go through.
var scratchLock = semaphore.NewWeighted(1)

// Extractor unpacks installer archives below a shared scratch root.
type Extractor struct {
	root string
}

func NewExtractor(root string) *Extractor {
	return &Extractor{root: root}
}

// Extract clears the scratch root, unpacks archivePath into a directory
// named after the title id and calls use with that directory. The scratch
// root is held exclusively until use returns, then the directory is
// removed. An archive that yields no entries fails with ErrExtractionFailed.
func (e *Extractor) Extract(
	ctx context.Context,
	archivePath string,
	id int64,
	use func(dir string) error,
) error {
	if err := scratchLock.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for extraction scratch: %w", err)
	}
	defer scratchLock.Release(1)

	if err := os.RemoveAll(e.root); err != nil {
		return fmt.Errorf("failed to clear scratch root: %w", err)
	}
	dir := filepath.Join(e.root, strconv.FormatInt(id, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn().Err(err).Msgf("failed to remove scratch directory: %s", dir)
		}
	}()

	log.Info().Msgf("extracting %s to %s", archivePath, dir)
	if err := unzip(archivePath, dir); err != nil {
		log.Error().Err(err).Msgf("extraction failed: %s", archivePath)
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		return &Error{Path: archivePath, Err: ErrExtractionFailed}
	}

	return use(dir)
}

// unzip writes every member of the zip payload into dir. GOG installers
// are a shell script with the zip appended, archive/zip finds the central
// directory from the end of the file so the prefix is skipped.
func unzip(archivePath, dir string) error {
	r, err := zip.OpenReader(archivePath)
	// entry names are checked below, an insecure name only skips that entry
	if err != nil && !(errors.Is(err, zip.ErrInsecurePath) && r != nil) {
		return fmt.Errorf("failed to open zip payload: %w", err)
	}
	defer func(r *zip.ReadCloser) {
		if err := r.Close(); err != nil {
			log.Warn().Err(err).Msg("close zip failed")
		}
	}(r)

	for _, f := range r.File {
		target := filepath.Join(dir, filepath.FromSlash(f.Name))
		if !helpers.IsWithin(dir, target) {
			log.Warn().Msgf("skipping zip entry outside extraction root: %s", f.Name)
			continue
		}
		if err := extractEntry(f, target); err != nil {
			return fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractEntry(f *zip.File, target string) error {
	mode := f.Mode()
	if mode.IsDir() {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open entry: %w", err)
	}
	defer func() { _ = rc.Close() }()

	if mode&os.ModeSymlink != 0 {
		link, err := io.ReadAll(rc)
		if err != nil {
			return fmt.Errorf("failed to read link target: %w", err)
		}
		_ = os.Remove(target)
		if err := os.Symlink(string(link), target); err != nil {
			return fmt.Errorf("failed to create symlink: %w", err)
		}
		return nil
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	//nolint:gosec // target is checked to be inside the scratch directory
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	//nolint:gosec // installers are trusted after the self-check
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if !f.Modified.IsZero() {
		_ = os.Chtimes(target, f.Modified, f.Modified)
	}
	return nil
}
