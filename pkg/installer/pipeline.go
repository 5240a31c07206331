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

// Package installer turns downloaded GOG installers into installed titles:
// integrity check, extraction, placement into the library, desktop
// integration and cleanup.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goodoldgalaxy/galaxy-core/pkg/helpers"
	"github.com/goodoldgalaxy/galaxy-core/pkg/helpers/command"
	"github.com/goodoldgalaxy/galaxy-core/pkg/library"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	// PayloadDir is where Linux installers keep the game files.
	PayloadDir = "data/noarch"
	// KeepDir holds retained installers inside an install directory.
	KeepDir = "installer"
	// PrefixDir is the Wine prefix of a Windows title.
	PrefixDir = "prefix"
)

var thumbnailSizes = []int{100, 196}

// Settings are the options the pipeline reads at call time.
type Settings interface {
	KeepInstallers() bool
	CreateShortcuts() bool
}

// Shortcuts manages the desktop integration of a title.
type Shortcuts interface {
	Create(title *library.Title) error
	Remove(title *library.Title) error
}

type Pipeline struct {
	cfg       Settings
	cmd       command.Executor
	fs        afero.Fs
	shortcuts Shortcuts
	verifier  *Verifier
	extractor *Extractor
	dirs      helpers.Dirs
}

type Option func(*Pipeline)

// WithFs swaps the filesystem used for thumbnails, retention and removal.
func WithFs(fs afero.Fs) Option {
	return func(p *Pipeline) {
		p.fs = fs
	}
}

func NewPipeline(
	cfg Settings,
	dirs helpers.Dirs,
	cmd command.Executor,
	shortcuts Shortcuts,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		dirs:      dirs,
		cmd:       cmd,
		fs:        afero.NewOsFs(),
		shortcuts: shortcuts,
		verifier:  NewVerifier(cmd),
		extractor: NewExtractor(dirs.ExtractDir()),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Install installs archivePath into the title's install directory. The
// title must already be INSTALLING (or UPDATING) so its install directory
// is known; the caller owns the state transition afterwards.
func (p *Pipeline) Install(ctx context.Context, title *library.Title, archivePath string) error {
	installDir := title.InstallDir()
	if installDir == "" {
		return fmt.Errorf("title %d: %w", title.ID, library.ErrInstallDirRequired)
	}

	if _, err := os.Stat(archivePath); err != nil {
		log.Error().Err(err).Msgf("installer missing: %s", archivePath)
		return &Error{Path: archivePath, Err: ErrSourceMissing}
	}

	log.Info().Msgf("installing %s (%d) from %s", title.Name, title.ID, archivePath)

	var err error
	switch title.Platform {
	case library.PlatformLinux:
		err = p.installLinux(ctx, title, archivePath, installDir)
	case library.PlatformWindows:
		err = p.installWindows(ctx, archivePath, installDir)
	case library.PlatformUnsupported:
		return &Error{Path: archivePath, Err: ErrPlatformUnsupported}
	default:
		return &Error{Path: archivePath, Err: ErrPlatformUnsupported}
	}
	if err != nil {
		return err
	}

	p.copyThumbnails(title.ID, installDir)
	p.retain(title.ID, archivePath, installDir)
	title.FinalizeInstall()

	log.Info().Msgf("installed %s into %s", title.Name, installDir)
	return nil
}

// Update installs a newer archive over an installed title, using the
// title's own install directory.
func (p *Pipeline) Update(ctx context.Context, title *library.Title, archivePath string) error {
	log.Info().Msgf("updating %s from %s to %s", title.Name, title.InstalledVersion(), title.AvailableVersion())
	return p.Install(ctx, title, archivePath)
}

func (p *Pipeline) installLinux(ctx context.Context, title *library.Title, archivePath, installDir string) error {
	if !p.verifier.Verify(ctx, archivePath) {
		if err := os.Remove(archivePath); err != nil {
			log.Warn().Err(err).Msgf("failed to remove corrupt installer: %s", archivePath)
		}
		return &Error{Path: archivePath, Err: ErrCorruptArchive}
	}

	err := p.extractor.Extract(ctx, archivePath, title.ID, func(dir string) error {
		payload := filepath.Join(dir, filepath.FromSlash(PayloadDir))
		if _, err := os.Stat(payload); err != nil {
			log.Error().Msgf("installer has no %s payload: %s", PayloadDir, archivePath)
			return &Error{Path: archivePath, Err: ErrExtractionFailed}
		}
		return Place(payload, installDir)
	})
	if err != nil {
		return err
	}

	if title.Kind == library.KindGame && p.cfg.CreateShortcuts() {
		if err := p.shortcuts.Create(title); err != nil {
			log.Warn().Err(err).Msgf("failed to create shortcuts for %s", title.Name)
		}
	}
	return nil
}

func (p *Pipeline) installWindows(ctx context.Context, archivePath, installDir string) error {
	prefix := filepath.Join(installDir, PrefixDir)
	if err := os.MkdirAll(prefix, 0o755); err != nil {
		return fmt.Errorf("failed to create wine prefix: %w", err)
	}

	err := p.cmd.RunWithOptions(ctx, command.Options{
		Env: []string{"WINEPREFIX=" + prefix},
	}, "wine", archivePath, "/dir="+installDir)
	if err != nil {
		code, ok := command.ExitCode(err)
		if !ok {
			code = -1
		}
		log.Error().Err(err).Msgf("windows installer failed: %s", archivePath)
		return &ExitError{Path: archivePath, Code: code, Err: err}
	}
	return nil
}

// Uninstall removes the title's shortcuts and install directory. Removal
// problems are logged, never returned, so a partially deleted title can
// still be reset by the caller.
func (p *Pipeline) Uninstall(_ context.Context, title *library.Title) error {
	installDir := title.InstallDir()
	if installDir == "" {
		return fmt.Errorf("title %d: %w", title.ID, library.ErrInstallDirRequired)
	}

	log.Info().Msgf("uninstalling %s from %s", title.Name, installDir)

	if title.Kind == library.KindGame && p.cfg.CreateShortcuts() {
		if err := p.shortcuts.Remove(title); err != nil {
			log.Warn().Err(err).Msgf("failed to remove shortcuts for %s", title.Name)
		}
	}
	if err := p.fs.RemoveAll(installDir); err != nil {
		log.Warn().Err(err).Msgf("failed to remove %s", installDir)
	}

	title.ClearInstall()
	return nil
}

// Source returns the retained copy of archivePath inside installDir when
// one exists, otherwise archivePath itself.
func (p *Pipeline) Source(installDir, archivePath string) string {
	if installDir == "" {
		return archivePath
	}
	kept := filepath.Join(installDir, KeepDir, filepath.Base(archivePath))
	if _, err := p.fs.Stat(kept); err == nil {
		log.Info().Msgf("using retained installer: %s", kept)
		return kept
	}
	return archivePath
}

func (p *Pipeline) copyThumbnails(id int64, installDir string) {
	for _, size := range thumbnailSizes {
		src := filepath.Join(p.dirs.ThumbnailDir(), fmt.Sprintf("%d_%d.jpg", id, size))
		dst := filepath.Join(installDir, fmt.Sprintf("thumbnail_%d.jpg", size))
		if _, err := p.fs.Stat(src); err != nil {
			continue
		}
		if err := copyFs(p.fs, src, dst); err != nil {
			log.Warn().Err(err).Msgf("failed to copy thumbnail: %s", src)
		}
	}
}

// retain keeps or deletes the installer once the title is in place. Kept
// installers, along with the title's other download parts, move to
// <installDir>/installer.
func (p *Pipeline) retain(id int64, archivePath, installDir string) {
	if !p.cfg.KeepInstallers() {
		if err := p.fs.Remove(archivePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Msgf("failed to remove installer: %s", archivePath)
		}
		return
	}

	keepDir := filepath.Join(installDir, KeepDir)
	if err := p.fs.MkdirAll(keepDir, 0o755); err != nil {
		log.Warn().Err(err).Msgf("failed to create %s", keepDir)
		return
	}

	if !helpers.IsWithin(keepDir, archivePath) {
		p.keep(archivePath, keepDir)
	}

	for _, dir := range []string{p.dirs.DownloadDir(), p.dirs.UpdateDir()} {
		entries, err := afero.ReadDir(p.fs, dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() && ownsPart(id, e.Name()) {
				p.keep(filepath.Join(dir, e.Name()), keepDir)
			}
		}
	}
}

func (p *Pipeline) keep(path, keepDir string) {
	dst := filepath.Join(keepDir, filepath.Base(path))
	if path == dst {
		return
	}
	if err := moveFs(p.fs, path, dst); err != nil {
		log.Warn().Err(err).Msgf("failed to retain %s", path)
	}
}

// ownsPart reports whether a download file name belongs to title id:
// <id>.bin for the first part, <id>-<n>.bin for the rest.
func ownsPart(id int64, name string) bool {
	prefix := strconv.FormatInt(id, 10)
	rest, ok := strings.CutPrefix(name, prefix)
	return ok && (strings.HasPrefix(rest, ".") || strings.HasPrefix(rest, "-"))
}

func moveFs(fs afero.Fs, src, dst string) error {
	if err := fs.Rename(src, dst); err == nil {
		return nil
	}
	// rename fails across filesystems, fall back to copying
	if err := copyFs(fs, src, dst); err != nil {
		return err
	}
	if err := fs.Remove(src); err != nil {
		return fmt.Errorf("failed to remove %s after copy: %w", src, err)
	}
	return nil
}

func copyFs(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return nil
}
