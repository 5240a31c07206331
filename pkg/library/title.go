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

// Package library holds the title model and its lifecycle state machine.
package library

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/goodoldgalaxy/galaxy-core/pkg/helpers/syncutil"
	"github.com/hashicorp/go-version"
)

// Platform is the operating system a title's installer targets.
type Platform string

const (
	PlatformLinux       Platform = "linux"
	PlatformWindows     Platform = "windows"
	PlatformUnsupported Platform = "unsupported"
)

// ParsePlatform maps a catalog platform name, unknown names are unsupported.
func ParsePlatform(name string) Platform {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linux":
		return PlatformLinux
	case "windows":
		return PlatformWindows
	default:
		return PlatformUnsupported
	}
}

type Kind string

const (
	KindGame Kind = "game"
	KindDLC  Kind = "dlc"
)

var ErrInstallDirRequired = errors.New("install directory required")

// DownloadHandle is an in-flight download owned by a title.
type DownloadHandle interface {
	Cancel()
}

// Title is one catalog product, a game or one of its DLCs.
//
// The install directory is tied to the state: it is set exactly when the
// state is one of the installed family (see State.HasInstallDir), and
// Transition is the only way to change either.
type Title struct {
	lastPlayed       time.Time
	Name             string
	Platform         Platform
	Kind             Kind
	Language         string
	installDir       string
	installedVersion string
	availableVersion string
	downloads        []DownloadHandle
	DLCs             []*Title
	ID               int64
	ParentID         int64
	playTime         time.Duration
	updates          int
	state            State
	mu               syncutil.RWMutex
}

// NewTitle returns a DOWNLOADABLE title.
func NewTitle(id int64, name string, platform Platform) *Title {
	return &Title{
		ID:       id,
		Name:     name,
		Platform: platform,
		Kind:     KindGame,
		state:    StateDownloadable,
	}
}

// Record is the persisted form of a title.
type Record struct {
	LastPlayed       time.Time
	Name             string
	Platform         Platform
	Kind             Kind
	Language         string
	InstallDir       string
	InstalledVersion string
	AvailableVersion string
	ID               int64
	ParentID         int64
	PlayTime         time.Duration
	Updates          int
	State            State
}

// Restore rebuilds a title from its persisted form, rejecting records that
// break the install directory invariant.
//
//nolint:gocritic // record copied on purpose
func Restore(rec Record) (*Title, error) {
	if rec.State.HasInstallDir() != (rec.InstallDir != "") {
		return nil, fmt.Errorf(
			"title %d: state %s with install dir %q: %w",
			rec.ID, rec.State, rec.InstallDir, ErrInvalidTransition,
		)
	}
	kind := rec.Kind
	if kind == "" {
		kind = KindGame
	}
	return &Title{
		ID:               rec.ID,
		ParentID:         rec.ParentID,
		Name:             rec.Name,
		Platform:         rec.Platform,
		Kind:             kind,
		Language:         rec.Language,
		installDir:       rec.InstallDir,
		installedVersion: rec.InstalledVersion,
		availableVersion: rec.AvailableVersion,
		updates:          rec.Updates,
		playTime:         rec.PlayTime,
		lastPlayed:       rec.LastPlayed,
		state:            rec.State,
	}, nil
}

// Record snapshots the title for persistence.
func (t *Title) Record() Record {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Record{
		ID:               t.ID,
		ParentID:         t.ParentID,
		Name:             t.Name,
		Platform:         t.Platform,
		Kind:             t.Kind,
		Language:         t.Language,
		InstallDir:       t.installDir,
		InstalledVersion: t.installedVersion,
		AvailableVersion: t.availableVersion,
		Updates:          t.updates,
		PlayTime:         t.playTime,
		LastPlayed:       t.lastPlayed,
		State:            t.state,
	}
}

func (t *Title) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// InstallDir is empty unless the title is in the installed family.
func (t *Title) InstallDir() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.installDir
}

// Transition moves the title to state to. Entering the installed family
// requires installDir unless the title already has one; leaving it clears
// the install directory.
func (t *Title) Transition(to State, installDir string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ValidateTransition(t.state, to); err != nil {
		return fmt.Errorf("title %d: %w", t.ID, err)
	}

	if to.HasInstallDir() {
		dir := installDir
		if dir == "" {
			dir = t.installDir
		}
		if dir == "" {
			return fmt.Errorf("title %d: %s: %w", t.ID, to, ErrInstallDirRequired)
		}
		t.installDir = dir
	} else {
		t.installDir = ""
	}

	t.state = to
	return nil
}

func (t *Title) InstalledVersion() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.installedVersion
}

func (t *Title) AvailableVersion() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.availableVersion
}

// SetAvailableVersion records the newest version the catalog offers.
func (t *Title) SetAvailableVersion(v string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.availableVersion = v
}

// Updates counts pending updates announced by the catalog.
func (t *Title) Updates() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.updates
}

func (t *Title) SetUpdates(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.updates = n
}

// FinalizeInstall marks the available version as installed and clears the
// pending update counter.
func (t *Title) FinalizeInstall() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.installedVersion = t.availableVersion
	t.updates = 0
}

// ClearInstall forgets the installed version after an uninstall.
func (t *Title) ClearInstall() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.installedVersion = ""
}

// NeedsUpdate reports whether the catalog offers a different version than
// the installed one. Versions that parse are compared semantically,
// anything else by string inequality.
func (t *Title) NeedsUpdate() bool {
	t.mu.RLock()
	installed, available := t.installedVersion, t.availableVersion
	t.mu.RUnlock()

	if installed == "" || available == "" {
		return false
	}
	iv, ierr := version.NewVersion(installed)
	av, aerr := version.NewVersion(available)
	if ierr == nil && aerr == nil {
		return av.GreaterThan(iv)
	}
	return installed != available
}

// RecordSession adds a play session to the title's play time accounting.
func (t *Title) RecordSession(elapsed time.Duration, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if elapsed > 0 {
		t.playTime += elapsed
	}
	t.lastPlayed = at
}

func (t *Title) PlayTime() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.playTime
}

func (t *Title) LastPlayed() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastPlayed
}

// AddDownload appends an in-flight download handle.
func (t *Title) AddDownload(h DownloadHandle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.downloads = append(t.downloads, h)
}

// Downloads returns the in-flight download handles in start order.
func (t *Title) Downloads() []DownloadHandle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]DownloadHandle, len(t.downloads))
	copy(out, t.downloads)
	return out
}

// ClearDownloads drops all download handles and returns them.
func (t *Title) ClearDownloads() []DownloadHandle {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.downloads
	t.downloads = nil
	return out
}

var reDirName = regexp.MustCompile(`[^\p{L}\p{N} ._\-']+`)

// DirName is the directory name a title is installed under inside the
// library root.
func (t *Title) DirName() string {
	name := strings.TrimSpace(reDirName.ReplaceAllString(t.Name, ""))
	name = strings.Trim(name, ".")
	if name == "" {
		return fmt.Sprintf("%d", t.ID)
	}
	return name
}
