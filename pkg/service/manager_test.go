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
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goodoldgalaxy/galaxy-core/pkg/catalog"
	"github.com/goodoldgalaxy/galaxy-core/pkg/config"
	"github.com/goodoldgalaxy/galaxy-core/pkg/database/librarydb"
	"github.com/goodoldgalaxy/galaxy-core/pkg/downloads"
	"github.com/goodoldgalaxy/galaxy-core/pkg/helpers"
	"github.com/goodoldgalaxy/galaxy-core/pkg/helpers/syncutil"
	"github.com/goodoldgalaxy/galaxy-core/pkg/installer"
	"github.com/goodoldgalaxy/galaxy-core/pkg/library"
	"github.com/goodoldgalaxy/galaxy-core/pkg/service/notifications"
	"github.com/goodoldgalaxy/galaxy-core/pkg/supervisor"
	testhelpers "github.com/goodoldgalaxy/galaxy-core/pkg/testing/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 5 * time.Second

type installCall struct {
	archive string
	dir     string
	id      int64
}

type fakeInstaller struct {
	installErr error
	updateErr  error
	installs   []installCall
	updates    []installCall
	uninstalls []int64
	mu         syncutil.Mutex
}

func (f *fakeInstaller) Install(_ context.Context, t *library.Title, archive string) error {
	f.mu.Lock()
	f.installs = append(f.installs, installCall{id: t.ID, archive: archive, dir: t.InstallDir()})
	err := f.installErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	t.FinalizeInstall()
	return nil
}

func (f *fakeInstaller) Update(_ context.Context, t *library.Title, archive string) error {
	f.mu.Lock()
	f.updates = append(f.updates, installCall{id: t.ID, archive: archive, dir: t.InstallDir()})
	err := f.updateErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	t.FinalizeInstall()
	return nil
}

func (f *fakeInstaller) Uninstall(_ context.Context, t *library.Title) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uninstalls = append(f.uninstalls, t.ID)
	t.ClearInstall()
	return nil
}

func (*fakeInstaller) Source(_, archivePath string) string {
	return archivePath
}

func (f *fakeInstaller) installCalls() []installCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]installCall(nil), f.installs...)
}

type fakeLauncher struct {
	err      error
	gate     chan struct{}
	entered  chan struct{}
	launches atomic.Int32
	compat   atomic.Int32
}

func (f *fakeLauncher) Launch(_ context.Context, t *library.Title) error {
	f.launches.Add(1)
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	t.RecordSession(time.Minute, time.Unix(1700000000, 0))
	return f.err
}

func (f *fakeLauncher) ConfigureCompat(context.Context, *library.Title) error {
	f.compat.Add(1)
	return nil
}

type env struct {
	mgr      *Manager
	ns       <-chan notifications.Notification
	cfg      *config.Instance
	store    *librarydb.LibraryDB
	inst     *fakeInstaller
	launcher *fakeLauncher
	srv      *httptest.Server
	dirs     helpers.Dirs
}

// newEnv wires a manager to a real catalog, database, config and
// downloader. Files under /block/ never finish downloading.
func newEnv(t *testing.T, products func(baseURL string) []catalog.Product) *env {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/block/") {
			w.Header().Set("Content-Length", "1048576")
			if r.Method == http.MethodHead {
				return
			}
			_, _ = w.Write([]byte("partial"))
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
			<-r.Context().Done()
			return
		}
		body := "payload" + r.URL.Path
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	root := t.TempDir()
	dirs := helpers.Dirs{
		Config: filepath.Join(root, "config"),
		Data:   filepath.Join(root, "data"),
		Cache:  filepath.Join(root, "cache"),
	}
	require.NoError(t, helpers.EnsureDirectories(dirs))

	vals := config.BaseDefaults()
	vals.Library.InstallDir = filepath.Join(root, "library")
	cfg, err := config.NewConfig(dirs.Config, vals)
	require.NoError(t, err)

	client, err := catalog.NewStaticClient(products(srv.URL))
	require.NoError(t, err)

	store, cleanup := testhelpers.NewInMemoryLibraryDB(t)
	t.Cleanup(cleanup)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	e := &env{
		cfg:      cfg,
		store:    store,
		inst:     &fakeInstaller{},
		launcher: &fakeLauncher{},
		srv:      srv,
		dirs:     dirs,
	}
	e.mgr, e.ns = NewManager(ctx, Deps{
		Settings:   cfg,
		Catalog:    client,
		Store:      store,
		Installer:  e.inst,
		Launcher:   e.launcher,
		Downloader: downloads.New(downloads.WithProgressInterval(5 * time.Millisecond)),
		Dirs:       dirs,
	})
	return e
}

func product(baseURL string, id int64, name, version string, paths ...string) catalog.Product {
	files := make([]catalog.File, len(paths))
	for i, p := range paths {
		files[i] = catalog.File{ID: p, Downlink: baseURL + p, Size: 10}
	}
	return catalog.Product{
		ID:    id,
		Title: name,
		Installers: []catalog.Installer{{
			ID:       name + "-linux",
			Name:     name,
			OS:       "linux",
			Language: "en",
			Version:  version,
			Files:    files,
		}},
	}
}

// add registers the catalog product id with the manager.
func (e *env) add(t *testing.T, id int64) *library.Title {
	t.Helper()
	client := e.mgr.deps.Catalog
	p, err := client.Product(context.Background(), id)
	require.NoError(t, err)
	return e.mgr.Add(p.NewTitle(library.PlatformLinux, "en"))
}

func (e *env) waitFor(t *testing.T, match func(notifications.Notification) bool) notifications.Notification {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case n := <-e.ns:
			if match(n) {
				return n
			}
		case <-deadline:
			t.Fatal("timed out waiting for notification")
			return notifications.Notification{}
		}
	}
}

func (e *env) waitState(t *testing.T, id int64, state library.State) []library.State {
	t.Helper()
	var seen []library.State
	e.waitFor(t, func(n notifications.Notification) bool {
		if n.Method != notifications.MethodStateChanged || n.TitleID != id {
			return false
		}
		seen = append(seen, n.State)
		return n.State == state
	})
	return seen
}

func (e *env) waitIdle(t *testing.T, id int64) {
	t.Helper()
	require.Eventually(t, func() bool { return !e.mgr.Busy(id) }, waitTimeout, 5*time.Millisecond)
}

func (e *env) stored(t *testing.T, id int64) library.Record {
	t.Helper()
	recs, err := e.store.LoadTitles(context.Background())
	require.NoError(t, err)
	for _, r := range recs {
		if r.ID == id {
			return r
		}
	}
	t.Fatalf("title %d not stored", id)
	return library.Record{}
}

func TestStartDownload_InstallsWhenFinished(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(url string) []catalog.Product {
		return []catalog.Product{product(url, 10, "Beneath a Steel Sky", "1.2", "/bass/1", "/bass/2")}
	})
	title := e.add(t, 10)

	require.NoError(t, e.mgr.StartDownload(context.Background(), 10))
	seen := e.waitState(t, 10, library.StateInstalled)
	e.waitIdle(t, 10)

	assert.Equal(t, []library.State{
		library.StateQueued, library.StateDownloading, library.StateInstalling, library.StateInstalled,
	}, seen)

	archive := filepath.Join(e.dirs.DownloadDir(), "10.bin")
	installDir := filepath.Join(e.cfg.InstallDir(), "Beneath a Steel Sky")
	assert.Equal(t, []installCall{{id: 10, archive: archive, dir: installDir}}, e.inst.installCalls())
	assert.FileExists(t, archive)
	assert.FileExists(t, filepath.Join(e.dirs.DownloadDir(), "10-1.bin"))

	assert.Equal(t, installDir, title.InstallDir())
	assert.Equal(t, "1.2", title.InstalledVersion())
	assert.Zero(t, e.cfg.CurrentDownload())
	assert.Empty(t, title.Downloads())
	require.ErrorIs(t, e.mgr.Cancel(10), ErrNotDownloading)

	rec := e.stored(t, 10)
	assert.Equal(t, library.StateInstalled, rec.State)
	assert.Equal(t, installDir, rec.InstallDir)
}

func TestStartDownload_ChainsDLCs(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(url string) []catalog.Product {
		game := product(url, 20, "Dreamweb", "1.0", "/dw/1")
		game.DLCs = []catalog.Product{
			product(url, 21, "Dreamweb Soundtrack", "1.0", "/dw/ost"),
			{ID: 22, Title: "Dreamweb Artbook"},
		}
		return []catalog.Product{game}
	})
	game := e.add(t, 20)
	ost, err := e.mgr.Title(21)
	require.NoError(t, err)
	artbook, err := e.mgr.Title(22)
	require.NoError(t, err)

	require.NoError(t, e.mgr.StartDownload(context.Background(), 20))
	e.waitState(t, 21, library.StateInstalled)
	e.waitIdle(t, 21)

	assert.Equal(t, library.StateInstalled, game.State())
	assert.Equal(t, game.InstallDir(), ost.InstallDir())
	assert.Equal(t, library.StateDownloadable, artbook.State(), "no installer for this DLC")

	calls := e.inst.installCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, filepath.Join(e.dirs.DownloadDir(), "21.bin"), calls[1].archive)
	assert.Equal(t, game.InstallDir(), calls[1].dir)
	assert.Zero(t, e.cfg.CurrentDownload())
}

func TestStartDownload_NoDLCsWhenDisabled(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(url string) []catalog.Product {
		game := product(url, 20, "Dreamweb", "1.0", "/dw/1")
		game.DLCs = []catalog.Product{product(url, 21, "Dreamweb Soundtrack", "1.0", "/dw/ost")}
		return []catalog.Product{game}
	})
	e.cfg.SetInstallDLCs(false)
	e.add(t, 20)

	require.NoError(t, e.mgr.StartDownload(context.Background(), 20))
	e.waitState(t, 20, library.StateInstalled)
	e.waitIdle(t, 20)

	assert.Len(t, e.inst.installCalls(), 1)
	dlc, err := e.mgr.Title(21)
	require.NoError(t, err)
	assert.Equal(t, library.StateDownloadable, dlc.State())
}

func TestStartDownload_InstallFailureReverts(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(url string) []catalog.Product {
		return []catalog.Product{product(url, 30, "Lure of the Temptress", "1.0", "/lure")}
	})
	e.inst.installErr = &installer.Error{Path: "/tmp/30.bin", Err: installer.ErrCorruptArchive}
	title := e.add(t, 30)

	require.NoError(t, e.mgr.StartDownload(context.Background(), 30))
	failed := e.waitFor(t, func(n notifications.Notification) bool {
		return n.Method == notifications.MethodFailed
	})
	e.waitState(t, 30, library.StateDownloadable)
	e.waitIdle(t, 30)

	assert.Equal(t, "/tmp/30.bin was corrupted. Please download it again.", failed.Message)
	assert.Equal(t, library.StateDownloadable, title.State())
	assert.Empty(t, title.InstallDir())
	assert.Empty(t, title.InstalledVersion())
	assert.Equal(t, library.StateDownloadable, e.stored(t, 30).State)
}

func TestStartDownload_CatalogFailure(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(string) []catalog.Product {
		return []catalog.Product{{ID: 40, Title: "Teenagent"}}
	})
	title := e.add(t, 40)

	err := e.mgr.StartDownload(context.Background(), 40)
	require.ErrorIs(t, err, catalog.ErrNoInstaller)

	assert.Equal(t, library.StateDownloadable, title.State())
	assert.Zero(t, e.cfg.CurrentDownload())
	assert.False(t, e.mgr.Busy(40))
	assert.Empty(t, e.inst.installCalls())
}

func TestStartDownload_WrongState(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(url string) []catalog.Product {
		return []catalog.Product{product(url, 10, "Game", "1.0", "/g")}
	})
	e.mgr.Add(testhelpers.TitleIn(t, 10, "Game", library.PlatformLinux, library.StateInstalled, "/games/Game"))

	require.ErrorIs(t, e.mgr.StartDownload(context.Background(), 10), library.ErrInvalidTransition)
	require.ErrorIs(t, e.mgr.StartDownload(context.Background(), 99), ErrUnknownTitle)
}

func TestCancel(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(url string) []catalog.Product {
		return []catalog.Product{product(url, 50, "Flight of the Amazon Queen", "1.0", "/block/foaq")}
	})
	title := e.add(t, 50)

	require.ErrorIs(t, e.mgr.Cancel(50), ErrNotDownloading)

	require.NoError(t, e.mgr.StartDownload(context.Background(), 50))
	assert.Equal(t, int64(50), e.cfg.CurrentDownload())
	require.ErrorIs(t, e.mgr.InstallArchive(context.Background(), 50, "/tmp/other.bin"), ErrBusy)

	require.NoError(t, e.mgr.Cancel(50))
	e.waitState(t, 50, library.StateDownloadable)
	e.waitIdle(t, 50)

	assert.Equal(t, library.StateDownloadable, title.State())
	assert.Zero(t, e.cfg.CurrentDownload())
	assert.Empty(t, e.inst.installCalls(), "cancel never installs")
	assert.Empty(t, title.Downloads())
}

func TestStartUpdate(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(url string) []catalog.Product {
		return []catalog.Product{product(url, 60, "Game", "2.0", "/upd/1")}
	})
	title := testhelpers.TitleIn(t, 60, "Game", library.PlatformLinux, library.StateUpdatable, "/games/Game")
	title.SetUpdates(2)
	e.mgr.Add(title)

	require.NoError(t, e.mgr.StartUpdate(context.Background(), 60))
	seen := e.waitState(t, 60, library.StateInstalled)
	e.waitIdle(t, 60)

	assert.Equal(t, []library.State{
		library.StateUpdateQueued, library.StateUpdateDownloading, library.StateUpdating, library.StateInstalled,
	}, seen)
	e.inst.mu.Lock()
	updates := e.inst.updates
	e.inst.mu.Unlock()
	require.Len(t, updates, 1)
	assert.Equal(t, filepath.Join(e.dirs.UpdateDir(), "60.bin"), updates[0].archive)
	assert.Equal(t, "/games/Game", updates[0].dir)
	assert.Equal(t, "2.0", title.InstalledVersion())
	assert.Zero(t, title.Updates())
}

func TestStartUpdate_CancelReturnsToInstalled(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(url string) []catalog.Product {
		return []catalog.Product{product(url, 61, "Game", "2.0", "/block/upd")}
	})
	title := testhelpers.TitleIn(t, 61, "Game", library.PlatformLinux, library.StateUpdatable, "/games/Game")
	e.mgr.Add(title)

	require.NoError(t, e.mgr.StartUpdate(context.Background(), 61))
	require.NoError(t, e.mgr.Cancel(61))
	e.waitState(t, 61, library.StateInstalled)
	e.waitIdle(t, 61)

	assert.Equal(t, "/games/Game", title.InstallDir())
}

func TestUpdate_FailureRevertsToUpdatable(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(string) []catalog.Product { return nil })
	e.inst.updateErr = &installer.ExitError{Path: "/tmp/setup.exe", Code: 2}
	title := testhelpers.TitleIn(t, 70, "Game", library.PlatformWindows, library.StateUpdatable, "/games/Game")
	e.mgr.Add(title)

	err := e.mgr.Update(context.Background(), 70, "/tmp/setup.exe")
	require.ErrorIs(t, err, installer.ErrInstallerExited)

	assert.Equal(t, library.StateUpdatable, title.State())
	assert.Equal(t, "/games/Game", title.InstallDir())
	assert.False(t, e.mgr.Busy(70))

	require.ErrorIs(t, e.mgr.Update(context.Background(), 99, "x"), ErrUnknownTitle)
}

func TestInstallArchive(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(string) []catalog.Product { return nil })
	title := library.NewTitle(80, "Local Game", library.PlatformLinux)
	e.mgr.Add(title)

	require.NoError(t, e.mgr.InstallArchive(context.Background(), 80, "/tmp/local.sh"))

	assert.Equal(t, library.StateInstalled, title.State())
	assert.Equal(t, filepath.Join(e.cfg.InstallDir(), "Local Game"), title.InstallDir())
	require.ErrorIs(t, e.mgr.InstallArchive(context.Background(), 80, "/tmp/local.sh"), library.ErrInvalidTransition)
}

func TestInstallArchive_DLCNeedsInstalledGame(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(string) []catalog.Product { return nil })
	game := library.NewTitle(90, "Game", library.PlatformLinux)
	dlc := library.NewTitle(91, "Expansion", library.PlatformLinux)
	dlc.Kind = library.KindDLC
	game.DLCs = []*library.Title{dlc}
	e.mgr.Add(game)

	err := e.mgr.InstallArchive(context.Background(), 91, "/tmp/dlc.sh")
	require.ErrorIs(t, err, ErrNotInstalled)
	assert.Equal(t, library.StateDownloadable, dlc.State())
	assert.Empty(t, e.inst.installCalls())
}

func TestRunInstall_FailureKeepsGuard(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(string) []catalog.Product { return nil })
	game := library.NewTitle(92, "Game", library.PlatformLinux)
	dlc := library.NewTitle(93, "Expansion", library.PlatformLinux)
	dlc.Kind = library.KindDLC
	game.DLCs = []*library.Title{dlc}
	e.mgr.Add(game)

	require.NoError(t, e.mgr.acquire(dlc, opPipeline))
	err := e.mgr.runInstall(context.Background(), dlc, "/tmp/dlc.sh")
	require.ErrorIs(t, err, ErrNotInstalled)
	assert.True(t, e.mgr.Busy(93), "guard belongs to the operation until it returns")

	e.mgr.release(93)
	assert.False(t, e.mgr.Busy(93))
}

func TestUninstall(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(string) []catalog.Product { return nil })
	game := testhelpers.TitleIn(t, 100, "Game", library.PlatformLinux, library.StateInstalled, "/games/Game")
	dlc := testhelpers.TitleIn(t, 101, "Expansion", library.PlatformLinux, library.StateInstalled, "/games/Game")
	dlc.Kind = library.KindDLC
	other := library.NewTitle(102, "Other DLC", library.PlatformLinux)
	other.Kind = library.KindDLC
	game.DLCs = []*library.Title{dlc, other}
	e.mgr.Add(game)

	require.ErrorIs(t, e.mgr.Uninstall(context.Background(), 101), ErrDLCUninstall)
	require.NoError(t, e.mgr.Uninstall(context.Background(), 100))

	assert.Equal(t, library.StateDownloadable, game.State())
	assert.Empty(t, game.InstallDir())
	assert.Equal(t, library.StateDownloadable, dlc.State())
	assert.Empty(t, dlc.InstallDir())
	assert.Empty(t, dlc.InstalledVersion())
	assert.Equal(t, library.StateDownloadable, other.State())
	assert.Equal(t, []int64{100}, e.inst.uninstalls)
	assert.Equal(t, library.StateDownloadable, e.stored(t, 101).State)

	require.ErrorIs(t, e.mgr.Uninstall(context.Background(), 100), ErrNotInstalled)
}

func TestLaunch(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(string) []catalog.Product { return nil })
	e.mgr.Add(library.NewTitle(110, "Not Installed", library.PlatformLinux))
	title := testhelpers.TitleIn(t, 111, "Game", library.PlatformLinux, library.StateInstalled, "/games/Game")
	e.mgr.Add(title)

	require.ErrorIs(t, e.mgr.Launch(context.Background(), 110), ErrNotInstalled)
	require.NoError(t, e.mgr.Launch(context.Background(), 111))

	assert.Equal(t, int32(1), e.launcher.launches.Load())
	assert.Equal(t, time.Minute, e.stored(t, 111).PlayTime)
}

func TestLaunch_FailureIsReported(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(string) []catalog.Product { return nil })
	e.launcher.err = &supervisor.LaunchError{Name: "Game", Detail: "wine: not found", Err: errors.New("exit status 1")}
	e.mgr.Add(testhelpers.TitleIn(t, 120, "Game", library.PlatformWindows, library.StateUpdatable, "/games/Game"))

	err := e.mgr.Launch(context.Background(), 120)
	require.ErrorIs(t, err, supervisor.ErrLaunchIO)

	failed := e.waitFor(t, func(n notifications.Notification) bool {
		return n.Method == notifications.MethodFailed
	})
	assert.Equal(t, "Failed to start Game:\nwine: not found", failed.Message)
	assert.False(t, e.mgr.Busy(120))
}

func TestLaunch_Busy(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(string) []catalog.Product { return nil })
	e.launcher.gate = make(chan struct{})
	e.launcher.entered = make(chan struct{}, 1)
	e.mgr.Add(testhelpers.TitleIn(t, 130, "Game", library.PlatformLinux, library.StateInstalled, "/games/Game"))

	done := make(chan error, 1)
	go func() {
		done <- e.mgr.Launch(context.Background(), 130)
	}()
	<-e.launcher.entered

	require.ErrorIs(t, e.mgr.Launch(context.Background(), 130), ErrBusy)
	require.ErrorIs(t, e.mgr.Uninstall(context.Background(), 130), ErrBusy)
	assert.Equal(t, "Please wait until the current operation has finished.",
		UserMessage(e.mgr.Uninstall(context.Background(), 130)))

	close(e.launcher.gate)
	require.NoError(t, <-done)
	require.NoError(t, e.mgr.Uninstall(context.Background(), 130))
}

func TestRecordSession(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(string) []catalog.Product { return nil })
	e.mgr.Add(testhelpers.TitleIn(t, 140, "Game", library.PlatformLinux, library.StateInstalled, "/games/Game"))

	start := time.Unix(1700000000, 0)
	e.mgr.RecordSession(supervisor.Session{TitleID: 140, Start: start, Duration: 3 * time.Second})
	e.mgr.RecordSession(supervisor.Session{
		TitleID: 140, Start: start.Add(time.Hour), Duration: time.Second, Err: supervisor.ErrLaunchIO,
	})

	sessions, err := e.store.Sessions(context.Background(), 140)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.False(t, sessions[0].Success)
	assert.True(t, sessions[1].Success)
	assert.Equal(t, 3*time.Second, sessions[1].Duration)

	n := e.waitFor(t, func(n notifications.Notification) bool {
		return n.Method == notifications.MethodSession
	})
	assert.Equal(t, "Game", n.Name)
}

func TestConfigureCompat(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(string) []catalog.Product { return nil })
	e.mgr.Add(testhelpers.TitleIn(t, 150, "Linux Game", library.PlatformLinux, library.StateInstalled, "/games/L"))
	e.mgr.Add(testhelpers.TitleIn(t, 151, "Windows Game", library.PlatformWindows, library.StateInstalled, "/games/W"))
	e.mgr.Add(library.NewTitle(152, "Missing", library.PlatformWindows))

	require.ErrorIs(t, e.mgr.ConfigureCompat(context.Background(), 150), installer.ErrPlatformUnsupported)
	require.ErrorIs(t, e.mgr.ConfigureCompat(context.Background(), 152), ErrNotInstalled)
	require.NoError(t, e.mgr.ConfigureCompat(context.Background(), 151))
	assert.Equal(t, int32(1), e.launcher.compat.Load())
}

func TestCheckUpdates(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(url string) []catalog.Product {
		return []catalog.Product{
			product(url, 160, "Outdated", "1.10", "/a"),
			product(url, 161, "Current", "1.0", "/b"),
			product(url, 163, "Not Installed", "9.0", "/d"),
		}
	})
	for _, id := range []int64{160, 161, 162} {
		title := testhelpers.TitleIn(t, id, "Title", library.PlatformLinux, library.StateDownloadable, "")
		title.SetAvailableVersion("1.0")
		require.NoError(t, e.mgr.InstallArchive(context.Background(), e.mgr.Add(title).ID, "/tmp/x.sh"))
	}
	e.mgr.Add(library.NewTitle(163, "Not Installed", library.PlatformLinux))

	updatable, err := e.mgr.CheckUpdates(context.Background())

	require.ErrorIs(t, err, catalog.ErrUnknownProduct, "162 is not in the catalog")
	assert.Equal(t, []int64{160}, updatable)

	outdated, _ := e.mgr.Title(160)
	assert.Equal(t, library.StateUpdatable, outdated.State())
	assert.Equal(t, 1, outdated.Updates())
	assert.Equal(t, "1.10", e.stored(t, 160).AvailableVersion)

	current, _ := e.mgr.Title(161)
	assert.Equal(t, library.StateInstalled, current.State())
	missing, _ := e.mgr.Title(163)
	assert.Equal(t, library.StateDownloadable, missing.State())
}

func TestLoad_SettlesInterruptedTitles(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(string) []catalog.Product { return nil })
	ctx := context.Background()
	save := func(title *library.Title) {
		require.NoError(t, e.store.SaveTitle(ctx, title.Record()))
	}

	save(testhelpers.TitleIn(t, 1, "Downloading", library.PlatformLinux, library.StateDownloading, ""))
	installing := testhelpers.TitleIn(t, 2, "Installing", library.PlatformLinux, library.StateInstalling, "/games/2")
	save(installing)
	save(testhelpers.TitleIn(t, 3, "Update Downloading", library.PlatformLinux, library.StateUpdateDownloading, "/games/3"))
	save(testhelpers.TitleIn(t, 4, "Updating", library.PlatformLinux, library.StateUpdating, "/games/4"))
	save(testhelpers.TitleIn(t, 5, "Installed", library.PlatformLinux, library.StateInstalled, "/games/5"))
	dlc := testhelpers.TitleIn(t, 6, "Installed DLC", library.PlatformLinux, library.StateInstalled, "/games/5")
	dlc.Kind = library.KindDLC
	dlc.ParentID = 5
	save(dlc)
	require.NoError(t, e.store.SaveTitle(ctx, library.Record{
		ID: 7, Name: "Broken", Platform: library.PlatformLinux, Kind: library.KindGame,
		State: library.StateInstalled,
	}))

	require.NoError(t, e.mgr.Load(ctx))

	want := map[int64]library.State{
		1: library.StateDownloadable,
		2: library.StateDownloadable,
		3: library.StateUpdatable,
		4: library.StateUpdatable,
		5: library.StateInstalled,
		6: library.StateInstalled,
	}
	for id, state := range want {
		title, err := e.mgr.Title(id)
		require.NoError(t, err)
		assert.Equal(t, state, title.State(), "title %d", id)
		assert.Equal(t, state, e.stored(t, id).State, "stored title %d", id)
	}

	_, err := e.mgr.Title(7)
	require.ErrorIs(t, err, ErrUnknownTitle, "invalid records are skipped")

	titles := e.mgr.Titles()
	require.Len(t, titles, 5)
	game, _ := e.mgr.Title(5)
	require.Len(t, game.DLCs, 1)
	assert.Equal(t, int64(6), game.DLCs[0].ID)
	assert.Equal(t, "/games/3", e.stored(t, 3).InstallDir)
	assert.Empty(t, e.stored(t, 2).InstallDir)
}

func TestResumePending(t *testing.T) {
	t.Parallel()

	t.Run("restarts_download", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, func(url string) []catalog.Product {
			return []catalog.Product{product(url, 170, "Game", "1.0", "/resume")}
		})
		e.add(t, 170)
		e.cfg.SetCurrentDownload(170)

		require.NoError(t, e.mgr.ResumePending(context.Background()))
		e.waitState(t, 170, library.StateInstalled)
		e.waitIdle(t, 170)
		assert.Zero(t, e.cfg.CurrentDownload())
	})

	t.Run("unknown_title", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, func(string) []catalog.Product { return nil })
		e.cfg.SetCurrentDownload(999)

		require.NoError(t, e.mgr.ResumePending(context.Background()))
		assert.Zero(t, e.cfg.CurrentDownload())
	})

	t.Run("already_installed", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, func(string) []catalog.Product { return nil })
		e.mgr.Add(testhelpers.TitleIn(t, 171, "Game", library.PlatformLinux, library.StateInstalled, "/games/Game"))
		e.cfg.SetCurrentDownload(171)

		require.NoError(t, e.mgr.ResumePending(context.Background()))
		assert.Zero(t, e.cfg.CurrentDownload())
		assert.False(t, e.mgr.Busy(171))
	})

	t.Run("nothing_pending", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, func(string) []catalog.Product { return nil })
		require.NoError(t, e.mgr.ResumePending(context.Background()))
	})
}

func TestArchivePath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("/cache/download", "42.bin"), ArchivePath("/cache/download", 42, 0))
	assert.Equal(t, filepath.Join("/cache/download", "42-3.bin"), ArchivePath("/cache/download", 42, 3))
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "busy", err: ErrBusy, want: "Please wait until the current operation has finished."},
		{
			name: "extraction",
			err:  &installer.Error{Path: "/dl/1.bin", Err: installer.ErrExtractionFailed},
			want: "/dl/1.bin could not be unpacked.",
		},
		{
			name: "installer_exit",
			err:  &installer.ExitError{Path: "/dl/setup.exe", Code: 1},
			want: "The installation of /dl/setup.exe failed. Please try again.",
		},
		{
			name: "launch",
			err:  &supervisor.LaunchError{Name: "Game", Detail: "segfault"},
			want: "Failed to start Game:\nsegfault",
		},
		{name: "other", err: ErrNotInstalled, want: "title is not installed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
