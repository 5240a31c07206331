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
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/goodoldgalaxy/galaxy-core/pkg/testing/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_UnpacksPayload(t *testing.T) {
	t.Parallel()

	archive := filepath.Join(t.TempDir(), "game.sh")
	helpers.BuildInstaller(t, archive, map[string]helpers.ArchiveEntry{
		"data/noarch/start.sh":         {Content: "#!/bin/sh\n", Mode: 0o755},
		"data/noarch/support/icon.png": {Content: "png"},
		"data/noarch/game/lib":         {Link: "../support"},
		"data/noarch/empty":            {Dir: true},
	})
	root := filepath.Join(t.TempDir(), "extract")

	var seen string
	err := NewExtractor(root).Extract(context.Background(), archive, 42, func(dir string) error {
		seen = dir
		data, err := os.ReadFile(filepath.Join(dir, "data", "noarch", "start.sh")) //nolint:gosec // test path
		require.NoError(t, err)
		assert.Equal(t, "#!/bin/sh\n", string(data))

		info, err := os.Stat(filepath.Join(dir, "data", "noarch", "start.sh"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

		link, err := os.Readlink(filepath.Join(dir, "data", "noarch", "game", "lib"))
		require.NoError(t, err)
		assert.Equal(t, "../support", link)

		assert.DirExists(t, filepath.Join(dir, "data", "noarch", "empty"))
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "42"), seen)
	assert.NoDirExists(t, seen, "scratch directory is removed afterwards")
	assert.FileExists(t, archive)
}

func TestExtract_ClearsScratchRoot(t *testing.T) {
	t.Parallel()

	archive := filepath.Join(t.TempDir(), "game.sh")
	helpers.BuildInstaller(t, archive, map[string]helpers.ArchiveEntry{
		"data/noarch/start.sh": {Content: "x"},
	})
	root := filepath.Join(t.TempDir(), "extract")
	helpers.WriteTree(t, root, map[string]string{"7/leftover.txt": "stale"})

	err := NewExtractor(root).Extract(context.Background(), archive, 42, func(string) error {
		entries, err := os.ReadDir(root)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "42", entries[0].Name())
		return nil
	})
	require.NoError(t, err)
}

func TestExtract_ZeroEntries(t *testing.T) {
	t.Parallel()

	archive := filepath.Join(t.TempDir(), "empty.sh")
	helpers.BuildInstaller(t, archive, map[string]helpers.ArchiveEntry{})

	called := false
	err := NewExtractor(filepath.Join(t.TempDir(), "extract")).Extract(
		context.Background(), archive, 1,
		func(string) error { called = true; return nil },
	)

	require.ErrorIs(t, err, ErrExtractionFailed)
	assert.False(t, called)
	assert.FileExists(t, archive)
}

func TestExtract_NotAZip(t *testing.T) {
	t.Parallel()

	archive := filepath.Join(t.TempDir(), "broken.sh")
	require.NoError(t, os.WriteFile(archive, []byte("#!/bin/sh\nexit 0\n"), 0o600))

	err := NewExtractor(filepath.Join(t.TempDir(), "extract")).Extract(
		context.Background(), archive, 1, func(string) error { return nil },
	)

	require.ErrorIs(t, err, ErrExtractionFailed)
	var pathErr *Error
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, archive, pathErr.Path)
}

func TestExtract_SkipsEntriesOutsideRoot(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	archive := filepath.Join(base, "evil.sh")
	helpers.BuildInstaller(t, archive, map[string]helpers.ArchiveEntry{
		"../../escaped.txt":    {Content: "nope"},
		"data/noarch/start.sh": {Content: "x"},
	})
	root := filepath.Join(base, "cache", "extract")

	err := NewExtractor(root).Extract(context.Background(), archive, 1, func(string) error { return nil })

	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(base, "cache", "escaped.txt"))
	assert.NoFileExists(t, filepath.Join(base, "escaped.txt"))
}

func TestExtract_Serialised(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	archive := filepath.Join(base, "game.sh")
	helpers.BuildInstaller(t, archive, map[string]helpers.ArchiveEntry{
		"data/noarch/start.sh": {Content: "x"},
	})
	ex := NewExtractor(filepath.Join(base, "extract"))

	var active, peak atomic.Int32
	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			err := ex.Extract(context.Background(), archive, id, func(string) error {
				n := active.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				active.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak.Load())
}

func TestExtract_CancelledWhileWaiting(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	archive := filepath.Join(base, "game.sh")
	helpers.BuildInstaller(t, archive, map[string]helpers.ArchiveEntry{
		"data/noarch/start.sh": {Content: "x"},
	})
	ex := NewExtractor(filepath.Join(base, "extract"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// hold the scratch root so the second call has to wait
	require.NoError(t, scratchLock.Acquire(context.Background(), 1))
	err := ex.Extract(ctx, archive, 1, func(string) error { return nil })
	scratchLock.Release(1)

	require.ErrorIs(t, err, context.Canceled)
}
