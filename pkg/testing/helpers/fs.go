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
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// FSHelper provides utilities for filesystem mocking in tests
type FSHelper struct {
	Fs afero.Fs
}

// NewMemoryFS creates a new in-memory filesystem for testing
func NewMemoryFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewMemMapFs(),
	}
}

// WriteFiles creates each file under root with the given content, making
// parent directories as needed.
func (h *FSHelper) WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, h.Fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(h.Fs, path, []byte(content), 0o644))
	}
}

// WriteTree is WriteFiles against the real filesystem.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	(&FSHelper{Fs: afero.NewOsFs()}).WriteFiles(t, root, files)
}

// ArchiveEntry is one member of a test installer archive.
type ArchiveEntry struct {
	Content string
	// Link makes the entry a symlink pointing at Link.
	Link string
	Mode os.FileMode
	Dir  bool
}

// InstallerStub is the shell header GOG's Linux installers carry in front
// of their zip payload.
const InstallerStub = "#!/bin/sh\n# makeself-style header\nexit 0\n"

// BuildInstaller writes a self-extracting style installer at path: a shell
// header followed by a zip holding entries.
func BuildInstaller(t *testing.T, path string, entries map[string]ArchiveEntry) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path) //nolint:gosec // test fixture path
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	_, err = f.WriteString(InstallerStub)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	zw.SetOffset(int64(len(InstallerStub)))

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		e := entries[name]
		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
		switch {
		case e.Dir:
			hdr.Name += "/"
			hdr.SetMode(os.ModeDir | 0o755)
		case e.Link != "":
			hdr.SetMode(os.ModeSymlink | 0o777)
		case e.Mode != 0:
			hdr.SetMode(e.Mode)
		default:
			hdr.SetMode(0o644)
		}
		w, err := zw.CreateHeader(hdr)
		require.NoError(t, err)
		body := e.Content
		if e.Link != "" {
			body = e.Link
		}
		if !e.Dir {
			_, err = w.Write([]byte(body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
}
