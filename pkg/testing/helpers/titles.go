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
	"testing"

	"github.com/goodoldgalaxy/galaxy-core/pkg/library"
	"github.com/stretchr/testify/require"
)

// TitleIn builds a title and walks it through the lifecycle until it
// reaches state. States in the installed family get installDir.
func TitleIn(
	t *testing.T,
	id int64,
	name string,
	platform library.Platform,
	state library.State,
	installDir string,
) *library.Title {
	t.Helper()

	title := library.NewTitle(id, name, platform)
	for _, step := range pathTo(state) {
		dir := ""
		if step.HasInstallDir() {
			dir = installDir
		}
		require.NoError(t, title.Transition(step, dir))
	}
	return title
}

func pathTo(state library.State) []library.State {
	q, d, i := library.StateQueued, library.StateDownloading, library.StateInstalling
	ok, up := library.StateInstalled, library.StateUpdatable

	switch state {
	case library.StateDownloadable:
		return nil
	case library.StateQueued:
		return []library.State{q}
	case library.StateDownloading:
		return []library.State{q, d}
	case library.StateInstalling:
		return []library.State{q, d, i}
	case library.StateInstalled:
		return []library.State{q, d, i, ok}
	case library.StateUpdatable:
		return []library.State{q, d, i, ok, up}
	case library.StateUpdateQueued:
		return []library.State{q, d, i, ok, up, library.StateUpdateQueued}
	case library.StateUpdateDownloading:
		return []library.State{q, d, i, ok, up, library.StateUpdateQueued, library.StateUpdateDownloading}
	case library.StateUpdating:
		return []library.State{q, d, i, ok, up, library.StateUpdateQueued, library.StateUpdating}
	case library.StateUninstalling:
		return []library.State{q, d, i, ok, library.StateUninstalling}
	default:
		return nil
	}
}
