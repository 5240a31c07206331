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

package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from     State
		to       State
		expected bool
	}{
		{name: "queue download", from: StateDownloadable, to: StateQueued, expected: true},
		{name: "download starts", from: StateQueued, to: StateDownloading, expected: true},
		{name: "download finishes", from: StateDownloading, to: StateInstalling, expected: true},
		{name: "install finishes", from: StateInstalling, to: StateInstalled, expected: true},
		{name: "install fails", from: StateInstalling, to: StateDownloadable, expected: true},
		{name: "download cancelled", from: StateDownloading, to: StateDownloadable, expected: true},
		{name: "queue cancelled", from: StateQueued, to: StateDownloadable, expected: true},
		{name: "update found", from: StateInstalled, to: StateUpdatable, expected: true},
		{name: "update queued", from: StateUpdatable, to: StateUpdateQueued, expected: true},
		{name: "update downloading", from: StateUpdateQueued, to: StateUpdateDownloading, expected: true},
		{name: "update installing", from: StateUpdateDownloading, to: StateUpdating, expected: true},
		{name: "update finishes", from: StateUpdating, to: StateInstalled, expected: true},
		{name: "update fails", from: StateUpdating, to: StateUpdatable, expected: true},
		{name: "update cancelled", from: StateUpdateDownloading, to: StateInstalled, expected: true},
		{name: "uninstall", from: StateInstalled, to: StateUninstalling, expected: true},
		{name: "uninstall leftovers", from: StateDownloadable, to: StateUninstalling, expected: true},
		{name: "uninstall finishes", from: StateUninstalling, to: StateDownloadable, expected: true},
		{name: "install failure never advances", from: StateDownloading, to: StateInstalled, expected: false},
		{name: "skip download", from: StateDownloadable, to: StateInstalled, expected: false},
		{name: "update cancel never downgrades", from: StateUpdateDownloading, to: StateDownloadable, expected: false},
		{name: "no self loop", from: StateInstalled, to: StateInstalled, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, CanTransition(tt.from, tt.to))
		})
	}
}

func TestValidateTransition(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateTransition(StateQueued, StateDownloading))

	err := ValidateTransition(StateInstalled, StateDownloading)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(), "INSTALLED -> DOWNLOADING")
}

func TestStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "UPDATE_DOWNLOADING", StateUpdateDownloading.String())
	assert.Equal(t, "State(99)", State(99).String())

	for s := range stateNames {
		parsed, err := ParseState(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseState("PLAYING")
	require.Error(t, err)
}

func TestEveryStateHasTransitions(t *testing.T) {
	t.Parallel()

	for s := range stateNames {
		assert.NotEmpty(t, ValidTransitions[s], "state %s is a dead end", s)
	}
}
