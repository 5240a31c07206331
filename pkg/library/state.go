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
	"errors"
	"fmt"
)

// State is where a title is in its download, install and update lifecycle.
type State int

const (
	StateDownloadable State = iota
	StateQueued
	StateDownloading
	StateInstalling
	StateInstalled
	StateUpdatable
	StateUpdateQueued
	StateUpdateDownloading
	StateUpdating
	StateUninstalling
)

var ErrInvalidTransition = errors.New("invalid state transition")

var stateNames = map[State]string{
	StateDownloadable:      "DOWNLOADABLE",
	StateQueued:            "QUEUED",
	StateDownloading:       "DOWNLOADING",
	StateInstalling:        "INSTALLING",
	StateInstalled:         "INSTALLED",
	StateUpdatable:         "UPDATABLE",
	StateUpdateQueued:      "UPDATE_QUEUED",
	StateUpdateDownloading: "UPDATE_DOWNLOADING",
	StateUpdating:          "UPDATING",
	StateUninstalling:      "UNINSTALLING",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ParseState is the inverse of State.String.
func ParseState(name string) (State, error) {
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown state %q", name)
}

// ValidTransitions lists the states reachable from each state.
//
// DOWNLOADABLE and QUEUED may go straight to INSTALLING for archives that are
// already on disk, either retained from an earlier install or downloaded
// without any progress being reported.
var ValidTransitions = map[State][]State{
	StateDownloadable:      {StateQueued, StateInstalling, StateUninstalling},
	StateQueued:            {StateDownloading, StateInstalling, StateDownloadable},
	StateDownloading:       {StateInstalling, StateDownloadable},
	StateInstalling:        {StateInstalled, StateDownloadable},
	StateInstalled:         {StateUpdatable, StateUninstalling},
	StateUpdatable:         {StateUpdateQueued, StateUninstalling, StateInstalled},
	StateUpdateQueued:      {StateUpdateDownloading, StateUpdating, StateInstalled},
	StateUpdateDownloading: {StateUpdating, StateInstalled},
	StateUpdating:          {StateInstalled, StateUpdatable},
	StateUninstalling:      {StateDownloadable},
}

// CanTransition reports whether moving from one state to another is allowed.
func CanTransition(from, to State) bool {
	for _, s := range ValidTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ValidateTransition is CanTransition as an error.
func ValidateTransition(from, to State) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// HasInstallDir reports whether a title in state s has files on disk and
// therefore an install directory.
func (s State) HasInstallDir() bool {
	switch s {
	case StateInstalling, StateInstalled, StateUpdatable, StateUpdateQueued,
		StateUpdateDownloading, StateUpdating, StateUninstalling:
		return true
	case StateDownloadable, StateQueued, StateDownloading:
		return false
	default:
		return false
	}
}

// IsUpdate reports whether s belongs to the update flavour of the lifecycle.
func (s State) IsUpdate() bool {
	return s == StateUpdateQueued || s == StateUpdateDownloading || s == StateUpdating
}
