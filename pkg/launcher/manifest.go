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

package launcher

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
)

var reManifest = regexp.MustCompile(`^goggame-[0-9]*\.info$`)

// Manifest is the goggame-<id>.info file GOG ships with most builds. Only
// the play tasks are read.
type Manifest struct {
	PlayTasks []PlayTask `json:"playTasks"`
}

type PlayTask struct {
	Path       string `json:"path"`
	WorkingDir string `json:"workingDir,omitempty"`
}

// FindManifest picks the manifest out of a directory listing, or returns
// "" if there is none. With several manifests the lowest name wins.
func FindManifest(names []string) string {
	matches := make([]string, 0, 1)
	for _, name := range names {
		if reManifest.MatchString(name) {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return ""
	}
	slices.Sort(matches)
	return matches[0]
}

// ReadManifest parses path and returns its first play task.
func ReadManifest(path string) (PlayTask, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from a directory listing
	if err != nil {
		return PlayTask{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return PlayTask{}, fmt.Errorf("failed to parse manifest %s: %w", filepath.Base(path), err)
	}
	if len(m.PlayTasks) == 0 || m.PlayTasks[0].Path == "" {
		return PlayTask{}, fmt.Errorf("manifest %s has no play task", filepath.Base(path))
	}
	return m.PlayTasks[0], nil
}
