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

package procscan

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
)

// SuccessorDetector reports whether a title is running after its launch
// command already exited: some process whose parent PID is above ours has
// the title name on its command line.
type SuccessorDetector struct {
	lister  Lister
	selfPID int
}

func NewSuccessorDetector(lister Lister) *SuccessorDetector {
	return &SuccessorDetector{lister: lister, selfPID: os.Getpid()}
}

// IsRunning implements the supervisor's running check.
func (d *SuccessorDetector) IsRunning(ctx context.Context, name string) (bool, error) {
	m := NewAndMatcher(
		NewParentAboveMatcher(d.selfPID),
		NewCmdlineContainsMatcher(name),
	)
	proc, ok, err := Find(ctx, d.lister, m)
	if err != nil {
		return false, err
	}
	if ok {
		log.Debug().Int("pid", proc.PID).Int("ppid", proc.PPID).Msgf("found successor for %s", name)
	}
	return ok, nil
}
