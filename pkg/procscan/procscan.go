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

// Package procscan enumerates host processes and answers whether a title
// is running, which is how a launch that hands off to a detached child is
// told apart from one that died.
package procscan

import (
	"context"
	"os"
	"runtime"
)

// ProcessInfo contains information about a running process.
type ProcessInfo struct {
	Comm    string
	Cmdline string
	PID     int
	PPID    int
}

// Matcher determines if a process is of interest.
type Matcher interface {
	Match(proc ProcessInfo) bool
}

// Lister returns a snapshot of the process table.
type Lister interface {
	List(ctx context.Context) ([]ProcessInfo, error)
}

// DefaultLister reads /proc directly on Linux and asks gopsutil elsewhere.
func DefaultLister() Lister {
	if runtime.GOOS == "linux" {
		if _, err := os.Stat(defaultProcPath); err == nil {
			return NewProcFSLister()
		}
	}
	return GopsutilLister{}
}

// Find returns the first listed process m matches.
func Find(ctx context.Context, l Lister, m Matcher) (ProcessInfo, bool, error) {
	procs, err := l.List(ctx)
	if err != nil {
		return ProcessInfo{}, false, err
	}
	for _, p := range procs {
		if m.Match(p) {
			return p, true, nil
		}
	}
	return ProcessInfo{}, false, nil
}
