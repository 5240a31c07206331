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

import "strings"

// CmdlineContainsMatcher matches processes whose cmdline contains a substring.
type CmdlineContainsMatcher struct {
	substring string
}

func NewCmdlineContainsMatcher(substring string) *CmdlineContainsMatcher {
	return &CmdlineContainsMatcher{substring: substring}
}

func (m *CmdlineContainsMatcher) Match(proc ProcessInfo) bool {
	return m.substring != "" && strings.Contains(proc.Cmdline, m.substring)
}

// ParentAboveMatcher matches processes whose parent PID is greater than
// pid. Processes started after pid usually have larger parent PIDs, so it
// is a cheap "started by us or later" filter.
type ParentAboveMatcher struct {
	pid int
}

func NewParentAboveMatcher(pid int) *ParentAboveMatcher {
	return &ParentAboveMatcher{pid: pid}
}

func (m *ParentAboveMatcher) Match(proc ProcessInfo) bool {
	return proc.PPID > m.pid
}

// AndMatcher combines multiple matchers with AND logic.
type AndMatcher struct {
	matchers []Matcher
}

func NewAndMatcher(matchers ...Matcher) *AndMatcher {
	return &AndMatcher{matchers: matchers}
}

func (m *AndMatcher) Match(proc ProcessInfo) bool {
	for _, matcher := range m.matchers {
		if !matcher.Match(proc) {
			return false
		}
	}
	return true
}
