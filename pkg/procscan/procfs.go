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
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const defaultProcPath = "/proc"

// ProcFSLister reads the process table straight from procfs.
type ProcFSLister struct {
	procPath string
}

type ProcFSOption func(*ProcFSLister)

// WithProcPath sets a custom /proc path (for testing).
func WithProcPath(path string) ProcFSOption {
	return func(l *ProcFSLister) {
		l.procPath = path
	}
}

func NewProcFSLister(opts ...ProcFSOption) *ProcFSLister {
	l := &ProcFSLister{procPath: defaultProcPath}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *ProcFSLister) List(ctx context.Context) ([]ProcessInfo, error) {
	entries, err := os.ReadDir(l.procPath)
	if err != nil {
		return nil, fmt.Errorf("read proc directory: %w", err)
	}

	processes := make([]ProcessInfo, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("process scan cancelled: %w", err)
		}
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		proc, ok := l.read(pid)
		if !ok {
			continue
		}
		processes = append(processes, proc)
	}
	return processes, nil
}

// read collects comm, cmdline and parent PID. Processes that exit while
// being read are skipped.
func (l *ProcFSLister) read(pid int) (ProcessInfo, bool) {
	dir := filepath.Join(l.procPath, strconv.Itoa(pid))

	commData, err := os.ReadFile(filepath.Join(dir, "comm")) //nolint:gosec // G304: procPath is controlled
	if err != nil {
		return ProcessInfo{}, false
	}
	cmdlineData, _ := os.ReadFile(filepath.Join(dir, "cmdline")) //nolint:gosec // G304: procPath is controlled

	ppid := 0
	if statData, err := os.ReadFile(filepath.Join(dir, "stat")); err == nil { //nolint:gosec // G304: procPath is controlled
		ppid = parseStatPPID(string(statData))
	}

	return ProcessInfo{
		PID:     pid,
		PPID:    ppid,
		Comm:    strings.TrimSpace(string(commData)),
		Cmdline: strings.TrimSpace(strings.ReplaceAll(string(cmdlineData), "\x00", " ")),
	}, true
}

// parseStatPPID pulls the parent PID out of /proc/<pid>/stat. The comm
// field may itself contain spaces and parentheses, so fields are counted
// from the last ')'.
func parseStatPPID(stat string) int {
	end := strings.LastIndexByte(stat, ')')
	if end < 0 {
		return 0
	}
	fields := strings.Fields(stat[end+1:])
	if len(fields) < 2 {
		return 0
	}
	ppid, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0
	}
	return ppid
}
