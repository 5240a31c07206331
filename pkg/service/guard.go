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

package service

import (
	"errors"
	"fmt"

	"github.com/goodoldgalaxy/galaxy-core/pkg/library"
)

var ErrBusy = errors.New("another operation is running")

// operation is what currently owns a title. A title has at most one.
type operation int

const (
	opPipeline operation = iota + 1
	opSupervisor
)

func (o operation) String() string {
	switch o {
	case opPipeline:
		return "install pipeline"
	case opSupervisor:
		return "launch"
	default:
		return "unknown"
	}
}

// acquire claims t for op or fails with ErrBusy without waiting.
func (m *Manager) acquire(t *library.Title, op operation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.busy[t.ID]; ok {
		return fmt.Errorf("%s: %s: %w", t.Name, cur, ErrBusy)
	}
	m.busy[t.ID] = op
	return nil
}

func (m *Manager) release(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.busy, id)
}

// Busy reports whether an operation currently owns the title.
func (m *Manager) Busy(id int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.busy[id]
	return ok
}
