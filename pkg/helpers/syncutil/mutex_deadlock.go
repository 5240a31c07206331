//go:build deadlock

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

package syncutil

import (
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

// DeadlockEnabled reports whether lock-order checking was compiled in.
const DeadlockEnabled = true

func init() {
	// Installs can hold the library lock across a slow placement, keep the
	// detector from firing on those.
	deadlock.Opts.DeadlockTimeout = 2 * time.Minute
}

// Mutex is a drop-in sync.Mutex that reports potential deadlocks.
type Mutex struct {
	deadlock.Mutex
}

// RWMutex is a drop-in sync.RWMutex that reports potential deadlocks.
type RWMutex struct {
	deadlock.RWMutex
}
