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

package config

type Downloads struct {
	// CurrentDownload is the title whose download was in flight when the
	// process last exited, 0 when none.
	CurrentDownload int64 `toml:"current_download"`
}

func (c *Instance) CurrentDownload() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Downloads.CurrentDownload
}

func (c *Instance) SetCurrentDownload(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Downloads.CurrentDownload = id
}
