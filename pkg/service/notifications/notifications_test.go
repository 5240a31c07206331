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

package notifications

import (
	"testing"

	"github.com/goodoldgalaxy/galaxy-core/pkg/library"
	"github.com/stretchr/testify/assert"
)

func TestSenders(t *testing.T) {
	t.Parallel()

	ns := make(chan Notification, 4)

	StateChanged(ns, 1, "Game", library.StateInstalling)
	Progress(ns, 1, "Game", 42)
	Failed(ns, 1, "Game", "boom")
	Session(ns, 1, "Game", "played for 1m0s")

	assert.Equal(t, Notification{Method: MethodStateChanged, TitleID: 1, Name: "Game", State: library.StateInstalling}, <-ns)
	assert.Equal(t, Notification{Method: MethodProgress, TitleID: 1, Name: "Game", Percent: 42}, <-ns)
	assert.Equal(t, Notification{Method: MethodFailed, TitleID: 1, Name: "Game", Message: "boom"}, <-ns)
	assert.Equal(t, Notification{Method: MethodSession, TitleID: 1, Name: "Game", Message: "played for 1m0s"}, <-ns)
}
