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

// Package notifications defines the events the library manager publishes
// for whatever presents the library to the user.
package notifications

import "github.com/goodoldgalaxy/galaxy-core/pkg/library"

type Method string

const (
	MethodStateChanged Method = "title.state"
	MethodProgress     Method = "title.progress"
	MethodFailed       Method = "title.failed"
	MethodSession      Method = "title.session"
)

// Notification is one event about a title. Fields not relevant to the
// method are zero.
type Notification struct {
	Method  Method
	Name    string
	Message string
	TitleID int64
	State   library.State
	Percent int
}

func StateChanged(ns chan<- Notification, id int64, name string, state library.State) {
	ns <- Notification{
		Method:  MethodStateChanged,
		TitleID: id,
		Name:    name,
		State:   state,
	}
}

func Progress(ns chan<- Notification, id int64, name string, percent int) {
	ns <- Notification{
		Method:  MethodProgress,
		TitleID: id,
		Name:    name,
		Percent: percent,
	}
}

// Failed carries the user-facing message of an operation that failed.
func Failed(ns chan<- Notification, id int64, name, message string) {
	ns <- Notification{
		Method:  MethodFailed,
		TitleID: id,
		Name:    name,
		Message: message,
	}
}

func Session(ns chan<- Notification, id int64, name, message string) {
	ns <- Notification{
		Method:  MethodSession,
		TitleID: id,
		Name:    name,
		Message: message,
	}
}
