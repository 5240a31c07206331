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

// Package launcher works out how an installed title is started by looking
// at the files in its install directory.
package launcher

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goodoldgalaxy/galaxy-core/pkg/helpers/syncutil"
)

type Kind int

const (
	Unresolvable Kind = iota
	Windows
	DOSBox
	ScummVM
	StartScript
	FinalResort
)

func (k Kind) String() string {
	switch k {
	case Windows:
		return "windows"
	case DOSBox:
		return "dosbox"
	case ScummVM:
		return "scummvm"
	case StartScript:
		return "start_script"
	case FinalResort:
		return "final_resort"
	default:
		return "unresolvable"
	}
}

// Strategy is a resolved way of starting a title. Args[0] is the program,
// Dir the working directory for the child and Env extra variables on top
// of the inherited environment.
type Strategy struct {
	Dir  string
	Args []string
	Env  []string
	Kind Kind
}

func (s Strategy) String() string {
	return fmt.Sprintf("%s: %s", s.Kind, strings.Join(s.Args, " "))
}

var ErrNoExecutableFound = errors.New("no executable found")

// NotFoundError is returned when nothing in Dir can be launched.
type NotFoundError struct {
	Dir string
}

func (e *NotFoundError) Error() string {
	return "no executable was found in " + e.Dir
}

func (*NotFoundError) Is(target error) bool {
	return target == ErrNoExecutableFound
}

// UserMessage is the text shown when a title cannot be resolved.
func UserMessage(err error) string {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return "No executable was found in " + nf.Dir
	}
	return err.Error()
}

// WorkdirLock guards the process working directory. Anything that changes
// or depends on the current directory while a title starts must hold it.
var WorkdirLock syncutil.Mutex
