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

	"github.com/goodoldgalaxy/galaxy-core/pkg/installer"
	"github.com/goodoldgalaxy/galaxy-core/pkg/supervisor"
)

// UserMessage is the text shown to the user for an error returned by any
// manager operation.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		pipelineErr *installer.Error
		exitErr     *installer.ExitError
	)
	switch {
	case errors.Is(err, ErrBusy):
		return "Please wait until the current operation has finished."
	case errors.As(err, &pipelineErr), errors.As(err, &exitErr):
		return installer.UserMessage(err)
	default:
		return supervisor.UserMessage(err)
	}
}
