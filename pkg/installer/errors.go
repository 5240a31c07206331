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

package installer

import (
	"errors"
	"fmt"
)

var (
	ErrSourceMissing       = errors.New("installer file missing")
	ErrCorruptArchive      = errors.New("installer failed its integrity check")
	ErrExtractionFailed    = errors.New("installer could not be unpacked")
	ErrPlatformUnsupported = errors.New("platform not supported")
	ErrInstallerExited     = errors.New("installer exited with an error")
)

// Error ties a pipeline failure to the archive it happened on.
type Error struct {
	Err  error
	Path string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitError is a Windows installer that ran but exited non-zero, or could
// not be started at all (Code -1). Files it wrote are left in place.
type ExitError struct {
	Err  error
	Path string
	Code int
}

func (e *ExitError) Error() string {
	if e.Code < 0 {
		return fmt.Sprintf("%s: installer could not be started: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s: installer exited with code %d", e.Path, e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func (*ExitError) Is(target error) bool {
	return target == ErrInstallerExited
}

// UserMessage turns a pipeline error into the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return fmt.Sprintf("The installation of %s failed. Please try again.", exitErr.Path)
	}

	path := ""
	var pathErr *Error
	if errors.As(err, &pathErr) {
		path = pathErr.Path
	}

	switch {
	case errors.Is(err, ErrSourceMissing):
		return fmt.Sprintf("%s failed to download.", path)
	case errors.Is(err, ErrCorruptArchive):
		return fmt.Sprintf("%s was corrupted. Please download it again.", path)
	case errors.Is(err, ErrExtractionFailed):
		return fmt.Sprintf("%s could not be unpacked.", path)
	case errors.Is(err, ErrPlatformUnsupported):
		return fmt.Sprintf("%s platform not supported.", path)
	default:
		return err.Error()
	}
}
