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
	"context"
	"os"
	"path/filepath"

	"github.com/goodoldgalaxy/galaxy-core/pkg/helpers/command"
	"github.com/rs/zerolog/log"
)

// Verifier runs an installer's built-in integrity check.
type Verifier struct {
	cmd command.Executor
}

func NewVerifier(cmd command.Executor) *Verifier {
	return &Verifier{cmd: cmd}
}

// Verify marks the archive executable and runs it with --check. Only a zero
// exit makes the archive trusted, every other outcome is untrusted and no
// error is returned. The executable bit stays set either way.
func (v *Verifier) Verify(ctx context.Context, archivePath string) bool {
	// a bare file name would be looked up in PATH instead of run in place
	abs, err := filepath.Abs(archivePath)
	if err != nil {
		log.Warn().Err(err).Msgf("could not resolve installer path: %s", archivePath)
		return false
	}
	archivePath = abs
	log.Info().Msgf("verifying installer: %s", archivePath)

	//nolint:gosec // the installer must be executable to run its self-check
	if err := os.Chmod(archivePath, 0o744); err != nil {
		log.Warn().Err(err).Msgf("could not mark installer executable: %s", archivePath)
		return false
	}

	if err := v.cmd.Run(ctx, archivePath, "--check"); err != nil {
		log.Warn().Err(err).Msgf("installer failed self-check: %s", archivePath)
		return false
	}

	return true
}
