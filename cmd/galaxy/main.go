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

package main

import (
	"fmt"
	"os"

	"github.com/goodoldgalaxy/galaxy-core/pkg/cli"
	"github.com/rs/zerolog/log"
)

func main() {
	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	if os.Geteuid() == 0 {
		_, _ = fmt.Fprintln(os.Stderr, "Error: galaxy cannot be run as root")
		os.Exit(1)
	}

	cli.Execute()
}
