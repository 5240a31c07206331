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

package database

import (
	"database/sql"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goodoldgalaxy/galaxy-core/pkg/helpers/syncutil"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

// goose keeps its base filesystem, dialect and logger in package globals,
// so every call into it goes through this lock.
var migrationMutex syncutil.Mutex

type gooseLogger struct{}

func (*gooseLogger) Printf(format string, v ...any) {
	log.Debug().Msgf(strings.TrimSuffix(format, "\n"), v...)
}

func (*gooseLogger) Fatalf(format string, v ...any) {
	log.Fatal().Msgf(strings.TrimSuffix(format, "\n"), v...)
}

func setupGoose(files fs.FS) error {
	goose.SetLogger(&gooseLogger{})
	goose.SetBaseFS(files)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("error setting goose dialect: %w", err)
	}
	return nil
}

// MigrateUp applies every migration under dir in files that db has not
// seen yet.
func MigrateUp(db *sql.DB, files fs.FS, dir string) error {
	migrationMutex.Lock()
	defer migrationMutex.Unlock()

	if err := setupGoose(files); err != nil {
		return err
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("error running migrations up: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("error reading schema version: %w", err)
	}
	log.Info().Int64("schema_version", version).Msg("database schema up to date")
	return nil
}

// SchemaVersion is the newest migration applied to db, 0 for a fresh one.
func SchemaVersion(db *sql.DB, files fs.FS) (int64, error) {
	migrationMutex.Lock()
	defer migrationMutex.Unlock()

	if err := setupGoose(files); err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("error reading schema version: %w", err)
	}
	return version, nil
}
