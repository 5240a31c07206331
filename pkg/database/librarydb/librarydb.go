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

// Package librarydb persists the title library and play sessions in
// SQLite.
package librarydb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goodoldgalaxy/galaxy-core/pkg/database"
	"github.com/goodoldgalaxy/galaxy-core/pkg/library"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Session is one launch attempt of a title.
type Session struct {
	Start    time.Time
	ID       string
	TitleID  int64
	Duration time.Duration
	Success  bool
}

// NewSession returns a session with a fresh ID.
func NewSession(titleID int64, start time.Time, duration time.Duration, success bool) Session {
	return Session{
		ID:       uuid.New().String(),
		TitleID:  titleID,
		Start:    start,
		Duration: duration,
		Success:  success,
	}
}

type LibraryDB struct {
	sql *sql.DB
}

// Open opens (creating if needed) the library database at path and brings
// its schema up to date.
func Open(ctx context.Context, path string) (*LibraryDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory for database: %w", err)
	}
	sqlInstance, err := sql.Open("sqlite3", path+database.SQLiteConnParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := sqlInstance.PingContext(ctx); err != nil {
		_ = sqlInstance.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db := &LibraryDB{sql: sqlInstance}
	if err := db.MigrateUp(); err != nil {
		_ = sqlInstance.Close()
		return nil, err
	}
	return db, nil
}

// NewWithSQL wraps an existing connection, for tests. The schema is not
// touched.
func NewWithSQL(sqlDB *sql.DB) *LibraryDB {
	return &LibraryDB{sql: sqlDB}
}

func (db *LibraryDB) MigrateUp() error {
	if db.sql == nil {
		return database.ErrNullSQL
	}
	return sqlMigrateUp(db.sql)
}

// SchemaVersion is the newest migration applied to the database.
func (db *LibraryDB) SchemaVersion() (int64, error) {
	if db.sql == nil {
		return 0, database.ErrNullSQL
	}
	return database.SchemaVersion(db.sql, migrationFiles)
}

func (db *LibraryDB) Close() error {
	if db.sql == nil {
		return nil
	}
	if err := db.sql.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// SaveTitle inserts or replaces a title.
func (db *LibraryDB) SaveTitle(ctx context.Context, rec library.Record) error {
	if db.sql == nil {
		return database.ErrNullSQL
	}
	return sqlSaveTitle(ctx, db.sql, rec)
}

// LoadTitles returns every stored title, ordered by ID.
func (db *LibraryDB) LoadTitles(ctx context.Context) ([]library.Record, error) {
	if db.sql == nil {
		return nil, database.ErrNullSQL
	}
	return sqlLoadTitles(ctx, db.sql)
}

// DeleteTitle removes a title and its play sessions.
func (db *LibraryDB) DeleteTitle(ctx context.Context, id int64) error {
	if db.sql == nil {
		return database.ErrNullSQL
	}
	return sqlDeleteTitle(ctx, db.sql, id)
}

func (db *LibraryDB) AddSession(ctx context.Context, s Session) error {
	if db.sql == nil {
		return database.ErrNullSQL
	}
	return sqlAddSession(ctx, db.sql, s)
}

// Sessions returns a title's play sessions, newest first.
func (db *LibraryDB) Sessions(ctx context.Context, titleID int64) ([]Session, error) {
	if db.sql == nil {
		return nil, database.ErrNullSQL
	}
	return sqlSessions(ctx, db.sql, titleID)
}
