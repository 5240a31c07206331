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

package librarydb

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/goodoldgalaxy/galaxy-core/pkg/database"
	"github.com/goodoldgalaxy/galaxy-core/pkg/library"
	testsqlmock "github.com/goodoldgalaxy/galaxy-core/pkg/testing/sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var titleColumns = []string{
	"DBID", "ParentID", "Name", "Platform", "Kind", "Language", "InstallDir",
	"InstalledVersion", "AvailableVersion", "Updates", "State", "PlayTime", "LastPlayed",
}

func TestSqlSaveTitle_Success(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rec := library.Record{
		ID:               1207658924,
		Name:             "Beneath a Steel Sky",
		Platform:         library.PlatformLinux,
		Kind:             library.KindGame,
		Language:         "en",
		InstallDir:       "/games/Beneath a Steel Sky",
		InstalledVersion: "1.0",
		AvailableVersion: "1.1",
		Updates:          1,
		State:            library.StateUpdatable,
		PlayTime:         90*time.Second + 400*time.Millisecond,
		LastPlayed:       time.Unix(1700000000, 0),
	}

	mock.ExpectPrepare(`insert or replace into Titles.*values`).
		ExpectExec().
		WithArgs(
			rec.ID, rec.ParentID, rec.Name, "linux", "game", "en", rec.InstallDir,
			"1.0", "1.1", 1, "UPDATABLE", int64(90), int64(1700000000),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, sqlSaveTitle(context.Background(), db, rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlSaveTitle_NeverPlayedIsNull(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rec := library.Record{ID: 5, Name: "Teenagent", Platform: library.PlatformLinux, Kind: library.KindGame}

	args := make([]driver.Value, 0, len(titleColumns))
	for range titleColumns[:len(titleColumns)-1] {
		args = append(args, sqlmock.AnyArg())
	}
	args = append(args, nil)

	mock.ExpectPrepare(`insert or replace into Titles`).
		ExpectExec().
		WithArgs(args...).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, sqlSaveTitle(context.Background(), db, rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlSaveTitle_DatabaseError(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectPrepare(`insert or replace into Titles`).
		ExpectExec().
		WillReturnError(sqlmock.ErrCancelled)

	err = sqlSaveTitle(context.Background(), db, library.Record{ID: 1, Name: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute title insert")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlLoadTitles_Success(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows(titleColumns).
		AddRow(1, 0, "Game", "linux", "game", "en", "/games/Game", "2.0", "2.0", 0, "INSTALLED", 3600, 1700000000).
		AddRow(2, 1, "Game Soundtrack", "macos", "dlc", "en", "", "", "1.0", 0, "DOWNLOADABLE", 0, nil)
	mock.ExpectQuery(`select .* from Titles`).WillReturnRows(rows)

	recs, err := sqlLoadTitles(context.Background(), db)

	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, library.StateInstalled, recs[0].State)
	assert.Equal(t, time.Hour, recs[0].PlayTime)
	assert.Equal(t, time.Unix(1700000000, 0), recs[0].LastPlayed)
	assert.Equal(t, library.PlatformUnsupported, recs[1].Platform)
	assert.Equal(t, library.KindDLC, recs[1].Kind)
	assert.Equal(t, int64(1), recs[1].ParentID)
	assert.True(t, recs[1].LastPlayed.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlLoadTitles_UnknownState(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows(titleColumns).
		AddRow(1, 0, "Game", "linux", "game", "en", "", "", "", 0, "PAUSED", 0, nil)
	mock.ExpectQuery(`select .* from Titles`).WillReturnRows(rows)

	_, err = sqlLoadTitles(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown state")
}

func TestSqlDeleteTitle(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec(`delete from PlaySessions`).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`delete from Titles`).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, sqlDeleteTitle(context.Background(), db, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlDeleteTitle_RollsBack(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec(`delete from PlaySessions`).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`delete from Titles`).WithArgs(int64(7)).WillReturnError(sqlmock.ErrCancelled)
	mock.ExpectRollback()

	require.Error(t, sqlDeleteTitle(context.Background(), db, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlAddSession(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	s := Session{
		ID:       "5b0c1b1e-8d9f-4a57-bb43-3f0f6a8e0c11",
		TitleID:  3,
		Start:    time.Unix(1700000000, 0),
		Duration: 2500 * time.Millisecond,
		Success:  true,
	}
	mock.ExpectPrepare(`insert into PlaySessions`).
		ExpectExec().
		WithArgs(s.ID, s.TitleID, int64(1700000000), int64(2500), true).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, sqlAddSession(context.Background(), db, s))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNullSQL(t *testing.T) {
	t.Parallel()

	db := &LibraryDB{}
	ctx := context.Background()
	require.ErrorIs(t, db.SaveTitle(ctx, library.Record{}), database.ErrNullSQL)
	_, err := db.LoadTitles(ctx)
	require.ErrorIs(t, err, database.ErrNullSQL)
	require.ErrorIs(t, db.DeleteTitle(ctx, 1), database.ErrNullSQL)
	require.ErrorIs(t, db.AddSession(ctx, Session{}), database.ErrNullSQL)
	_, err = db.Sessions(ctx, 1)
	require.ErrorIs(t, err, database.ErrNullSQL)
	require.ErrorIs(t, db.MigrateUp(), database.ErrNullSQL)
	_, err = db.SchemaVersion()
	require.ErrorIs(t, err, database.ErrNullSQL)
	require.NoError(t, db.Close())
}

func TestNewSession(t *testing.T) {
	t.Parallel()

	a := NewSession(1, time.Unix(10, 0), time.Second, true)
	b := NewSession(1, time.Unix(10, 0), time.Second, true)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, a.ID, 36)
}
