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
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/goodoldgalaxy/galaxy-core/pkg/database"
	"github.com/goodoldgalaxy/galaxy-core/pkg/library"
	"github.com/rs/zerolog/log"
)

// Queries go here to keep the interface clean

//go:embed migrations/*.sql
var migrationFiles embed.FS

func sqlMigrateUp(db *sql.DB) error {
	if err := database.MigrateUp(db, migrationFiles, "migrations"); err != nil {
		return fmt.Errorf("failed to run library database migrations: %w", err)
	}
	return nil
}

func closeStmt(stmt *sql.Stmt) {
	if err := stmt.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close sql statement")
	}
}

//nolint:gocritic // record passed for DB insertion
func sqlSaveTitle(ctx context.Context, db *sql.DB, rec library.Record) error {
	stmt, err := db.PrepareContext(ctx, `
		insert or replace into Titles(
			DBID, ParentID, Name, Platform, Kind, Language, InstallDir,
			InstalledVersion, AvailableVersion, Updates, State, PlayTime, LastPlayed
		) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare title insert statement: %w", err)
	}
	defer closeStmt(stmt)

	var lastPlayed sql.NullInt64
	if !rec.LastPlayed.IsZero() {
		lastPlayed = sql.NullInt64{Int64: rec.LastPlayed.Unix(), Valid: true}
	}

	_, err = stmt.ExecContext(ctx,
		rec.ID, rec.ParentID, rec.Name, string(rec.Platform), string(rec.Kind), rec.Language, rec.InstallDir,
		rec.InstalledVersion, rec.AvailableVersion, rec.Updates, rec.State.String(),
		int64(rec.PlayTime/time.Second), lastPlayed,
	)
	if err != nil {
		return fmt.Errorf("failed to execute title insert: %w", err)
	}
	return nil
}

func sqlLoadTitles(ctx context.Context, db *sql.DB) ([]library.Record, error) {
	rows, err := db.QueryContext(ctx, `
		select
			DBID, ParentID, Name, Platform, Kind, Language, InstallDir,
			InstalledVersion, AvailableVersion, Updates, State, PlayTime, LastPlayed
		from Titles
		order by DBID;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query titles: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close rows")
		}
	}()

	var recs []library.Record
	for rows.Next() {
		var (
			rec        library.Record
			platform   string
			kind       string
			state      string
			playTime   int64
			lastPlayed sql.NullInt64
		)
		err := rows.Scan(
			&rec.ID, &rec.ParentID, &rec.Name, &platform, &kind, &rec.Language, &rec.InstallDir,
			&rec.InstalledVersion, &rec.AvailableVersion, &rec.Updates, &state, &playTime, &lastPlayed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan title row: %w", err)
		}
		rec.State, err = library.ParseState(state)
		if err != nil {
			return nil, fmt.Errorf("title %d: %w", rec.ID, err)
		}
		rec.Platform = library.ParsePlatform(platform)
		rec.Kind = library.Kind(kind)
		rec.PlayTime = time.Duration(playTime) * time.Second
		if lastPlayed.Valid {
			rec.LastPlayed = time.Unix(lastPlayed.Int64, 0)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate titles: %w", err)
	}
	return recs, nil
}

func sqlDeleteTitle(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Warn().Err(rbErr).Msg("failed to roll back title delete")
		}
	}()

	if _, err := tx.ExecContext(ctx, `delete from PlaySessions where TitleDBID = ?;`, id); err != nil {
		return fmt.Errorf("failed to delete play sessions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `delete from Titles where DBID = ?;`, id); err != nil {
		return fmt.Errorf("failed to delete title: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit title delete: %w", err)
	}
	return nil
}

func sqlAddSession(ctx context.Context, db *sql.DB, s Session) error {
	stmt, err := db.PrepareContext(ctx, `
		insert into PlaySessions(
			ID, TitleDBID, StartTime, Duration, Success
		) values (?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare session insert statement: %w", err)
	}
	defer closeStmt(stmt)

	_, err = stmt.ExecContext(ctx, s.ID, s.TitleID, s.Start.Unix(), s.Duration.Milliseconds(), s.Success)
	if err != nil {
		return fmt.Errorf("failed to execute session insert: %w", err)
	}
	return nil
}

func sqlSessions(ctx context.Context, db *sql.DB, titleID int64) ([]Session, error) {
	rows, err := db.QueryContext(ctx, `
		select ID, TitleDBID, StartTime, Duration, Success
		from PlaySessions
		where TitleDBID = ?
		order by StartTime desc;
	`, titleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query play sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close rows")
		}
	}()

	var sessions []Session
	for rows.Next() {
		var (
			s        Session
			start    int64
			duration int64
		)
		if err := rows.Scan(&s.ID, &s.TitleID, &start, &duration, &s.Success); err != nil {
			return nil, fmt.Errorf("failed to scan play session row: %w", err)
		}
		s.Start = time.Unix(start, 0)
		s.Duration = time.Duration(duration) * time.Millisecond
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate play sessions: %w", err)
	}
	return sessions, nil
}
