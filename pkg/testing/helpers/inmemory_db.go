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

package helpers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/goodoldgalaxy/galaxy-core/pkg/database/librarydb"
)

// NewInMemoryLibraryDB opens a migrated library database in a temporary
// directory. The file persists across close/reopen within the test.
func NewInMemoryLibraryDB(t *testing.T) (db *librarydb.LibraryDB, cleanup func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "library_test.db")
	db, err := librarydb.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to open test library database: %v", err)
	}

	cleanup = func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close library database: %v", err)
		}
	}

	return db, cleanup
}
