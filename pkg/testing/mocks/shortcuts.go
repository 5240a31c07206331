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

package mocks

import (
	"github.com/goodoldgalaxy/galaxy-core/pkg/library"
	"github.com/stretchr/testify/mock"
)

// MockShortcuts is a testify mock for installer.Shortcuts.
type MockShortcuts struct {
	mock.Mock
}

func NewMockShortcuts() *MockShortcuts {
	m := &MockShortcuts{}
	m.On("Create", mock.Anything).Return(nil).Maybe()
	m.On("Remove", mock.Anything).Return(nil).Maybe()
	return m
}

func (m *MockShortcuts) Create(title *library.Title) error {
	args := m.Called(title)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.Error(0)
}

func (m *MockShortcuts) Remove(title *library.Title) error {
	args := m.Called(title)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.Error(0)
}
