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
	"context"
	"sync"

	"github.com/goodoldgalaxy/galaxy-core/pkg/helpers/command"
	"github.com/stretchr/testify/mock"
)

// MockCommandExecutor is a testify mock for command.Executor.
// It allows testing code that executes system commands without actually running them.
type MockCommandExecutor struct {
	mock.Mock
}

// Run mocks the execution of a system command.
//
// Example:
//
//	mockCmd := &MockCommandExecutor{}
//	mockCmd.On("Run", mock.Anything, "/tmp/setup.sh", []string{"--check"}).Return(nil)
func (m *MockCommandExecutor) Run(ctx context.Context, name string, args ...string) error {
	called := m.Called(ctx, name, args)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return called.Error(0)
}

func (m *MockCommandExecutor) RunWithOptions(
	ctx context.Context,
	opts command.Options,
	name string,
	args ...string,
) error {
	called := m.Called(ctx, opts, name, args)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return called.Error(0)
}

// Spawn mocks starting a process. Return a *FakeProcess (or nil with an
// error) from the expectation.
func (m *MockCommandExecutor) Spawn(
	ctx context.Context,
	opts command.Options,
	name string,
	args ...string,
) (command.Process, error) {
	called := m.Called(ctx, opts, name, args)
	proc, _ := called.Get(0).(command.Process)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return proc, called.Error(1)
}

// FakeProcess is a command.Process whose lifetime the test controls. Wait
// blocks until Exit is called.
type FakeProcess struct {
	err    error
	exited chan struct{}
	once   sync.Once
	PID    int
}

func NewFakeProcess(pid int) *FakeProcess {
	return &FakeProcess{PID: pid, exited: make(chan struct{})}
}

// NewExitedProcess returns a process that has already finished with err.
func NewExitedProcess(pid int, err error) *FakeProcess {
	p := NewFakeProcess(pid)
	p.Exit(err)
	return p
}

func (p *FakeProcess) Pid() int {
	return p.PID
}

func (p *FakeProcess) Wait() error {
	<-p.exited
	return p.err
}

// Exit ends the process with err. Only the first call has an effect.
func (p *FakeProcess) Exit(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.exited)
	})
}
