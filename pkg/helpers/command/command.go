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

// Package command provides an abstraction over exec.Command so installers,
// runtimes and games can be driven from tests without touching the host.
package command

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// Options configures a command beyond its argument vector.
type Options struct {
	// Stdout and Stderr receive the child's output when set. They must be
	// safe to write from the goroutine exec uses to copy pipes.
	Stdout io.Writer
	Stderr io.Writer
	// Dir is the child's working directory. Empty inherits the caller's.
	Dir string
	// Env entries are appended to the current process environment, so a
	// later entry overrides an inherited variable of the same name.
	Env []string
	// WaitDelay bounds how long Wait keeps copying output once the child
	// has exited. Without it a grandchild that inherited Stdout or Stderr
	// holds Wait open until it exits too.
	WaitDelay time.Duration
	// Detach puts the child in its own process group so it survives the
	// caller being interrupted from a terminal. Ignored on Windows.
	Detach bool
}

// Process is a started child process.
type Process interface {
	Pid() int
	// Wait blocks until the process exits. A non-zero exit is reported as an
	// error implementing ExitCode() int.
	Wait() error
}

// Executor provides an abstraction over exec.Command for testability.
type Executor interface {
	// Run executes a command and waits for it to complete.
	// Returns an error if the command fails to start or exits with non-zero status.
	Run(ctx context.Context, name string, args ...string) error

	// RunWithOptions is Run with an explicit environment, directory and
	// output sinks.
	RunWithOptions(ctx context.Context, opts Options, name string, args ...string) error

	// Spawn starts a command and returns without waiting for it.
	Spawn(ctx context.Context, opts Options, name string, args ...string) (Process, error)
}

// ExitError is a non-zero exit status. RealExecutor returns *exec.ExitError
// instead; both satisfy ExitCode.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return "exit status " + strconv.Itoa(e.Code)
}

func (e *ExitError) ExitCode() int {
	return e.Code
}

// ExitCode extracts the exit status carried by err. The second value is
// false when err is nil or did not come from a process exit.
func ExitCode(err error) (int, bool) {
	var coder interface{ ExitCode() int }
	if err == nil || !errors.As(err, &coder) {
		return 0, false
	}
	return coder.ExitCode(), true
}

// RealExecutor uses actual exec.Command to execute system commands.
type RealExecutor struct{}

// Run executes a system command using exec.CommandContext.
//
//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) RunWithOptions(ctx context.Context, opts Options, name string, args ...string) error {
	return build(ctx, opts, name, args).Run()
}

//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Spawn(ctx context.Context, opts Options, name string, args ...string) (Process, error) {
	cmd := build(ctx, opts, name, args)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &process{cmd: cmd}, nil
}

func build(ctx context.Context, opts Options, name string, args []string) *exec.Cmd {
	//nolint:gosec // names come from resolved launch strategies and installer paths
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	cmd.WaitDelay = opts.WaitDelay
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	if opts.Detach {
		detach(cmd)
	}
	return cmd
}

type process struct {
	cmd *exec.Cmd
}

func (p *process) Pid() int {
	return p.cmd.Process.Pid
}

//nolint:wrapcheck // callers inspect *exec.ExitError
func (p *process) Wait() error {
	return p.cmd.Wait()
}
