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

// Package supervisor starts installed titles and decides whether the start
// worked.
//
// A launch counts as successful when the spawned command is still alive
// after the startup timeout, or when it exited early but left a successor
// process running (Wine start scripts do this). Anything else is a failed
// launch and carries the command's own error output.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goodoldgalaxy/galaxy-core/pkg/config"
	"github.com/goodoldgalaxy/galaxy-core/pkg/helpers/command"
	"github.com/goodoldgalaxy/galaxy-core/pkg/launcher"
	"github.com/goodoldgalaxy/galaxy-core/pkg/library"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	// prematureExit is the failure detail when a dead launch printed nothing.
	prematureExit = "Game start process has finished prematurely"
	outputLimit   = 64 * 1024
	outputDrain   = 250 * time.Millisecond
)

var ErrLaunchIO = errors.New("game failed to start")

// LaunchError is a launch that did not produce a running game.
type LaunchError struct {
	Err    error
	Name   string
	Detail string
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to start %s: %s", e.Name, e.Detail)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

func (*LaunchError) Is(target error) bool {
	return target == ErrLaunchIO
}

// UserMessage is the text shown for a failed launch.
func UserMessage(err error) string {
	var le *LaunchError
	if errors.As(err, &le) {
		return fmt.Sprintf("Failed to start %s:\n%s", le.Name, le.Detail)
	}
	return launcher.UserMessage(err)
}

// Settings are the options read on every launch.
type Settings interface {
	ShowFPS() bool
}

type Resolver interface {
	Resolve(title *library.Title) (launcher.Strategy, error)
}

// Detector answers whether a title is running without a handle on its
// process.
type Detector interface {
	IsRunning(ctx context.Context, name string) (bool, error)
}

// Session describes one launch attempt.
type Session struct {
	Start    time.Time
	Err      error
	TitleID  int64
	Duration time.Duration
	PID      int
}

type Supervisor struct {
	cfg       Settings
	cmd       command.Executor
	resolver  Resolver
	detector  Detector
	clock     clockwork.Clock
	onSession func(Session)
	timeout   time.Duration
}

type Option func(*Supervisor)

// WithClock sets the clock for testing.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Supervisor) {
		s.clock = clock
	}
}

func WithTimeout(d time.Duration) Option {
	return func(s *Supervisor) {
		s.timeout = d
	}
}

// WithSessionHook is called after every launch attempt, failed or not.
func WithSessionHook(fn func(Session)) Option {
	return func(s *Supervisor) {
		s.onSession = fn
	}
}

func New(
	cfg Settings,
	cmd command.Executor,
	resolver Resolver,
	detector Detector,
	opts ...Option,
) *Supervisor {
	s := &Supervisor{
		cfg:      cfg,
		cmd:      cmd,
		resolver: resolver,
		detector: detector,
		clock:    clockwork.NewRealClock(),
		timeout:  config.StartupTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OverlayEnv returns the GPU frame rate overlay variables for NVIDIA and
// Mesa drivers. Disabled values are set explicitly so an inherited overlay
// is switched off too.
func OverlayEnv(show bool) []string {
	if show {
		return []string{
			"__GL_SHOW_GRAPHICS_OSD=1",
			"GALLIUM_HUD=simple,fps",
			"VK_INSTANCE_LAYERS=VK_LAYER_MESA_overlay",
		}
	}
	return []string{
		"__GL_SHOW_GRAPHICS_OSD=0",
		"GALLIUM_HUD=",
		"VK_INSTANCE_LAYERS=",
	}
}

// Launch starts title and waits up to the startup timeout to see whether
// it stays up. Play time is recorded on the title whatever the outcome.
// The game itself is not tied to ctx and keeps running after Launch
// returns.
func (s *Supervisor) Launch(ctx context.Context, title *library.Title) (err error) {
	start := s.clock.Now()
	pid := 0
	defer func() {
		elapsed := s.clock.Since(start)
		title.RecordSession(elapsed, s.clock.Now())
		if s.onSession != nil {
			s.onSession(Session{
				TitleID:  title.ID,
				Start:    start,
				Duration: elapsed,
				PID:      pid,
				Err:      err,
			})
		}
	}()

	installDir := title.InstallDir()
	if installDir == "" {
		return fmt.Errorf("title %d: %w", title.ID, library.ErrInstallDirRequired)
	}

	stdout := newCapture(outputLimit)
	stderr := newCapture(outputLimit)

	proc, err := s.spawn(ctx, title, installDir, stdout, stderr)
	if err != nil {
		return err
	}
	pid = proc.Pid()
	log.Info().Int("pid", pid).Msgf("started %s", title.Name)

	// buffered so the waiter can finish after we stop listening
	done := make(chan error, 1)
	go func() {
		done <- proc.Wait()
	}()

	var waitErr error
	select {
	case <-s.clock.After(s.timeout):
		log.Debug().Msgf("%s still running after %s", title.Name, s.timeout)
		return nil
	case waitErr = <-done:
	}

	log.Debug().Err(waitErr).Msgf("%s exited within %s, looking for a successor", title.Name, s.timeout)
	running, scanErr := s.detector.IsRunning(ctx, title.Name)
	if scanErr != nil {
		log.Warn().Err(scanErr).Msg("successor scan failed")
	}
	if running {
		log.Info().Msgf("%s handed off to a successor process", title.Name)
		return nil
	}

	detail := stderr.String()
	if detail == "" {
		detail = stdout.String()
	}
	if detail == "" {
		detail = prematureExit
	}
	log.Error().Err(waitErr).Msgf("failed to start %s: %s", title.Name, detail)
	return &LaunchError{Name: title.Name, Detail: detail, Err: waitErr}
}

// spawn resolves and starts the title inside the working directory
// critical section.
func (s *Supervisor) spawn(
	ctx context.Context,
	title *library.Title,
	installDir string,
	stdout, stderr *capture,
) (command.Process, error) {
	launcher.WorkdirLock.Lock()
	defer launcher.WorkdirLock.Unlock()

	prev, err := os.Getwd()
	if err != nil {
		log.Warn().Err(err).Msg("failed to read working directory")
	}
	if err := os.Chdir(installDir); err != nil {
		return nil, &LaunchError{Name: title.Name, Detail: err.Error(), Err: err}
	}
	defer func() {
		if prev == "" {
			return
		}
		if err := os.Chdir(prev); err != nil {
			log.Error().Err(err).Msgf("failed to restore working directory %s", prev)
		}
	}()

	strategy, err := s.resolver.Resolve(title)
	if err != nil {
		return nil, err
	}
	if len(strategy.Args) == 0 {
		return nil, &launcher.NotFoundError{Dir: installDir}
	}
	log.Info().Msgf("launching %s with %s", title.Name, strategy)

	env := append(OverlayEnv(s.cfg.ShowFPS()), strategy.Env...)
	dir := strategy.Dir
	if dir == "" {
		dir = installDir
	}

	proc, err := s.cmd.Spawn(context.WithoutCancel(ctx), command.Options{
		Stdout: stdout,
		Stderr: stderr,
		Dir:    dir,
		Env:    env,
		Detach: true,
		// start scripts often leave a child holding stdout and stderr
		WaitDelay: outputDrain,
	}, strategy.Args[0], strategy.Args[1:]...)
	if err != nil {
		return nil, &LaunchError{Name: title.Name, Detail: err.Error(), Err: err}
	}
	return proc, nil
}

// ConfigureCompat opens winecfg against the title's own Wine prefix. The
// dialog runs detached, ConfigureCompat only reports whether it started.
func (s *Supervisor) ConfigureCompat(ctx context.Context, title *library.Title) error {
	installDir := title.InstallDir()
	if installDir == "" {
		return fmt.Errorf("title %d: %w", title.ID, library.ErrInstallDirRequired)
	}

	prefix := filepath.Join(installDir, "prefix")
	proc, err := s.cmd.Spawn(context.WithoutCancel(ctx), command.Options{
		Env:    []string{"WINEPREFIX=" + prefix},
		Detach: true,
	}, "wine", "winecfg")
	if err != nil {
		return fmt.Errorf("failed to start winecfg: %w", err)
	}

	go func() {
		if err := proc.Wait(); err != nil {
			log.Debug().Err(err).Msg("winecfg exited")
		}
	}()
	return nil
}
