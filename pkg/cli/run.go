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

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goodoldgalaxy/galaxy-core/pkg/service"
	"github.com/goodoldgalaxy/galaxy-core/pkg/service/notifications"
	"github.com/rs/zerolog/log"
)

const pollInterval = 50 * time.Millisecond

var ErrPipelineFailed = errors.New("pipeline failed")

// familyBusy reports whether the title or any of its DLCs still holds an
// operation slot.
func familyBusy(mgr *service.Manager, id int64) bool {
	if mgr.Busy(id) {
		return true
	}
	t, err := mgr.Title(id)
	if err != nil {
		return false
	}
	for _, dlc := range t.DLCs {
		if mgr.Busy(dlc.ID) {
			return true
		}
	}
	return false
}

func waitIdle(mgr *service.Manager, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		busy := false
		for _, t := range mgr.Titles() {
			if familyBusy(mgr, t.ID) {
				busy = true
				break
			}
		}
		if !busy {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(pollInterval)
	}
}

func report(out io.Writer, n notifications.Notification) {
	var line string
	switch n.Method {
	case notifications.MethodProgress:
		line = fmt.Sprintf("%s: %d%%", n.Name, n.Percent)
	case notifications.MethodStateChanged:
		line = fmt.Sprintf("%s: %s", n.Name, n.State)
	case notifications.MethodFailed, notifications.MethodSession:
		line = fmt.Sprintf("%s: %s", n.Name, n.Message)
	default:
		return
	}
	_, _ = fmt.Fprintln(out, line)
}

// follow prints notifications until the download pipeline of id, and any
// DLCs it chained, has finished. Cancelling ctx cancels the download and
// still waits for the title to settle.
func follow(
	ctx context.Context,
	out io.Writer,
	mgr *service.Manager,
	id int64,
	events <-chan notifications.Notification,
) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var failure string
	consume := func(n notifications.Notification) {
		report(out, n)
		if n.TitleID == id && n.Method == notifications.MethodFailed {
			failure = n.Message
		}
	}

	done := ctx.Done()
	cancelled := false

	for familyBusy(mgr, id) {
		select {
		case <-done:
			done = nil
			cancelled = true
			if err := mgr.Cancel(id); err != nil && !errors.Is(err, service.ErrNotDownloading) {
				log.Warn().Err(err).Msgf("error cancelling download of %d", id)
			}
		case n, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			consume(n)
		case <-ticker.C:
		}
	}

	// pick up whatever was sent while the last slot was released
	for events != nil {
		select {
		case n, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			consume(n)
		default:
			events = nil
		}
	}

	switch {
	case cancelled:
		return ctx.Err()
	case failure != "":
		return fmt.Errorf("%w: %s", ErrPipelineFailed, failure)
	default:
		return nil
	}
}

// userError prints as the message shown to users but still unwraps to the
// underlying error.
type userError struct {
	err error
}

func (e userError) Error() string { return service.UserMessage(e.err) }

func (e userError) Unwrap() error { return e.err }
