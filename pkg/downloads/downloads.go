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

// Package downloads fetches installer files and reports progress through
// callbacks. All files of one request set are fetched in parallel and
// finish, fail or are cancelled together.
package downloads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cavaliergopher/grab/v3"
	"github.com/goodoldgalaxy/galaxy-core/pkg/helpers/syncutil"
	"github.com/goodoldgalaxy/galaxy-core/pkg/shared/httpclient"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const DefaultProgressInterval = 250 * time.Millisecond

var ErrNoFiles = errors.New("nothing to download")

// Request is one file to fetch into Path.
type Request struct {
	URL  string
	Path string
}

// Callbacks are invoked from the download's own goroutine, except OnStart
// which runs inside Start before anything is fetched. OnProgress sees
// whole percentages and is only called when the value changes. Exactly one
// of OnFinish or OnCancel runs at the end; failures are reported as
// cancellations after being logged.
type Callbacks struct {
	OnStart    func(h *Handle)
	OnProgress func(percent int)
	OnFinish   func()
	OnCancel   func()
}

type Downloader struct {
	client   *grab.Client
	clock    clockwork.Clock
	interval time.Duration
}

type Option func(*Downloader)

func WithClock(clock clockwork.Clock) Option {
	return func(d *Downloader) {
		d.clock = clock
	}
}

func WithProgressInterval(interval time.Duration) Option {
	return func(d *Downloader) {
		d.interval = interval
	}
}

func New(opts ...Option) *Downloader {
	client := grab.NewClient()
	client.HTTPClient = httpclient.NewClient()
	client.UserAgent = httpclient.UserAgent()

	d := &Downloader{
		client:   client,
		clock:    clockwork.NewRealClock(),
		interval: DefaultProgressInterval,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle is a running set of downloads.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Cancel stops the downloads. Partial files stay on disk so a later
// request for the same paths can resume them.
func (h *Handle) Cancel() {
	h.cancel()
}

// Wait blocks until the callbacks have run and returns the first failure.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Start begins fetching reqs and returns immediately.
func (d *Downloader) Start(ctx context.Context, reqs []Request, cb Callbacks) (*Handle, error) {
	if len(reqs) == 0 {
		return nil, ErrNoFiles
	}

	grabReqs := make([]*grab.Request, len(reqs))
	for i, r := range reqs {
		req, err := grab.NewRequest(r.Path, r.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to create request for %s: %w", r.URL, err)
		}
		grabReqs[i] = req
	}

	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}
	if cb.OnStart != nil {
		cb.OnStart(h)
	}
	go d.run(runCtx, h, grabReqs, cb)
	return h, nil
}

type progress struct {
	resps []*grab.Response
	mu    syncutil.Mutex
}

func (p *progress) set(i int, resp *grab.Response) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resps[i] = resp
}

func (p *progress) percent() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	var done, total int64
	for _, resp := range p.resps {
		if resp == nil {
			continue
		}
		if size := resp.Size(); size > 0 {
			total += size
			done += resp.BytesComplete()
		}
	}
	if total == 0 {
		return 0
	}
	return int(done * 100 / total)
}

func (d *Downloader) run(ctx context.Context, h *Handle, reqs []*grab.Request, cb Callbacks) {
	defer close(h.done)
	defer h.cancel()

	prog := &progress{resps: make([]*grab.Response, len(reqs))}

	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			resp := d.client.Do(req.WithContext(gctx))
			prog.set(i, resp)
			<-resp.Done
			if err := resp.Err(); err != nil {
				return fmt.Errorf("download of %s failed: %w", req.URL(), err)
			}
			log.Debug().Msgf("downloaded %s to %s", req.URL(), resp.Filename)
			return nil
		})
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- g.Wait()
	}()

	ticker := d.clock.NewTicker(d.interval)
	defer ticker.Stop()

	last := -1
	report := func(pct int) {
		if pct == last || cb.OnProgress == nil {
			return
		}
		last = pct
		cb.OnProgress(pct)
	}

	for {
		select {
		case <-ticker.Chan():
			report(prog.percent())
		case err := <-waitErr:
			h.err = err
			if err == nil {
				report(100)
				if cb.OnFinish != nil {
					cb.OnFinish()
				}
				return
			}
			if ctx.Err() == nil {
				log.Error().Err(err).Msg("download failed")
			} else {
				log.Info().Msg("download cancelled")
			}
			if cb.OnCancel != nil {
				cb.OnCancel()
			}
			return
		}
	}
}
