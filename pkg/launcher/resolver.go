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

package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/goodoldgalaxy/galaxy-core/pkg/library"
	"github.com/rs/zerolog/log"
)

const (
	uninstaller = "unins000.exe"
	prefixDir   = "prefix"
	startScript = "start.sh"
	gameDir     = "game"
)

var (
	reDOSBoxConf   = regexp.MustCompile(`^dosbox_?[A-Za-z0-9]+\.conf$`)
	reDOSBoxSingle = regexp.MustCompile(`^dosbox_?[A-Za-z0-9]+_single\.conf$`)
)

// listing is what a probe sees of an install directory.
type listing struct {
	present map[string]os.DirEntry
	dir     string
	names   []string
}

func (l listing) has(name string) bool {
	_, ok := l.present[name]
	return ok
}

func (l listing) hasDir(name string) bool {
	e, ok := l.present[name]
	return ok && e.IsDir()
}

// probe is one step of the decision list. match decides whether the probe
// owns the directory, build produces the command. A probe that matches
// but cannot build ends resolution with its error.
type probe struct {
	match func(r *Resolver, l listing) bool
	build func(l listing) (Strategy, error)
	kind  Kind
}

// probes is ordered, the first match wins.
var probes = []probe{
	{
		kind:  Windows,
		match: func(_ *Resolver, l listing) bool { return l.has(uninstaller) },
		build: buildWindows,
	},
	{
		kind:  DOSBox,
		match: func(r *Resolver, l listing) bool { return l.has("dosbox") && r.available("dosbox") },
		build: buildDOSBox,
	},
	{
		kind:  ScummVM,
		match: func(r *Resolver, l listing) bool { return l.has("scummvm") && r.available("scummvm") },
		build: buildScummVM,
	},
	{
		kind:  StartScript,
		match: func(r *Resolver, l listing) bool { return l.has(prefixDir) && r.available("wine") },
		build: buildStartScript,
	},
	{
		kind:  StartScript,
		match: func(_ *Resolver, l listing) bool { return l.has(startScript) },
		build: buildStartScript,
	},
	{
		kind:  FinalResort,
		match: func(_ *Resolver, l listing) bool { return l.hasDir(gameDir) },
		build: buildFinalResort,
	},
}

// LookPathFunc reports where a host runtime lives, exec.LookPath by default.
type LookPathFunc func(file string) (string, error)

type Resolver struct {
	lookPath LookPathFunc
}

type Option func(*Resolver)

func WithLookPath(fn LookPathFunc) Option {
	return func(r *Resolver) {
		r.lookPath = fn
	}
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{lookPath: exec.LookPath}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) available(runtime string) bool {
	_, err := r.lookPath(runtime)
	return err == nil
}

// Resolve picks the launch strategy for an installed title.
func (r *Resolver) Resolve(title *library.Title) (Strategy, error) {
	dir := title.InstallDir()
	if dir == "" {
		return Strategy{}, fmt.Errorf("title %d: %w", title.ID, library.ErrInstallDirRequired)
	}
	return r.ResolveDir(dir)
}

// ResolveDir picks the launch strategy for an install directory. Manifests
// are read by absolute path, the working directory is never changed.
func (r *Resolver) ResolveDir(dir string) (Strategy, error) {
	l, err := list(dir)
	if err != nil {
		log.Error().Err(err).Msgf("failed to list %s", dir)
		return Strategy{Kind: Unresolvable}, &NotFoundError{Dir: dir}
	}

	for _, p := range probes {
		if !p.match(r, l) {
			continue
		}
		s, err := p.build(l)
		if err != nil {
			log.Error().Err(err).Msgf("%s launch failed to resolve in %s", p.kind, dir)
			return Strategy{Kind: Unresolvable}, err
		}
		s.Kind = p.kind
		log.Debug().Msgf("resolved %s", s)
		return s, nil
	}

	return Strategy{Kind: Unresolvable}, &NotFoundError{Dir: dir}
}

func list(dir string) (listing, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return listing{}, fmt.Errorf("failed to read install directory: %w", err)
	}
	l := listing{
		dir:     dir,
		present: make(map[string]os.DirEntry, len(entries)),
		names:   make([]string, 0, len(entries)),
	}
	for _, e := range entries {
		l.present[e.Name()] = e
		l.names = append(l.names, e.Name())
	}
	return l, nil
}

func buildWindows(l listing) (Strategy, error) {
	s := Strategy{
		Dir: l.dir,
		Env: []string{"WINEPREFIX=" + filepath.Join(l.dir, prefixDir)},
	}

	if name := FindManifest(l.names); name != "" {
		task, err := ReadManifest(filepath.Join(l.dir, name))
		if err == nil {
			if task.WorkingDir != "" {
				s.Args = []string{"wine", "start", "/b", "/wait", "/d", task.WorkingDir, task.Path}
			} else {
				s.Args = []string{"wine", task.Path}
			}
			return s, nil
		}
		log.Warn().Err(err).Msg("falling back to executable scan")
	}

	exes := make([]string, 0, 2)
	for _, name := range l.names {
		if strings.EqualFold(filepath.Ext(name), ".exe") && name != uninstaller {
			exes = append(exes, name)
		}
	}
	if len(exes) == 0 {
		return Strategy{}, &NotFoundError{Dir: l.dir}
	}
	slices.Sort(exes)
	s.Args = []string{"wine", exes[0]}
	return s, nil
}

func buildDOSBox(l listing) (Strategy, error) {
	var conf, single string
	for _, name := range l.names {
		switch {
		case conf == "" && reDOSBoxConf.MatchString(name):
			conf = name
		case single == "" && reDOSBoxSingle.MatchString(name):
			single = name
		}
	}

	args := []string{"dosbox"}
	for _, c := range []string{conf, single} {
		if c != "" {
			args = append(args, "-conf", c)
		}
	}
	args = append(args, "-no-console", "-c", "exit")
	return Strategy{Dir: l.dir, Args: args}, nil
}

func buildScummVM(l listing) (Strategy, error) {
	for _, name := range l.names {
		if strings.HasSuffix(name, ".ini") {
			return Strategy{Dir: l.dir, Args: []string{"scummvm", "-c", name}}, nil
		}
	}
	log.Error().Msgf("no scummvm config in %s", l.dir)
	return Strategy{}, &NotFoundError{Dir: l.dir}
}

func buildStartScript(l listing) (Strategy, error) {
	return Strategy{Dir: l.dir, Args: []string{filepath.Join(l.dir, startScript)}}, nil
}

func buildFinalResort(l listing) (Strategy, error) {
	dir := filepath.Join(l.dir, gameDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Strategy{}, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	name := FindManifest(names)
	if name == "" {
		return Strategy{}, &NotFoundError{Dir: l.dir}
	}
	task, err := ReadManifest(filepath.Join(dir, name))
	if err != nil {
		return Strategy{}, err
	}
	return Strategy{Dir: dir, Args: []string{"./" + task.Path}}, nil
}
