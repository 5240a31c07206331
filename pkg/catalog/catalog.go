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

// Package catalog describes what the storefront knows about a title: its
// installers per platform and language, the files that make up each
// installer, and owned DLCs.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goodoldgalaxy/galaxy-core/pkg/library"
)

// FallbackLanguage is picked when no installer matches the preferred one.
const FallbackLanguage = "en"

var ErrNoInstaller = errors.New("no installer available")

// Client is the storefront. Implementations own transport and credentials.
type Client interface {
	Product(ctx context.Context, id int64) (*Product, error)
	// ResolveDownlink turns a file's downlink into a URL that can be fetched
	// directly.
	ResolveDownlink(ctx context.Context, downlink string) (string, error)
}

type File struct {
	ID       string `json:"id" validate:"required"`
	Downlink string `json:"downlink" validate:"required"`
	Size     int64  `json:"size" validate:"gte=0"`
}

// Installer is one downloadable build of a product.
type Installer struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	OS        string `json:"os" validate:"required,oneof=linux windows mac"`
	Language  string `json:"language" validate:"required,min=2,max=5"`
	Version   string `json:"version"`
	Files     []File `json:"files" validate:"required,min=1,dive"`
	TotalSize int64  `json:"total_size" validate:"gte=0"`
}

type Product struct {
	Title      string      `json:"title" validate:"required"`
	Installers []Installer `json:"installers" validate:"dive"`
	DLCs       []Product   `json:"dlcs" validate:"dive"`
	ID         int64       `json:"id" validate:"required,gt=0"`
}

func platformOS(p library.Platform) string {
	switch p {
	case library.PlatformLinux:
		return "linux"
	case library.PlatformWindows:
		return "windows"
	case library.PlatformUnsupported:
		return ""
	default:
		return ""
	}
}

// SelectInstaller picks the installer for platform, preferring lang, then
// FallbackLanguage, then any language. The result has been validated.
func (p *Product) SelectInstaller(platform library.Platform, lang string) (*Installer, error) {
	target := platformOS(platform)
	if target == "" {
		return nil, fmt.Errorf("%s (%d): %s: %w", p.Title, p.ID, platform, ErrNoInstaller)
	}

	var candidates []*Installer
	for i := range p.Installers {
		if p.Installers[i].OS == target {
			candidates = append(candidates, &p.Installers[i])
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%s (%d): %s: %w", p.Title, p.ID, platform, ErrNoInstaller)
	}

	pick := candidates[0]
	for _, want := range []string{lang, FallbackLanguage} {
		if found := findLanguage(candidates, want); found != nil {
			pick = found
			break
		}
	}

	if err := DefaultValidator.Validate(pick); err != nil {
		return nil, fmt.Errorf("installer %s of %s: %w", pick.ID, p.Title, err)
	}
	return pick, nil
}

func findLanguage(candidates []*Installer, lang string) *Installer {
	if lang == "" {
		return nil
	}
	for _, c := range candidates {
		if strings.EqualFold(c.Language, lang) {
			return c
		}
	}
	return nil
}

// NewTitle builds a library title for the product. DLCs become children
// that inherit platform and language.
func (p *Product) NewTitle(platform library.Platform, lang string) *library.Title {
	t := library.NewTitle(p.ID, p.Title, platform)
	t.Language = lang
	if inst, err := p.SelectInstaller(platform, lang); err == nil {
		t.SetAvailableVersion(inst.Version)
	}
	for i := range p.DLCs {
		dlc := p.DLCs[i].NewTitle(platform, lang)
		dlc.Kind = library.KindDLC
		dlc.ParentID = p.ID
		t.DLCs = append(t.DLCs, dlc)
	}
	return t
}
