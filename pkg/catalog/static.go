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

package catalog

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
)

var ErrUnknownProduct = errors.New("unknown product")

// StaticClient serves products from a JSON export of the library. Downlinks
// are already direct URLs.
type StaticClient struct {
	products map[int64]*Product
}

func NewStaticClient(products []Product) (*StaticClient, error) {
	c := &StaticClient{products: make(map[int64]*Product, len(products))}
	for i := range products {
		p := &products[i]
		if err := DefaultValidator.Validate(p); err != nil {
			return nil, fmt.Errorf("product %d: %w", p.ID, err)
		}
		c.products[p.ID] = p
	}
	return c, nil
}

// LoadStaticClient reads a JSON array of products from path.
func LoadStaticClient(path string) (*StaticClient, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user supplied catalog export
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return NewStaticClient(products)
}

func (c *StaticClient) Product(_ context.Context, id int64) (*Product, error) {
	if p, ok := c.products[id]; ok {
		return p, nil
	}
	for _, p := range c.products {
		for i := range p.DLCs {
			if p.DLCs[i].ID == id {
				return &p.DLCs[i], nil
			}
		}
	}
	return nil, fmt.Errorf("%d: %w", id, ErrUnknownProduct)
}

func (*StaticClient) ResolveDownlink(_ context.Context, downlink string) (string, error) {
	return downlink, nil
}

// Products lists every top-level product.
func (c *StaticClient) Products() []*Product {
	out := make([]*Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *Product) int { return cmp.Compare(a.ID, b.ID) })
	return out
}
