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

// Package broker fans library notifications out to any number of
// consumers without letting a slow one hold up the manager.
package broker

import (
	"context"

	"github.com/goodoldgalaxy/galaxy-core/pkg/helpers/syncutil"
	"github.com/goodoldgalaxy/galaxy-core/pkg/service/notifications"
	"github.com/rs/zerolog/log"
)

type Broker struct {
	ctx         context.Context
	source      <-chan notifications.Notification
	subscribers map[int]chan notifications.Notification
	mu          syncutil.RWMutex
	nextID      int
}

func NewBroker(ctx context.Context, source <-chan notifications.Notification) *Broker {
	return &Broker{
		ctx:         ctx,
		source:      source,
		subscribers: make(map[int]chan notifications.Notification),
	}
}

// Start runs the broadcast loop until the source closes or the context is
// done, then closes every subscriber channel.
func (b *Broker) Start() {
	go func() {
		for {
			select {
			case notif, ok := <-b.source:
				if !ok {
					log.Debug().Msg("broker: source channel closed")
					b.closeAllSubscribers()
					return
				}
				b.broadcast(notif)
			case <-b.ctx.Done():
				log.Debug().Msg("broker: context cancelled, shutting down")
				b.closeAllSubscribers()
				return
			}
		}
	}()
}

// broadcast drops the notification for subscribers whose buffer is full.
func (b *Broker) broadcast(notif notifications.Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- notif:
		default:
			log.Warn().
				Int("subscriber_id", id).
				Str("method", string(notif.Method)).
				Int64("title_id", notif.TitleID).
				Msg("subscriber channel full, dropping notification")
		}
	}
}

func (b *Broker) Subscribe(bufferSize int) (notifChan <-chan notifications.Notification, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id = b.nextID
	b.nextID++

	ch := make(chan notifications.Notification, bufferSize)
	b.subscribers[id] = ch

	log.Debug().Int("subscriber_id", id).Msg("new subscriber registered")

	notifChan = ch
	return notifChan, id
}

// Unsubscribe closes the subscription's channel. Unknown ids are ignored.
func (b *Broker) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
}

func (b *Broker) Stop() {
	b.closeAllSubscribers()
}

func (b *Broker) closeAllSubscribers() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = make(map[int]chan notifications.Notification)
}
