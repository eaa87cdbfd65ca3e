// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"sync"
)

// client is one connected WebSocket peer.
//
// channels is guarded by the owning Hub's mutex.
type client struct {
	id       string
	userID   string
	send     chan []byte
	channels map[string]struct{}

	dropOnce sync.Once
	drop     context.CancelFunc
}

func newClient(id, userID string, queue int, drop context.CancelFunc) *client {
	return &client{
		id:       id,
		userID:   userID,
		send:     make(chan []byte, queue),
		channels: make(map[string]struct{}),
		drop:     drop,
	}
}

// enqueue queues payload without blocking. A full queue drops the client
// and reports false.
func (member *client) enqueue(payload []byte) bool {
	select {
	case member.send <- payload:
		return true
	default:
		member.dropOnce.Do(member.drop)
		return false
	}
}
