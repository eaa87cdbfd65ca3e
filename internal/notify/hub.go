// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package notify pushes real-time events to WebSocket clients.

Clients join named channels ("news", "traffic:<id>") and receive every event
published on them. Publishing goes through Redis pub/sub so that each API
instance relays events to its own connected clients.

# Wire Format

Client to server:

	{"action": "subscribe", "channel": "news"}

Server to client:

	{"channel": "news", "event": "article_published", "data": {...}}
*/
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/digitalhub/internal/platform/constants"
)

// DefaultSendQueue is the number of pending messages a client may buffer
// before it is considered too slow and dropped.
const DefaultSendQueue = 32

var trafficID = regexp.MustCompile(`^[a-z0-9-]{1,64}$`)

// ErrUnknownChannel is returned for channel names clients may not join.
var ErrUnknownChannel = errors.New("unknown channel")

// Message is the envelope delivered to clients.
type Message struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ValidChannel reports whether clients may subscribe to name.
func ValidChannel(name string) bool {
	if name == constants.ChannelNews {
		return true
	}
	id, ok := strings.CutPrefix(name, constants.ChannelTrafficPrefix)
	return ok && trafficID.MatchString(id)
}

// Hub tracks channel membership of local clients and relays published events.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}

	redis     redis.UniversalClient
	logger    *slog.Logger
	sendQueue int
	base      context.Context
	done      chan struct{}
}

// NewHub creates a Hub. With a nil Redis client events are delivered to
// local clients only.
func NewHub(rdb redis.UniversalClient, logger *slog.Logger) *Hub {
	return &Hub{
		rooms:     make(map[string]map[*client]struct{}),
		redis:     rdb,
		logger:    logger,
		sendQueue: DefaultSendQueue,
		base:      context.Background(),
		done:      make(chan struct{}),
	}
}

/*
Start subscribes to the Redis event channel and relays incoming events to
local clients until ctx is cancelled. Cancelling ctx also ends every open
WebSocket session. Start must be called before the hub serves connections.

Description: The subscription is confirmed before Start returns, so events
published afterwards are never missed by this instance.

Returns:
  - error: When the subscription cannot be established
*/
func (hub *Hub) Start(ctx context.Context) error {
	hub.base = ctx

	if hub.redis == nil {
		go func() {
			<-ctx.Done()
			close(hub.done)
		}()
		return nil
	}

	pubsub := hub.redis.Subscribe(ctx, constants.RedisChannelNotify)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("notify_subscribe_failed: %w", err)
	}

	go func() {
		defer close(hub.done)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case message, ok := <-messages:
				if !ok {
					return
				}
				hub.deliver([]byte(message.Payload))
			}
		}
	}()

	return nil
}

// Done is closed once the relay loop has stopped.
func (hub *Hub) Done() <-chan struct{} { return hub.done }

/*
Publish sends an event to every subscriber of channel across all instances.

Parameters:
  - context: context.Context
  - channel: string
  - event: string
  - data: any (JSON encodable)

Returns:
  - error: Encoding or Redis failures
*/
func (hub *Hub) Publish(context context.Context, channel, event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("notify_encode_failed: %w", err)
	}

	payload, err := json.Marshal(Message{Channel: channel, Event: event, Data: raw})
	if err != nil {
		return fmt.Errorf("notify_encode_failed: %w", err)
	}

	if hub.redis == nil {
		hub.deliver(payload)
		return nil
	}

	if err := hub.redis.Publish(context, constants.RedisChannelNotify, payload).Err(); err != nil {
		return fmt.Errorf("notify_publish_failed: %w", err)
	}
	return nil
}

// Subscribers returns the number of local clients in channel.
func (hub *Hub) Subscribers(channel string) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.rooms[channel])
}

// deliver fans a raw envelope out to the local members of its channel.
func (hub *Hub) deliver(payload []byte) {
	var header struct {
		Channel string `json:"channel"`
	}
	if err := json.Unmarshal(payload, &header); err != nil || header.Channel == "" {
		hub.logger.Warn("notify_malformed_event", slog.Any("error", err))
		return
	}

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	for member := range hub.rooms[header.Channel] {
		if !member.enqueue(payload) {
			hub.logger.Warn("notify_client_dropped",
				slog.String("client_id", member.id), slog.String("channel", header.Channel))
		}
	}
}

func (hub *Hub) join(member *client, channel string) error {
	if !ValidChannel(channel) {
		return ErrUnknownChannel
	}

	hub.mu.Lock()
	defer hub.mu.Unlock()

	room, ok := hub.rooms[channel]
	if !ok {
		room = make(map[*client]struct{})
		hub.rooms[channel] = room
	}
	room[member] = struct{}{}
	member.channels[channel] = struct{}{}
	return nil
}

func (hub *Hub) leave(member *client, channel string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.leaveLocked(member, channel)
}

func (hub *Hub) leaveLocked(member *client, channel string) {
	room := hub.rooms[channel]
	delete(room, member)
	if len(room) == 0 {
		delete(hub.rooms, channel)
	}
	delete(member.channels, channel)
}

// remove drops a client from every channel it joined.
func (hub *Hub) remove(member *client) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	for channel := range member.channels {
		hub.leaveLocked(member, channel)
	}
}
