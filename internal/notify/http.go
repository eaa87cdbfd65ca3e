// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/time/rate"

	"github.com/taibuivan/digitalhub/internal/platform/ctxutil"
	"github.com/taibuivan/digitalhub/pkg/uuid"
)

const (
	readLimit    = 4 << 10
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second

	// Each session may send commandBurst commands at once, refilled at
	// commandRate per second.
	commandRate  = 5
	commandBurst = 10

	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"

	eventSubscribed   = "subscribed"
	eventUnsubscribed = "unsubscribed"
	eventError        = "error"

	errTooManyCommands = "too many commands"
)

type command struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// Handler upgrades requests to WebSocket sessions bound to a [Hub].
type Handler struct {
	hub            *Hub
	originPatterns []string
}

// NewHandler creates a Handler accepting browser connections from the given
// CORS origins ("https://portal.bi" or "*").
func NewHandler(hub *Hub, allowedOrigins []string) *Handler {
	patterns := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			patterns = append(patterns, "*")
			continue
		}
		if parsed, err := url.Parse(origin); err == nil && parsed.Host != "" {
			patterns = append(patterns, parsed.Host)
		}
	}
	return &Handler{hub: hub, originPatterns: patterns}
}

/*
ServeHTTP handles GET /api/v1/ws.

Description: Accepts the upgrade, then runs a read loop for subscribe and
unsubscribe commands alongside a write loop draining the client's queue.
The session ends when either side closes, the server shuts down, or the
client falls behind.
*/
func (handler *Handler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	logger := ctxutil.GetLogger(request.Context())

	// Server read/write timeouts would otherwise carry over to the hijacked conn.
	controller := http.NewResponseController(writer)
	_ = controller.SetReadDeadline(time.Time{})
	_ = controller.SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(writer, request, &websocket.AcceptOptions{
		OriginPatterns: handler.originPatterns,
	})
	if err != nil {
		logger.WarnContext(request.Context(), "ws_accept_failed", slog.Any("error", err))
		return
	}
	conn.SetReadLimit(readLimit)

	// The session is bound to the hub lifetime, not the request deadline.
	ctx, cancel := context.WithCancel(handler.hub.base)
	defer cancel()

	var userID string
	if principal := ctxutil.GetPrincipal(request.Context()); principal != nil {
		userID = principal.UserID
	}
	member := newClient(uuid.New(), userID, handler.hub.sendQueue, cancel)
	defer handler.hub.remove(member)

	logger.InfoContext(ctx, "ws_client_connected", slog.String("client_id", member.id), slog.String("user_id", userID))

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		handler.writeLoop(ctx, conn, member)
	}()

	status, reason := handler.readLoop(ctx, conn, member)
	cancel()
	<-writeDone

	_ = conn.Close(status, reason)
	logger.InfoContext(ctx, "ws_client_disconnected", slog.String("client_id", member.id))
}

// readLoop processes client commands and returns the close status to send.
func (handler *Handler) readLoop(ctx context.Context, conn *websocket.Conn, member *client) (websocket.StatusCode, string) {
	throttle := rate.NewLimiter(rate.Limit(commandRate), commandBurst)

	for {
		var cmd command
		if err := wsjson.Read(ctx, conn, &cmd); err != nil {
			switch {
			case ctx.Err() != nil:
				return websocket.StatusPolicyViolation, "slow consumer or shutdown"
			case websocket.CloseStatus(err) != -1:
				return websocket.StatusNormalClosure, ""
			default:
				var (
					syntaxErr *json.SyntaxError
					typeErr   *json.UnmarshalTypeError
				)
				if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
					return websocket.StatusUnsupportedData, "invalid json"
				}
				return websocket.StatusInternalError, ""
			}
		}

		if !throttle.Allow() {
			handler.reply(member, cmd.Channel, eventError, map[string]string{"message": errTooManyCommands})
			continue
		}

		switch cmd.Action {
		case actionSubscribe:
			if err := handler.hub.join(member, cmd.Channel); err != nil {
				handler.reply(member, cmd.Channel, eventError, map[string]string{"message": err.Error()})
				continue
			}
			handler.reply(member, cmd.Channel, eventSubscribed, nil)
		case actionUnsubscribe:
			handler.hub.leave(member, cmd.Channel)
			handler.reply(member, cmd.Channel, eventUnsubscribed, nil)
		default:
			handler.reply(member, cmd.Channel, eventError, map[string]string{"message": "unknown action"})
		}
	}
}

func (handler *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, member *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-member.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				member.drop()
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				member.drop()
				return
			}
		}
	}
}

func (handler *Handler) reply(member *client, channel, event string, data any) {
	message := Message{Channel: channel, Event: event}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return
		}
		message.Data = raw
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return
	}
	member.enqueue(payload)
}
