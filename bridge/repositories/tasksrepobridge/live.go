package tasksrepobridge

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jrazmi/minimaltodo/infrastructure/web"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// httpLive streams the task listing over a WebSocket: the current snapshot
// first, then one frame per committed change and one per failure notice.
func (b *bridge) httpLive(ctx context.Context, r *http.Request) web.Encoder {
	conn, err := b.upgrader.Upgrade(web.GetWriter(ctx), r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		b.log.WarnContext(ctx, "websocket upgrade failed", "error", err)
		return web.NewNoResponse()
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tasks := b.service.Tasks(ctx)
	defer tasks.Close()
	notices := b.service.Notices(ctx)
	defer notices.Close()

	go func() {
		defer cancel()
		readPump(conn)
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	b.log.DebugContext(ctx, "live stream opened", "remote", r.RemoteAddr)
	defer b.log.DebugContext(context.WithoutCancel(ctx), "live stream closed", "remote", r.RemoteAddr)

	for {
		var err error
		select {
		case <-ctx.Done():
			return web.NewNoResponse()

		case snap, ok := <-tasks.C():
			if !ok {
				closeStream(conn)
				return web.NewNoResponse()
			}
			err = writeJSON(conn, snapshotFrame{Type: frameSnapshot, Tasks: nonNil(snap)})

		case n, ok := <-notices.C():
			if !ok {
				closeStream(conn)
				return web.NewNoResponse()
			}
			err = writeJSON(conn, noticeFrame{Type: frameNotice, Notice: n})

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			err = conn.WriteMessage(websocket.PingMessage, nil)
		}
		if err != nil {
			b.log.DebugContext(ctx, "live stream write failed", "error", err)
			return web.NewNoResponse()
		}
	}
}

// readPump discards client messages and returns when the peer goes away.
// Reading is required for control frames to be processed.
func readPump(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

func closeStream(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down")
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if slices.Contains(allowed, "*") {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}
