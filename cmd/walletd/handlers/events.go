package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	eventBuffer  = 64
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
)

var upgrader websocket.Upgrader

// EventsHandler streams the events of the wallet as JSON messages. A
// client that does not keep up misses events.
type EventsHandler struct{ *env }

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Subscribe first so that nothing committed after the handshake is
	// missed.
	events, cancel := h.App.Events.Subscribe(eventBuffer)
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Info("cannot upgrade to websocket", "err", err, "remote", r.RemoteAddr)
		return
	}
	defer conn.Close()

	// Messages from the client are ignored; reading is needed to notice
	// that the connection is gone.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		var err error
		select {
		case <-closed:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			err = conn.WriteJSON(ev)
		case <-ping.C:
			err = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
		}
		if err != nil {
			h.Logger.Info("websocket session failed", "err", err)
			return
		}
	}
}
