package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// watch streams the cart to a websocket client: the current state first, then
// a fresh snapshot after every change. Slow clients only ever miss
// intermediate states, never the latest one, and a snapshot older than one
// already queued is dropped.
func (s *Server) watch(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	updates := make(chan domain.Snapshot, 1)
	var (
		pushMu sync.Mutex
		newest uint64
	)
	push := func(snap domain.Snapshot) {
		pushMu.Lock()
		defer pushMu.Unlock()
		if snap.Version < newest {
			return
		}
		newest = snap.Version
		for {
			select {
			case updates <- snap:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	}
	unsubscribe := s.cart.Subscribe(push)
	defer unsubscribe()
	push(s.cart.Snapshot())

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case snap := <-updates:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(toResponse(snap)); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
