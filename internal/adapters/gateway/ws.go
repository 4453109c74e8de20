package gateway

import (
	"log/slog"
	"net/http"

	"github.com/blacksultan/sultand/internal/bus"
)

// handleEventStream upgrades the connection and relays the live event feed.
// The subscription drops events if this socket writes too slowly; other
// subscribers and the simulator are unaffected.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := s.bus.Subscribe(bus.DefaultBuffer)
	defer s.bus.Unsubscribe(sub)
	slog.Debug("event stream connected", "subscription", sub.ID())

	// Drain client frames so pings and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	for event := range sub.C() {
		if err := conn.WriteJSON(event); err != nil {
			return
		}
	}
}
