package httpadapter

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/solarsentinel/sentinel-api/internal/app/refresh"
	"github.com/solarsentinel/sentinel-api/internal/observability"
)

// handleSnapshot serves the latest cached snapshot for a query key. Before
// the first refresh completes there is nothing to show yet, which is not an
// error: 204.
func (s *Server) handleSnapshot(key string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}

		snap, ok := s.scheduler.Latest(key)
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

var upgrader = websocket.Upgrader{
	// the API is already CORS-open; the websocket follows
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWatch streams dashboard snapshots: current state of every key first,
// then each refresh as it lands. The subscription is released when the client
// goes away.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return // Upgrade already wrote the error response
	}
	defer conn.Close()

	log := observability.LoggerFromContext(r.Context())

	sub, cancel := s.scheduler.Subscribe()
	defer cancel()

	for _, key := range []string{refresh.KeyWeather, refresh.KeySatellites} {
		if snap, ok := s.scheduler.Latest(key); ok {
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		}
	}

	// read pump: only there to notice the peer closing
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case snap, ok := <-sub:
			if !ok {
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				log.Debug("watch client write failed", "error", err)
				return
			}
		}
	}
}
