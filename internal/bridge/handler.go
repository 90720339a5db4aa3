package bridge

import (
	"net/http"
	"net/url"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Handler upgrades /ws/session requests and runs one session per
// connection.
type Handler struct {
	hub            *Hub
	originPatterns []string
}

// NewHandler accepts connections from the given origins. Origins may be
// full URLs ("http://localhost:5173") or bare host patterns.
func NewHandler(hub *Hub, origins []string) *Handler {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			o = u.Host
		}
		patterns = append(patterns, o)
	}
	return &Handler{hub: hub, originPatterns: patterns}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.hub.logger.Error("websocket accept", "error", err)
		return
	}

	session := NewSession(h.hub, conn, uuid.New().String(), h.hub.newEngine())
	h.hub.Register(session)

	ctx := r.Context()
	go session.WritePump(ctx)
	session.ReadPump(ctx)
}
