package main

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// overlayPayload carries the best placement's cells for UI ghost rendering
// over the live game.
type overlayPayload struct {
	Active      bool       `json:"active"`
	PieceKind   PieceKind  `json:"piece_kind,omitempty"`
	Rotation    int        `json:"rotation,omitempty"`
	Cells       []Position `json:"cells,omitempty"`
	Score       float64    `json:"score,omitempty"`
	Confidence  float64    `json:"confidence,omitempty"`
	GeneratedAt int64      `json:"generated_at_ms,omitempty"`
}

type OverlayClient struct {
	hub  *OverlayHub
	conn *websocket.Conn
	send chan []byte
}

type OverlayHub struct {
	mu        sync.Mutex
	clients   map[*OverlayClient]struct{}
	broadcast chan overlayPayload
}

func NewOverlayHub() *OverlayHub {
	return &OverlayHub{
		clients:   make(map[*OverlayClient]struct{}),
		broadcast: make(chan overlayPayload, 32),
	}
}

func (h *OverlayHub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case payload := <-h.broadcast:
			h.mu.Lock()
			if len(h.clients) == 0 {
				h.mu.Unlock()
				continue
			}
			for client := range h.clients {
				client.sendJSON(wsMessage{Type: "overlay", Payload: mustMarshal(payload)})
			}
			h.mu.Unlock()
		}
	}
}

func (h *OverlayHub) Publish(payload overlayPayload) {
	select {
	case h.broadcast <- payload:
	default:
	}
}

func (h *OverlayHub) Register(c *OverlayClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *OverlayHub) Unregister(c *OverlayClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *OverlayHub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (c *OverlayClient) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func serveOverlayWS(hub *OverlayHub, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &OverlayClient{hub: hub, conn: conn, send: make(chan []byte, 16)}
	hub.Register(client)

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, "overlay", client.send); err != nil {
			return
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			hub.Unregister(client)
			return
		}
	}
}
