package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// analysisPayload is one evaluation cycle's output: the ranked suggestions
// plus the live-board metrics they were ranked against.
type analysisPayload struct {
	Suggestions []MoveSuggestion `json:"suggestions"`
	Metrics     BoardMetrics     `json:"metrics"`
	TotalScore  float64          `json:"total_score"`
	Phase       GamePhase        `json:"phase"`
	UpdatedAt   int64            `json:"updated_at_ms"`
}

type AnalysisClient struct {
	hub  *AnalysisHub
	conn *websocket.Conn
	send chan []byte
}

type AnalysisHub struct {
	mu        sync.Mutex
	clients   map[*AnalysisClient]struct{}
	broadcast chan analysisPayload
}

func NewAnalysisHub() *AnalysisHub {
	return &AnalysisHub{
		clients:   make(map[*AnalysisClient]struct{}),
		broadcast: make(chan analysisPayload, 64),
	}
}

func (h *AnalysisHub) Run(done <-chan struct{}) {
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
				client.sendJSON(wsMessage{Type: "analysis", Payload: mustMarshal(payload)})
			}
			h.mu.Unlock()
		}
	}
}

func (h *AnalysisHub) Publish(payload analysisPayload) {
	select {
	case h.broadcast <- payload:
	default:
	}
}

func (h *AnalysisHub) Register(c *AnalysisClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *AnalysisHub) Unregister(c *AnalysisClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *AnalysisHub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (c *AnalysisClient) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func serveAnalysisWS(hub *AnalysisHub, analyzer *Analyzer, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &AnalysisClient{hub: hub, conn: conn, send: make(chan []byte, 16)}
	hub.Register(client)

	client.sendJSON(wsMessage{Type: "analysis", Payload: mustMarshal(analysisPayloadFrom(analyzer))})

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, "analysis", client.send); err != nil {
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

func analysisPayloadFrom(analyzer *Analyzer) analysisPayload {
	evaluation := analyzer.Metrics()
	return analysisPayload{
		Suggestions: analyzer.Suggestions(),
		Metrics:     evaluation.Metrics,
		TotalScore:  evaluation.TotalScore,
		Phase:       analyzer.Summary().Phase,
		UpdatedAt:   time.Now().UnixMilli(),
	}
}
