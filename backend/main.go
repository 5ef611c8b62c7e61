package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

func main() {
	var persistOnce sync.Once
	analyzer := NewAnalyzer()
	persistOnShutdown := func(reason string) {
		persistOnce.Do(func() {
			if !GetConfig().PersistStats {
				return
			}
			log.Printf("[backend] persisting statistics on %s", reason)
			persistStats(analyzer)
		})
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Printf("[backend] panic recovered in main: %v", recovered)
			persistOnShutdown("panic")
		}
	}()

	loadPersistedStats(analyzer)
	defer persistOnShutdown("exit")
	hub := NewHub()
	analysisHub := NewAnalysisHub()
	overlayHub := NewOverlayHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	analyzer.SetOverlayPublisher(
		func() bool { return overlayHub.HasClients() },
		func(payload overlayPayload) {
			overlayHub.Publish(payload)
		},
	)

	go hub.Run(ctx.Done())
	go analysisHub.Run(ctx.Done())
	go overlayHub.Run(ctx.Done())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, analyzerStatus(analyzer))
	})

	r.Post("/api/observe", func(w http.ResponseWriter, r *http.Request) {
		var payload observePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		update, err := payload.toUpdate()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if err := analyzer.Observe(update); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		status := analyzerStatus(analyzer)
		writeJSON(w, http.StatusOK, status)
		hub.broadcastStatus <- status
		hub.broadcastHints <- hintsPayload{Hints: analyzer.Hints()}
		analysisHub.Publish(analysisPayloadFrom(analyzer))
	})

	r.Get("/api/suggestions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"suggestions": analyzer.Suggestions(),
		})
	})

	r.Get("/api/hints", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, hintsPayload{Hints: analyzer.Hints()})
	})

	r.Get("/api/metrics", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, analyzer.Metrics())
	})

	r.Get("/api/assessment", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, analyzer.Assessment())
	})

	r.Get("/api/statistics", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, analyzer.Statistics())
	})

	r.Get("/api/transitions", func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 50
		}
		if limit > maxTransitionHistory {
			limit = maxTransitionHistory
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"transitions": analyzer.Transitions(limit),
		})
	})

	r.Get("/api/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, GetConfig())
	})

	r.Post("/api/config", func(w http.ResponseWriter, r *http.Request) {
		var payload Config
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		if err := configStore.Update(payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, GetConfig())
	})

	r.Post("/api/reset", func(w http.ResponseWriter, r *http.Request) {
		analyzer.Reset()
		status := analyzerStatus(analyzer)
		writeJSON(w, http.StatusOK, status)
		hub.broadcastReset <- status
	})

	r.Get("/ws/", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, analyzer, w, r)
	})
	r.Get("/ws/analysis", func(w http.ResponseWriter, r *http.Request) {
		serveAnalysisWS(analysisHub, analyzer, w, r)
	})
	r.Get("/ws/overlay", func(w http.ResponseWriter, r *http.Request) {
		serveOverlayWS(overlayHub, w, r)
	})

	server := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Println("backend listening on :8080")
	var runErr error
	select {
	case <-sigCtx.Done():
		log.Printf("[backend] shutdown signal received: %v", sigCtx.Err())
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
			log.Printf("[backend] server error: %v", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[backend] graceful shutdown failed: %v", err)
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Printf("[backend] forced close failed: %v", closeErr)
		}
	}

	cancel()
	persistOnShutdown("shutdown")
	if runErr != nil {
		log.Printf("[backend] exiting after server error: %v", runErr)
	}
}

func serveWS(hub *Hub, analyzer *Analyzer, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.Register(client)

	client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(analyzerStatus(analyzer))})

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, "status", client.send); err != nil {
			return
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(analyzerStatus(analyzer))})
		case "request_hints":
			client.sendJSON(wsMessage{Type: "hints", Payload: mustMarshal(hintsPayload{Hints: analyzer.Hints()})})
		}
	}
}

func analyzerStatus(analyzer *Analyzer) StatusResponse {
	snapshot := analyzer.Snapshot()
	return StatusResponse{
		Summary:     analyzer.Summary(),
		Config:      GetConfig(),
		Board:       boardToGrid(snapshot.Board),
		Suggestions: analyzer.Suggestions(),
		Hints:       analyzer.Hints(),
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
