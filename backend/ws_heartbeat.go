package main

import (
	"time"

	"github.com/gorilla/websocket"
)

const wsIdlePingInterval = 30 * time.Second

type wsPing struct {
	Stream string `json:"stream"`
	SentAt int64  `json:"sent_at_ms"`
}

func pingMessage(stream string) []byte {
	return mustMarshal(wsMessage{
		Type:    "ping",
		Payload: mustMarshal(wsPing{Stream: stream, SentAt: time.Now().UnixMilli()}),
	})
}

// writeWSWithHeartbeat drains the send channel onto the connection and pings
// idle clients so half-dead connections get reaped. The ping names the stream
// so a client multiplexing status, analysis and overlay sockets can tell them
// apart.
func writeWSWithHeartbeat(conn *websocket.Conn, stream string, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, pingMessage(stream)); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
