package main

import (
	"encoding/json"
	"testing"
)

func TestPingMessageNamesStream(t *testing.T) {
	var msg wsMessage
	if err := json.Unmarshal(pingMessage("overlay"), &msg); err != nil {
		t.Fatalf("decode ping: %v", err)
	}
	if msg.Type != "ping" {
		t.Fatalf("expected type ping, got %q", msg.Type)
	}
	var ping wsPing
	if err := json.Unmarshal(msg.Payload, &ping); err != nil {
		t.Fatalf("decode ping payload: %v", err)
	}
	if ping.Stream != "overlay" {
		t.Fatalf("expected stream overlay, got %q", ping.Stream)
	}
	if ping.SentAt <= 0 {
		t.Fatalf("expected positive sent_at_ms, got %d", ping.SentAt)
	}
}
