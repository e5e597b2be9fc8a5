package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"arcadeboard/core"
	"arcadeboard/realtime"
)

func dial(t *testing.T, url string) *gorillaws.Conn {
	t.Helper()
	wsURL := "ws" + url[len("http"):] // convert http->ws
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	return conn
}

func waitForSubscribers(t *testing.T, hub *realtime.Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d subscribers", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHandlerStreamsEvents(t *testing.T) {
	hub := realtime.NewHub()
	server := httptest.NewServer(Handler(hub))
	defer server.Close()

	conn := dial(t, server.URL)
	defer conn.Close()
	waitForSubscribers(t, hub, 1)

	ev := core.NewGuessSubmitted(core.Guess{ID: "g1", PlayerName: "alice", GuessedNumber: 5})
	hub.Broadcast(context.Background(), ev)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}

	var received core.Event
	if err := json.Unmarshal(msg, &received); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if received.Guess == nil || received.Guess.PlayerName != "alice" {
		t.Fatalf("unexpected event: %+v", received)
	}
}

func TestHandlerGameFilter(t *testing.T) {
	hub := realtime.NewHub()
	server := httptest.NewServer(Handler(hub))
	defer server.Close()

	conn := dial(t, server.URL+"?game=quiz")
	defer conn.Close()
	waitForSubscribers(t, hub, 1)

	hub.Broadcast(context.Background(), core.NewScoreSubmitted(core.Score{ID: "p", GameType: core.GamePuzzle}))
	hub.Broadcast(context.Background(), core.NewScoreSubmitted(core.Score{ID: "q", GameType: core.GameQuiz}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	var received core.Event
	if err := json.Unmarshal(msg, &received); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if received.Score == nil || received.Score.ID != "q" {
		t.Fatalf("expected quiz score, got %+v", received)
	}
}

func TestHandlerUnsubscribesOnClose(t *testing.T) {
	hub := realtime.NewHub()
	server := httptest.NewServer(Handler(hub))
	defer server.Close()

	conn := dial(t, server.URL)
	waitForSubscribers(t, hub, 1)
	_ = conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber not released after client closed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
