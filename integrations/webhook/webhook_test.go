package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"arcadeboard/core"
)

func TestSink_OnEventPostsToEndpoints(t *testing.T) {
	var hits int32
	var got core.Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = r.Body.Close()
	}))
	defer srv.Close()

	sink := New([]string{srv.URL, srv.URL})
	sink.OnEvent(context.Background(), core.NewScoreSubmitted(core.Score{ID: "s1", PlayerName: "u1", TimeSeconds: 5, GameType: core.GameQuiz}))

	if atomic.LoadInt32(&hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", hits)
	}
	if got.Type != core.EventScoreSubmitted || got.Score == nil || got.Score.ID != "s1" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestSink_FailingEndpointDoesNotStopOthers(t *testing.T) {
	var hits int32
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer good.Close()

	sink := New([]string{bad.URL, "http://127.0.0.1:0/unreachable", good.URL})
	sink.OnEvent(context.Background(), core.NewGuessSubmitted(core.Guess{ID: "g1"}))

	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected good endpoint to be hit once, got %d", hits)
	}
}

func TestSink_NoEndpoints(t *testing.T) {
	sink := New(nil)
	sink.OnEvent(context.Background(), core.NewGuessSubmitted(core.Guess{ID: "g1"}))
	if len(sink.Endpoints()) != 0 {
		t.Fatal("expected no endpoints")
	}
}
