package observer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"spherecull/sim"
	"spherecull/sim/pointset"
)

func TestIsLoopbackRemote(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:5000": true,
		"[::1]:80":       true,
		"10.1.2.3:9":     false,
		"garbage":        false,
	}
	for in, want := range cases {
		if got := isLoopbackRemote(in); got != want {
			t.Fatalf("isLoopbackRemote(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestStateHandler(t *testing.T) {
	s := NewServer(nil)
	s.SetState(State{Variant: "centroid", Round: 4, Live: 99, Phase: "mark"})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/state", nil)
	req.RemoteAddr = "127.0.0.1:4444"
	s.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var got State
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Round != 4 || got.Live != 99 || got.Phase != "mark" {
		t.Fatalf("state = %+v", got)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/state", nil)
	req.RemoteAddr = "192.168.1.9:4444"
	s.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("remote status = %d, want 403", rr.Code)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/state", nil)
	req.RemoteAddr = "127.0.0.1:4444"
	s.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST status = %d, want 405", rr.Code)
	}
}

func TestObserveStream(t *testing.T) {
	s := NewServer(nil)
	s.SetState(State{Variant: "triangle", Live: 1000})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/observe"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello helloMsg
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read hello: %v", err)
	}
	if hello.Type != "HELLO" || hello.State.Variant != "triangle" {
		t.Fatalf("hello = %+v", hello)
	}

	s.ObserveRound(sim.Report{Round: 1, Variant: "triangle", Removed: []pointset.ID{2, 3}, Survivor: 1, Live: 998})

	var msg map[string]any
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read round: %v", err)
	}
	if msg["type"] != "ROUND" || msg["round"] != float64(1) || msg["live"] != float64(998) {
		t.Fatalf("round msg = %v", msg)
	}
	if s.Clients() != 1 {
		t.Fatalf("Clients() = %d, want 1", s.Clients())
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := NewServer(nil)
	ctx, cancel := context.WithCancel(context.Background())
	addr, done, err := s.Serve(ctx, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Serve: %v", err)
	}

	resp, err := http.Get("http://" + addr.String() + "/v1/state")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
