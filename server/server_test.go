package server

import (
	"bufio"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"pursuit/shared"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSource struct {
	status shared.RunStatus
}

func (f fakeSource) Status() shared.RunStatus { return f.status }

func testBoard() shared.BoardState {
	return shared.BoardState{
		Rows:  2,
		Cols:  2,
		Cells: []string{"AT", "#B"},
		Entities: []shared.EntityState{
			{Name: "seeker-0", Kind: "seeker", LastMove: "--"},
		},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	hub := NewHub(log.New(io.Discard, "", 0))
	src := fakeSource{status: shared.RunStatus{
		RunID:     "run-7",
		Running:   true,
		Cycle:     3,
		Algorithm: "bfs",
		Board:     testBoard(),
	}}
	srv := httptest.NewServer(NewRouter(src, hub))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return srv, hub
}

func TestHealth(t *testing.T) {
	router := NewRouter(fakeSource{}, NewHub(log.New(io.Discard, "", 0)))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"healthy"`) {
		t.Errorf("Unexpected body %s", w.Body.String())
	}
}

func TestStatus(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var st shared.RunStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.RunID != "run-7" || st.Cycle != 3 || !st.Running {
		t.Errorf("Unexpected status %+v", st)
	}
	if len(st.Board.Cells) != 2 {
		t.Errorf("Board missing from status: %+v", st.Board)
	}
}

func TestBoardPlain(t *testing.T) {
	router := NewRouter(fakeSource{status: shared.RunStatus{Board: testBoard()}}, NewHub(log.New(io.Discard, "", 0)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/board", nil))

	if w.Header().Get("Content-Encoding") != "" {
		t.Errorf("Unexpected encoding %q", w.Header().Get("Content-Encoding"))
	}
	if !strings.HasPrefix(w.Body.String(), "A T\n# B\n") {
		t.Errorf("Unexpected board:\n%s", w.Body.String())
	}
}

func TestBoardBrotli(t *testing.T) {
	router := NewRouter(fakeSource{status: shared.RunStatus{Board: testBoard(), Message: "Cycle limit reached. No winner."}}, NewHub(log.New(io.Discard, "", 0)))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/board", nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	router.ServeHTTP(w, req)

	if w.Header().Get("Content-Encoding") != "br" {
		t.Fatalf("Expected brotli encoding, got %q", w.Header().Get("Content-Encoding"))
	}
	data, err := io.ReadAll(brotli.NewReader(w.Body))
	if err != nil {
		t.Fatalf("decode brotli: %v", err)
	}
	if !strings.HasPrefix(string(data), "A T\n# B\n") || !strings.HasSuffix(string(data), "No winner.\n") {
		t.Errorf("Unexpected decoded board:\n%s", data)
	}
}

func TestAcceptsBrotli(t *testing.T) {
	tests := map[string]bool{
		"":             false,
		"gzip":         false,
		"br":           true,
		"gzip, br;q=1": true,
		"br;q=0, gzip": false,
		"deflate, brx": false,
	}
	for header, want := range tests {
		if got := acceptsBrotli(header); got != want {
			t.Errorf("acceptsBrotli(%q) = %v, want %v", header, got, want)
		}
	}
}

func TestWebSocketFeed(t *testing.T) {
	srv, hub := newTestServer(t)
	hub.Broadcast(shared.CycleEvent{RunID: "run-7", Cycle: 1, Board: testBoard()})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var ev shared.CycleEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read latest event: %v", err)
	}
	if ev.Cycle != 1 {
		t.Errorf("First frame cycle = %d, want the latest (1)", ev.Cycle)
	}

	hub.Broadcast(shared.CycleEvent{RunID: "run-7", Cycle: 2, Outcome: "seeker_wins", Board: testBoard()})
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if ev.Cycle != 2 || !ev.Final() {
		t.Errorf("Unexpected event %+v", ev)
	}
}

func TestServerSentEvents(t *testing.T) {
	srv, hub := newTestServer(t)
	hub.Broadcast(shared.CycleEvent{RunID: "run-7", Cycle: 5, Board: testBoard()})

	resp, err := http.Get(srv.URL + "/events")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("Content-Type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	var sawEvent bool
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimSpace(line)
		if line == "event:cycle" {
			sawEvent = true
			continue
		}
		if data, ok := strings.CutPrefix(line, "data:"); ok {
			var ev shared.CycleEvent
			if err := json.Unmarshal([]byte(data), &ev); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			if ev.Cycle != 5 {
				t.Errorf("Cycle = %d, want 5", ev.Cycle)
			}
			break
		}
	}
	if !sawEvent {
		t.Error("Expected an event name line before the data")
	}
}
