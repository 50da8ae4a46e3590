package server

import (
	"bufio"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func readSSEEvent(t *testing.T, reader *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read sse stream: %v", err)
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			if event != "" || data != "" {
				return event, data
			}
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
}

func TestGameStreamSendsInitialSnapshot(t *testing.T) {
	ts := newTestServer(t)

	gameID, _ := createGame(t, ts)
	resp, err := http.Get(ts.URL + fmt.Sprintf("/game/%d/sse", gameID))
	if err != nil {
		t.Fatalf("open sse stream: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if contentType := resp.Header.Get("Content-Type"); !strings.HasPrefix(contentType, "text/event-stream") {
		t.Fatalf("expected event-stream content type, got %s", contentType)
	}

	event, data := readSSEEvent(t, bufio.NewReader(resp.Body))
	if event != "update" {
		t.Fatalf("expected update event, got %s", event)
	}
	if !strings.Contains(data, "roundWithResults") {
		t.Fatalf("expected snapshot payload, got %s", data)
	}
}

func TestGameStreamDeliversSettlements(t *testing.T) {
	ts := newTestServer(t)

	gameID, playerIDs := createGame(t, ts)
	resp, err := http.Get(ts.URL + fmt.Sprintf("/game/%d/sse", gameID))
	if err != nil {
		t.Fatalf("open sse stream: %v", err)
	}
	defer resp.Body.Close()
	reader := bufio.NewReader(resp.Body)

	if event, _ := readSSEEvent(t, reader); event != "update" {
		t.Fatalf("expected initial update event, got %s", event)
	}

	settled := settleRound(t, ts, gameID, playerIDs, 100, []int{300, -100, -100, -100})
	if settled.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, settled.StatusCode)
	}

	event, data := readSSEEvent(t, reader)
	if event != "update" {
		t.Fatalf("expected update event after settlement, got %s", event)
	}
	if !strings.Contains(data, `"balance":300`) {
		t.Fatalf("expected updated balance in snapshot, got %s", data)
	}
}

func TestGameStreamUnknownGame(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/game/9999/sse")
	if err != nil {
		t.Fatalf("open sse stream: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}
