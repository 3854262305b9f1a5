package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"satta-service/internal/config"
	"satta-service/internal/service/game"
	pkgAuth "satta-service/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type wireMessage struct {
	Type string         `json:"type"`
	Seq  int64          `json:"seq"`
	Data map[string]any `json:"data"`
}

func newTestServer(t *testing.T) (*httptest.Server, *game.Service, *game.Runtime) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.GlobalConfig = &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", Expire: 1},
	}
	svc := game.NewService(nil, nil, config.GameConfig{
		TurnSeconds: 10, GameSeconds: 120, KickThreshold: 2,
		ShufflesPerPlayer: 1, MinPlayers: 2, MaxPlayers: 4,
	})
	rt, err := svc.CreateSession(context.Background(), []string{"Asha", "Bo"}, 2)
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	r := gin.New()
	r.GET("/ws/games/:id", NewHandler(svc).HandleGameWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, svc, rt
}

func dial(t *testing.T, srv *httptest.Server, sessionID, token string) (*websocket.Conn, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/games/" + sessionID + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	return conn, err
}

func readMessage(t *testing.T, conn *websocket.Conn) wireMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg wireMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return msg
}

func TestGameSocket(t *testing.T) {
	srv, svc, rt := newTestServer(t)
	token, err := pkgAuth.GenerateSessionToken(rt.ID())
	if err != nil {
		t.Fatalf("token failed: %v", err)
	}

	conn, err := dial(t, srv, rt.ID(), token)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	first := readMessage(t, conn)
	if first.Type != "state" || first.Data["status"] != string(game.StatusPlaying) {
		t.Fatalf("unexpected first message: %+v", first)
	}

	current := rt.View().CurrentPlayerID
	if err := conn.WriteJSON(map[string]any{"type": "hit", "data": map[string]string{"playerId": current}}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	update := readMessage(t, conn)
	if update.Type != "state" || update.Seq <= first.Seq {
		t.Fatalf("expected a newer state, got %+v", update)
	}
	if update.Data["lastAction"] != string(game.ActionHit) {
		t.Fatalf("expected hit, got %v", update.Data["lastAction"])
	}

	if err := conn.WriteJSON(map[string]any{"type": "hit", "data": map[string]string{"playerId": current}}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if msg := readMessage(t, conn); msg.Type != "error" {
		t.Fatalf("expected error for out-of-turn hit, got %+v", msg)
	}

	if err := svc.CloseSession(rt.ID()); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal close, got %v", err)
	}
}

func TestGameSocketRejectsForeignToken(t *testing.T) {
	srv, _, rt := newTestServer(t)
	token, err := pkgAuth.GenerateSessionToken("another-session")
	if err != nil {
		t.Fatalf("token failed: %v", err)
	}
	if conn, err := dial(t, srv, rt.ID(), token); err == nil {
		conn.Close()
		t.Fatalf("expected handshake to fail")
	}
}
