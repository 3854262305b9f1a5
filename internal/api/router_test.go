package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"satta-service/internal/config"
	"satta-service/internal/service"
	"satta-service/internal/service/game"

	"github.com/gin-gonic/gin"
)

type testEnvelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
	Msg  string          `json:"msg"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *service.Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.GlobalConfig = &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", Expire: 1},
	}
	services := service.NewContainer(nil, nil, config.GameConfig{
		TurnSeconds: 10, GameSeconds: 120, KickThreshold: 2,
		ShufflesPerPlayer: 1, MinPlayers: 2, MaxPlayers: 4,
	})
	r := gin.New()
	RegisterRoutes(r, services)
	return r, services
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env testEnvelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func createGame(t *testing.T, r http.Handler) createGameResponse {
	t.Helper()
	w, env := doJSON(t, r, http.MethodPost, "/satta/v1/games", "", map[string]any{
		"playerNames": []string{"Asha", "Bo"},
		"playerCount": 2,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("create game failed: %d %s", w.Code, w.Body.String())
	}
	var created createGameResponse
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.SessionID == "" || created.Token == "" {
		t.Fatalf("missing session or token: %+v", created)
	}
	return created
}

func TestCreateGameAndHit(t *testing.T) {
	r, services := newTestRouter(t)
	created := createGame(t, r)
	defer services.Game.CloseSession(created.SessionID)

	base := "/satta/v1/games/" + created.SessionID
	current := created.State.CurrentPlayerID
	other := "player-0"
	if current == other {
		other = "player-1"
	}

	w, env := doJSON(t, r, http.MethodPost, base+"/hit", created.Token, map[string]string{"playerId": other})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for out-of-turn hit, got %d", w.Code)
	}
	if env.Msg == "" {
		t.Fatalf("expected an error message")
	}

	w, env = doJSON(t, r, http.MethodPost, base+"/hit", created.Token, map[string]string{"playerId": current})
	if w.Code != http.StatusOK {
		t.Fatalf("hit failed: %d %s", w.Code, w.Body.String())
	}
	var view game.View
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if len(view.TablePile) != 1 {
		t.Fatalf("expected one card on pile, got %d", len(view.TablePile))
	}

	w, _ = doJSON(t, r, http.MethodPost, base+"/pause", created.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("pause failed: %d", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodPost, base+"/shuffle", created.Token, map[string]string{"playerId": view.CurrentPlayerID})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 while paused, got %d", w.Code)
	}
}

func TestCreateGameValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodPost, "/satta/v1/games", "", map[string]any{
		"playerNames": []string{"Asha", "Asha"},
		"playerCount": 2,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate names, got %d", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/satta/v1/games", "", map[string]any{
		"playerNames": []string{"A", "B", "C", "D", "E"},
		"playerCount": 5,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for five players, got %d", w.Code)
	}
}

func TestSessionTokenRequired(t *testing.T) {
	r, services := newTestRouter(t)
	first := createGame(t, r)
	second := createGame(t, r)
	defer services.Game.CloseSession(first.SessionID)
	defer services.Game.CloseSession(second.SessionID)

	w, _ := doJSON(t, r, http.MethodGet, "/satta/v1/games/"+first.SessionID, "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodGet, "/satta/v1/games/"+first.SessionID, second.Token, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with another session's token, got %d", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodGet, "/satta/v1/games/"+first.SessionID, first.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with own token, got %d", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodDelete, "/satta/v1/games/"+first.SessionID, first.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("close failed: %d", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodGet, "/satta/v1/games/"+first.SessionID, first.Token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after close, got %d", w.Code)
	}
}

func TestLeaderboardWithoutRedis(t *testing.T) {
	r, _ := newTestRouter(t)
	w, _ := doJSON(t, r, http.MethodGet, "/satta/v1/leaderboard", "", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodGet, "/satta/v1/leaderboard?limit=abc", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", w.Code)
	}
}
