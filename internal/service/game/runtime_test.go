package game

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	appErr "satta-service/pkg/errors"
)

func newTestRuntime(t *testing.T, onFinish func(FinishedGame)) *Runtime {
	t.Helper()
	rt := newRuntime("session-1", "ABC123", testEngine(DefaultRules(), 7), 0, onFinish)
	t.Cleanup(rt.Close)
	return rt
}

func recv(t *testing.T, ch chan OutgoingMessage) OutgoingMessage {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatalf("subscriber channel closed")
		}
		return msg
	case <-time.After(time.Second):
		t.Fatalf("no message received")
	}
	return OutgoingMessage{}
}

func TestRuntimeStartAndPlay(t *testing.T) {
	rt := newTestRuntime(t, nil)

	if v := rt.View(); v.Status != StatusSetup {
		t.Fatalf("expected setup before start, got %s", v.Status)
	}
	v, err := rt.Start([]string{"Asha", "Bo"}, 2)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if rt.Round() != 1 || rt.StartedAt().IsZero() {
		t.Fatalf("round bookkeeping not updated")
	}
	if v.CurrentPlayerID == "" || v.Players[0].HandSize != 26 {
		t.Fatalf("unexpected view: %+v", v)
	}

	other := "player-0"
	if v.CurrentPlayerID == other {
		other = "player-1"
	}
	if _, err := rt.Play(other); !errors.Is(err, appErr.ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}

	v, err = rt.Play(v.CurrentPlayerID)
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if len(v.TablePile) != 1 || v.TopCard == nil {
		t.Fatalf("expected one card on the pile, got %+v", v.TablePile)
	}
	if err := CheckInvariants(rt.State()); err != nil {
		t.Fatalf("invariants broken: %v", err)
	}
}

func TestRuntimePauseBlocksTicks(t *testing.T) {
	rt := newTestRuntime(t, nil)
	if _, err := rt.Start([]string{"Asha", "Bo"}, 2); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	rt.Tick(4)
	if _, err := rt.TogglePause(); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	v := rt.Tick(30)
	if !v.Paused || v.TurnTimeRemaining != 6 || v.GameTimeRemaining != 116 {
		t.Fatalf("paused clocks moved: %+v", v)
	}
	if _, err := rt.Play(v.CurrentPlayerID); !errors.Is(err, appErr.ErrGamePaused) {
		t.Fatalf("expected ErrGamePaused, got %v", err)
	}

	if _, err := rt.Resume(); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	v = rt.Tick(1)
	if v.Paused || v.TurnTimeRemaining != 5 {
		t.Fatalf("expected running clock after resume: %+v", v)
	}
}

func TestRuntimeBroadcasts(t *testing.T) {
	rt := newTestRuntime(t, nil)
	ch := rt.Subscribe("sub-1")

	first := recv(t, ch)
	if first.Type != "state" {
		t.Fatalf("expected initial state, got %s", first.Type)
	}

	if _, err := rt.Start([]string{"Asha", "Bo"}, 2); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	started := recv(t, ch)
	view, ok := started.Data.(View)
	if !ok || view.Status != StatusPlaying {
		t.Fatalf("expected playing state, got %+v", started.Data)
	}
	if started.Seq <= first.Seq {
		t.Fatalf("sequence did not increase: %d then %d", first.Seq, started.Seq)
	}

	if err := rt.HandleAction("sub-1", "ping", nil); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
	if msg := recv(t, ch); msg.Type != "pong" {
		t.Fatalf("expected pong, got %s", msg.Type)
	}

	rt.Unsubscribe("sub-1")
	if _, ok := <-ch; ok {
		t.Fatalf("channel still open after unsubscribe")
	}
}

func TestRuntimeHandleAction(t *testing.T) {
	rt := newTestRuntime(t, nil)
	if _, err := rt.Start([]string{"Asha", "Bo"}, 2); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	current := rt.View().CurrentPlayerID
	data, _ := json.Marshal(map[string]any{"playerId": current})
	if err := rt.HandleAction("sub-1", "shuffle", data); err != nil {
		t.Fatalf("shuffle failed: %v", err)
	}
	if err := rt.HandleAction("sub-1", "shuffle", data); !errors.Is(err, appErr.ErrNoShufflesLeft) {
		t.Fatalf("expected ErrNoShufflesLeft, got %v", err)
	}
	if err := rt.HandleAction("sub-1", "hit", data); err != nil {
		t.Fatalf("hit failed: %v", err)
	}
	if err := rt.HandleAction("sub-1", "dance", nil); !errors.Is(err, appErr.ErrUnsupportedAction) {
		t.Fatalf("expected ErrUnsupportedAction, got %v", err)
	}
	if err := rt.HandleAction("sub-1", "hit", json.RawMessage(`{`)); err == nil {
		t.Fatalf("expected payload error")
	}

	restart, _ := json.Marshal(map[string]any{"playerNames": []string{"Asha", "Bo", "Chen"}, "playerCount": 3})
	if err := rt.HandleAction("sub-1", "restart", restart); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if rt.Round() != 2 || len(rt.View().Players) != 3 {
		t.Fatalf("restart did not deal a new game")
	}

	if err := rt.HandleAction("sub-1", "quit", nil); err != nil {
		t.Fatalf("quit failed: %v", err)
	}
	if rt.View().Status != StatusSetup {
		t.Fatalf("expected setup after quit")
	}
}

func TestRuntimeFinishCallbackOncePerRound(t *testing.T) {
	done := make(chan FinishedGame, 4)
	rt := newTestRuntime(t, func(fg FinishedGame) { done <- fg })
	if _, err := rt.Start([]string{"Asha", "Bo"}, 2); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// Two timeouts per seat kick the first player and end the game.
	for i := 0; i < 40; i++ {
		rt.Tick(1)
	}
	if rt.View().Status != StatusFinished {
		t.Fatalf("expected finished game")
	}

	select {
	case fg := <-done:
		if fg.Round != 1 || fg.State.EndReason != EndLastPlayer || fg.EndedAt.IsZero() {
			t.Fatalf("unexpected finished game: %+v", fg)
		}
	case <-time.After(time.Second):
		t.Fatalf("finish callback not called")
	}
	select {
	case fg := <-done:
		t.Fatalf("finish callback called twice: %+v", fg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRuntimeLiveClock(t *testing.T) {
	rt := newRuntime("session-2", "XYZ789", testEngine(DefaultRules(), 3), 5*time.Millisecond, nil)
	defer rt.Close()
	if _, err := rt.Start([]string{"Asha", "Bo"}, 2); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if rt.State().Clock >= 3 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("clock did not advance, at %d", rt.State().Clock)
}
