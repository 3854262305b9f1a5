package game

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	appErr "satta-service/pkg/errors"
	"satta-service/pkg/logger"

	"go.uber.org/zap"
)

type OutgoingMessage struct {
	Type string      `json:"type"`
	Seq  int64       `json:"seq"`
	Data interface{} `json:"data"`
}

// FinishedGame is handed to the finish callback once per round.
type FinishedGame struct {
	SessionID string
	Code      string
	Round     int
	StartedAt time.Time
	EndedAt   time.Time
	State     GameState
}

// Runtime owns one live game. Every transition, whether a user action or a
// clock tick, runs under mu, so a tick can never land in the middle of a
// turn resolution.
type Runtime struct {
	id        string
	code      string
	engine    *Engine
	state     GameState
	round     int
	startedAt time.Time
	endedAt   time.Time
	active    time.Time

	subscribers map[string]chan OutgoingMessage
	seq         int64

	tickInterval time.Duration
	ticker       *time.Ticker
	stop         chan struct{}
	finished     bool

	mu sync.Mutex

	onFinish func(FinishedGame)
	log      *zap.Logger
}

func newRuntime(id, code string, engine *Engine, tickInterval time.Duration, onFinish func(FinishedGame)) *Runtime {
	return &Runtime{
		id:           id,
		code:         code,
		engine:       engine,
		state:        engine.Reset(),
		active:       time.Now(),
		subscribers:  make(map[string]chan OutgoingMessage),
		tickInterval: tickInterval,
		onFinish:     onFinish,
		log:          logger.Session(id),
	}
}

func (rt *Runtime) ID() string   { return rt.id }
func (rt *Runtime) Code() string { return rt.code }

// State returns a copy of the authoritative state.
func (rt *Runtime) State() GameState {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.state.Clone()
}

func (rt *Runtime) View() View {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return NewView(rt.state)
}

func (rt *Runtime) StartedAt() time.Time {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.startedAt
}

func (rt *Runtime) Round() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.round
}

// IdleSince is the last time a user acted on this table.
func (rt *Runtime) IdleSince() time.Time {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.active
}

// Start deals a new game. It also serves "play again" on a finished table.
func (rt *Runtime) Start(names []string, count int) (View, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	next, err := rt.engine.Start(names, count)
	if err != nil {
		return NewView(rt.state), err
	}
	rt.stopClockLocked()
	rt.finished = false
	rt.round++
	rt.startedAt = time.Now()
	rt.endedAt = time.Time{}
	rt.touchLocked()
	rt.applyLocked(next)
	rt.startClockLocked()
	rt.log.Info("game started",
		zap.Int("players", count),
		zap.String("first", next.Players[next.CurrentPlayerIndex].ID),
	)
	return NewView(rt.state), nil
}

func (rt *Runtime) Play(playerID string) (View, error) {
	return rt.do(func(s GameState) (GameState, error) {
		return rt.engine.Play(s, playerID)
	})
}

func (rt *Runtime) ShuffleHand(playerID string) (View, error) {
	return rt.do(func(s GameState) (GameState, error) {
		return rt.engine.ShuffleHand(s, playerID)
	})
}

func (rt *Runtime) TogglePause() (View, error) {
	return rt.do(rt.engine.TogglePause)
}

func (rt *Runtime) Resume() (View, error) {
	return rt.do(rt.engine.Resume)
}

// Reset abandons the current game and returns the table to setup.
func (rt *Runtime) Reset() View {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.stopClockLocked()
	rt.finished = false
	rt.touchLocked()
	rt.applyLocked(rt.engine.Reset())
	return NewView(rt.state)
}

// Tick advances the clocks by units. The live table calls it once per
// tick interval.
func (rt *Runtime) Tick(units int) View {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.state.Status != StatusPlaying || rt.state.Paused {
		return NewView(rt.state)
	}
	prev := rt.state
	next := rt.engine.Tick(prev, units)
	if next.LastAction != prev.LastAction || next.CurrentPlayerIndex != prev.CurrentPlayerIndex {
		rt.log.Debug("clock forced a transition",
			zap.String("action", string(next.LastAction)),
			zap.Int("seat", next.CurrentPlayerIndex),
		)
	}
	rt.applyLocked(next)
	return NewView(rt.state)
}

func (rt *Runtime) do(fn func(GameState) (GameState, error)) (View, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	next, err := fn(rt.state)
	if err != nil {
		return NewView(rt.state), err
	}
	rt.touchLocked()
	rt.applyLocked(next)
	return NewView(rt.state), nil
}

// HandleAction dispatches an inbound websocket message.
func (rt *Runtime) HandleAction(subscriberID, action string, data json.RawMessage) error {
	var payload struct {
		PlayerID    string   `json:"playerId"`
		PlayerNames []string `json:"playerNames"`
		PlayerCount int      `json:"playerCount"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("invalid payload: %w", err)
		}
	}

	var err error
	switch action {
	case "hit":
		_, err = rt.Play(payload.PlayerID)
	case "shuffle":
		_, err = rt.ShuffleHand(payload.PlayerID)
	case "toggle_pause", "pause":
		_, err = rt.TogglePause()
	case "resume":
		_, err = rt.Resume()
	case "reset", "quit":
		rt.Reset()
	case "restart":
		_, err = rt.Start(payload.PlayerNames, payload.PlayerCount)
	case "rejoin":
		rt.mu.Lock()
		rt.pushStateLocked(subscriberID)
		rt.mu.Unlock()
	case "ping":
		rt.mu.Lock()
		rt.pushMessageLocked(subscriberID, OutgoingMessage{Type: "pong", Seq: rt.nextSeqLocked(), Data: map[string]string{"message": "pong"}})
		rt.mu.Unlock()
	default:
		return appErr.ErrUnsupportedAction
	}
	return err
}

func (rt *Runtime) Subscribe(subscriberID string) chan OutgoingMessage {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	ch := make(chan OutgoingMessage, 8)
	rt.subscribers[subscriberID] = ch
	rt.pushStateLocked(subscriberID)
	return ch
}

func (rt *Runtime) Unsubscribe(subscriberID string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if ch, ok := rt.subscribers[subscriberID]; ok {
		delete(rt.subscribers, subscriberID)
		close(ch)
	}
}

// Notify sends msg to one subscriber only.
func (rt *Runtime) Notify(subscriberID string, msg OutgoingMessage) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	msg.Seq = rt.nextSeqLocked()
	rt.pushMessageLocked(subscriberID, msg)
}

// Close stops the clock and disconnects every subscriber.
func (rt *Runtime) Close() {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.stopClockLocked()
	for id, ch := range rt.subscribers {
		delete(rt.subscribers, id)
		close(ch)
	}
}

func (rt *Runtime) applyLocked(next GameState) {
	rt.state = next
	if err := CheckInvariants(next); err != nil {
		rt.log.Error("state check failed", zap.Error(err))
	}
	rt.broadcastStateLocked()

	if next.Status == StatusFinished && !rt.finished {
		rt.finished = true
		rt.endedAt = time.Now()
		rt.stopClockLocked()
		winner := ""
		if w, ok := next.Winner(); ok {
			winner = w.Name
		}
		rt.log.Info("game finished",
			zap.String("winner", winner),
			zap.String("reason", string(next.EndReason)),
			zap.Int("clock", next.Clock),
		)
		if rt.onFinish != nil {
			go rt.onFinish(FinishedGame{
				SessionID: rt.id,
				Code:      rt.code,
				Round:     rt.round,
				StartedAt: rt.startedAt,
				EndedAt:   rt.endedAt,
				State:     next.Clone(),
			})
		}
	}
}

func (rt *Runtime) touchLocked() {
	rt.active = time.Now()
}

func (rt *Runtime) startClockLocked() {
	if rt.tickInterval <= 0 || rt.stop != nil {
		return
	}
	rt.ticker = time.NewTicker(rt.tickInterval)
	rt.stop = make(chan struct{})
	go rt.runClock(rt.ticker, rt.stop)
}

func (rt *Runtime) runClock(ticker *time.Ticker, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			rt.clockTick(stop)
		}
	}
}

// clockTick ignores ticks from a clock that was stopped while this one
// waited for the lock.
func (rt *Runtime) clockTick(stop chan struct{}) {
	rt.mu.Lock()
	current := rt.stop == stop
	rt.mu.Unlock()
	if current {
		rt.Tick(1)
	}
}

func (rt *Runtime) stopClockLocked() {
	if rt.stop != nil {
		close(rt.stop)
		rt.stop = nil
	}
	if rt.ticker != nil {
		rt.ticker.Stop()
		rt.ticker = nil
	}
}

func (rt *Runtime) pushStateLocked(subscriberID string) {
	rt.pushMessageLocked(subscriberID, OutgoingMessage{
		Type: "state",
		Seq:  rt.nextSeqLocked(),
		Data: NewView(rt.state),
	})
}

func (rt *Runtime) broadcastStateLocked() {
	if len(rt.subscribers) == 0 {
		return
	}
	msg := OutgoingMessage{
		Type: "state",
		Seq:  rt.nextSeqLocked(),
		Data: NewView(rt.state),
	}
	for id, ch := range rt.subscribers {
		select {
		case ch <- msg:
		default:
			rt.log.Warn("ws subscriber channel full", zap.String("subscriberID", id))
		}
	}
}

func (rt *Runtime) pushMessageLocked(subscriberID string, msg OutgoingMessage) {
	if ch, ok := rt.subscribers[subscriberID]; ok {
		select {
		case ch <- msg:
		default:
			rt.log.Warn("ws subscriber channel full", zap.String("subscriberID", subscriberID))
		}
	}
}

func (rt *Runtime) nextSeqLocked() int64 {
	rt.seq++
	return rt.seq
}
