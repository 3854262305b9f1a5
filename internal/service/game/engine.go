package game

import (
	"fmt"
	"math/rand"
	"strings"

	"satta-service/internal/config"
	appErr "satta-service/pkg/errors"
	"satta-service/pkg/logger"
	"satta-service/pkg/utils/random"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Rules are the table constants a game is played under. Time limits are
// counted in ticks.
type Rules struct {
	TurnTimeLimit     int `json:"turnTimeLimit"`
	GameTimeLimit     int `json:"gameTimeLimit"`
	KickThreshold     int `json:"kickThreshold"`
	ShufflesPerPlayer int `json:"shufflesPerPlayer"`
	MinPlayers        int `json:"minPlayers"`
	MaxPlayers        int `json:"maxPlayers"`
}

func DefaultRules() Rules {
	return Rules{
		TurnTimeLimit:     10,
		GameTimeLimit:     120,
		KickThreshold:     2,
		ShufflesPerPlayer: 1,
		MinPlayers:        2,
		MaxPlayers:        4,
	}
}

// RulesFromConfig fills unset fields from DefaultRules.
func RulesFromConfig(cfg config.GameConfig) Rules {
	r := DefaultRules()
	if cfg.TurnSeconds > 0 {
		r.TurnTimeLimit = cfg.TurnSeconds
	}
	if cfg.GameSeconds > 0 {
		r.GameTimeLimit = cfg.GameSeconds
	}
	if cfg.KickThreshold > 0 {
		r.KickThreshold = cfg.KickThreshold
	}
	if cfg.ShufflesPerPlayer > 0 {
		r.ShufflesPerPlayer = cfg.ShufflesPerPlayer
	}
	if cfg.MinPlayers >= 2 {
		r.MinPlayers = cfg.MinPlayers
	}
	if cfg.MaxPlayers >= r.MinPlayers && cfg.MaxPlayers <= len(avatarColors) {
		r.MaxPlayers = cfg.MaxPlayers
	}
	return r
}

// Engine applies the game rules to GameState values. It is not safe for
// concurrent use; the rand source is shared between calls.
type Engine struct {
	rules Rules
	rng   *rand.Rand
	newID func() string
	log   *zap.Logger
}

type Option func(*Engine)

// WithRand injects the random source used for dealing, seating and
// shuffles.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithIDFunc replaces the card id generator.
func WithIDFunc(f func() string) Option {
	return func(e *Engine) { e.newID = f }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func NewEngine(rules Rules, opts ...Option) *Engine {
	e := &Engine{rules: rules}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(random.Seed()))
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.log == nil {
		e.log = logger.Log
	}
	return e
}

func (e *Engine) Rules() Rules {
	return e.rules
}

// Reset discards a game and returns to setup.
func (e *Engine) Reset() GameState {
	return SetupState(e.rules)
}

// Start validates the seat names, deals a shuffled deck and picks the
// first player at random. Only the first count names are used.
func (e *Engine) Start(names []string, count int) (GameState, error) {
	if count < e.rules.MinPlayers || count > e.rules.MaxPlayers {
		return e.Reset(), appErr.ErrInvalidPlayerCount
	}
	if len(names) < count {
		return e.Reset(), appErr.ErrEmptyPlayerName
	}

	seen := make(map[string]struct{}, count)
	cleaned := make([]string, count)
	for i := 0; i < count; i++ {
		name := strings.TrimSpace(names[i])
		if name == "" {
			return e.Reset(), appErr.ErrEmptyPlayerName
		}
		if _, dup := seen[name]; dup {
			return e.Reset(), appErr.ErrDuplicatePlayerName
		}
		seen[name] = struct{}{}
		cleaned[i] = name
	}

	deck := Shuffle(e.rng, NewDeck(e.newID))
	hands := Deal(deck, count)
	colors := pickColors(e.rng, count)

	players := make([]Player, count)
	for i := range players {
		players[i] = Player{
			ID:                fmt.Sprintf("player-%d", i),
			Name:              cleaned[i],
			Hand:              hands[i],
			Status:            PlayerActive,
			ShufflesRemaining: e.rules.ShufflesPerPlayer,
			AvatarColor:       colors[i],
		}
	}

	first := e.rng.Intn(count)
	return GameState{
		Players:            players,
		CurrentPlayerIndex: first,
		TablePile:          []Card{},
		Status:             StatusPlaying,
		WinnerIndex:        -1,
		LastAction:         ActionNone,
		Message:            turnMessage(players[first]),
		Rules:              e.rules,
	}, nil
}

// Play puts the acting player's front card on the pile, capturing the pile
// when the ranks match. A capture keeps the turn with the same player.
func (e *Engine) Play(s GameState, playerID string) (GameState, error) {
	idx := s.playerIndex(playerID)
	if err := checkTurn(s, idx); err != nil {
		return s, err
	}
	next := s.Clone()
	e.resolve(&next, idx, false)
	return next, nil
}

// ShuffleHand reorders the acting player's hand, spending one shuffle.
// The turn, the pile and the turn clock are unaffected.
func (e *Engine) ShuffleHand(s GameState, playerID string) (GameState, error) {
	idx := s.playerIndex(playerID)
	if err := checkTurn(s, idx); err != nil {
		return s, err
	}
	if s.Players[idx].ShufflesRemaining <= 0 {
		return s, appErr.ErrNoShufflesLeft
	}
	next := s.Clone()
	p := &next.Players[idx]
	p.Hand = Shuffle(e.rng, p.Hand)
	p.ShufflesRemaining--
	next.LastAction = ActionShuffle
	next.Message = "Shuffled!"
	return next, nil
}

// AutoPlay forces a play for the current player after their turn clock
// ran out. Reaching the kick threshold removes the player instead of
// playing. A forced play always passes the turn on, even on a capture.
func (e *Engine) AutoPlay(s GameState) (GameState, error) {
	if s.Status != StatusPlaying {
		return s, appErr.ErrGameNotPlaying
	}
	if s.Paused {
		return s, appErr.ErrGamePaused
	}
	next := s.Clone()
	idx := next.CurrentPlayerIndex
	p := &next.Players[idx]
	p.AutoPlayCount++

	if e.rules.KickThreshold > 0 && p.AutoPlayCount >= e.rules.KickThreshold {
		p.Status = PlayerKicked
		next.LastAction = ActionKicked
		next.Message = fmt.Sprintf("%s kicked for inactivity!", p.Name)
		e.log.Info("player kicked", zap.String("player", p.ID), zap.Int("autoPlays", p.AutoPlayCount))

		if active := activeIndices(next); len(active) == 1 {
			e.finishWithWinner(&next, active[0], EndLastPlayer)
			return next, nil
		}
		e.advance(&next)
		return next, nil
	}

	if len(p.Hand) == 0 {
		e.log.Warn("auto-play on empty hand", zap.String("player", p.ID), zap.Error(appErr.ErrInvariantViolation))
		p.Status = PlayerInactive
		e.advance(&next)
		return next, nil
	}

	e.resolve(&next, idx, true)
	return next, nil
}

func checkTurn(s GameState, idx int) error {
	switch {
	case s.Status != StatusPlaying:
		return appErr.ErrGameNotPlaying
	case s.Paused:
		return appErr.ErrGamePaused
	case idx < 0:
		return appErr.ErrUnknownPlayer
	case idx != s.CurrentPlayerIndex:
		return appErr.ErrNotYourTurn
	case s.Players[idx].Status != PlayerActive:
		return appErr.ErrPlayerNotActive
	case len(s.Players[idx].Hand) == 0:
		return appErr.ErrEmptyHand
	}
	return nil
}

// resolve plays the front card of player idx on s in place.
func (e *Engine) resolve(s *GameState, idx int, forced bool) {
	p := &s.Players[idx]
	card := p.Hand[0]
	remaining := p.Hand[1:]

	if CheckMatch(card, s.TablePile) {
		hand := make([]Card, 0, len(remaining)+len(s.TablePile)+1)
		hand = append(hand, remaining...)
		hand = append(hand, s.TablePile...)
		hand = append(hand, card)
		p.Hand = hand
		s.TablePile = []Card{}
		s.LastAction = ActionCapture
		s.Message = "Cards matched!"
		if forced {
			e.advance(s)
			return
		}
		s.TurnStartTime = s.Clock
		return
	}

	p.Hand = append([]Card(nil), remaining...)
	s.TablePile = append(s.TablePile, card)
	s.LastAction = ActionHit
	if forced {
		s.LastAction = ActionAutoPlay
		s.Message = "Auto-played!"
	}

	if len(p.Hand) == 0 {
		p.Status = PlayerInactive
		s.Message = fmt.Sprintf("%s is out of cards!", p.Name)
		if eligible := eligibleIndices(*s); len(eligible) == 1 {
			e.finishWithWinner(s, eligible[0], EndLastPlayer)
			return
		}
	}
	e.advance(s)
}

// advance moves the turn to the next eligible seat after the current one.
func (e *Engine) advance(s *GameState) {
	n := len(s.Players)
	for step := 1; step < n; step++ {
		i := (s.CurrentPlayerIndex + step) % n
		if s.Players[i].Eligible() {
			s.CurrentPlayerIndex = i
			s.TurnStartTime = s.Clock
			s.Message = turnMessage(s.Players[i])
			return
		}
	}

	// Elimination bookkeeping should have ended the game before this.
	eligible := eligibleIndices(*s)
	if len(eligible) == 1 {
		e.log.Warn("turn scan found a lone player", zap.Int("seat", eligible[0]))
		e.finishWithWinner(s, eligible[0], EndLastPlayer)
		return
	}
	e.log.Error("turn scan found no eligible player",
		zap.Int("current", s.CurrentPlayerIndex),
		zap.Error(appErr.ErrInvariantViolation),
	)
	e.finishNoWinner(s)
}

func (e *Engine) finishWithWinner(s *GameState, winner int, reason EndReason) {
	s.Status = StatusFinished
	s.WinnerIndex = winner
	s.EndReason = reason
	for i := range s.Players {
		switch {
		case i == winner:
			s.Players[i].Status = PlayerWinner
		case s.Players[i].Status != PlayerKicked:
			s.Players[i].Status = PlayerLoser
		}
	}
	s.Message = fmt.Sprintf("%s wins!", s.Players[winner].Name)
}

func (e *Engine) finishNoWinner(s *GameState) {
	s.Status = StatusFinished
	s.WinnerIndex = -1
	s.EndReason = EndNoEligiblePlayer
	for i := range s.Players {
		if s.Players[i].Status != PlayerKicked {
			s.Players[i].Status = PlayerLoser
		}
	}
	s.Message = "Game over!"
}

func activeIndices(s GameState) []int {
	var out []int
	for i, p := range s.Players {
		if p.Status == PlayerActive {
			out = append(out, i)
		}
	}
	return out
}

func eligibleIndices(s GameState) []int {
	var out []int
	for i, p := range s.Players {
		if p.Eligible() {
			out = append(out, i)
		}
	}
	return out
}

func turnMessage(p Player) string {
	return p.Name + "'s turn"
}
