package game

import (
	"fmt"

	appErr "satta-service/pkg/errors"

	"go.uber.org/zap"
)

// Tick advances the game by units ticks, one at a time. The game clock is
// checked before the turn clock, so a tick that exhausts both ends the
// game without forcing a play. Ticks are ignored outside play and while
// paused.
func (e *Engine) Tick(s GameState, units int) GameState {
	if s.Status != StatusPlaying || s.Paused || units <= 0 {
		return s
	}
	next := s.Clone()
	for i := 0; i < units && next.Status == StatusPlaying; i++ {
		next.Clock++
		if next.GameTimeRemaining() == 0 {
			e.finishOnTime(&next)
			break
		}
		if next.TurnTimeRemaining() == 0 {
			forced, err := e.AutoPlay(next)
			if err != nil {
				e.log.Warn("auto-play rejected", zap.Error(err))
				break
			}
			next = forced
		}
	}
	return next
}

// TogglePause flips the pause flag. Paused games ignore ticks and reject
// moves; the clock reading is kept so both budgets resume where they were.
func (e *Engine) TogglePause(s GameState) (GameState, error) {
	if s.Status != StatusPlaying {
		return s, appErr.ErrGameNotPlaying
	}
	next := s.Clone()
	next.Paused = !s.Paused
	next.LastAction = ActionPause
	next.Message = "Game paused"
	if !next.Paused {
		next.LastAction = ActionResume
		next.Message = resumeMessage(next)
	}
	return next, nil
}

// Resume unpauses a paused game and is a no-op otherwise.
func (e *Engine) Resume(s GameState) (GameState, error) {
	if s.Status != StatusPlaying {
		return s, appErr.ErrGameNotPlaying
	}
	if !s.Paused {
		return s, nil
	}
	return e.TogglePause(s)
}

// finishOnTime ends the game when the game clock runs out. The active
// player with the most cards wins; ties go to the earliest seat.
func (e *Engine) finishOnTime(s *GameState) {
	winner := -1
	for i, p := range s.Players {
		if p.Status != PlayerActive {
			continue
		}
		if winner < 0 || len(p.Hand) > len(s.Players[winner].Hand) {
			winner = i
		}
	}
	if winner < 0 {
		e.finishNoWinner(s)
	} else {
		e.finishWithWinner(s, winner, EndTimeUp)
	}
	s.EndReason = EndTimeUp
	s.LastAction = ActionTimeUp
	s.Message = "Time's up! Game over!"
}

func resumeMessage(s GameState) string {
	if p, ok := s.CurrentPlayer(); ok {
		return turnMessage(p)
	}
	return ""
}

// CheckInvariants verifies the bookkeeping of a state. It returns an error
// wrapping ErrInvariantViolation describing the first problem found.
func CheckInvariants(s GameState) error {
	if s.Status == StatusSetup {
		return nil
	}
	if want := CardsInPlay(len(s.Players)); s.CardsInPlay() != want {
		return fmt.Errorf("%w: %d cards in play, want %d", appErr.ErrInvariantViolation, s.CardsInPlay(), want)
	}
	ids := make(map[string]struct{}, DeckSize)
	count := func(cards []Card) error {
		for _, c := range cards {
			if _, dup := ids[c.ID]; dup {
				return fmt.Errorf("%w: card %s duplicated", appErr.ErrInvariantViolation, c)
			}
			ids[c.ID] = struct{}{}
		}
		return nil
	}
	if err := count(s.TablePile); err != nil {
		return err
	}
	winners := 0
	for _, p := range s.Players {
		if err := count(p.Hand); err != nil {
			return err
		}
		if p.Status == PlayerWinner {
			winners++
		}
		if p.ShufflesRemaining < 0 {
			return fmt.Errorf("%w: %s has negative shuffles", appErr.ErrInvariantViolation, p.ID)
		}
	}

	switch s.Status {
	case StatusPlaying:
		cur, ok := s.CurrentPlayer()
		if !ok || !cur.Eligible() {
			return fmt.Errorf("%w: current seat %d cannot play", appErr.ErrInvariantViolation, s.CurrentPlayerIndex)
		}
		if winners != 0 {
			return fmt.Errorf("%w: winner during play", appErr.ErrInvariantViolation)
		}
	case StatusFinished:
		if winners > 1 {
			return fmt.Errorf("%w: %d winners", appErr.ErrInvariantViolation, winners)
		}
	}
	return nil
}
