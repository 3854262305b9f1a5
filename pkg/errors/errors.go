package errors

import (
	"errors"
	"fmt"
)

// ErrInvalidMove is the umbrella for every rejected game action. The
// specific causes below wrap it, so callers can test either level.
var ErrInvalidMove = errors.New("invalid move")

var (
	ErrNotYourTurn     = fmt.Errorf("%w: not your turn", ErrInvalidMove)
	ErrPlayerNotActive = fmt.Errorf("%w: player is not active", ErrInvalidMove)
	ErrEmptyHand       = fmt.Errorf("%w: hand is empty", ErrInvalidMove)
	ErrNoShufflesLeft  = fmt.Errorf("%w: no shuffles left", ErrInvalidMove)
	ErrGameNotPlaying  = fmt.Errorf("%w: game is not in progress", ErrInvalidMove)
	ErrGamePaused      = fmt.Errorf("%w: game is paused", ErrInvalidMove)
	ErrUnknownPlayer   = fmt.Errorf("%w: unknown player", ErrInvalidMove)
)

var (
	ErrInvalidPlayerCount  = errors.New("player count must be between 2 and 4")
	ErrEmptyPlayerName     = errors.New("please enter names for all players")
	ErrDuplicatePlayerName = errors.New("player names must be unique")

	ErrInvariantViolation = errors.New("engine invariant violated")

	ErrSessionNotFound    = errors.New("game session not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUnsupportedAction  = errors.New("unsupported action")
	ErrInvalidToken       = errors.New("invalid token")
	ErrLeaderboardOffline = errors.New("leaderboard is not configured")
)

// IsValidation reports whether err came from rejected setup input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidPlayerCount) ||
		errors.Is(err, ErrEmptyPlayerName) ||
		errors.Is(err, ErrDuplicatePlayerName)
}
