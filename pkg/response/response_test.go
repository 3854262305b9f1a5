package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	appErr "satta-service/pkg/errors"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{appErr.ErrNotYourTurn, http.StatusConflict},
		{fmt.Errorf("wrapped: %w", appErr.ErrGamePaused), http.StatusConflict},
		{appErr.ErrInvalidMove, http.StatusConflict},
		{appErr.ErrDuplicatePlayerName, http.StatusBadRequest},
		{appErr.ErrUnsupportedAction, http.StatusBadRequest},
		{appErr.ErrSessionNotFound, http.StatusNotFound},
		{appErr.ErrInvalidToken, http.StatusUnauthorized},
		{appErr.ErrLeaderboardOffline, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
