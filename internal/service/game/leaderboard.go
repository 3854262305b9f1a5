package game

import (
	"context"

	appErr "satta-service/pkg/errors"
)

const leaderboardKey = "satta:leaderboard"

type LeaderboardEntry struct {
	Name string `json:"name"`
	Wins int64  `json:"wins"`
}

func (s *Service) bumpLeaderboard(ctx context.Context, name string) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.ZIncrBy(ctx, leaderboardKey, 1, name).Err()
}

// Leaderboard returns the players with the most wins, best first.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if s.rdb == nil {
		return nil, appErr.ErrLeaderboardOffline
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := s.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		name, _ := row.Member.(string)
		entries = append(entries, LeaderboardEntry{Name: name, Wins: int64(row.Score)})
	}
	return entries, nil
}
