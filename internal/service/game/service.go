package game

import (
	"context"
	"sync"
	"time"

	"satta-service/internal/config"
	appErr "satta-service/pkg/errors"
	"satta-service/pkg/logger"
	"satta-service/pkg/utils/random"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultReapInterval = time.Minute
	recordTimeout       = 5 * time.Second
	sessionCodeLength   = 6
)

// Service manages live game sessions and their finished-game records.
type Service struct {
	db  *gorm.DB
	rdb *redis.Client

	cfgMu sync.RWMutex
	cfg   config.GameConfig

	runtimes sync.Map // session id -> *Runtime

	startOnce sync.Once

	// finished is signalled after a finished game has been recorded.
	finished func(FinishedGame)
}

// NewService builds the session service. rdb may be nil, which turns the
// leaderboard off.
func NewService(db *gorm.DB, rdb *redis.Client, cfg config.GameConfig) *Service {
	return &Service{db: db, rdb: rdb, cfg: cfg}
}

// UpdateRules applies new table rules to sessions created from now on.
func (s *Service) UpdateRules(cfg config.GameConfig) {
	s.cfgMu.Lock()
	s.cfg = cfg
	s.cfgMu.Unlock()
	logger.Log.Info("game rules updated",
		zap.Int("turnSeconds", cfg.TurnSeconds),
		zap.Int("gameSeconds", cfg.GameSeconds),
	)
}

func (s *Service) gameConfig() config.GameConfig {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// Start launches the idle-session reaper. It returns immediately.
func (s *Service) Start(ctx context.Context) error {
	s.startOnce.Do(func() {
		go s.runReaper(ctx)
	})
	return nil
}

// CreateSession opens a table and deals the first game on it.
func (s *Service) CreateSession(ctx context.Context, names []string, count int) (*Runtime, error) {
	cfg := s.gameConfig()
	engine := NewEngine(RulesFromConfig(cfg))
	id := uuid.NewString()
	rt := newRuntime(id, random.Code(sessionCodeLength), engine, cfg.TickInterval, s.handleRuntimeFinish)

	if _, err := rt.Start(names, count); err != nil {
		rt.Close()
		return nil, err
	}
	s.runtimes.Store(id, rt)
	logger.Log.Info("session created",
		zap.String("sessionID", id),
		zap.String("code", rt.Code()),
		zap.Int("players", count),
	)
	return rt, nil
}

func (s *Service) GetRuntime(sessionID string) (*Runtime, error) {
	if v, ok := s.runtimes.Load(sessionID); ok {
		return v.(*Runtime), nil
	}
	return nil, appErr.ErrSessionNotFound
}

// CloseSession discards a table and everything on it.
func (s *Service) CloseSession(sessionID string) error {
	v, ok := s.runtimes.LoadAndDelete(sessionID)
	if !ok {
		return appErr.ErrSessionNotFound
	}
	v.(*Runtime).Close()
	logger.Log.Info("session closed", zap.String("sessionID", sessionID))
	return nil
}

// SessionCount is the number of open tables.
func (s *Service) SessionCount() int {
	n := 0
	s.runtimes.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (s *Service) runReaper(ctx context.Context) {
	ticker := time.NewTicker(defaultReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case now := <-ticker.C:
			s.reapIdle(now)
		}
	}
}

// reapIdle closes tables nobody has touched for the configured idle
// timeout.
func (s *Service) reapIdle(now time.Time) int {
	timeout := s.gameConfig().IdleTimeout
	if timeout <= 0 {
		return 0
	}
	reaped := 0
	s.runtimes.Range(func(key, value any) bool {
		rt := value.(*Runtime)
		if now.Sub(rt.IdleSince()) < timeout {
			return true
		}
		if _, loaded := s.runtimes.LoadAndDelete(key); loaded {
			rt.Close()
			reaped++
			logger.Log.Info("idle session reaped", zap.String("sessionID", rt.ID()))
		}
		return true
	})
	return reaped
}

func (s *Service) closeAll() {
	s.runtimes.Range(func(key, value any) bool {
		s.runtimes.Delete(key)
		value.(*Runtime).Close()
		return true
	})
}

func (s *Service) handleRuntimeFinish(fg FinishedGame) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if s.db != nil {
		if _, err := s.RecordResult(ctx, fg); err != nil {
			logger.Log.Error("failed to record game result",
				zap.String("sessionID", fg.SessionID),
				zap.Int("round", fg.Round),
				zap.Error(err),
			)
		}
	}
	if w, ok := fg.State.Winner(); ok {
		if err := s.bumpLeaderboard(ctx, w.Name); err != nil {
			logger.Log.Warn("leaderboard update failed", zap.String("winner", w.Name), zap.Error(err))
		}
	}
	if s.finished != nil {
		s.finished(fg)
	}
}
