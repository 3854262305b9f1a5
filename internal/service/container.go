package service

import (
	"context"

	"satta-service/internal/config"
	"satta-service/internal/service/game"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Game *game.Service
}

func NewContainer(db *gorm.DB, rdb *redis.Client, cfg config.GameConfig) *Container {
	return &Container{
		Game: game.NewService(db, rdb, cfg),
	}
}

func (c *Container) Start(ctx context.Context) error {
	return c.Game.Start(ctx)
}
