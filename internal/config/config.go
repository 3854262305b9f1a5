package config

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite, postgres, mysql
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int    `mapstructure:"expire"` // hours
}

// GameConfig holds the table rules. Time budgets are in ticks; one tick
// lasts TickInterval on a live table.
type GameConfig struct {
	TurnSeconds       int           `mapstructure:"turnSeconds"`
	GameSeconds       int           `mapstructure:"gameSeconds"`
	KickThreshold     int           `mapstructure:"kickThreshold"`
	ShufflesPerPlayer int           `mapstructure:"shufflesPerPlayer"`
	MinPlayers        int           `mapstructure:"minPlayers"`
	MaxPlayers        int           `mapstructure:"maxPlayers"`
	TickInterval      time.Duration `mapstructure:"tickInterval"`
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`
}

var (
	GlobalConfig *Config
	mu           sync.RWMutex
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "satta.db")
	v.SetDefault("jwt.secret", "change-me")
	v.SetDefault("jwt.expire", 12)
	v.SetDefault("game.turnSeconds", 10)
	v.SetDefault("game.gameSeconds", 120)
	v.SetDefault("game.kickThreshold", 2)
	v.SetDefault("game.shufflesPerPlayer", 1)
	v.SetDefault("game.minPlayers", 2)
	v.SetDefault("game.maxPlayers", 4)
	v.SetDefault("game.tickInterval", time.Second)
	v.SetDefault("game.idleTimeout", 30*time.Minute)
}

// Load reads the YAML file at path, applying defaults and SATTA_* env
// overrides. An empty path uses defaults and env only.
func Load(path string) (*Config, *viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("satta")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, v, nil
}

func LoadConfig(path string) *viper.Viper {
	cfg, v, err := Load(path)
	if err != nil {
		log.Fatalf("Error loading config, %s", err)
	}
	mu.Lock()
	GlobalConfig = cfg
	mu.Unlock()
	return v
}

// Watch re-reads game rules whenever the config file changes. Only the
// game section is hot; server, storage and auth settings need a restart.
func Watch(v *viper.Viper, onChange func(GameConfig)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		var game GameConfig
		if err := v.UnmarshalKey("game", &game); err != nil {
			log.Printf("config reload failed: %v", err)
			return
		}
		mu.Lock()
		if GlobalConfig != nil {
			GlobalConfig.Game = game
		}
		mu.Unlock()
		if onChange != nil {
			onChange(game)
		}
	})
	v.WatchConfig()
}

// Game returns a copy of the current game rules.
func Game() GameConfig {
	mu.RLock()
	defer mu.RUnlock()
	if GlobalConfig == nil {
		return GameConfig{
			TurnSeconds:       10,
			GameSeconds:       120,
			KickThreshold:     2,
			ShufflesPerPlayer: 1,
			MinPlayers:        2,
			MaxPlayers:        4,
			TickInterval:      time.Second,
			IdleTimeout:       30 * time.Minute,
		}
	}
	return GlobalConfig.Game
}
