package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env        string     `mapstructure:"env"`
	HTTPServer HTTPServer `mapstructure:"http_server"`
	Game       Game       `mapstructure:"game"`
	Store      Store      `mapstructure:"store"`
	Pusher     Pusher     `mapstructure:"pusher"`
}

type HTTPServer struct {
	Address     string        `mapstructure:"address"`
	Timeout     time.Duration `mapstructure:"timeout"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

type Game struct {
	RoundSeconds      int           `mapstructure:"round_seconds"`
	TickInterval      time.Duration `mapstructure:"tick_interval"`
	SyncInterval      time.Duration `mapstructure:"sync_interval"`
	AdminSyncInterval time.Duration `mapstructure:"admin_sync_interval"`
	Server1Seri       int64         `mapstructure:"server1_seri"`
	Server2Seri       int64         `mapstructure:"server2_seri"`
	StartingBalance   int           `mapstructure:"starting_balance"`
	WorkerPoolSize    int           `mapstructure:"worker_pool_size"`
	JobQueueSize      int           `mapstructure:"job_queue_size"`
}

type Store struct {
	Backend   string `mapstructure:"backend"`
	RedisAddr string `mapstructure:"redis_addr"`
}

type Pusher struct {
	Enabled bool   `mapstructure:"enabled"`
	AppID   string `mapstructure:"app_id"`
	Key     string `mapstructure:"key"`
	Secret  string `mapstructure:"secret"`
	Cluster string `mapstructure:"cluster"`
}

// MustLoad reads the config file named by CONFIG_PATH and exits on any
// problem. Configuration is a startup concern; there is no point limping
// on without it.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/local.yaml"
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %s", err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("env", "local")
	v.SetDefault("http_server.address", "localhost:8080")
	v.SetDefault("http_server.timeout", "4s")
	v.SetDefault("http_server.idle_timeout", "60s")
	v.SetDefault("game.round_seconds", 60)
	v.SetDefault("game.tick_interval", "1s")
	v.SetDefault("game.sync_interval", "1s")
	v.SetDefault("game.admin_sync_interval", "2s")
	v.SetDefault("game.server1_seri", 2271)
	v.SetDefault("game.server2_seri", 5821)
	v.SetDefault("game.starting_balance", 1000)
	v.SetDefault("game.worker_pool_size", 4)
	v.SetDefault("game.job_queue_size", 64)
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.redis_addr", "localhost:6379")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &cfg, nil
}
