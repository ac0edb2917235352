package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort uint16 `env:"REDIS_PORT" envDefault:"6379"   validate:"min=1000,max=65535"`

	PostgresHost     string `env:"POSTGRES_HOST"     envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT"     envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"     envDefault:"rooms_user"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"rooms_password"`
	PostgresDb       string `env:"POSTGRES_DB"       envDefault:"rooms_db"`

	MaxRoomSize    int `env:"MAX_ROOM_SIZE"     envDefault:"15"    validate:"min=1,max=100"`
	ProblemTimeMin int `env:"PROBLEM_TIME"      envDefault:"30"    validate:"min=1"`
	RoundGraceSec  int `env:"ROUND_GRACE"       envDefault:"5"     validate:"min=0"`
	SocketSweepMs  int `env:"SOCKET_TIMEOUT"    envDefault:"30000" validate:"min=1000"`

	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"8085" validate:"min=1000,max=65535"`
}

// RoundTime is how long one round lasts.
func (c *Config) RoundTime() time.Duration {
	return time.Duration(c.ProblemTimeMin) * time.Minute
}

// RoundGrace is added to the round expiry before forced termination fires.
func (c *Config) RoundGrace() time.Duration {
	return time.Duration(c.RoundGraceSec) * time.Second
}

// SweepInterval is how often the liveness sweep runs.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SocketSweepMs) * time.Millisecond
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	// Parse config from environment variables
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	// Validate the config
	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
