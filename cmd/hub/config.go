package main

import (
	"chirp-hub/errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

type Config struct {
	Host             string        `env:"HOST,default=localhost"`
	Port             int           `env:"PORT,default=8080"`
	GrpcPort         int           `env:"GRPC_PORT,default=8081"`
	LogLevel         string        `env:"LOG_LEVEL,default=INFO"`
	JWTSecret        string        `env:"JWT_SECRET,required=true"`
	BadgerFilepath   string        `env:"BADGER_FILEPATH,required=true"`
	RedisURL         string        `env:"REDIS_URL"`
	RedisChannel     string        `env:"REDIS_CHANNEL,default=chirp-hub.events"`
	EventBufferSize  int           `env:"EVENT_BUFFER_SIZE,default=1024"`
	SendBufferSize   int           `env:"SEND_BUFFER_SIZE,default=64"`
	DeliveryTimeout  time.Duration `env:"DELIVERY_TIMEOUT,default=5s"`
	PingInterval     time.Duration `env:"PING_INTERVAL,default=30s"`
	PongTimeout      time.Duration `env:"PONG_TIMEOUT,default=60s"`
	TouchOnAnyFrame  bool          `env:"TOUCH_ON_ANY_FRAME,default=true"`
	MaxFrameSize     int64         `env:"MAX_FRAME_SIZE,default=65536"`
	MaxContentLength int           `env:"MAX_CONTENT_LENGTH,default=4000"`
	RestartInterval  time.Duration `env:"RESTART_INTERVAL,default=1s"`
	StatsInterval    time.Duration `env:"STATS_INTERVAL,default=1m"`
	AllowedOrigins   string        `env:"ALLOWED_ORIGINS"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

// Validate rejects settings the hub cannot run with.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.JWTSecret) == "":
		return fmt.Errorf("%w: JWT_SECRET is empty", errors.ErrInvalidConfig)
	case c.PingInterval <= 0:
		return fmt.Errorf("%w: PING_INTERVAL must be positive", errors.ErrInvalidConfig)
	case c.PongTimeout <= c.PingInterval:
		return fmt.Errorf("%w: PONG_TIMEOUT (%s) must exceed PING_INTERVAL (%s)",
			errors.ErrInvalidConfig, c.PongTimeout, c.PingInterval)
	case c.EventBufferSize <= 0, c.SendBufferSize <= 0:
		return fmt.Errorf("%w: buffer sizes must be positive", errors.ErrInvalidConfig)
	case c.MaxContentLength <= 0:
		return fmt.Errorf("%w: MAX_CONTENT_LENGTH must be positive", errors.ErrInvalidConfig)
	}
	return nil
}

// Origins splits ALLOWED_ORIGINS on commas. Empty means any origin.
func (c Config) Origins() []string {
	return lo.Compact(lo.Map(strings.Split(c.AllowedOrigins, ","), func(o string, _ int) string {
		return strings.TrimSpace(o)
	}))
}
