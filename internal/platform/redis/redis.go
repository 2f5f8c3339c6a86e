package redis

import (
	"context"
	"fmt"
	"time"

	redisv8 "github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"

	"promptcrawler/internal/logger"
)

type Options struct {
	Addr     string
	Password string
}

// Service owns the Redis connection shared by the asynq client, worker and
// scheduler.
type Service struct {
	client *redisv8.Client
	log    *logger.Logger
}

func New(ctx context.Context, opts Options) (*Service, error) {
	c := redisv8.NewClient(&redisv8.Options{Addr: opts.Addr, Password: opts.Password})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &Service{client: c, log: logger.New("Redis")}, nil
}

func (s *Service) Close() error { return s.client.Close() }

// HealthCheck pings Redis and round-trips a short-lived key.
func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.log.LogErrorf("Redis health check failed: %v", err)
		return fmt.Errorf("redis ping failed: %w", err)
	}

	key := "promptcrawler:health:" + time.Now().Format("20060102150405.000")
	if err := s.client.Set(ctx, key, "ok", 10*time.Second).Err(); err != nil {
		return fmt.Errorf("redis write test failed: %w", err)
	}
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis read test failed: %w", err)
	}
	_ = s.client.Del(ctx, key).Err()
	if val != "ok" {
		return fmt.Errorf("redis value mismatch: got %q", val)
	}
	return nil
}

func (s *Service) AsynqRedisOpt() asynq.RedisClientOpt {
	o := s.client.Options()
	return asynq.RedisClientOpt{Addr: o.Addr, Password: o.Password}
}
