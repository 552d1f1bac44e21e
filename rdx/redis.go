package rdx

import (
	"context"
	"fmt"
	"time"

	"freelancehub/config"

	"github.com/redis/go-redis/v9"
)

// New connects to Redis. It returns nil, nil when no address is configured.
func New(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}

const denyPrefix = "auth:revoked:"

// Denylist stores signed-out token ids with a TTL matching the token's
// remaining lifetime.
type Denylist struct {
	c *redis.Client
}

func NewDenylist(c *redis.Client) *Denylist { return &Denylist{c: c} }

func (d *Denylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return d.c.Set(ctx, denyPrefix+jti, 1, ttl).Err()
}

func (d *Denylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.c.Exists(ctx, denyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
