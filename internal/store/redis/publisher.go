package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"daraja/internal/config"
	"daraja/internal/provider"

	goredis "github.com/redis/go-redis/v9"
)

type publishClient interface {
	Publish(ctx context.Context, channel string, message any) *goredis.IntCmd
}

// Publisher fans parsed callbacks out on one pub/sub channel per family
type Publisher struct {
	client publishClient
	prefix string
}

func NewPublisher(client publishClient, prefix string) *Publisher {
	return &Publisher{client: client, prefix: prefix}
}

// Open connects to Redis and checks the connection
func Open(ctx context.Context, cfg config.RedisCfg) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: cfg.Addr, Password: cfg.Password})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Channel is "<prefix>:<family>"
func (p *Publisher) Channel(f provider.Family) string {
	return p.prefix + ":" + string(f)
}

func (p *Publisher) Record(ctx context.Context, cb provider.Callback) error {
	msg, err := json.Marshal(cb)
	if err != nil {
		return fmt.Errorf("encode %s callback: %w", cb.Family, err)
	}
	if err := p.client.Publish(ctx, p.Channel(cb.Family), msg).Err(); err != nil {
		return fmt.Errorf("publish %s callback: %w", cb.Family, err)
	}
	return nil
}
