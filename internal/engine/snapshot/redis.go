package snapshot

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisProvider lê snapshots do Redis, escritos pelo pipeline de odds
// com TTL próprio (staleness é política do pipeline, não deste núcleo)
type RedisProvider struct {
	Client *redis.Client
}

func NewRedisProvider(c *redis.Client) *RedisProvider { return &RedisProvider{Client: c} }

func key(marketID string) string { return "snapshot:market:" + marketID }

func (p *RedisProvider) Snapshot(ctx context.Context, marketID string) (*Market, bool, error) {
	b, err := p.Client.Get(ctx, key(marketID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var m Market
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, false, err
	}
	return &m, true, nil
}

// RedisWriter é o lado de escrita do pipeline de snapshots, usado pelo
// simulador de mercados e por qualquer ingestor real que venha a existir
type RedisWriter struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisWriter(c *redis.Client, ttl time.Duration) *RedisWriter {
	return &RedisWriter{Client: c, TTL: ttl}
}

func (w *RedisWriter) Write(ctx context.Context, m *Market) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return w.Client.Set(ctx, key(m.MarketID), b, w.TTL).Err()
}
