package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis conecta no Redis que guarda os snapshots de mercado
func ConnectRedis(addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}
