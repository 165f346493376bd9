package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSink stores one JSON string per collection under snapshot:<collection>.
type RedisSink struct {
	client *redis.Client
}

func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{client: client}
}

var _ Sink = (*RedisSink)(nil)

func snapshotKey(collection string) string {
	return "snapshot:" + collection
}

func (s *RedisSink) Save(ctx context.Context, collection string, payload []byte) error {
	if err := s.client.Set(ctx, snapshotKey(collection), payload, 0).Err(); err != nil {
		return fmt.Errorf("save snapshot %s: %w", collection, err)
	}
	return nil
}

func (s *RedisSink) Load(ctx context.Context, collection string) ([]byte, error) {
	payload, err := s.client.Get(ctx, snapshotKey(collection)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load snapshot %s: %w", collection, err)
	}
	return payload, nil
}
