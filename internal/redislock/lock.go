// Package redislock provides the distributed per-doctor lock for deployments
// running more than one scheduler instance. Single-instance deployments use
// scheduling.LocalLocker instead.
package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/clinicops/clinic-scheduling/internal/scheduling"
)

type doctorLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDoctorLocker creates a locker that uses a per-doctor Redis key.
func NewDoctorLocker(client *redis.Client, ttl time.Duration) scheduling.Locker {
	return &doctorLocker{client: client, ttl: ttl}
}

func (l *doctorLocker) WithDoctorLock(ctx context.Context, doctorID uuid.UUID, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:doctor:%s", doctorID.String())
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire doctor lock: %w", err)
	}
	if !ok {
		return scheduling.ErrCalendarBusy
	}

	defer func() {
		_ = l.release(ctx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

// unlockScript deletes the lock only if we still own it.
var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *doctorLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("release doctor lock: %w", err)
	}
	return nil
}
