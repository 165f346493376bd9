// Package persist decouples durable snapshots from in-memory scheduling
// decisions. Stores marshal themselves into JSON documents per collection;
// the journal saves them write-behind so a slow sink never stalls a booking.
package persist

import (
	"context"
	"errors"
)

// ErrSnapshotNotFound is returned by Load when a collection was never saved.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Sink is the durable key-value contract: one JSON payload per collection.
type Sink interface {
	Save(ctx context.Context, collection string, payload []byte) error
	Load(ctx context.Context, collection string) ([]byte, error)
}

// NoopSink discards saves. Used when no durable backend is configured.
type NoopSink struct{}

var _ Sink = NoopSink{}

func (NoopSink) Save(context.Context, string, []byte) error { return nil }

func (NoopSink) Load(context.Context, string) ([]byte, error) {
	return nil, ErrSnapshotNotFound
}
