package persist

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Snapshotter produces the current JSON document of one collection.
type Snapshotter func() ([]byte, error)

// Journal is the write-behind bridge between the in-memory stores and a Sink.
// Services call Notify after a mutation; the journal marks the collection
// dirty and a background loop snapshots and saves it. Close drains every
// dirty collection before returning.
type Journal struct {
	sink    Sink
	log     zerolog.Logger
	sources map[string]Snapshotter

	mu    sync.Mutex
	dirty map[string]bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func NewJournal(sink Sink, flushInterval time.Duration, log zerolog.Logger) *Journal {
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	j := &Journal{
		sink:    sink,
		log:     log,
		sources: make(map[string]Snapshotter),
		dirty:   make(map[string]bool),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go j.run(flushInterval)
	return j
}

// Register binds a collection name to its snapshot producer. Must be called
// before the first Notify for that collection.
func (j *Journal) Register(collection string, fn Snapshotter) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.sources[collection] = fn
}

// Notify marks a collection dirty. Never blocks.
func (j *Journal) Notify(collection string) {
	j.mu.Lock()
	j.dirty[collection] = true
	j.mu.Unlock()

	select {
	case j.wake <- struct{}{}:
	default:
	}
}

// Flush synchronously saves every dirty collection.
func (j *Journal) Flush(ctx context.Context) error {
	j.mu.Lock()
	pending := make([]string, 0, len(j.dirty))
	for c := range j.dirty {
		pending = append(pending, c)
	}
	j.dirty = make(map[string]bool)
	sources := j.sources
	j.mu.Unlock()

	var firstErr error
	for _, collection := range pending {
		fn, ok := sources[collection]
		if !ok {
			j.log.Warn().Str("collection", collection).Msg("no snapshotter registered")
			continue
		}
		payload, err := fn()
		if err != nil {
			j.log.Error().Err(err).Str("collection", collection).Msg("snapshot failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := j.sink.Save(ctx, collection, payload); err != nil {
			j.log.Error().Err(err).Str("collection", collection).Msg("snapshot save failed")
			// Leave it dirty so the next flush retries.
			j.mu.Lock()
			j.dirty[collection] = true
			j.mu.Unlock()
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Restore loads every registered collection's snapshot into restore. Missing
// snapshots are skipped.
func (j *Journal) Restore(ctx context.Context, restore map[string]func([]byte) error) error {
	for collection, fn := range restore {
		payload, err := j.sink.Load(ctx, collection)
		if err != nil {
			if errors.Is(err, ErrSnapshotNotFound) {
				continue
			}
			return err
		}
		if err := fn(payload); err != nil {
			return err
		}
		j.log.Info().Str("collection", collection).Msg("snapshot restored")
	}
	return nil
}

// Close stops the background loop and drains outstanding saves.
func (j *Journal) Close(ctx context.Context) error {
	close(j.stop)
	<-j.done
	return j.Flush(ctx)
}

func (j *Journal) run(flushInterval time.Duration) {
	defer close(j.done)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stop:
			return
		case <-j.wake:
		case <-ticker.C:
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_ = j.Flush(ctx)
		cancel()
	}
}
