package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

const writeTimeout = 5 * time.Second

// Writer persists records in the background. Save never blocks on storage;
// pending values for the same key are coalesced and only the latest is
// written. Failed writes are logged and dropped.
type Writer struct {
	repo Repo
	log  *zap.Logger

	mu      sync.Mutex
	pending map[string]string
	closed  bool

	// serializes drains so an older batch never lands after a newer one
	writeMu sync.Mutex

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

func NewWriter(repo Repo, log *zap.Logger) *Writer {
	w := &Writer{
		repo:    repo,
		log:     log,
		pending: make(map[string]string),
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w
}

// Save schedules v to be stored under key.
func (w *Writer) Save(key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		w.log.Error("encode record failed", zap.String("key", key), zap.Error(err))
		return
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.log.Warn("record dropped after writer close", zap.String("key", key))
		return
	}
	w.pending[key] = string(b)
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Flush writes everything pending before returning.
func (w *Writer) Flush() {
	w.drain()
}

// Close stops the background loop after writing what is pending.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	close(w.quit)
	<-w.done
}

func (w *Writer) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.quit:
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string]string)
	w.mu.Unlock()

	for key, value := range batch {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := w.repo.Put(ctx, key, value)
		cancel()
		if err != nil {
			w.log.Error("persist record failed", zap.String("key", key), zap.Error(err))
		}
	}
}
