package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Permission is the capability state of a delivery sink.
type Permission string

const (
	PermissionGranted     Permission = "granted"
	PermissionDenied      Permission = "denied"
	PermissionDefault     Permission = "default"
	PermissionUnsupported Permission = "unsupported"
)

// Sink delivers a reminder through one channel. Every sink may fail on its
// own; the scheduler never depends on the outcome.
type Sink interface {
	Name() string
	RequestPermission(ctx context.Context) Permission
	Show(ctx context.Context, title, body string) error
}

// DefaultSinkTimeout bounds a single Show call.
const DefaultSinkTimeout = 30 * time.Second

// Dispatcher fans a reminder out to all usable sinks.
type Dispatcher struct {
	log     *zap.Logger
	sinks   []Sink
	timeout time.Duration

	mu    sync.RWMutex
	perms map[string]Permission
}

func NewDispatcher(log *zap.Logger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		log:     log,
		sinks:   sinks,
		timeout: DefaultSinkTimeout,
		perms:   make(map[string]Permission, len(sinks)),
	}
}

// WithTimeout sets how long one sink may take to show a reminder.
func (d *Dispatcher) WithTimeout(timeout time.Duration) *Dispatcher {
	if timeout > 0 {
		d.timeout = timeout
	}
	return d
}

// Timeout returns the per-sink limit.
func (d *Dispatcher) Timeout() time.Duration { return d.timeout }

// Sinks returns the number of configured sinks.
func (d *Dispatcher) Sinks() int { return len(d.sinks) }

// Init asks every sink for its permission once. Denials are informational.
func (d *Dispatcher) Init(ctx context.Context) {
	for _, s := range d.sinks {
		p := d.requestPermission(ctx, s)
		d.mu.Lock()
		d.perms[s.Name()] = p
		d.mu.Unlock()

		switch p {
		case PermissionDenied:
			d.log.Info("notifications refused, in-app reminders stay active", zap.String("sink", s.Name()))
		case PermissionUnsupported:
			d.log.Debug("sink unavailable", zap.String("sink", s.Name()))
		default:
			d.log.Debug("sink ready", zap.String("sink", s.Name()), zap.String("permission", string(p)))
		}
	}
}

// Permissions returns the last known permission of each sink.
func (d *Dispatcher) Permissions() map[string]Permission {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]Permission, len(d.perms))
	for k, v := range d.perms {
		out[k] = v
	}
	return out
}

// Deliver shows the reminder on every usable sink and returns how many
// succeeded. A failing sink is logged and does not affect the others.
func (d *Dispatcher) Deliver(ctx context.Context, title, body string) int {
	delivered := 0
	for _, s := range d.sinks {
		if !d.usable(s.Name()) {
			continue
		}
		if err := d.show(ctx, s, title, body); err != nil {
			d.log.Warn("reminder delivery failed", zap.String("sink", s.Name()), zap.Error(err))
			continue
		}
		delivered++
	}
	return delivered
}

func (d *Dispatcher) usable(name string) bool {
	d.mu.RLock()
	p, ok := d.perms[name]
	d.mu.RUnlock()
	if !ok {
		return true
	}
	return p == PermissionGranted || p == PermissionDefault
}

// show runs one sink under the per-sink deadline. A sink that ignores its
// context is abandoned when the deadline passes.
func (d *Dispatcher) show(ctx context.Context, s Sink, title, body string) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic: %v", r)
			}
		}()
		done <- s.Show(ctx, title, body)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("sink did not finish: %w", ctx.Err())
	}
}

func (d *Dispatcher) requestPermission(ctx context.Context, s Sink) (p Permission) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Warn("permission request panicked", zap.String("sink", s.Name()), zap.Any("panic", r))
			p = PermissionUnsupported
		}
	}()
	return s.RequestPermission(ctx)
}
