package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/hydrate/internal/clock"
	"github.com/ykvlv/hydrate/internal/domain"
	"github.com/ykvlv/hydrate/internal/notify"
	"github.com/ykvlv/hydrate/internal/store"
)

var ErrStopped = errors.New("scheduler stopped")

// Deliverer shows a reminder on the delivery sinks.
// notify.Dispatcher implements this.
type Deliverer interface {
	Deliver(ctx context.Context, title, body string) int
}

// Persister stores a record without blocking. store.Writer implements this.
type Persister interface {
	Save(key string, v any)
}

// State is everything the scheduler owns.
type State struct {
	Settings  domain.Settings
	Reminder  domain.ReminderState
	Hydration domain.HydrationState
}

// DefaultDeliveryTimeout bounds one reminder delivery across all sinks.
const DefaultDeliveryTimeout = 2 * time.Minute

// Options tune the loop. Zero values fall back to defaults.
type Options struct {
	Tick  time.Duration
	Title string
	// DeliveryTimeout ends the triggering phase even if the sinks never
	// report back.
	DeliveryTimeout time.Duration
}

// Scheduler is the single owner of settings, reminder and ledger state.
// Run executes every transition on one goroutine; the exported methods post
// commands to it and wait for the result.
type Scheduler struct {
	log     *zap.Logger
	clock   clock.Clock
	ids     clock.IDGenerator
	sink    Deliverer
	persist Persister
	tick    time.Duration
	title   string
	timeout time.Duration

	// owned by the Run goroutine
	state State
	seq   uint64

	cmds      chan func()
	delivered chan uint64
	stopped   chan struct{}
	wg        sync.WaitGroup

	subsMu sync.Mutex
	subs   []chan View
}

// New creates a Scheduler from already loaded state.
func New(initial State, clk clock.Clock, ids clock.IDGenerator, sink Deliverer, persist Persister, log *zap.Logger, opts Options) *Scheduler {
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if opts.Title == "" {
		opts.Title = notify.DefaultTitle
	}
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = DefaultDeliveryTimeout
	}
	initial.Reminder = initial.Reminder.Normalize()
	return &Scheduler{
		log:       log,
		clock:     clk,
		ids:       ids,
		sink:      sink,
		persist:   persist,
		tick:      opts.Tick,
		title:     opts.Title,
		timeout:   opts.DeliveryTimeout,
		state:     initial,
		cmds:      make(chan func()),
		delivered: make(chan uint64, 1),
		stopped:   make(chan struct{}),
	}
}

// Run starts the loop until ctx is canceled. The first evaluation happens
// immediately, so a deadline missed while the process was down fires once
// right away.
func (s *Scheduler) Run(ctx context.Context) error {
	defer close(s.stopped)
	defer s.wg.Wait()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	s.log.Info("scheduler started",
		zap.Bool("running", s.state.Reminder.IsRunning),
		zap.Timep("next", s.state.Reminder.NextReminderAt),
	)
	s.evaluate(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return nil
		case <-ticker.C:
			s.evaluate(ctx)
		case cmd := <-s.cmds:
			cmd()
		case seq := <-s.delivered:
			s.finish(seq)
		}
	}
}

// evaluate performs one scheduling cycle: day rollover, due check, publish.
func (s *Scheduler) evaluate(ctx context.Context) {
	now := s.clock.Now()
	s.rollover(now)

	if r, ok := s.state.Reminder.Rearm(now, s.state.Settings); ok {
		s.state.Reminder = r
		s.persist.Save(store.KeyReminder, r)
	}
	if s.state.Reminder.Due(now) {
		s.trigger(ctx, now)
	}
	s.publish(now)
}

func (s *Scheduler) rollover(now time.Time) {
	h, rolled := s.state.Hydration.Rollover(now)
	if !rolled {
		return
	}
	s.log.Info("new day, ledger reset", zap.String("day", h.DateKey))
	s.state.Hydration = h
	s.persist.Save(store.KeyHydration, h)
}

// trigger fires the due reminder: count it, reschedule from now and hand the
// notification to the sinks in the background. Until that delivery reports
// back the reminder stays in the triggering phase and cannot fire again.
func (s *Scheduler) trigger(ctx context.Context, now time.Time) {
	r, fired := s.state.Reminder.BeginTrigger(now, s.state.Settings)
	s.state.Reminder = r
	s.persist.Save(store.KeyReminder, r)
	if !fired {
		return
	}

	s.state.Hydration = s.state.Hydration.RecordReminder()
	s.persist.Save(store.KeyHydration, s.state.Hydration)

	s.seq++
	seq := s.seq
	goal := s.state.Settings.ActiveGoalMl()
	consumed := s.state.Hydration.ConsumedMl()
	body := notify.ReminderBody(consumed, goal, s.state.Hydration.ProgressPct(goal))

	s.log.Info("reminder triggered",
		zap.Time("at", now),
		zap.Timep("next", r.NextReminderAt),
		zap.Int("today", s.state.Hydration.RemindersTriggered),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.deliver(ctx, seq, body)
	}()
}

// deliver waits for the sinks at most s.timeout, then reports seq back to
// the loop. Deliver runs on its own goroutine so a sink that never returns
// cannot hold the triggering phase or shutdown.
func (s *Scheduler) deliver(ctx context.Context, seq uint64, body string) {
	dctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result := make(chan int, 1)
	go func() { result <- s.sink.Deliver(dctx, s.title, body) }()

	select {
	case n := <-result:
		s.log.Debug("reminder delivered", zap.Int("sinks", n))
	case <-dctx.Done():
		if ctx.Err() != nil {
			return
		}
		s.log.Warn("reminder delivery timed out", zap.Duration("timeout", s.timeout))
	}

	select {
	case s.delivered <- seq:
	case <-ctx.Done():
	}
}

// finish ends the triggering phase for the delivery that matches seq.
// Reports for an older trigger are ignored.
func (s *Scheduler) finish(seq uint64) {
	if seq != s.seq {
		return
	}
	s.state.Reminder = s.state.Reminder.FinishTrigger()
	s.publish(s.clock.Now())
}

// do runs fn on the scheduler goroutine and waits for it.
func (s *Scheduler) do(ctx context.Context, fn func(now time.Time) error) error {
	done := make(chan error, 1)
	cmd := func() {
		now := s.clock.Now()
		s.rollover(now)
		err := fn(now)
		s.publish(now)
		done <- err
	}
	select {
	case s.cmds <- cmd:
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start begins a new reminder session. Starting while running is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	return s.do(ctx, func(now time.Time) error {
		r, ok := s.state.Reminder.Start(now, s.state.Settings)
		if !ok {
			return nil
		}
		s.state.Reminder = r
		s.persist.Save(store.KeyReminder, r)
		s.log.Info("reminders started", zap.Timep("next", r.NextReminderAt))
		return nil
	})
}

// Pause stops reminders. It takes effect before the next tick.
func (s *Scheduler) Pause(ctx context.Context) error {
	return s.do(ctx, func(time.Time) error {
		r, ok := s.state.Reminder.Pause()
		if !ok {
			return nil
		}
		s.state.Reminder = r
		s.persist.Save(store.KeyReminder, r)
		s.log.Info("reminders paused")
		return nil
	})
}

// Skip postpones the pending reminder without counting it.
func (s *Scheduler) Skip(ctx context.Context) error {
	return s.do(ctx, func(now time.Time) error {
		r, err := s.state.Reminder.Skip(now, s.state.Settings)
		if err != nil {
			return err
		}
		s.state.Reminder = r
		s.persist.Save(store.KeyReminder, r)
		s.log.Info("reminder skipped", zap.Timep("next", r.NextReminderAt))
		return nil
	})
}

// LogIntake records a drink of amountMl (clamped to the ledger bounds).
func (s *Scheduler) LogIntake(ctx context.Context, amountMl float64) (domain.IntakeEntry, error) {
	var entry domain.IntakeEntry
	err := s.do(ctx, func(now time.Time) error {
		s.state.Hydration, entry = s.state.Hydration.LogIntake(amountMl, now, s.ids.New())
		s.persist.Save(store.KeyHydration, s.state.Hydration)
		s.log.Debug("intake logged", zap.Int("ml", entry.AmountMl))
		return nil
	})
	return entry, err
}

// Drink logs one default portion.
func (s *Scheduler) Drink(ctx context.Context) (domain.IntakeEntry, error) {
	var portion int
	if err := s.do(ctx, func(time.Time) error {
		portion = s.state.Settings.PortionMl
		return nil
	}); err != nil {
		return domain.IntakeEntry{}, err
	}
	return s.LogIntake(ctx, float64(portion))
}

// UndoIntake removes the newest entry. It reports false when there was none.
func (s *Scheduler) UndoIntake(ctx context.Context) (bool, error) {
	var removed bool
	err := s.do(ctx, func(time.Time) error {
		s.state.Hydration, removed = s.state.Hydration.UndoLast()
		if removed {
			s.persist.Save(store.KeyHydration, s.state.Hydration)
		}
		return nil
	})
	return removed, err
}

// UpdateSettings applies edit to the current settings. The result is
// sanitized; a running schedule is recomputed from now when it changes.
func (s *Scheduler) UpdateSettings(ctx context.Context, edit func(domain.Settings) domain.Settings) (domain.Settings, error) {
	var out domain.Settings
	err := s.do(ctx, func(now time.Time) error {
		prev := s.state.Settings
		next := edit(prev).Sanitize()
		out = next
		if next == prev {
			return nil
		}
		s.state.Settings = next
		s.persist.Save(store.KeySettings, next)

		if r, changed := s.state.Reminder.ApplySettings(now, prev, next); changed {
			s.state.Reminder = r
			s.persist.Save(store.KeyReminder, r)
			s.log.Info("schedule updated", zap.Timep("next", r.NextReminderAt))
		}
		return nil
	})
	return out, err
}

// Snapshot returns the current view.
func (s *Scheduler) Snapshot(ctx context.Context) (View, error) {
	var v View
	err := s.do(ctx, func(now time.Time) error {
		v = s.view(now)
		return nil
	})
	return v, err
}
