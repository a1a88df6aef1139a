package scheduler

import (
	"time"

	"github.com/ykvlv/hydrate/internal/domain"
)

// View is a read-only snapshot for display.
type View struct {
	Now       time.Time
	Settings  domain.Settings
	Reminder  domain.ReminderState
	Hydration domain.HydrationState

	// Countdown is empty when no reminder is armed.
	Countdown   string
	GoalMl      int
	ConsumedMl  int
	ProgressPct int
}

func (s *Scheduler) view(now time.Time) View {
	goal := s.state.Settings.ActiveGoalMl()
	v := View{
		Now:         now,
		Settings:    s.state.Settings,
		Reminder:    s.state.Reminder,
		Hydration:   s.state.Hydration,
		GoalMl:      goal,
		ConsumedMl:  s.state.Hydration.ConsumedMl(),
		ProgressPct: s.state.Hydration.ProgressPct(goal),
	}
	if s.state.Reminder.IsRunning && s.state.Reminder.NextReminderAt != nil {
		v.Countdown = domain.FormatCountdown(s.state.Reminder.NextReminderAt.Sub(now))
	}
	// entries are shared with the owner goroutine
	v.Hydration.Entries = append([]domain.IntakeEntry(nil), s.state.Hydration.Entries...)
	return v
}

// Subscribe returns a channel that always holds the most recent view.
// Slow readers miss intermediate views, never the latest one.
func (s *Scheduler) Subscribe() <-chan View {
	ch := make(chan View, 1)
	s.subsMu.Lock()
	s.subs = append(s.subs, ch)
	s.subsMu.Unlock()
	return ch
}

func (s *Scheduler) publish(now time.Time) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if len(s.subs) == 0 {
		return
	}
	v := s.view(now)
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}
