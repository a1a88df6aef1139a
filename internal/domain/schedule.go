package domain

import (
	"errors"
	"time"
)

var ErrNotRunning = errors.New("reminders are not running")

// Phase is the in-memory position of the reminder state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseArmed
	// PhaseTriggering means a reminder fired and its delivery is still pending.
	// No further trigger is allowed until FinishTrigger.
	PhaseTriggering
)

func (p Phase) String() string {
	switch p {
	case PhaseArmed:
		return "armed"
	case PhaseTriggering:
		return "triggering"
	default:
		return "idle"
	}
}

// ReminderState is the persisted scheduler record.
// Invariant: !IsRunning implies NextReminderAt == nil.
type ReminderState struct {
	IsRunning       bool       `json:"isRunning"`
	NextReminderAt  *time.Time `json:"nextReminderTs"`
	LastTriggeredAt *time.Time `json:"lastTriggeredAt"`
	StartedAt       *time.Time `json:"startedAt"`

	Phase Phase `json:"-"`
}

// ComputeNext returns the next fire time counted from "from". With smart
// scheduling the result is snapped into the awake window.
func ComputeNext(from time.Time, s Settings) time.Time {
	next := from.Add(s.Interval())
	if !s.SmartSchedule {
		return next
	}
	wake, sleep := s.Window()
	return ProjectIntoWindow(next, from, wake, sleep)
}

// Normalize restores the invariants after a record was loaded from storage.
func (r ReminderState) Normalize() ReminderState {
	if !r.IsRunning {
		r.NextReminderAt = nil
		r.Phase = PhaseIdle
		return r
	}
	r.Phase = PhaseArmed
	return r
}

// Start opens a new run session. It is a no-op when already running.
func (r ReminderState) Start(now time.Time, s Settings) (ReminderState, bool) {
	if r.IsRunning {
		return r, false
	}
	next := ComputeNext(now, s)
	r.IsRunning = true
	r.NextReminderAt = &next
	r.StartedAt = timePtr(now)
	r.LastTriggeredAt = nil
	r.Phase = PhaseArmed
	return r, true
}

// Pause disarms the scheduler. LastTriggeredAt and StartedAt are kept.
func (r ReminderState) Pause() (ReminderState, bool) {
	if !r.IsRunning && r.NextReminderAt == nil {
		return r, false
	}
	r.IsRunning = false
	r.NextReminderAt = nil
	r.Phase = PhaseIdle
	return r, true
}

// Skip moves the pending deadline without counting a trigger. The deadline
// is recomputed from now; when that would not move it forward it is pushed one
// more interval past the current deadline, so repeated skips always advance.
func (r ReminderState) Skip(now time.Time, s Settings) (ReminderState, error) {
	if !r.IsRunning {
		return r, ErrNotRunning
	}
	next := ComputeNext(now, s)
	if r.NextReminderAt != nil && !next.After(*r.NextReminderAt) {
		next = ComputeNext(r.NextReminderAt.In(now.Location()), s)
	}
	r.NextReminderAt = &next
	return r, nil
}

// Due reports whether a trigger is owed at now. Only absolute timestamps are
// compared, so any amount of missed time yields a single trigger.
func (r ReminderState) Due(now time.Time) bool {
	return r.IsRunning &&
		r.Phase != PhaseTriggering &&
		r.NextReminderAt != nil &&
		!now.Before(*r.NextReminderAt)
}

// BeginTrigger fires the pending reminder. It reports true when the caller
// must count the trigger and run delivery. A paused state only has its
// deadline cleared.
func (r ReminderState) BeginTrigger(now time.Time, s Settings) (ReminderState, bool) {
	if !r.IsRunning {
		r.NextReminderAt = nil
		r.Phase = PhaseIdle
		return r, false
	}
	if !r.Due(now) {
		return r, false
	}
	next := ComputeNext(now, s)
	r.LastTriggeredAt = timePtr(now)
	r.NextReminderAt = &next
	r.Phase = PhaseTriggering
	return r, true
}

// FinishTrigger leaves the triggering phase once delivery has settled.
func (r ReminderState) FinishTrigger() ReminderState {
	if r.Phase != PhaseTriggering {
		return r
	}
	if r.IsRunning {
		r.Phase = PhaseArmed
	} else {
		r.Phase = PhaseIdle
	}
	return r
}

// Rearm fills in a missing deadline for a running scheduler.
func (r ReminderState) Rearm(now time.Time, s Settings) (ReminderState, bool) {
	if !r.IsRunning || r.NextReminderAt != nil {
		return r, false
	}
	next := ComputeNext(now, s)
	r.NextReminderAt = &next
	if r.Phase == PhaseIdle {
		r.Phase = PhaseArmed
	}
	return r, true
}

// ApplySettings recomputes the deadline after a settings change. It reports
// false when the schedule did not change.
func (r ReminderState) ApplySettings(now time.Time, prev, next Settings) (ReminderState, bool) {
	if !r.IsRunning || prev.ScheduleEqual(next) {
		return r, false
	}
	deadline := ComputeNext(now, next)
	if r.NextReminderAt != nil && r.NextReminderAt.Equal(deadline) {
		return r, false
	}
	r.NextReminderAt = &deadline
	return r, true
}

func timePtr(t time.Time) *time.Time {
	return &t
}
