package domain

import (
	"errors"
	"testing"
	"time"
)

// helper: build a local time in the given location
func at(t *testing.T, loc *time.Location, y int, m time.Month, d, hh, mm int) time.Time {
	t.Helper()
	return time.Date(y, m, d, hh, mm, 0, 0, loc)
}

func smartSettings(wake, sleep string, interval float64) Settings {
	s := DefaultSettings()
	s.WakeTime = wake
	s.SleepTime = sleep
	s.IntervalMinutes = interval
	s.SmartSchedule = true
	return s
}

func TestComputeNext_WithoutSmartIsExactInterval(t *testing.T) {
	from := time.Date(2025, time.May, 6, 23, 17, 33, 123_000_000, time.UTC)
	cases := []struct {
		interval float64
		want     time.Duration
	}{
		{60, time.Hour},
		{5, 15 * time.Minute},
		{1000, 360 * time.Minute},
		{44.6, 45 * time.Minute},
	}
	for _, c := range cases {
		s := smartSettings("06:30", "22:30", c.interval)
		s.SmartSchedule = false
		got := ComputeNext(from, s)
		if got.Sub(from) != c.want {
			t.Errorf("interval %v: want +%v, got +%v", c.interval, c.want, got.Sub(from))
		}
	}
}

func TestComputeNext_ExactMillis(t *testing.T) {
	from := time.UnixMilli(1_700_000_000_000)
	s := DefaultSettings()
	s.SmartSchedule = false
	got := ComputeNext(from, s)
	if got.UnixMilli()-from.UnixMilli() != 3_600_000 {
		t.Fatalf("want +3600000ms, got %d", got.UnixMilli()-from.UnixMilli())
	}
}

func TestComputeNext_LateEveningWrapsToNextWake(t *testing.T) {
	s := smartSettings("06:30", "22:30", 60)
	now := at(t, time.UTC, 2025, time.May, 6, 23, 0)
	got := ComputeNext(now, s)
	want := at(t, time.UTC, 2025, time.May, 7, 6, 30)
	if !got.Equal(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestComputeNext_InWindowAnchored(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	s := smartSettings("09:00", "23:00", 120)
	now := at(t, loc, 2025, time.May, 5, 19, 46)
	got := ComputeNext(now, s)
	if got.Format("15:04") != "21:46" {
		t.Fatalf("want 21:46, got %s", got.Format("15:04"))
	}
}

func TestStart_OpensSession(t *testing.T) {
	s := DefaultSettings()
	s.SmartSchedule = false
	now := at(t, time.UTC, 2025, time.May, 6, 10, 0)
	prev := ReminderState{LastTriggeredAt: timePtr(now.Add(-time.Hour))}

	st, ok := prev.Start(now, s)
	if !ok || !st.IsRunning || st.Phase != PhaseArmed {
		t.Fatalf("start failed: %+v", st)
	}
	if st.LastTriggeredAt != nil {
		t.Fatal("LastTriggeredAt should be cleared")
	}
	if !st.StartedAt.Equal(now) || !st.NextReminderAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected timestamps: %+v", st)
	}

	again, ok := st.Start(now.Add(time.Minute), s)
	if ok || !again.StartedAt.Equal(now) {
		t.Fatal("second start should be a no-op")
	}
}

func TestPause_KeepsHistory(t *testing.T) {
	now := at(t, time.UTC, 2025, time.May, 6, 10, 0)
	st, _ := ReminderState{}.Start(now, DefaultSettings())
	st.LastTriggeredAt = timePtr(now)

	st, ok := st.Pause()
	if !ok || st.IsRunning || st.NextReminderAt != nil || st.Phase != PhaseIdle {
		t.Fatalf("pause failed: %+v", st)
	}
	if st.StartedAt == nil || st.LastTriggeredAt == nil {
		t.Fatal("pause should keep StartedAt and LastTriggeredAt")
	}
}

func TestSkip_NeverRegresses(t *testing.T) {
	for _, smart := range []bool{false, true} {
		s := smartSettings("07:00", "22:00", 30)
		s.SmartSchedule = smart
		now := at(t, time.UTC, 2025, time.May, 6, 12, 0)
		st, _ := ReminderState{}.Start(now, s)

		first, err := st.Skip(now, s)
		if err != nil {
			t.Fatalf("skip: %v", err)
		}
		second, err := first.Skip(now, s)
		if err != nil {
			t.Fatalf("skip: %v", err)
		}
		if !second.NextReminderAt.After(*first.NextReminderAt) {
			t.Fatalf("smart=%v: second skip %v not after first %v", smart, second.NextReminderAt, first.NextReminderAt)
		}
	}
}

func TestSkip_RequiresRunning(t *testing.T) {
	_, err := ReminderState{}.Skip(time.Now(), DefaultSettings())
	if !errors.Is(err, ErrNotRunning) {
		t.Fatalf("want ErrNotRunning, got %v", err)
	}
}

func TestBeginTrigger_NextIsAfterNow(t *testing.T) {
	start := at(t, time.UTC, 2025, time.May, 6, 0, 0)
	for _, s := range []Settings{
		smartSettings("06:30", "22:30", 15),
		smartSettings("22:00", "02:00", 90),
		smartSettings("08:00", "08:00", 360),
		func() Settings { x := smartSettings("06:30", "22:30", 15); x.SmartSchedule = false; return x }(),
	} {
		for step := 0; step < 24*60; step += 7 {
			now := start.Add(time.Duration(step)*time.Minute + 13*time.Second)
			st := ReminderState{IsRunning: true, NextReminderAt: timePtr(now), Phase: PhaseArmed}
			st, fired := st.BeginTrigger(now, s)
			if !fired {
				t.Fatalf("expected trigger at %v", now)
			}
			if !st.NextReminderAt.After(now) {
				t.Fatalf("next %v not after now %v (%+v)", st.NextReminderAt, now, s)
			}
		}
	}
}

func TestBeginTrigger_LongSuspendFiresOnce(t *testing.T) {
	s := DefaultSettings()
	s.SmartSchedule = false
	now := at(t, time.UTC, 2025, time.May, 6, 12, 0)
	st := ReminderState{IsRunning: true, NextReminderAt: timePtr(now.Add(-10 * time.Minute))}.Normalize()

	fired := 0
	for i := 0; i < 10; i++ {
		tick := now.Add(time.Duration(i) * time.Second)
		var ok bool
		st, ok = st.BeginTrigger(tick, s)
		if ok {
			fired++
			st = st.FinishTrigger()
		}
	}
	if fired != 1 {
		t.Fatalf("want exactly one trigger, got %d", fired)
	}
}

func TestBeginTrigger_BlockedWhileTriggering(t *testing.T) {
	now := at(t, time.UTC, 2025, time.May, 6, 12, 0)
	st := ReminderState{IsRunning: true, NextReminderAt: timePtr(now), Phase: PhaseArmed}
	st, ok := st.BeginTrigger(now, DefaultSettings())
	if !ok || st.Phase != PhaseTriggering {
		t.Fatalf("first trigger failed: %+v", st)
	}
	// even a deadline already reached must not fire again until delivery settles
	st.NextReminderAt = timePtr(now)
	if _, ok := st.BeginTrigger(now, DefaultSettings()); ok {
		t.Fatal("trigger fired while another was in flight")
	}
}

func TestBeginTrigger_PausedOnlyClearsDeadline(t *testing.T) {
	now := at(t, time.UTC, 2025, time.May, 6, 12, 0)
	st := ReminderState{IsRunning: false, NextReminderAt: timePtr(now.Add(-time.Minute))}
	st, ok := st.BeginTrigger(now, DefaultSettings())
	if ok || st.NextReminderAt != nil || st.LastTriggeredAt != nil {
		t.Fatalf("paused trigger should only clear the deadline: %+v", st)
	}
}

func TestApplySettings(t *testing.T) {
	s := DefaultSettings()
	now := at(t, time.UTC, 2025, time.May, 6, 12, 0)
	st, _ := ReminderState{}.Start(now, s)

	same := s
	same.PortionMl = 500
	if _, changed := st.ApplySettings(now.Add(time.Minute), s, same); changed {
		t.Fatal("portion change must not touch the schedule")
	}

	faster := s
	faster.IntervalMinutes = 30
	got, changed := st.ApplySettings(now.Add(time.Minute), s, faster)
	if !changed {
		t.Fatal("interval change should recompute")
	}
	if want := now.Add(31 * time.Minute); !got.NextReminderAt.Equal(want) {
		t.Fatalf("want %v, got %v", want, got.NextReminderAt)
	}

	idle, _ := st.Pause()
	if _, changed := idle.ApplySettings(now, s, faster); changed {
		t.Fatal("idle scheduler must ignore settings changes")
	}
}

func TestNormalize(t *testing.T) {
	now := time.Now()
	st := ReminderState{IsRunning: false, NextReminderAt: &now}.Normalize()
	if st.NextReminderAt != nil || st.Phase != PhaseIdle {
		t.Fatalf("idle record kept a deadline: %+v", st)
	}
	st = ReminderState{IsRunning: true}.Normalize()
	if st.Phase != PhaseArmed {
		t.Fatalf("want armed, got %v", st.Phase)
	}
	st, ok := st.Rearm(now, DefaultSettings())
	if !ok || st.NextReminderAt == nil {
		t.Fatal("rearm should fill the missing deadline")
	}
}
