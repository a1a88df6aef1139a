package domain

import (
	"fmt"
	"testing"
	"time"
)

func TestLogIntake_ClampsAmount(t *testing.T) {
	now := time.Date(2025, time.May, 6, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		in   float64
		want int
	}{
		{5000, 1000},
		{10, 50},
		{249.6, 250},
		{333.4, 333},
	}
	for _, c := range cases {
		h, e := NewHydrationState(now).LogIntake(c.in, now, "x")
		if e.AmountMl != c.want || h.Entries[0].AmountMl != c.want {
			t.Errorf("LogIntake(%v): want %d, got %d", c.in, c.want, e.AmountMl)
		}
		if h.ManualLogs != 1 {
			t.Errorf("ManualLogs = %d, want 1", h.ManualLogs)
		}
	}
}

func TestLogIntake_NewestFirstAndCapped(t *testing.T) {
	now := time.Date(2025, time.May, 6, 9, 0, 0, 0, time.UTC)
	h := NewHydrationState(now)
	for i := 0; i < MaxEntries+7; i++ {
		h, _ = h.LogIntake(100, now.Add(time.Duration(i)*time.Minute), fmt.Sprintf("id-%d", i))
	}
	if len(h.Entries) != MaxEntries {
		t.Fatalf("len(Entries) = %d, want %d", len(h.Entries), MaxEntries)
	}
	if h.Entries[0].ID != fmt.Sprintf("id-%d", MaxEntries+6) {
		t.Fatalf("newest entry should be first, got %s", h.Entries[0].ID)
	}
	if h.ManualLogs != MaxEntries+7 {
		t.Fatalf("ManualLogs = %d, want %d", h.ManualLogs, MaxEntries+7)
	}
}

func TestLogIntake_DoesNotAliasPrevious(t *testing.T) {
	now := time.Date(2025, time.May, 6, 9, 0, 0, 0, time.UTC)
	base, _ := NewHydrationState(now).LogIntake(200, now, "a")
	next, _ := base.LogIntake(300, now, "b")
	if len(base.Entries) != 1 || len(next.Entries) != 2 {
		t.Fatalf("previous ledger was mutated: %d / %d", len(base.Entries), len(next.Entries))
	}
}

func TestProgress_RecommendedGoal(t *testing.T) {
	s := DefaultSettings()
	s.UseRecommendedGoal = true
	s.WeightKg = 60
	goal := s.ActiveGoalMl()
	if goal != 2100 {
		t.Fatalf("goal = %d, want 2100", goal)
	}

	now := time.Date(2025, time.May, 6, 9, 0, 0, 0, time.UTC)
	h := NewHydrationState(now)
	for i := 0; i < 4; i++ {
		h, _ = h.LogIntake(250, now, fmt.Sprint(i))
	}
	if h.ConsumedMl() != 1000 {
		t.Fatalf("consumed = %d, want 1000", h.ConsumedMl())
	}
	if got := h.ProgressPct(goal); got != 48 {
		t.Fatalf("progress = %d, want 48", got)
	}
}

func TestProgress_Guards(t *testing.T) {
	now := time.Date(2025, time.May, 6, 9, 0, 0, 0, time.UTC)
	h, _ := NewHydrationState(now).LogIntake(1000, now, "a")
	if got := h.ProgressPct(0); got != 0 {
		t.Fatalf("zero goal: want 0, got %d", got)
	}
	if got := h.ProgressPct(-10); got != 0 {
		t.Fatalf("negative goal: want 0, got %d", got)
	}
	if got := h.ProgressPct(500); got != 100 {
		t.Fatalf("over goal: want 100, got %d", got)
	}
}

func TestRollover_ResetsLedger(t *testing.T) {
	d1 := time.Date(2025, time.May, 6, 23, 59, 0, 0, time.UTC)
	h := NewHydrationState(d1)
	for i := 0; i < 12; i++ {
		h, _ = h.LogIntake(300, d1, fmt.Sprint(i))
		h = h.RecordReminder()
	}

	same, rolled := h.Rollover(d1.Add(30 * time.Second))
	if rolled || len(same.Entries) != 12 {
		t.Fatal("same day must not roll over")
	}

	d2 := d1.Add(2 * time.Minute)
	fresh, rolled := h.Rollover(d2)
	if !rolled {
		t.Fatal("expected rollover")
	}
	if fresh.DateKey != "2025-05-07" || len(fresh.Entries) != 0 || fresh.ManualLogs != 0 || fresh.RemindersTriggered != 0 {
		t.Fatalf("unexpected ledger after rollover: %+v", fresh)
	}
}

func TestUndoLast(t *testing.T) {
	now := time.Date(2025, time.May, 6, 9, 0, 0, 0, time.UTC)
	h, _ := NewHydrationState(now).LogIntake(200, now, "a")
	h, _ = h.LogIntake(300, now, "b")

	h, ok := h.UndoLast()
	if !ok || len(h.Entries) != 1 || h.Entries[0].ID != "a" {
		t.Fatalf("undo removed the wrong entry: %+v", h.Entries)
	}
	if h.ManualLogs != 2 {
		t.Fatalf("undo must not touch counters, ManualLogs = %d", h.ManualLogs)
	}
	h, _ = h.UndoLast()
	if _, ok := h.UndoLast(); ok {
		t.Fatal("undo on empty ledger should report false")
	}
}
