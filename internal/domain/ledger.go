package domain

import (
	"math"
	"time"
)

const (
	MinIntakeMl = 50
	MaxIntakeMl = 1000

	// MaxEntries is how many of the most recent entries a day keeps.
	MaxEntries = 50

	dateKeyLayout = "2006-01-02"
)

// IntakeEntry is a single logged drink.
type IntakeEntry struct {
	ID        string    `json:"id"`
	AmountMl  int       `json:"amountMl"`
	Timestamp time.Time `json:"timestamp"`
}

// HydrationState is the ledger for one calendar day, newest entry first.
type HydrationState struct {
	DateKey            string        `json:"dateKey"`
	Entries            []IntakeEntry `json:"intakeEntries"`
	RemindersTriggered int           `json:"remindersTriggered"`
	ManualLogs         int           `json:"manualLogs"`
}

// DateKey identifies the calendar day of t in t's location.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

func NewHydrationState(now time.Time) HydrationState {
	return HydrationState{DateKey: DateKey(now), Entries: []IntakeEntry{}}
}

// Rollover returns a fresh ledger when now is on a different day than h.
func (h HydrationState) Rollover(now time.Time) (HydrationState, bool) {
	if h.DateKey == DateKey(now) {
		return h, false
	}
	return NewHydrationState(now), true
}

// ClampIntake rounds amount and clamps it to [MinIntakeMl, MaxIntakeMl].
func ClampIntake(amount float64) int {
	if math.IsNaN(amount) {
		return MinIntakeMl
	}
	return int(clampFloat(math.Round(amount), MinIntakeMl, MaxIntakeMl))
}

// LogIntake prepends a new entry and counts it as a manual log.
func (h HydrationState) LogIntake(amount float64, now time.Time, id string) (HydrationState, IntakeEntry) {
	e := IntakeEntry{ID: id, AmountMl: ClampIntake(amount), Timestamp: now}

	entries := make([]IntakeEntry, 0, min(len(h.Entries)+1, MaxEntries))
	entries = append(entries, e)
	for _, old := range h.Entries {
		if len(entries) == MaxEntries {
			break
		}
		entries = append(entries, old)
	}
	h.Entries = entries
	h.ManualLogs++
	return h, e
}

// UndoLast removes the newest entry. Counters are left as they are.
func (h HydrationState) UndoLast() (HydrationState, bool) {
	if len(h.Entries) == 0 {
		return h, false
	}
	h.Entries = append([]IntakeEntry(nil), h.Entries[1:]...)
	return h, true
}

func (h HydrationState) RecordReminder() HydrationState {
	h.RemindersTriggered++
	return h
}

func (h HydrationState) ConsumedMl() int {
	total := 0
	for _, e := range h.Entries {
		total += e.AmountMl
	}
	return total
}

// ProgressPct is consumed/goal as a rounded percentage capped at 100.
// A non-positive goal yields 0.
func (h HydrationState) ProgressPct(goalMl int) int {
	if goalMl <= 0 {
		return 0
	}
	pct := int(math.Round(float64(h.ConsumedMl()) / float64(goalMl) * 100))
	return min(pct, 100)
}
