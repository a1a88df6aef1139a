package domain

import (
	"math"
	"time"
)

// Bounds for user settings. Out-of-range input is clamped, never rejected.
const (
	MinWeightKg = 30
	MaxWeightKg = 200

	MinGoalMl = 1000
	MaxGoalMl = 6000

	MinIntervalMinutes = 15
	MaxIntervalMinutes = 360

	MinPortionMl = 100
	MaxPortionMl = 1000

	mlPerKg = 35
)

const (
	defaultWeightKg = 70
	defaultGoalMl   = 2500
	defaultInterval = 60
	defaultWake     = "07:00"
	defaultSleep    = "22:00"
	defaultPortion  = 250
)

// Settings holds the user-controlled configuration of goal and reminders.
type Settings struct {
	WeightKg           float64 `json:"weightKg"`
	DailyGoalMl        int     `json:"dailyGoalMl"`
	UseRecommendedGoal bool    `json:"useRecommendedGoal"`
	IntervalMinutes    float64 `json:"intervalMinutes"`
	WakeTime           string  `json:"wakeTime"`  // HH:MM
	SleepTime          string  `json:"sleepTime"` // HH:MM, may be earlier than WakeTime
	PortionMl          int     `json:"portionMl"`
	SmartSchedule      bool    `json:"smartSchedule"`
}

func DefaultSettings() Settings {
	return Settings{
		WeightKg:           defaultWeightKg,
		DailyGoalMl:        defaultGoalMl,
		UseRecommendedGoal: true,
		IntervalMinutes:    defaultInterval,
		WakeTime:           defaultWake,
		SleepTime:          defaultSleep,
		PortionMl:          defaultPortion,
		SmartSchedule:      true,
	}
}

// Sanitize clamps numeric fields to their bounds and replaces malformed
// times of day with the defaults.
func (s Settings) Sanitize() Settings {
	if math.IsNaN(s.WeightKg) {
		s.WeightKg = defaultWeightKg
	}
	s.WeightKg = clampFloat(s.WeightKg, MinWeightKg, MaxWeightKg)
	s.DailyGoalMl = clampInt(s.DailyGoalMl, MinGoalMl, MaxGoalMl)
	s.IntervalMinutes = float64(intervalMinutes(s.IntervalMinutes))
	s.PortionMl = clampInt(s.PortionMl, MinPortionMl, MaxPortionMl)
	if _, err := MinutesOfDay(s.WakeTime); err != nil {
		s.WakeTime = defaultWake
	}
	if _, err := MinutesOfDay(s.SleepTime); err != nil {
		s.SleepTime = defaultSleep
	}
	return s
}

// RecommendedGoalMl is weight × 35 ml, rounded.
func (s Settings) RecommendedGoalMl() int {
	return int(math.Round(clampFloat(s.WeightKg, MinWeightKg, MaxWeightKg) * mlPerKg))
}

// ActiveGoalMl returns the goal the ledger progress is measured against.
func (s Settings) ActiveGoalMl() int {
	if s.UseRecommendedGoal {
		return s.RecommendedGoalMl()
	}
	return s.DailyGoalMl
}

// Interval is the sanitized reminder period.
func (s Settings) Interval() time.Duration {
	return time.Duration(intervalMinutes(s.IntervalMinutes)) * time.Minute
}

// Window returns wake and sleep as minutes of day. Malformed values fall back
// to the defaults, the same way Sanitize treats them.
func (s Settings) Window() (wake, sleep int) {
	w := s.Sanitize()
	return MustMinutesOfDay(w.WakeTime), MustMinutesOfDay(w.SleepTime)
}

// ScheduleEqual reports whether both settings yield the same reminder schedule.
func (s Settings) ScheduleEqual(o Settings) bool {
	if s.Interval() != o.Interval() || s.SmartSchedule != o.SmartSchedule {
		return false
	}
	if !s.SmartSchedule {
		return true
	}
	sw, ss := s.Window()
	ow, os := o.Window()
	return sw == ow && ss == os
}

func intervalMinutes(v float64) int {
	if math.IsNaN(v) {
		return defaultInterval
	}
	return int(clampFloat(math.Round(v), MinIntervalMinutes, MaxIntervalMinutes))
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
