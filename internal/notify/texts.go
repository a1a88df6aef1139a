package notify

import (
	"fmt"
	"math/rand"
)

const DefaultTitle = "Time to drink water 💧"

var nudges = []string{
	"A few sips now keep the headache away.",
	"Your glass is waiting.",
	"Stretch, breathe, drink.",
	"Hydration check!",
}

// ReminderBody summarizes today's progress for a reminder.
func ReminderBody(consumedMl, goalMl, pct int) string {
	nudge := nudges[rand.Intn(len(nudges))]
	if goalMl <= 0 {
		return fmt.Sprintf("%s\n%d ml so far today.", nudge, consumedMl)
	}
	if consumedMl >= goalMl {
		return fmt.Sprintf("Goal reached: %d / %d ml. Keep it up.", consumedMl, goalMl)
	}
	return fmt.Sprintf("%s\n%d / %d ml (%d%%), %d ml to go.", nudge, consumedMl, goalMl, pct, goalMl-consumedMl)
}
