package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ykvlv/hydrate/internal/domain"
	"github.com/ykvlv/hydrate/internal/notify"
	"github.com/ykvlv/hydrate/internal/scheduler"
)

const (
	recentEntries = 5
	timeStep      = 15 // minutes
	weightStep    = 1  // kg
	goalStep      = 250
)

// Controller is the part of the scheduler the widget drives.
type Controller interface {
	Start(ctx context.Context) error
	Pause(ctx context.Context) error
	Skip(ctx context.Context) error
	Drink(ctx context.Context) (domain.IntakeEntry, error)
	UndoIntake(ctx context.Context) (bool, error)
	UpdateSettings(ctx context.Context, edit func(domain.Settings) domain.Settings) (domain.Settings, error)
}

type viewMsg scheduler.View

type toastMsg notify.Toast

type statusMsg struct {
	message string
	color   string
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	countStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	toastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)
)

// Model is the bubbletea widget.
type Model struct {
	ctx    context.Context
	ctl    Controller
	views  <-chan scheduler.View
	toasts <-chan notify.Toast

	view    scheduler.View
	hasView bool

	toast       *notify.Toast
	toastExpiry time.Time

	status       string
	statusColor  string
	statusExpiry time.Time

	// hours is the awake-window input, active while editingHours is set
	hours        textinput.Model
	editingHours bool

	keys     keyMap
	help     help.Model
	progress progress.Model
	width    int
}

func New(ctx context.Context, ctl Controller, views <-chan scheduler.View, toasts <-chan notify.Toast) Model {
	hours := textinput.New()
	hours.Placeholder = "07:00-22:00"
	hours.CharLimit = 13
	hours.Width = 13

	return Model{
		ctx:         ctx,
		ctl:         ctl,
		views:       views,
		toasts:      toasts,
		hours:       hours,
		keys:        defaultKeys(),
		help:        help.New(),
		progress:    progress.New(progress.WithDefaultGradient()),
		statusColor: "86",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForView(m.views), waitForToast(m.toasts))
}

func waitForView(ch <-chan scheduler.View) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return viewMsg(v)
	}
}

func waitForToast(ch <-chan notify.Toast) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		t, ok := <-ch
		if !ok {
			return nil
		}
		return toastMsg(t)
	}
}

func showStatus(msg, color string) tea.Msg {
	return statusMsg{message: msg, color: color}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewMsg:
		m.view = scheduler.View(msg)
		m.hasView = true
		return m, waitForView(m.views)

	case toastMsg:
		t := notify.Toast(msg)
		m.toast = &t
		m.toastExpiry = time.Now().Add(10 * time.Second)
		return m, waitForToast(m.toasts)

	case statusMsg:
		m.status = msg.message
		m.statusColor = msg.color
		m.statusExpiry = time.Now().Add(3 * time.Second)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.progress.Width = min(max(msg.Width-4, 10), 60)
		return m, nil

	case tea.KeyMsg:
		if m.editingHours {
			return m.handleHours(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		if m.view.Reminder.IsRunning {
			return m, m.call(m.ctl.Pause, "Reminders paused")
		}
		return m, m.call(m.ctl.Start, "Reminders started")
	case key.Matches(msg, m.keys.Skip):
		return m, m.call(m.ctl.Skip, "Reminder skipped")
	case key.Matches(msg, m.keys.Drink):
		return m, m.drink()
	case key.Matches(msg, m.keys.Undo):
		return m, m.undo()
	case key.Matches(msg, m.keys.Shorter):
		return m, m.edit("Interval updated", func(s domain.Settings) domain.Settings {
			s.IntervalMinutes -= 15
			return s
		})
	case key.Matches(msg, m.keys.Longer):
		return m, m.edit("Interval updated", func(s domain.Settings) domain.Settings {
			s.IntervalMinutes += 15
			return s
		})
	case key.Matches(msg, m.keys.Smart):
		return m, m.edit("Smart schedule toggled", func(s domain.Settings) domain.Settings {
			s.SmartSchedule = !s.SmartSchedule
			return s
		})
	case key.Matches(msg, m.keys.Less):
		return m, m.edit("Portion updated", func(s domain.Settings) domain.Settings {
			s.PortionMl -= 50
			return s
		})
	case key.Matches(msg, m.keys.More):
		return m, m.edit("Portion updated", func(s domain.Settings) domain.Settings {
			s.PortionMl += 50
			return s
		})
	case key.Matches(msg, m.keys.WakeEarlier):
		return m, m.shiftWindow(-timeStep, 0)
	case key.Matches(msg, m.keys.WakeLater):
		return m, m.shiftWindow(timeStep, 0)
	case key.Matches(msg, m.keys.SleepEarlier):
		return m, m.shiftWindow(0, -timeStep)
	case key.Matches(msg, m.keys.SleepLater):
		return m, m.shiftWindow(0, timeStep)
	case key.Matches(msg, m.keys.Hours):
		m.editingHours = true
		if m.hasView {
			m.hours.SetValue(m.view.Settings.WakeTime + "-" + m.view.Settings.SleepTime)
		}
		m.hours.CursorEnd()
		return m, m.hours.Focus()
	case key.Matches(msg, m.keys.GoalMode):
		return m, m.edit("Goal mode updated", func(s domain.Settings) domain.Settings {
			s.UseRecommendedGoal = !s.UseRecommendedGoal
			return s
		})
	case key.Matches(msg, m.keys.Lighter):
		return m, m.edit("Weight updated", func(s domain.Settings) domain.Settings {
			s.WeightKg -= weightStep
			return s
		})
	case key.Matches(msg, m.keys.Heavier):
		return m, m.edit("Weight updated", func(s domain.Settings) domain.Settings {
			s.WeightKg += weightStep
			return s
		})
	case key.Matches(msg, m.keys.GoalDown):
		return m, m.setGoal(-goalStep)
	case key.Matches(msg, m.keys.GoalUp):
		return m, m.setGoal(goalStep)
	}
	return m, nil
}

// handleHours feeds keys to the awake-hours input until enter or esc.
func (m Model) handleHours(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.editingHours = false
		m.hours.Blur()
		return m, nil
	case tea.KeyEnter:
		m.editingHours = false
		m.hours.Blur()
		wake, sleep, err := domain.ParseWindow(m.hours.Value())
		if err != nil {
			return m, func() tea.Msg {
				return showStatus("Invalid format. Example: 08:00-22:00", "196")
			}
		}
		from, to := domain.FormatMinutes(wake), domain.FormatMinutes(sleep)
		return m, m.edit("Awake hours updated: "+from+"–"+to, func(s domain.Settings) domain.Settings {
			s.WakeTime, s.SleepTime = from, to
			return s
		})
	}
	var cmd tea.Cmd
	m.hours, cmd = m.hours.Update(msg)
	return m, cmd
}

func (m Model) shiftWindow(wakeDelta, sleepDelta int) tea.Cmd {
	return m.edit("Awake hours updated", func(s domain.Settings) domain.Settings {
		s.WakeTime = domain.ShiftTime(s.WakeTime, wakeDelta)
		s.SleepTime = domain.ShiftTime(s.SleepTime, sleepDelta)
		return s
	})
}

// setGoal adjusts the explicit goal and switches away from the recommended one.
func (m Model) setGoal(delta int) tea.Cmd {
	return m.edit("Daily goal updated", func(s domain.Settings) domain.Settings {
		s.DailyGoalMl += delta
		s.UseRecommendedGoal = false
		return s
	})
}

func (m Model) call(fn func(context.Context) error, ok string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			return showStatus(err.Error(), "196")
		}
		return showStatus(ok, "86")
	}
}

func (m Model) drink() tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		e, err := ctl.Drink(ctx)
		if err != nil {
			return showStatus(err.Error(), "196")
		}
		return showStatus(fmt.Sprintf("+%d ml logged", e.AmountMl), "86")
	}
}

func (m Model) undo() tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		removed, err := ctl.UndoIntake(ctx)
		switch {
		case err != nil:
			return showStatus(err.Error(), "196")
		case !removed:
			return showStatus("Nothing to undo", "226")
		}
		return showStatus("Last entry removed", "86")
	}
}

func (m Model) edit(ok string, fn func(domain.Settings) domain.Settings) tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		if _, err := ctl.UpdateSettings(ctx, fn); err != nil {
			return showStatus(err.Error(), "196")
		}
		return showStatus(ok, "86")
	}
}

func (m Model) View() string {
	header := headerStyle.Render("💧 hydrate")
	if !m.hasView {
		return header + "\n\nloading…"
	}
	v := m.view

	var state string
	if v.Reminder.IsRunning && v.Reminder.NextReminderAt != nil {
		state = runningStyle.Render("● running") + "  next in " + countStyle.Render(v.Countdown) +
			mutedStyle.Render(" at "+v.Reminder.NextReminderAt.In(v.Now.Location()).Format("15:04"))
	} else {
		state = pausedStyle.Render("○ paused")
	}
	if v.Reminder.LastTriggeredAt != nil {
		state += mutedStyle.Render("  last " + v.Reminder.LastTriggeredAt.In(v.Now.Location()).Format("15:04"))
	}

	intake := fmt.Sprintf("%d / %d ml (%d%%)", v.ConsumedMl, v.GoalMl, v.ProgressPct)
	counters := mutedStyle.Render(fmt.Sprintf("reminders today %d · drinks logged %d",
		v.Hydration.RemindersTriggered, v.Hydration.ManualLogs))

	smart := "off"
	if v.Settings.SmartSchedule {
		smart = "on"
	}
	settings := mutedStyle.Render(fmt.Sprintf("every %d min · awake %s–%s · smart %s · portion %d ml",
		int(v.Settings.Interval()/time.Minute), v.Settings.WakeTime, v.Settings.SleepTime, smart, v.Settings.PortionMl))

	goal := fmt.Sprintf("goal %d ml custom", v.Settings.DailyGoalMl)
	if v.Settings.UseRecommendedGoal {
		goal = fmt.Sprintf("goal %d ml recommended for %.0f kg", v.Settings.RecommendedGoalMl(), v.Settings.WeightKg)
	}

	sections := []string{
		header,
		"",
		state,
		"",
		m.progress.ViewAs(float64(v.ProgressPct) / 100),
		intake,
		counters,
		settings,
		mutedStyle.Render(goal),
	}
	if m.editingHours {
		sections = append(sections, "", "Awake hours "+m.hours.View()+mutedStyle.Render("  enter to save · esc to cancel"))
	}

	if recent := recentLines(v.Hydration.Entries, v.Now.Location()); recent != "" {
		sections = append(sections, "", recent)
	}
	if m.toast != nil && time.Now().Before(m.toastExpiry) {
		sections = append(sections, "", toastStyle.Render(m.toast.Title+"\n"+m.toast.Body))
	}
	if m.status != "" && time.Now().Before(m.statusExpiry) {
		sections = append(sections, "", "> "+lipgloss.NewStyle().Foreground(lipgloss.Color(m.statusColor)).Render(m.status))
	}
	sections = append(sections, "", m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func recentLines(entries []domain.IntakeEntry, loc *time.Location) string {
	if len(entries) == 0 {
		return ""
	}
	n := min(len(entries), recentEntries)
	lines := make([]string, 0, n)
	for _, e := range entries[:n] {
		lines = append(lines, mutedStyle.Render(e.Timestamp.In(loc).Format("15:04"))+fmt.Sprintf("  %d ml", e.AmountMl))
	}
	return strings.Join(lines, "\n")
}
