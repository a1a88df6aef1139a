package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/ykvlv/hydrate/assets"
	"github.com/ykvlv/hydrate/internal/clock"
	"github.com/ykvlv/hydrate/internal/config"
	"github.com/ykvlv/hydrate/internal/notify"
	"github.com/ykvlv/hydrate/internal/scheduler"
	"github.com/ykvlv/hydrate/internal/store"
	"github.com/ykvlv/hydrate/internal/tui"
)

const (
	ModeTUI      = "tui"
	ModeHeadless = "headless"
)

type App struct {
	cfg        config.Config
	log        *zap.Logger
	repo       store.Repo
	writer     *store.Writer
	dispatcher *notify.Dispatcher
	toasts     *notify.ToastSink
	sched      *scheduler.Scheduler
}

// New opens storage, loads the persisted records and wires the scheduler
// to its delivery sinks. Nothing runs until Run.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if cfg.RunMode != ModeTUI && cfg.RunMode != ModeHeadless {
		return nil, fmt.Errorf("unknown run mode %q", cfg.RunMode)
	}
	if cfg.RunMode == ModeTUI && !term.IsTerminal(int(os.Stdout.Fd())) {
		log.Warn("stdout is not a terminal, running headless")
		cfg.RunMode = ModeHeadless
	}

	repo, err := store.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	log.Info("sqlite ready", zap.String("path", cfg.DBPath))

	clk := clock.Real{}
	recs := store.NewRecords(repo, log)
	state := scheduler.State{
		Settings:  recs.LoadSettings(ctx),
		Reminder:  recs.LoadReminder(ctx),
		Hydration: recs.LoadHydration(ctx, clk.Now()),
	}

	a := &App{cfg: cfg, log: log, repo: repo, writer: store.NewWriter(repo, log)}

	var sinks []notify.Sink
	if cfg.RunMode == ModeTUI {
		a.toasts = notify.NewToastSink(4)
		sinks = append(sinks, a.toasts)
	}
	if cfg.BellEnabled && term.IsTerminal(int(os.Stdout.Fd())) {
		sinks = append(sinks, notify.NewBellSink(os.Stdout))
	}
	if cfg.SoundEnabled {
		sinks = append(sinks, notify.NewAudioSink(assets.Chime, log))
	}
	sinks = append(sinks, notify.NewTelegramSink(cfg.TelegramToken, cfg.TelegramChatID, log))
	a.dispatcher = notify.NewDispatcher(log, sinks...).WithTimeout(cfg.SinkTimeout)

	a.sched = scheduler.New(state, clk, clock.UUIDGenerator{}, a.dispatcher, a.writer, log, scheduler.Options{
		Tick:            cfg.TickInterval,
		Title:           cfg.Title,
		DeliveryTimeout: a.dispatcher.Timeout() * time.Duration(a.dispatcher.Sinks()+1),
	})
	return a, nil
}

// Run drives the scheduler until the view quits or a signal arrives.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting hydrate", zap.String("mode", a.cfg.RunMode))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.dispatcher.Init(ctx)

	schedCtx, cancel := context.WithCancel(ctx)
	schedDone := make(chan error, 1)
	views := a.sched.Subscribe()
	go func() { schedDone <- a.sched.Run(schedCtx) }()

	var runErr error
	switch a.cfg.RunMode {
	case ModeHeadless:
		<-ctx.Done()
		a.log.Info("shutdown signal received")
	case ModeTUI:
		var toasts <-chan notify.Toast
		if a.toasts != nil {
			toasts = a.toasts.Toasts()
		}
		p := tea.NewProgram(tui.New(ctx, a.sched, views, toasts), tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			runErr = fmt.Errorf("tui: %w", err)
		}
	}

	cancel()
	if err := <-schedDone; err != nil {
		a.log.Warn("scheduler exited with error", zap.Error(err))
	}
	a.writer.Close()
	if err := a.repo.Close(); err != nil {
		a.log.Warn("close sqlite failed", zap.Error(err))
	}
	return runErr
}
