package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ykvlv/hydrate/assets"
)

type fakeSink struct {
	name  string
	perm  Permission
	err   error
	panic bool
	shown int
}

func (f *fakeSink) Name() string                                 { return f.name }
func (f *fakeSink) RequestPermission(context.Context) Permission { return f.perm }
func (f *fakeSink) Show(context.Context, string, string) error {
	if f.panic {
		panic("boom")
	}
	f.shown++
	return f.err
}

func TestDispatcher_FailuresAreIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	failing := &fakeSink{name: "failing", perm: PermissionGranted, err: errors.New("no display")}
	panicking := &fakeSink{name: "panicking", perm: PermissionGranted, panic: true}
	denied := &fakeSink{name: "denied", perm: PermissionDenied}
	unsupported := &fakeSink{name: "unsupported", perm: PermissionUnsupported}
	ok := &fakeSink{name: "ok", perm: PermissionDefault}

	d := NewDispatcher(zap.New(core), failing, panicking, denied, unsupported, ok)
	d.Init(context.Background())

	if n := d.Deliver(context.Background(), "t", "b"); n != 1 {
		t.Fatalf("Deliver() = %d, want 1", n)
	}
	if ok.shown != 1 || failing.shown != 1 {
		t.Fatalf("sinks after a failure must still run: ok=%d failing=%d", ok.shown, failing.shown)
	}
	if denied.shown != 0 || unsupported.shown != 0 {
		t.Fatal("denied or unsupported sinks must be skipped")
	}
	if n := logs.FilterMessage("reminder delivery failed").Len(); n != 2 {
		t.Fatalf("want 2 failure logs, got %d", n)
	}
	if n := logs.FilterMessage("notifications refused, in-app reminders stay active").Len(); n != 1 {
		t.Fatalf("want 1 denial log, got %d", n)
	}
	if p := d.Permissions()["denied"]; p != PermissionDenied {
		t.Fatalf("Permissions()[denied] = %s", p)
	}
}

// stuckSink never returns from Show until released, whatever its context says.
type stuckSink struct {
	release chan struct{}
}

func (*stuckSink) Name() string                                 { return "stuck" }
func (*stuckSink) RequestPermission(context.Context) Permission { return PermissionGranted }
func (s *stuckSink) Show(context.Context, string, string) error {
	<-s.release
	return nil
}

func TestDispatcher_AbandonsStuckSink(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	stuck := &stuckSink{release: make(chan struct{})}
	defer close(stuck.release)
	ok := &fakeSink{name: "ok", perm: PermissionGranted}

	d := NewDispatcher(zap.New(core), stuck, ok).WithTimeout(20 * time.Millisecond)
	d.Init(context.Background())

	done := make(chan int, 1)
	go func() { done <- d.Deliver(context.Background(), "t", "b") }()
	select {
	case n := <-done:
		if n != 1 || ok.shown != 1 {
			t.Fatalf("Deliver() = %d, ok.shown = %d", n, ok.shown)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Deliver() blocked on a sink that never returns")
	}
	if logs.FilterMessage("reminder delivery failed").FilterField(zap.String("sink", "stuck")).Len() != 1 {
		t.Fatal("stuck sink not reported")
	}
}

func TestDispatcher_DeliversWithoutInit(t *testing.T) {
	s := &fakeSink{name: "x", perm: PermissionDenied}
	d := NewDispatcher(zaptest.NewLogger(t), s)
	if n := d.Deliver(context.Background(), "t", "b"); n != 1 {
		t.Fatalf("unknown permission should be tried, got %d", n)
	}
}

func TestToastSink_DropsOldest(t *testing.T) {
	s := NewToastSink(2)
	for _, title := range []string{"a", "b", "c"} {
		if err := s.Show(context.Background(), title, ""); err != nil {
			t.Fatalf("Show() error = %v", err)
		}
	}
	if got := (<-s.Toasts()).Title; got != "b" {
		t.Fatalf("first toast = %s, want b", got)
	}
	if got := (<-s.Toasts()).Title; got != "c" {
		t.Fatalf("second toast = %s, want c", got)
	}
}

func TestBellSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewBellSink(&buf)
	if p := s.RequestPermission(context.Background()); p != PermissionGranted {
		t.Fatalf("permission = %s", p)
	}
	_ = s.Show(context.Background(), "", "")
	if buf.String() != "\a" {
		t.Fatalf("wrote %q", buf.String())
	}
	if p := NewBellSink(nil).RequestPermission(context.Background()); p != PermissionUnsupported {
		t.Fatalf("nil writer permission = %s", p)
	}
}

type recordingSender struct {
	chatID int64
	text   string
}

func (r *recordingSender) SendMessage(_ context.Context, chatID int64, text string) error {
	r.chatID, r.text = chatID, text
	return nil
}

// stalledSender waits for its context like a request to an unresponsive API.
type stalledSender struct{}

func (stalledSender) SendMessage(ctx context.Context, _ int64, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestTelegramSink(t *testing.T) {
	log := zaptest.NewLogger(t)
	ctx := context.Background()

	if p := NewTelegramSink("", 42, log).RequestPermission(ctx); p != PermissionUnsupported {
		t.Fatalf("unconfigured permission = %s", p)
	}

	rejected := NewTelegramSink("bad", 42, log)
	rejected.connect = func(string) (Sender, error) { return nil, errors.New("401 Unauthorized") }
	if p := rejected.RequestPermission(ctx); p != PermissionDenied {
		t.Fatalf("rejected token permission = %s", p)
	}
	if err := rejected.Show(ctx, "t", "b"); err == nil {
		t.Fatal("Show() without authorization should fail")
	}

	rec := &recordingSender{}
	s := NewTelegramSink("good", 42, log)
	s.connect = func(string) (Sender, error) { return rec, nil }
	if p := s.RequestPermission(ctx); p != PermissionGranted {
		t.Fatalf("permission = %s", p)
	}
	if err := s.Show(ctx, "Drink", "250 ml"); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if rec.chatID != 42 || rec.text != "Drink\n\n250 ml" {
		t.Fatalf("sent %d %q", rec.chatID, rec.text)
	}

	stalled := NewTelegramSink("good", 42, log)
	stalled.connect = func(string) (Sender, error) { return stalledSender{}, nil }
	_ = stalled.RequestPermission(ctx)
	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := stalled.Show(short, "t", "b"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Show() on a stalled API = %v, want deadline exceeded", err)
	}
}

func TestParseWAV_EmbeddedChime(t *testing.T) {
	format, pcm, err := parseWAV(assets.Chime)
	if err != nil {
		t.Fatalf("parseWAV() error = %v", err)
	}
	if format.Channels != 1 || format.BitDepth != 16 || format.SampleRate != 22050 {
		t.Fatalf("format = %+v", format)
	}
	if len(pcm) == 0 || len(pcm)%2 != 0 {
		t.Fatalf("pcm length = %d", len(pcm))
	}
}

func TestParseWAV_Rejects(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":   nil,
		"not wav": []byte("RIFF\x00\x00\x00\x00AVI LIST"),
		"no data": assets.Chime[:36],
	} {
		if _, _, err := parseWAV(data); !errors.Is(err, errBadWAV) {
			t.Errorf("%s: want errBadWAV, got %v", name, err)
		}
	}
}

func TestReminderBody(t *testing.T) {
	if got := ReminderBody(500, 2000, 25); !strings.Contains(got, "500 / 2000 ml (25%), 1500 ml to go") {
		t.Fatalf("body = %q", got)
	}
	if got := ReminderBody(2100, 2000, 100); !strings.HasPrefix(got, "Goal reached") {
		t.Fatalf("body = %q", got)
	}
	if got := ReminderBody(300, 0, 0); !strings.Contains(got, "300 ml so far") {
		t.Fatalf("body = %q", got)
	}
}
