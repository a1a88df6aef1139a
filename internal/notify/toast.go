package notify

import (
	"context"
	"time"
)

// Toast is an in-app banner.
type Toast struct {
	Title string
	Body  string
	At    time.Time
}

// ToastSink hands banners to the widget. It is always available.
type ToastSink struct {
	ch chan Toast
}

func NewToastSink(buffer int) *ToastSink {
	if buffer < 1 {
		buffer = 1
	}
	return &ToastSink{ch: make(chan Toast, buffer)}
}

func (*ToastSink) Name() string { return "toast" }

func (*ToastSink) RequestPermission(context.Context) Permission { return PermissionGranted }

// Show enqueues the banner, dropping the oldest one when nobody is reading.
func (t *ToastSink) Show(_ context.Context, title, body string) error {
	toast := Toast{Title: title, Body: body, At: time.Now()}
	for {
		select {
		case t.ch <- toast:
			return nil
		default:
		}
		select {
		case <-t.ch:
		default:
		}
	}
}

// Toasts is the stream of banners for the view.
func (t *ToastSink) Toasts() <-chan Toast { return t.ch }
