package notify

import (
	"context"
	"io"
)

// BellSink rings the terminal bell, the desktop stand-in for vibration.
type BellSink struct {
	w io.Writer
}

func NewBellSink(w io.Writer) *BellSink {
	return &BellSink{w: w}
}

func (*BellSink) Name() string { return "bell" }

func (b *BellSink) RequestPermission(context.Context) Permission {
	if b.w == nil {
		return PermissionUnsupported
	}
	return PermissionGranted
}

func (b *BellSink) Show(context.Context, string, string) error {
	_, err := io.WriteString(b.w, "\a")
	return err
}
