package notify

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"
)

// oto allows one context per process.
var (
	audioCtx     *oto.Context
	audioCtxErr  error
	audioCtxOnce sync.Once
)

// wavFormat holds WAV file format information
type wavFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// AudioSink plays a short chime and waits for it to finish.
type AudioSink struct {
	log    *zap.Logger
	wav    []byte
	pcm    []byte
	format *wavFormat
	init   sync.Once
	err    error
}

func NewAudioSink(wav []byte, log *zap.Logger) *AudioSink {
	return &AudioSink{wav: wav, log: log}
}

func (*AudioSink) Name() string { return "audio" }

// RequestPermission opens the audio device. Machines without one report
// unsupported.
func (a *AudioSink) RequestPermission(ctx context.Context) Permission {
	if err := a.open(ctx); err != nil {
		a.log.Info("audio output unavailable", zap.Error(err))
		return PermissionUnsupported
	}
	return PermissionGranted
}

func (a *AudioSink) Show(ctx context.Context, _, _ string) error {
	if err := a.open(ctx); err != nil {
		return err
	}

	p := audioCtx.NewPlayer(bytes.NewReader(a.pcm))
	defer p.Close()
	p.Play()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for p.IsPlaying() {
		select {
		case <-ctx.Done():
			p.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func (a *AudioSink) open(ctx context.Context) error {
	a.init.Do(func() {
		a.format, a.pcm, a.err = parseWAV(a.wav)
		if a.err != nil {
			return
		}
		if a.format.BitDepth != 16 {
			a.err = fmt.Errorf("unsupported bit depth %d", a.format.BitDepth)
			return
		}
		a.err = initAudioContext(ctx, a.format)
	})
	return a.err
}

func initAudioContext(ctx context.Context, format *wavFormat) error {
	audioCtxOnce.Do(func() {
		c, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			audioCtxErr = err
			return
		}
		select {
		case <-ready:
			audioCtx = c
		case <-ctx.Done():
			audioCtxErr = ctx.Err()
		}
	})
	return audioCtxErr
}

var errBadWAV = errors.New("malformed wav")

// parseWAV returns the format and PCM payload of a RIFF/WAVE file.
func parseWAV(data []byte) (*wavFormat, []byte, error) {
	r := bytes.NewReader(data)

	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errBadWAV, err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, nil, fmt.Errorf("%w: missing RIFF/WAVE header", errBadWAV)
	}

	var format *wavFormat
	for {
		var id [4]byte
		if _, err := io.ReadFull(r, id[:]); err != nil {
			return nil, nil, fmt.Errorf("%w: no data chunk", errBadWAV)
		}
		var size uint32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", errBadWAV, err)
		}

		switch string(id[:]) {
		case "fmt ":
			chunk := make([]byte, size)
			if _, err := io.ReadFull(r, chunk); err != nil || size < 16 {
				return nil, nil, fmt.Errorf("%w: short fmt chunk", errBadWAV)
			}
			format = &wavFormat{
				Channels:   int(binary.LittleEndian.Uint16(chunk[2:4])),
				SampleRate: int(binary.LittleEndian.Uint32(chunk[4:8])),
				BitDepth:   int(binary.LittleEndian.Uint16(chunk[14:16])),
			}
		case "data":
			if format == nil {
				return nil, nil, fmt.Errorf("%w: data before fmt", errBadWAV)
			}
			pcm := make([]byte, size)
			if _, err := io.ReadFull(r, pcm); err != nil {
				return nil, nil, fmt.Errorf("%w: truncated data", errBadWAV)
			}
			return format, pcm, nil
		default:
			if _, err := r.Seek(int64(size), io.SeekCurrent); err != nil {
				return nil, nil, fmt.Errorf("%w: %v", errBadWAV, err)
			}
		}
		// chunks are word aligned
		if size%2 == 1 {
			_, _ = r.Seek(1, io.SeekCurrent)
		}
	}
}
