package provider

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// FakeTranscriber answers every segment with canned text. Test mode uses it
// to exercise the pipeline without a network.
type FakeTranscriber struct {
	text  string
	err   error
	delay time.Duration

	mu       sync.Mutex
	segments [][]byte
	inflight int
	overlap  bool
}

func NewFake(text string, err error) *FakeTranscriber {
	return &FakeTranscriber{text: text, err: err}
}

// WithDelay makes each call take d.
func (f *FakeTranscriber) WithDelay(d time.Duration) *FakeTranscriber {
	f.delay = d
	return f
}

func (f *FakeTranscriber) TranscribeSegment(ctx context.Context, audio []byte, _ string) (string, error) {
	f.mu.Lock()
	f.inflight++
	if f.inflight > 1 {
		f.overlap = true
	}
	f.segments = append(f.segments, audio)
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inflight--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", fmt.Errorf("fake transcriber error: %w", f.err)
	}
	return f.text, nil
}

// Segments returns every uploaded segment in call order.
func (f *FakeTranscriber) Segments() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.segments...)
}

// Overlapped reports whether two calls were ever in flight at once.
func (f *FakeTranscriber) Overlapped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overlap
}
