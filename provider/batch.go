package provider

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"

	"voicetype/audio"
	"voicetype/encoder"
	"voicetype/log"
)

// SegmentTranscriber uploads one encoded segment and returns its text.
type SegmentTranscriber interface {
	TranscribeSegment(ctx context.Context, audio []byte, format string) (string, error)
}

// Batch runs the energy segmenter over the capture stream and hands each
// finished segment to a vendor transcriber. At most one upload is in flight.
type Batch struct {
	name string
	tr   SegmentTranscriber
	opts Options
	enc  encoder.Encoder

	mu       sync.Mutex
	ctx      context.Context
	active   bool
	seg      *Segmenter
	inflight bool
	segments int
	wg       sync.WaitGroup
}

func NewBatch(name string, tr SegmentTranscriber, opts Options) (*Batch, error) {
	enc, err := encoder.New(opts.SegmentFormat)
	if err != nil {
		return nil, err
	}
	return &Batch{name: name, tr: tr, opts: opts, enc: enc}, nil
}

func (b *Batch) Name() string { return b.name }
func (b *Batch) Type() Type   { return TypeBatch }

func (b *Batch) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

func (b *Batch) Start(ctx context.Context, capture Capture, vis Visualizer) error {
	b.mu.Lock()
	if b.active {
		b.mu.Unlock()
		log.Warnf("%s: already started", b.name)
		return nil
	}
	b.ctx = ctx
	cfg := b.opts.Segments
	if b.opts.WholeSession {
		cfg.SilenceMs = math.Inf(1)
		cfg.MaxSegmentMs = math.Inf(1)
	}
	b.seg = NewSegmenter(cfg)
	b.segments = 0
	b.active = true
	b.mu.Unlock()

	if w, ok := b.tr.(interface{ Warm() }); ok {
		go w.Warm()
	}

	if err := attach(capture, vis, b.onFrame); err != nil {
		b.mu.Lock()
		b.active = false
		b.mu.Unlock()
		return err
	}
	log.SessionStart(b.name, string(TypeBatch), b.opts.Language)
	return nil
}

func (b *Batch) onFrame(f audio.Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active {
		return
	}
	due := b.seg.Push(f)
	if !due || b.inflight {
		return
	}
	samples, ok := b.seg.Cut()
	if !ok {
		return
	}
	b.inflight = true
	b.segments++
	b.wg.Add(1)
	go b.transcribe(b.ctx, samples)
}

// Stop detaches from the stream, waits for the in-flight upload and sends
// whatever speech is still buffered.
func (b *Batch) Stop() error {
	b.mu.Lock()
	if !b.active {
		b.mu.Unlock()
		return nil
	}
	b.active = false
	b.mu.Unlock()

	b.wg.Wait()

	b.mu.Lock()
	samples, ok := b.seg.Cut()
	b.seg.Reset()
	if ok {
		b.segments++
	}
	ctx, segments := b.ctx, b.segments
	b.mu.Unlock()

	if ok {
		b.wg.Add(1)
		b.transcribe(ctx, samples)
	}
	log.SessionEnd(b.name, segments)
	return nil
}

func (b *Batch) transcribe(ctx context.Context, samples []int16) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("%s: transcribe panic: %v", b.name, r)
		}
		b.mu.Lock()
		b.inflight = false
		b.mu.Unlock()
		b.wg.Done()
	}()

	data, err := b.enc.Encode(samples)
	if err != nil {
		log.Report(b.name, "encode", err)
		return
	}

	metrics := &NetworkMetrics{}
	text, err := b.tr.TranscribeSegment(withMetrics(ctx, metrics), data, b.enc.Format())
	log.SegmentMetrics(log.SegmentStats{
		Vendor:     b.name,
		Format:     b.enc.Format(),
		AudioS:     encoder.Duration(len(samples)),
		SizeKB:     float64(len(data)) / 1024,
		DNSMs:      float64(metrics.DNS.Milliseconds()),
		TLSMs:      float64(metrics.TLS.Milliseconds()),
		TTFBMs:     float64(metrics.TTFB.Milliseconds()),
		TotalMs:    float64(metrics.Total.Milliseconds()),
		ConnReused: metrics.ConnReused,
		TLSProto:   metrics.TLSProtocol,
	})
	if err != nil {
		var be *BackendError
		if !errors.As(err, &be) {
			err = &BackendError{Vendor: b.name, Op: "transcribe", Err: err}
		}
		log.Report(b.name, "transcribe", err)
		return
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	log.TranscriptionText(text)
	b.opts.emit(text)
}
