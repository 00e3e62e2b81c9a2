package provider

import (
	"context"
	"errors"
	"fmt"

	"voicetype/audio"
	"voicetype/log"
)

type Type string

const (
	TypeBatch     Type = "batch"
	TypeStreaming Type = "streaming"
)

var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrMissingKey      = errors.New("missing API key")
	ErrNotActive       = errors.New("provider not active")
)

// BackendError wraps a failure talking to a vendor.
type BackendError struct {
	Vendor string
	Op     string
	Err    error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Vendor, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Sink receives finished transcript text, in order.
type Sink func(text string)

// Capture is the part of audio.CaptureManager a provider drives.
type Capture interface {
	Start(onFrame func(audio.Frame)) error
}

// Visualizer is fed every frame the provider sees. It may be nil.
type Visualizer interface {
	Start() error
	Push(audio.Frame)
	Stop() error
}

// Provider turns captured audio into transcripts. A provider is built per
// session; after Stop it is inert.
type Provider interface {
	Name() string
	Type() Type
	Start(ctx context.Context, capture Capture, vis Visualizer) error
	Stop() error
	Active() bool
}

// Options configure a provider at construction time.
type Options struct {
	APIKey     string
	Language   string
	Formatting bool
	// SegmentFormat selects the upload container for batch vendors ("wav" or "flac").
	SegmentFormat string
	Sink          Sink
	// Endpoint overrides the vendor URL. Used by tests.
	Endpoint string
	Segments SegmentConfig
	// WholeSession disables segmentation: batch vendors upload the entire
	// recording once on Stop.
	WholeSession bool
}

func (o Options) emit(text string) {
	if o.Sink != nil && text != "" {
		o.Sink(text)
	}
}

func (o Options) endpoint(def string) string {
	if o.Endpoint != "" {
		return o.Endpoint
	}
	return def
}

// attach starts the visualizer and wires fn into the capture stream. The
// visualizer is cosmetic: a failure to start it is logged and ignored. If
// capture fails the visualizer is stopped again.
func attach(capture Capture, vis Visualizer, fn func(audio.Frame)) error {
	if vis != nil {
		if err := vis.Start(); err != nil {
			log.Report("visualizer", "start", err)
			vis = nil
		}
	}
	err := capture.Start(func(f audio.Frame) {
		if vis != nil {
			vis.Push(f)
		}
		fn(f)
	})
	if err != nil && vis != nil {
		if serr := vis.Stop(); serr != nil {
			log.Report("visualizer", "stop", serr)
		}
	}
	return err
}
