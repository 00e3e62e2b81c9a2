package audio

import (
	"fmt"
	"sync"
	"sync/atomic"

	"voicetype/log"
)

const frameQueueLen = 32

// Opener creates the backend context on first use.
type Opener func() (Context, error)

// CaptureManager owns the microphone. Stop keeps the device open so the next
// Start is fast; Cleanup releases it.
type CaptureManager struct {
	open   Opener
	device *DeviceInfo
	config CaptureConfig

	mu      sync.Mutex
	ctx     Context
	capture CaptureDevice
	pipe    *framePipe
	dropped atomic.Uint64
}

func NewCaptureManager(open Opener, device *DeviceInfo, config CaptureConfig) *CaptureManager {
	if config.SampleRate == 0 {
		config.SampleRate = NativeSampleRate
	}
	if config.Channels == 0 {
		config.Channels = 1
	}
	return &CaptureManager{open: open, device: device, config: config}
}

// Start registers onFrame and begins delivering frames. Calling Start while
// frames are already flowing is a no-op.
func (m *CaptureManager) Start(onFrame func(Frame)) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pipe != nil {
		log.Warn("capture already active, start ignored")
		return nil
	}

	defer func() {
		if err != nil {
			m.cleanupLocked()
			err = fmt.Errorf("%w: %w", ErrCapture, err)
		}
	}()

	if m.ctx == nil {
		ctx, err := m.open()
		if err != nil {
			return fmt.Errorf("audio context: %w", err)
		}
		m.ctx = ctx
	}
	if m.capture == nil {
		dev, err := m.ctx.NewCapture(m.device, m.config)
		if err != nil {
			return fmt.Errorf("capture init: %w", err)
		}
		m.capture = dev
	}

	pipe := newFramePipe(onFrame)
	channels := int(m.config.Channels)
	rate := int(m.config.SampleRate)
	m.capture.SetCallback(func(data []byte, _ uint32) {
		f := Frame{Samples: Downmix(data, channels), SampleRate: rate}
		if !pipe.push(f) {
			if n := m.dropped.Add(1); n == 1 || n%100 == 0 {
				log.Warnf("capture queue full, dropped %d frames", n)
			}
		}
	})

	if err := m.capture.Start(); err != nil {
		m.capture.ClearCallback()
		pipe.close()
		return fmt.Errorf("capture start: %w", err)
	}

	m.pipe = pipe
	log.Info("capture_start: " + m.capture.DeviceName())
	return nil
}

// Stop detaches the consumer. No frame is delivered after Stop returns.
func (m *CaptureManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *CaptureManager) stopLocked() {
	if m.pipe == nil {
		return
	}
	m.capture.ClearCallback()
	m.pipe.close()
	m.pipe = nil
}

// Cleanup releases the device and backend context. Safe to call repeatedly.
func (m *CaptureManager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanupLocked()
}

func (m *CaptureManager) cleanupLocked() {
	m.stopLocked()
	if m.capture != nil {
		m.capture.Stop()
		m.capture.Close()
		m.capture = nil
	}
	if m.ctx != nil {
		m.ctx.Close()
		m.ctx = nil
	}
}

func (m *CaptureManager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pipe != nil
}

// Warm reports whether the device is held open.
func (m *CaptureManager) Warm() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.capture != nil
}

func (m *CaptureManager) Dropped() uint64 {
	return m.dropped.Load()
}

// framePipe hands frames from the backend callback to a single consumer
// goroutine in capture order.
type framePipe struct {
	mu     sync.Mutex
	closed bool
	ch     chan Frame
	done   chan struct{}
}

func newFramePipe(onFrame func(Frame)) *framePipe {
	p := &framePipe{
		ch:   make(chan Frame, frameQueueLen),
		done: make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		for f := range p.ch {
			onFrame(f)
		}
	}()
	return p
}

func (p *framePipe) push(f Frame) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return true
	}
	select {
	case p.ch <- f:
		return true
	default:
		return false
	}
}

func (p *framePipe) close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.ch)
	}
	p.mu.Unlock()
	<-p.done
}
