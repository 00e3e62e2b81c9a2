// Package session ties a provider to the shared microphone and visualizer
// for one recording, and keeps at most one recording active.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"voicetype/log"
	"voicetype/provider"
)

// Capture is the shared microphone, normally an *audio.CaptureManager.
type Capture interface {
	provider.Capture
	Stop()
	Cleanup()
}

// Visualizer is the shared level meter, normally an *audio.Visualizer.
type Visualizer = provider.Visualizer

// Session is one recording: idle → active → idle.
type Session struct {
	id       string
	provider provider.Provider
	capture  Capture
	vis      Visualizer

	mu     sync.Mutex
	active bool
}

func New(p provider.Provider, capture Capture, vis Visualizer) *Session {
	return &Session{id: uuid.NewString(), provider: p, capture: capture, vis: vis}
}

func (s *Session) ID() string                  { return s.id }
func (s *Session) Provider() provider.Provider { return s.provider }

func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Start wires the provider into the capture stream. The session is marked
// active only once that succeeds; on failure the provider is stopped and
// the error returned.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		log.Warnf("session %s already active", s.id)
		return nil
	}

	var vis provider.Visualizer
	if s.vis != nil {
		vis = s.vis
	}
	if err := s.provider.Start(ctx, s.capture, vis); err != nil {
		guarded("provider", "stop", s.provider.Stop)
		return err
	}
	s.active = true
	log.Infof("session %s started (%s)", s.id, s.provider.Name())
	return nil
}

// Stop tears down in order: provider, visualizer, capture. Each step runs
// even if an earlier one failed or panicked. Capture is left warm.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.mu.Unlock()

	guarded("provider", "stop", s.provider.Stop)
	if s.vis != nil {
		guarded("visualizer", "stop", s.vis.Stop)
	}
	guarded("capture", "stop", func() error {
		s.capture.Stop()
		return nil
	})
	log.Infof("session %s stopped", s.id)
}

// Cleanup stops the session and releases the microphone. Used at shutdown.
func (s *Session) Cleanup() {
	s.Stop()
	guarded("capture", "cleanup", func() error {
		s.capture.Cleanup()
		return nil
	})
}

func guarded(component, op string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			log.Report(component, op, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := fn(); err != nil {
		log.Report(component, op, err)
	}
}
