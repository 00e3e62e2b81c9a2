package session

import (
	"context"
	"sync"

	"voicetype/log"
	"voicetype/provider"
)

// ProviderFunc builds a fresh provider for the next session.
type ProviderFunc func() (provider.Provider, error)

// Controller owns the shared capture and visualizer and guarantees that at
// most one session is active.
type Controller struct {
	capture Capture
	vis     Visualizer

	mu      sync.Mutex
	current *Session
}

func NewController(capture Capture, vis Visualizer) *Controller {
	return &Controller{capture: capture, vis: vis}
}

// Start begins a new session unless one is already active, in which case it
// does nothing and reports false.
func (c *Controller) Start(ctx context.Context, newProvider ProviderFunc) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil && c.current.Active() {
		log.Warn("recording already active")
		return false, nil
	}

	p, err := newProvider()
	if err != nil {
		return false, err
	}
	s := New(p, c.capture, c.vis)
	if err := s.Start(ctx); err != nil {
		return false, err
	}
	c.current = s
	return true, nil
}

// Stop ends the active session, if any.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		c.current.Stop()
	}
}

func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && c.current.Active()
}

// Current returns the last started session, or nil.
func (c *Controller) Current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Shutdown stops any session and releases the microphone.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		c.current.Cleanup()
		return
	}
	guarded("capture", "cleanup", func() error {
		c.capture.Cleanup()
		return nil
	})
}
