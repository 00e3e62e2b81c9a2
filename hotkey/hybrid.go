package hotkey

import (
	"sync/atomic"
	"time"
)

// Hybrid turns one key into both controls: a tap toggles recording on
// until the next press, a hold records until release.
type Hybrid struct {
	startCh chan struct{}
	stopCh  chan struct{}
	toggle  atomic.Bool
}

// NewHybrid watches hk. Presses held longer than longPress are push-to-talk.
func NewHybrid(hk Hotkey, longPress time.Duration) *Hybrid {
	h := &Hybrid{
		startCh: make(chan struct{}, 1),
		stopCh:  make(chan struct{}, 1),
	}
	go h.run(hk, longPress)
	return h
}

// Start fires when recording should begin.
func (h *Hybrid) Start() <-chan struct{} { return h.startCh }

// StopChan fires when recording should end, in either mode.
func (h *Hybrid) StopChan() <-chan struct{} { return h.stopCh }

// IsToggle reports whether the current recording was started by a tap.
func (h *Hybrid) IsToggle() bool { return h.toggle.Load() }

func (h *Hybrid) stop() {
	select {
	case h.stopCh <- struct{}{}:
	default:
	}
}

func (h *Hybrid) run(hk Hotkey, longPress time.Duration) {
	for {
		// Recording starts on press; the hold duration only decides how it ends.
		<-hk.Keydown()
		h.toggle.Store(false)
		h.startCh <- struct{}{}

		timer := time.NewTimer(longPress)
		select {
		case <-timer.C:
			<-hk.Keyup()
			h.stop()
			continue
		case <-hk.Keyup():
			timer.Stop()
			h.toggle.Store(true)
		}

		// Toggled on: the next press ends it on release.
		<-hk.Keydown()
		<-hk.Keyup()
		h.stop()
	}
}
